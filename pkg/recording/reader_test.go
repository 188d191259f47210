package recording

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"gotest.tools/v3/assert"

	"github.com/psuracing/racingline-service-go/pkg/model"
)

func TestReader_ReadAll(t *testing.T) {
	f, err := os.Open("testdata/attempt.csv")
	assert.NilError(t, err)
	defer f.Close()

	r, err := NewReader(f)
	assert.NilError(t, err)
	got, err := r.ReadAll()
	assert.NilError(t, err)

	want := []model.TelemetryPacket{
		{
			Voltage: 48, Current: 2.5, Power: 120,
			Latitude: 25.488720817, Longitude: 51.450041667, Timestamp: 1000.0,
		},
		{
			Voltage: 48.1, Current: 3, Power: 144.3, Speed: 10.5, RPM: 525, DistanceKm: 0.001,
			Latitude: 25.4888, Longitude: 51.44999, Timestamp: 1000.1,
		},
		{Timestamp: 1000.2},
		{
			Voltage: 47.9, Current: -0.5, Power: -23.95, Speed: 20, RPM: 1000, DistanceKm: 0.0035,
			Longitude: 51.4499, Timestamp: 1000.3, Lap: 1,
		},
	}
	assert.DeepEqual(t, want, got, cmpopts.EquateApprox(0, 1e-9))
}

func TestReader_missingColumns(t *testing.T) {
	r, err := NewReader(strings.NewReader("gps_speed\n12\n"))
	assert.NilError(t, err)
	p, err := r.Next()
	assert.NilError(t, err)
	assert.DeepEqual(t, &model.TelemetryPacket{Speed: 12, RPM: 600}, p)
	_, err = r.Next()
	assert.Assert(t, errors.Is(err, io.EOF))
}

func TestReader_errors(t *testing.T) {
	_, err := NewReader(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	r, err := NewReader(strings.NewReader("gps_speed\nfast\n"))
	assert.NilError(t, err)
	_, err = r.Next()
	assert.ErrorContains(t, err, "line 2 column gps_speed")
}

func TestReader_byteOrderMark(t *testing.T) {
	r, err := NewReader(strings.NewReader("\ufeffgps_speed,lap_lap\n5,2\n"))
	assert.NilError(t, err)
	p, err := r.Next()
	assert.NilError(t, err)
	assert.Equal(t, 5.0, p.Speed)
	assert.Equal(t, 2, p.Lap)
}
