// Package recording reads the attempt CSV files logged by the car.
package recording

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/psuracing/racingline-service-go/pkg/model"
)

// column names as logged by the on-board computer
const (
	ColVoltage   = "jm3_voltage" // mV
	ColCurrent   = "jm3_current" // mA
	ColSpeed     = "gps_speed"   // km/h
	ColDistance  = "dist"        // km
	ColLatitude  = "gps_latitude"
	ColLongitude = "gps_longitude"
	ColTimestamp = "obc_timestamp"
	ColLap       = "lap_lap"
)

// RPMPerKmh estimates motor rpm from speed.
const RPMPerKmh = 50

var ErrNoHeader = errors.New("recording has no header")

type Reader struct {
	csv    *csv.Reader
	index  map[string]int
	line   int
	record []string
}

// NewReader reads the header line of r. Columns are located by name, missing
// columns read as zero.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	return &Reader{csv: cr, index: index, line: 1}, nil
}

// Next returns the next packet or io.EOF.
func (r *Reader) Next() (*model.TelemetryPacket, error) {
	rec, err := r.csv.Read()
	if err != nil {
		return nil, err
	}
	r.line++
	r.record = rec

	voltage, err := r.float(ColVoltage)
	if err != nil {
		return nil, err
	}
	current, err := r.float(ColCurrent)
	if err != nil {
		return nil, err
	}
	p := &model.TelemetryPacket{
		Voltage: voltage / 1000,
		Current: current / 1000,
	}
	p.Power = p.Voltage * p.Current
	for _, f := range []struct {
		col    string
		target *float64
	}{
		{ColSpeed, &p.Speed},
		{ColDistance, &p.DistanceKm},
		{ColLatitude, &p.Latitude},
		{ColLongitude, &p.Longitude},
		{ColTimestamp, &p.Timestamp},
	} {
		if *f.target, err = r.float(f.col); err != nil {
			return nil, err
		}
	}
	p.RPM = p.Speed * RPMPerKmh
	lap, err := r.float(ColLap)
	if err != nil {
		return nil, err
	}
	p.Lap = int(lap)
	return p, nil
}

// ReadAll reads all remaining packets.
func (r *Reader) ReadAll() ([]model.TelemetryPacket, error) {
	var ret []model.TelemetryPacket
	for {
		p, err := r.Next()
		if errors.Is(err, io.EOF) {
			return ret, nil
		}
		if err != nil {
			return nil, err
		}
		ret = append(ret, *p)
	}
}

// float returns the value of col in the current record. Missing, empty and
// NaN cells yield 0.
func (r *Reader) float(col string) (float64, error) {
	i, ok := r.index[col]
	if !ok || i >= len(r.record) {
		return 0, nil
	}
	s := strings.TrimSpace(r.record[i])
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d column %s: %w", r.line, col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, nil
	}
	return v, nil
}
