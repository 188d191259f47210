package racingline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/model"
)

var squareTrack = &model.Track{
	Points: []model.TrackPoint{
		{Lat: 25.0000, Lon: 51.0000, TargetSpeed: 20, SegmentID: 0, SegmentName: "S1"},
		{Lat: 25.0002, Lon: 51.0000, TargetSpeed: 22, SegmentID: 0, SegmentName: "S1"},
		{Lat: 25.0002, Lon: 51.0002, TargetSpeed: 24, SegmentID: 1, SegmentName: "S2"},
		{Lat: 25.0000, Lon: 51.0002, TargetSpeed: 26, SegmentID: 1, SegmentName: "S2"},
	},
	Segments: []model.Segment{
		{ID: 0, Name: "S1", TargetSpeed: 21, Efficiency: 140.5},
		{ID: 1, Name: "S2", TargetSpeed: 25, Efficiency: 151.0},
	},
}

func TestLoadFile(t *testing.T) {
	for _, file := range []string{"square.json", "square.yaml"} {
		t.Run(file, func(t *testing.T) {
			got, err := LoadFile(filepath.Join("testdata", file))
			require.NoError(t, err)
			if diff := cmp.Diff(squareTrack, got); diff != "" {
				t.Errorf("LoadFile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadFile_invalid(t *testing.T) {
	tests := []struct {
		file    string
		wantMsg string
	}{
		{"missing_lat.json", "point 0: missing position"},
		{"unknown_segment.json", "unknown segment_id 7"},
		{"corrupt.json", ""},
		{"empty_line.json", "empty racing line"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := LoadFile(filepath.Join("testdata", tt.file))
			require.ErrorIs(t, err, ErrInvalidTrack)
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestDecode_duplicateSegmentIDs(t *testing.T) {
	doc := `{"racing_line":[{"lat":1,"lon":1,"target_speed":1,"segment_id":0}],
"segments":[{"id":0,"name":"A"},{"id":0,"name":"B"}]}`
	_, err := Decode(strings.NewReader(doc), FormatJSON)
	require.ErrorIs(t, err, ErrInvalidTrack)
	assert.ErrorContains(t, err, "duplicate segment ids")
}

func TestDecode_outOfRange(t *testing.T) {
	doc := `{"racing_line":[{"lat":91,"lon":1,"target_speed":1,"segment_id":0}],
"segments":[{"id":0,"name":"A"}]}`
	_, err := Decode(strings.NewReader(doc), FormatJSON)
	require.ErrorIs(t, err, ErrInvalidTrack)
	assert.ErrorContains(t, err, "out of range")
}

func TestEncode_roundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, squareTrack))
	got, err := Decode(&buf, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, squareTrack, got)
}

func TestLoad_fallsBackToDefault(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"no path", ""},
		{"missing file", filepath.Join(t.TempDir(), "nope.json")},
		{"corrupt", filepath.Join("testdata", "corrupt.json")},
		{"partially malformed", filepath.Join("testdata", "missing_lat.json")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Load(tt.path, log.Nop())
			assert.Equal(t, DefaultTrack(), got)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("B.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("track.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("track"))
}

func writeTrack(t *testing.T, path string, track *model.Track) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, track))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}
