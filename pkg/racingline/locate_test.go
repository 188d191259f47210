package racingline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psuracing/racingline-service-go/pkg/model"
)

func TestLocate_ownCoordinates(t *testing.T) {
	track := DefaultTrack()
	for i, p := range track.Points {
		got, idx, dist := Locate(p.Lat, p.Lon, track)
		require.NotNil(t, got)
		assert.Equal(t, i, idx)
		assert.InDelta(t, 0, dist, 1e-6)
		assert.Equal(t, p, *got)
	}
}

func TestLocate_emptyTrack(t *testing.T) {
	for _, track := range []*model.Track{nil, {}} {
		p, idx, dist := Locate(25.0, 51.0, track)
		assert.Nil(t, p)
		assert.Equal(t, 0, idx)
		assert.True(t, math.IsInf(dist, 1))
	}
}

func TestLocate_tieKeepsLowestIndex(t *testing.T) {
	track := &model.Track{Points: []model.TrackPoint{
		{Lat: 25.001, Lon: 51.0, SegmentID: 0},
		{Lat: 25.0, Lon: 51.0, SegmentID: 1},
		{Lat: 25.0, Lon: 51.0, SegmentID: 2},
	}}
	p, idx, dist := Locate(25.0, 51.0, track)
	require.NotNil(t, p)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, p.SegmentID)
	assert.InDelta(t, 0, dist, 1e-9)
}

func TestLocate_returnsCopy(t *testing.T) {
	track := DefaultTrack()
	p, idx, _ := Locate(track.Points[3].Lat, track.Points[3].Lon, track)
	p.TargetSpeed = 999
	assert.InDelta(t, 30, track.Points[idx].TargetSpeed, 1e-9)
}

func TestLocate_distanceInMeters(t *testing.T) {
	track := &model.Track{Points: []model.TrackPoint{{Lat: 25.0, Lon: 51.0}}}
	// 0.001 degree latitude is about 111 m
	_, _, dist := Locate(25.001, 51.0, track)
	assert.InDelta(t, 111.2, dist, 0.5)
}

func TestWindow(t *testing.T) {
	track := DefaultTrack()
	tests := []struct {
		name  string
		start int
		size  int
		want  []int
	}{
		{"from start", 0, 3, []int{0, 1, 2}},
		{"wraps at end", 45, 3, []int{45, 0, 1}},
		{"negative start", -1, 2, []int{45, 0}},
		{"start beyond len", 47, 2, []int{1, 2}},
		{"zero size", 5, 0, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Window(track, tt.start, tt.size))
		})
	}
}

func TestWindow_limitedByTrackLength(t *testing.T) {
	track := DefaultTrack()
	for _, start := range []int{0, 20, 45} {
		got := Window(track, start, 60)
		assert.Len(t, got, 46)
		assert.Equal(t, start, got[0])
		seen := map[int]bool{}
		for _, i := range got {
			assert.False(t, seen[i], "index %d repeated", i)
			seen[i] = true
		}
	}
}

func TestWindow_emptyTrack(t *testing.T) {
	assert.Equal(t, []int{}, Window(&model.Track{}, 0, 60))
	assert.Equal(t, []int{}, Window(nil, 3, 60))
}
