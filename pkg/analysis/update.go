package analysis

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/psuracing/racingline-service-go/pkg/model"
)

// UpdateTrack returns a copy of track carrying the measured values of r.
// Segments and points without samples keep their previous values.
func UpdateTrack(track *model.Track, r *Report) *model.Track {
	ret := &model.Track{
		Points:   make([]model.TrackPoint, len(track.Points)),
		Segments: make([]model.Segment, len(track.Segments)),
	}
	copy(ret.Points, track.Points)
	copy(ret.Segments, track.Segments)

	stats := make(map[int]SegmentStats, len(r.Segments))
	for _, s := range r.Segments {
		stats[s.ID] = s
	}
	for i := range ret.Segments {
		seg := &ret.Segments[i]
		s, ok := stats[seg.ID]
		if !ok || s.Samples == 0 {
			continue
		}
		seg.TargetSpeed = round(s.MeanSpeed)
		if s.Efficiency > 0 {
			seg.Efficiency = round(s.Efficiency)
		}
	}
	for i := range ret.Points {
		if i < len(r.pointSpeeds) && !math.IsNaN(r.pointSpeeds[i]) {
			ret.Points[i].TargetSpeed = round(r.pointSpeeds[i])
		}
	}
	return ret
}

func round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
