package analysis

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/psuracing/racingline-service-go/pkg/model"
	"github.com/psuracing/racingline-service-go/pkg/racingline"
)

const unlocated = -1

func hasPosition(p *model.TelemetryPacket) bool {
	return p.Latitude != 0 && p.Longitude != 0
}

// assign maps every sample to the index of its nearest racing line point.
// Samples without a gps position get unlocated.
func assign(track *model.Track, samples []model.TelemetryPacket) []int {
	return lo.Map(samples, func(s model.TelemetryPacket, _ int) int {
		if !hasPosition(&s) {
			return unlocated
		}
		_, idx, _ := racingline.Locate(s.Latitude, s.Longitude, track)
		return idx
	})
}

func countUnlocated(assigned []int) int {
	return lo.Count(assigned, unlocated)
}

type segmentAcc struct {
	speeds   []float64
	power    []float64
	distance float64
}

func (a *Analyzer) segmentStats(
	track *model.Track,
	samples []model.TelemetryPacket,
	assigned []int,
) []SegmentStats {
	acc := make(map[int]*segmentAcc, len(track.Segments))
	for _, s := range track.Segments {
		acc[s.ID] = &segmentAcc{}
	}
	for i, idx := range assigned {
		if idx == unlocated {
			continue
		}
		sa, ok := acc[track.Points[idx].SegmentID]
		if !ok {
			continue
		}
		s := &samples[i]
		sa.speeds = append(sa.speeds, s.Speed)
		sa.power = append(sa.power, s.Power)
		if i > 0 {
			if d := s.DistanceKm - samples[i-1].DistanceKm; d > 0 && d < maxDistanceStep {
				sa.distance += d
			}
		}
	}

	dtHours := a.samplePeriod.Hours()
	return lo.Map(track.Segments, func(seg model.Segment, _ int) SegmentStats {
		sa := acc[seg.ID]
		ret := SegmentStats{
			ID:         seg.ID,
			Name:       seg.Name,
			Samples:    len(sa.speeds),
			DistanceKm: sa.distance,
			EnergyWh:   floats.Sum(sa.power) * dtHours,
		}
		switch len(sa.speeds) {
		case 0:
		case 1:
			ret.MeanSpeed = sa.speeds[0]
		default:
			ret.MeanSpeed, ret.StdDevSpeed = stat.MeanStdDev(sa.speeds, nil)
		}
		if ret.EnergyWh > 0 {
			ret.Efficiency = ret.DistanceKm / (ret.EnergyWh / 1000)
		}
		return ret
	})
}

// pointSpeeds returns the mean speed of the samples assigned to each point.
func pointSpeeds(track *model.Track, samples []model.TelemetryPacket, assigned []int) []float64 {
	sum := make([]float64, track.Len())
	count := make([]int, track.Len())
	for i, idx := range assigned {
		if idx == unlocated {
			continue
		}
		sum[idx] += samples[i].Speed
		count[idx]++
	}
	for i := range sum {
		if count[i] == 0 {
			sum[i] = math.NaN()
			continue
		}
		sum[i] /= float64(count[i])
	}
	return sum
}
