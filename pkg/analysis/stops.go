package analysis

import (
	"cmp"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/geo"
	"github.com/psuracing/racingline-service-go/pkg/model"
	"github.com/psuracing/racingline-service-go/pkg/racingline"
)

func (a *Analyzer) stopped(s *model.TelemetryPacket) bool {
	if s.Speed >= a.stopSpeed {
		return false
	}
	if a.exclude != nil && hasPosition(s) &&
		geo.DistanceM(a.exclude.lat, a.exclude.lon, s.Latitude, s.Longitude) <= a.exclude.radiusM {
		return false
	}
	return true
}

// findStops groups stopped samples into stops. A stop continues as long as
// no more than stopGap samples separate two stopped samples. The duration
// counts the stopped samples only. Stops are sorted longest first.
func (a *Analyzer) findStops(track *model.Track, samples []model.TelemetryPacket) []Stop {
	var groups [][]int
	var current []int
	for i := range samples {
		if !a.stopped(&samples[i]) {
			continue
		}
		if len(current) > 0 && i-current[len(current)-1] > a.stopGap+1 {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, i)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	ret := []Stop{}
	for _, g := range groups {
		duration := a.samplePeriod * time.Duration(len(g))
		if duration < a.minStop {
			continue
		}
		stop, ok := makeStop(track, samples, g)
		if !ok {
			a.l.Debug("stop without position skipped",
				log.Int("first", g[0]), log.Int("last", g[len(g)-1]))
			continue
		}
		stop.DurationS = duration.Seconds()
		ret = append(ret, stop)
	}
	slices.SortStableFunc(ret, func(x, y Stop) int {
		return cmp.Compare(y.DurationS, x.DurationS)
	})
	return ret
}

func makeStop(track *model.Track, samples []model.TelemetryPacket, group []int) (Stop, bool) {
	lats := make([]float64, 0, len(group))
	lons := make([]float64, 0, len(group))
	for _, i := range group {
		if hasPosition(&samples[i]) {
			lats = append(lats, samples[i].Latitude)
			lons = append(lons, samples[i].Longitude)
		}
	}
	if len(lats) == 0 {
		return Stop{}, false
	}
	ret := Stop{
		First: group[0],
		Last:  group[len(group)-1],
		Lat:   stat.Mean(lats, nil),
		Lon:   stat.Mean(lons, nil),
	}
	p, idx, dist := racingline.Locate(ret.Lat, ret.Lon, track)
	ret.NearestPoint = idx
	ret.DistanceM = dist
	ret.Segment = p.SegmentName
	return ret, true
}
