package racingline

import (
	"math"

	"github.com/samber/lo"

	"github.com/psuracing/racingline-service-go/pkg/geo"
	"github.com/psuracing/racingline-service-go/pkg/model"
)

// Locate returns the racing line point closest to (lat,lon), its index and
// the distance in meters. On equal distances the lowest index wins.
// An empty track yields (nil, 0, +Inf).
func Locate(lat, lon float64, track *model.Track) (*model.TrackPoint, int, float64) {
	minDist := math.Inf(1)
	idx := -1
	for i := range track.Len() {
		p := &track.Points[i]
		if d := geo.Haversine(lat, lon, p.Lat, p.Lon); d < minDist {
			minDist = d
			idx = i
		}
	}
	if idx < 0 {
		return nil, 0, math.Inf(1)
	}
	nearest := track.Points[idx]
	return &nearest, idx, minDist * 1000
}

// Window returns the indices of up to size consecutive points starting at
// start. The window wraps around the closed loop and never repeats a point.
func Window(track *model.Track, start, size int) []int {
	n := track.Len()
	if n == 0 || size <= 0 {
		return []int{}
	}
	start = ((start % n) + n) % n
	return lo.Times(min(size, n), func(i int) int {
		return (start + i) % n
	})
}
