package analysis

import (
	"math"

	"github.com/samber/lo"

	"github.com/psuracing/racingline-service-go/pkg/model"
)

const (
	outlineMinSpeed = 0.5    // km/h
	closeTolerance  = 0.0001 // degrees
)

// ExtractOutline derives a closed outline of about n points from the moving
// samples of a recording. If the last point nearly equals the first one it
// is dropped since the loop closes implicitly.
func ExtractOutline(samples []model.TelemetryPacket, n int) [][2]float64 {
	moving := lo.Filter(samples, func(s model.TelemetryPacket, _ int) bool {
		return s.Speed > outlineMinSpeed && hasPosition(&s)
	})
	if len(moving) == 0 || n <= 0 {
		return [][2]float64{}
	}
	step := max(len(moving)/n, 1)
	ret := make([][2]float64, 0, n+1)
	for i := 0; i < len(moving); i += step {
		ret = append(ret, [2]float64{moving[i].Latitude, moving[i].Longitude})
	}
	if len(ret) > 1 {
		first, last := ret[0], ret[len(ret)-1]
		if math.Abs(first[0]-last[0]) <= closeTolerance && math.Abs(first[1]-last[1]) <= closeTolerance {
			ret = ret[:len(ret)-1]
		}
	}
	return ret
}
