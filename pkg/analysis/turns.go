package analysis

import (
	"github.com/psuracing/racingline-service-go/pkg/geo"
	"github.com/psuracing/racingline-service-go/pkg/model"
)

type Direction string

const (
	Left     Direction = "left"
	Right    Direction = "right"
	Straight Direction = "straight"
	Unknown  Direction = "unknown"
)

const (
	defaultTurnSpan      = 2
	defaultTurnThreshold = 15.0 // degrees
)

//nolint:tagliatelle // report is consumed by the python tooling
type Turn struct {
	Point     int       `json:"point"`
	Segment   string    `json:"segment"`
	Change    float64   `json:"change"` // degrees, positive is clockwise
	Direction Direction `json:"direction"`
}

// HeadingChange returns the compass heading change in (-180,180] between
// the bearing in and the bearing out.
func HeadingChange(in, out float64) float64 {
	d := geo.NormalizeHeading(out - in)
	if d > 180 {
		d -= 360
	}
	return d
}

// Classify maps a heading change to a direction. Changes within threshold
// are straight.
func Classify(change, threshold float64) Direction {
	switch {
	case change > threshold:
		return Right
	case change < -threshold:
		return Left
	default:
		return Straight
	}
}

// TurnAt classifies the racing line at point i, comparing the bearing from
// span points before to the bearing to span points after.
func TurnAt(track *model.Track, i, span int, threshold float64) Turn {
	p := track.At(i)
	ret := Turn{Point: i, Segment: p.SegmentName, Direction: Unknown}
	if span <= 0 || track.Len() < 2*span+1 {
		return ret
	}
	prev, next := track.At(i-span), track.At(i+span)
	in := geo.Bearing(prev.Lat, prev.Lon, p.Lat, p.Lon)
	out := geo.Bearing(p.Lat, p.Lon, next.Lat, next.Lon)
	ret.Change = HeadingChange(in, out)
	ret.Direction = Classify(ret.Change, threshold)
	return ret
}

// Turns returns the points of the closed racing line that are not straight.
func Turns(track *model.Track, span int, threshold float64) []Turn {
	ret := []Turn{}
	for i := range track.Len() {
		if t := TurnAt(track, i, span, threshold); t.Direction == Left || t.Direction == Right {
			ret = append(ret, t)
		}
	}
	return ret
}
