package livefeed

import (
	"github.com/aarondl/opt/omit"

	"github.com/psuracing/racingline-service-go/pkg/geo"
	"github.com/psuracing/racingline-service-go/pkg/model"
)

// minMovingSpeed is the speed (km/h) above which the heading is derived from
// consecutive positions.
const minMovingSpeed = 1.0

// sample is the position part of a live message.
type sample struct {
	lat     float64
	lon     float64
	speed   float64
	heading omit.Val[float64]
}

// poseTracker turns a stream of samples of one source into car poses.
// Zero coordinates keep the last known position. Without an explicit heading
// the bearing from the previous position is used while the car is moving.
type poseTracker struct {
	pose    model.CarPose
	located bool
}

func (t *poseTracker) update(s sample) (model.CarPose, bool) {
	prevLat, prevLon, hadPrev := t.pose.Lat, t.pose.Lon, t.located
	if s.lat != 0 {
		t.pose.Lat = s.lat
	}
	if s.lon != 0 {
		t.pose.Lon = s.lon
	}
	t.located = t.pose.Lat != 0 && t.pose.Lon != 0
	t.pose.Speed = s.speed

	if h, ok := s.heading.Get(); ok {
		t.pose.Heading = geo.NormalizeHeading(h)
	} else if hadPrev && s.speed > minMovingSpeed &&
		(prevLat != t.pose.Lat || prevLon != t.pose.Lon) {
		t.pose.Heading = geo.Bearing(prevLat, prevLon, t.pose.Lat, t.pose.Lon)
	}
	return t.pose, t.located
}
