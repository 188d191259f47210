package livefeed

import (
	"testing"

	"github.com/aarondl/opt/omit"
	"github.com/stretchr/testify/assert"

	"github.com/psuracing/racingline-service-go/pkg/geo"
)

func TestPoseTracker(t *testing.T) {
	var tr poseTracker

	_, located := tr.update(sample{speed: 5})
	assert.False(t, located)

	pose, located := tr.update(sample{lat: 25.0, lon: 51.0, speed: 20})
	assert.True(t, located)
	assert.InDelta(t, 0, pose.Heading, 1e-9)

	// moving east
	lat, lon := geo.Destination(25.0, 51.0, 90, 10)
	pose, _ = tr.update(sample{lat: lat, lon: lon, speed: 20})
	assert.InDelta(t, 90, pose.Heading, 0.01)

	// standing still keeps the heading
	lat2, lon2 := geo.Destination(lat, lon, 180, 1)
	pose, _ = tr.update(sample{lat: lat2, lon: lon2, speed: 0.5})
	assert.InDelta(t, 90, pose.Heading, 0.01)

	// zero coordinates keep the last position
	pose, located = tr.update(sample{speed: 3})
	assert.True(t, located)
	assert.InDelta(t, lat2, pose.Lat, 1e-12)
	assert.InDelta(t, lon2, pose.Lon, 1e-12)
	assert.InDelta(t, 90, pose.Heading, 0.01)

	// explicit heading wins
	pose, _ = tr.update(sample{lat: 25.1, lon: 51.1, speed: 30, heading: omit.From(-90.0)})
	assert.InDelta(t, 270, pose.Heading, 1e-9)
}

func TestDecode(t *testing.T) {
	s, err := decodeTelemetry([]byte(`{"latitude":25.5,"longitude":51.4,"speed":31.5}`))
	assert.NoError(t, err)
	assert.InDelta(t, 25.5, s.lat, 1e-12)
	assert.InDelta(t, 31.5, s.speed, 1e-12)
	assert.True(t, s.heading.IsUnset())

	s, err = decodeGPS([]byte(`{"latitude":25.5,"longitude":51.4,"speed_kmh":12,"heading":45}`))
	assert.NoError(t, err)
	assert.InDelta(t, 12, s.speed, 1e-12)
	h, ok := s.heading.Get()
	assert.True(t, ok)
	assert.InDelta(t, 45, h, 1e-12)

	_, err = decodeGPS([]byte(`[`))
	assert.Error(t, err)
}
