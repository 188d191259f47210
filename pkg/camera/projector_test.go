package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psuracing/racingline-service-go/pkg/config"
	"github.com/psuracing/racingline-service-go/pkg/geo"
	"github.com/psuracing/racingline-service-go/pkg/model"
)

var origin = model.CarPose{Lat: 25.4884, Lon: 51.4502}

func poseWithHeading(h float64) model.CarPose {
	p := origin
	p.Heading = h
	return p
}

func TestCarFrame(t *testing.T) {
	tests := []struct {
		name        string
		heading     float64
		bearing     float64
		wantForward float64
		wantLateral float64
	}{
		{"north ahead", 0, 0, 20, 0},
		{"east ahead", 90, 90, 20, 0},
		{"south ahead", 180, 180, 20, 0},
		{"west ahead", 270, 270, 20, 0},
		{"east is right when heading north", 0, 90, 0, 20},
		{"west is left when heading north", 0, 270, 0, -20},
		{"north is left when heading east", 90, 0, 0, -20},
		{"behind", 45, 225, -20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon := geo.Destination(origin.Lat, origin.Lon, tt.bearing, 20)
			f, l := CarFrame(lat, lon, poseWithHeading(tt.heading))
			assert.InDelta(t, tt.wantForward, f, 0.05)
			assert.InDelta(t, tt.wantLateral, l, 0.05)
		})
	}
}

func TestProject_rejectsOutsideRange(t *testing.T) {
	pr := NewProjector(config.DefaultCameraConfig())
	params := DefaultParams()
	for h := 0; h < 360; h += 15 {
		pose := poseWithHeading(float64(h))
		for _, dist := range []float64{0.2, 0.4, 40.5, 60} {
			lat, lon := geo.Destination(origin.Lat, origin.Lon, float64(h), dist)
			_, ok := pr.Project(lat, lon, pose, params)
			assert.False(t, ok, "heading %d dist %v", h, dist)
		}
		lat, lon := geo.Destination(origin.Lat, origin.Lon, float64(h+180), 10)
		_, ok := pr.Project(lat, lon, pose, params)
		assert.False(t, ok, "heading %d behind", h)

		lat, lon = geo.Destination(origin.Lat, origin.Lon, float64(h), 20)
		_, ok = pr.Project(lat, lon, pose, params)
		assert.True(t, ok, "heading %d ahead", h)
	}
}

func TestProject_rejectsOutsideFov(t *testing.T) {
	pr := NewProjector(config.DefaultCameraConfig())
	// 65 degrees off axis is outside the 59 degree half angle
	lat, lon := geo.Destination(origin.Lat, origin.Lon, 65, 20)
	_, ok := pr.Project(lat, lon, poseWithHeading(0), DefaultParams())
	assert.False(t, ok)

	lat, lon = geo.Destination(origin.Lat, origin.Lon, 50, 20)
	_, ok = pr.Project(lat, lon, poseWithHeading(0), DefaultParams())
	assert.True(t, ok)
}

func TestProject_withinFrame(t *testing.T) {
	pr := NewProjector(config.DefaultCameraConfig())
	frames := []Params{{1280, 720}, {640, 480}, {1, 1}, {3, 2}}
	for _, params := range frames {
		for h := 0; h < 360; h += 30 {
			pose := poseWithHeading(float64(h))
			for b := 0; b < 360; b += 10 {
				for _, dist := range []float64{0.6, 1, 5, 15, 39.9} {
					lat, lon := geo.Destination(origin.Lat, origin.Lon, float64(b), dist)
					px, ok := pr.Project(lat, lon, pose, params)
					if !ok {
						continue
					}
					assert.GreaterOrEqual(t, px.X, 0)
					assert.Less(t, px.X, params.Width)
					assert.GreaterOrEqual(t, px.Y, 0)
					assert.Less(t, px.Y, params.Height)
				}
			}
		}
	}
}

func TestProject_headingPeriodic(t *testing.T) {
	pr := NewProjector(config.DefaultCameraConfig())
	params := DefaultParams()
	for h := 0; h < 360; h += 20 {
		for b := h - 50; b <= h+50; b += 25 {
			lat, lon := geo.Destination(origin.Lat, origin.Lon, float64(b), 12)
			want, wantOK := pr.Project(lat, lon, poseWithHeading(float64(h)), params)
			for _, k := range []int{-720, -360, 360, 1080} {
				got, ok := pr.Project(lat, lon, poseWithHeading(float64(h+k)), params)
				assert.Equal(t, wantOK, ok)
				assert.Equal(t, want, got, "heading %d+%d", h, k)
			}
		}
	}
}

func TestProject_centerLine(t *testing.T) {
	cfg := config.DefaultCameraConfig()
	pr := NewProjector(cfg)
	params := DefaultParams()

	near, farther := 0.0, 0.0
	for i, dist := range []float64{5, 30} {
		lat, lon := geo.Destination(origin.Lat, origin.Lon, 0, dist)
		px, ok := pr.Project(lat, lon, poseWithHeading(0), params)
		require.True(t, ok)
		assert.InDelta(t, 640, px.X, 1)
		if i == 0 {
			near = float64(px.Y)
		} else {
			farther = float64(px.Y)
		}
	}
	// the horizon is at the vertical center, near points are further down
	assert.Greater(t, near, farther)
	assert.Greater(t, farther, 360.0)
}

// straightTrack places points every spacing meters along bearing.
func straightTrack(lat, lon, bearing, spacing float64, n int) []model.TrackPoint {
	pts := make([]model.TrackPoint, n)
	for i := range pts {
		pts[i].Lat, pts[i].Lon = geo.Destination(lat, lon, bearing, float64(i)*spacing)
	}
	return pts
}

func TestProject_nextPointRoundTrip(t *testing.T) {
	pr := NewProjector(config.DefaultCameraConfig())
	params := DefaultParams()
	for _, bearing := range []float64{0, 37, 90, 200, 315} {
		pts := straightTrack(origin.Lat, origin.Lon, bearing, 20, 5)
		for i := 0; i < len(pts)-1; i++ {
			cur, next := pts[i], pts[i+1]
			pose := model.CarPose{
				Lat:     cur.Lat,
				Lon:     cur.Lon,
				Heading: geo.Bearing(cur.Lat, cur.Lon, next.Lat, next.Lon),
			}
			px, ok := pr.Project(next.Lat, next.Lon, pose, params)
			require.True(t, ok, "bearing %v point %d", bearing, i)
			assert.InDelta(t, params.Width/2, px.X, 3, "bearing %v point %d", bearing, i)
			assert.InDelta(t, params.Height/2, px.Y, 30, "bearing %v point %d", bearing, i)
		}
	}
}

func TestParams(t *testing.T) {
	assert.True(t, DefaultParams().Valid())
	assert.False(t, Params{Width: 0, Height: 10}.Valid())
	assert.False(t, Params{Width: 10, Height: -1}.Valid())
}
