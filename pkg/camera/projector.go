// Package camera maps geographic targets onto pixels of the onboard camera.
// The model is a plain angular mapping without lens correction.
package camera

import (
	"math"

	"github.com/psuracing/racingline-service-go/pkg/config"
	"github.com/psuracing/racingline-service-go/pkg/geo"
	"github.com/psuracing/racingline-service-go/pkg/model"
)

// Params describes the frame of a single overlay request.
type Params struct {
	Width  int
	Height int
}

func DefaultParams() Params {
	return Params{Width: 1280, Height: 720}
}

func (p Params) Valid() bool {
	return p.Width > 0 && p.Height > 0
}

type Projector struct {
	cfg config.CameraConfig
}

func NewProjector(cfg config.CameraConfig) *Projector {
	return &Projector{cfg: cfg}
}

func (p *Projector) Config() config.CameraConfig {
	return p.cfg
}

// CarFrame returns the offset of (lat,lon) in meters relative to the car.
// forward points along the heading, lateral is positive to the right.
func CarFrame(lat, lon float64, pose model.CarPose) (forward, lateral float64) {
	dx, dy := geo.LocalOffset(pose.Lat, pose.Lon, lat, lon)
	h := toRad(geo.NormalizeHeading(pose.Heading))
	sin, cos := math.Sincos(h)
	forward = dx*sin + dy*cos
	lateral = dx*cos - dy*sin
	return forward, lateral
}

// Project returns the pixel of the ground point (lat,lon) as seen from the
// car. The second result is false if the point is behind the car, beyond the
// lookahead distance or outside the horizontal field of view.
func (p *Projector) Project(lat, lon float64, pose model.CarPose, params Params) (model.Pixel, bool) {
	forward, lateral := CarFrame(lat, lon, pose)
	if forward <= p.cfg.MinForwardM || forward > p.cfg.LookaheadM {
		return model.Pixel{}, false
	}
	halfH := p.cfg.FovH / 2
	angleH := toDeg(math.Atan2(lateral, forward))
	if math.Abs(angleH) > halfH {
		return model.Pixel{}, false
	}
	angleV := toDeg(math.Atan2(p.cfg.HeightM, forward))

	w, h := float64(params.Width), float64(params.Height)
	px := w/2 + angleH/halfH*w/2
	py := h/2 + angleV/(p.cfg.FovV/2)*h/2
	return model.Pixel{
		X: clamp(int(px), 0, params.Width-1),
		Y: clamp(int(py), 0, params.Height-1),
	}, true
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

func toDeg(rad float64) float64 { return rad * 180 / math.Pi }
