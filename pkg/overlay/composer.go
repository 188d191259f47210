// Package overlay builds the augmented reality overlay for a car pose.
package overlay

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/camera"
	"github.com/psuracing/racingline-service-go/pkg/config"
	"github.com/psuracing/racingline-service-go/pkg/model"
	"github.com/psuracing/racingline-service-go/pkg/racingline"
)

// NotLocated is reported as segment while the car cannot be placed on
// the racing line.
const NotLocated = "N/A"

type Projector interface {
	Project(lat, lon float64, pose model.CarPose, params camera.Params) (model.Pixel, bool)
}

type (
	Composer struct {
		tracks    racingline.Provider
		projector Projector
		cfg       config.OverlayConfig
		l         *log.Logger
	}
	Option func(*Composer)
)

func WithTrackProvider(p racingline.Provider) Option {
	return func(c *Composer) {
		c.tracks = p
	}
}

func WithProjector(p Projector) Option {
	return func(c *Composer) {
		c.projector = p
	}
}

func WithConfig(cfg config.OverlayConfig) Option {
	return func(c *Composer) {
		c.cfg = cfg
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Composer) {
		c.l = l
	}
}

// NewComposer creates a composer. Without options it uses the built-in
// default track and the process wide camera and overlay settings.
func NewComposer(opts ...Option) *Composer {
	ret := &Composer{
		cfg: config.Overlay,
		l:   log.Default().Named("overlay"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.tracks == nil {
		ret.tracks = racingline.Static(racingline.DefaultTrack())
	}
	if ret.projector == nil {
		ret.projector = camera.NewProjector(config.Camera)
	}
	return ret
}

// Track returns the racing line snapshot the composer works on.
func (c *Composer) Track(ctx context.Context) (*model.Track, error) {
	return c.tracks.Track(ctx)
}

// Compose computes the visible part of the racing line ahead of the car
// together with the deviation and speed metrics.
func (c *Composer) Compose(
	ctx context.Context,
	pose model.CarPose,
	params camera.Params,
) (*model.OverlayResult, error) {
	track, err := c.tracks.Track(ctx)
	if err != nil {
		return nil, err
	}
	nearest, idx, dist := racingline.Locate(pose.Lat, pose.Lon, track)
	if nearest == nil {
		c.l.Debug("car not located", log.Int("points", track.Len()))
		return &model.OverlayResult{
			OverlayPoints: []model.Pixel{},
			Segment:       NotLocated,
		}, nil
	}

	points := []model.Pixel{}
	for _, i := range racingline.Window(track, idx, c.cfg.WindowSize) {
		p := track.Points[i]
		if px, ok := c.projector.Project(p.Lat, p.Lon, pose, params); ok {
			points = append(points, px)
		}
	}

	deviation := round(dist, 2)
	ret := &model.OverlayResult{
		OverlayPoints: points,
		TargetSpeed:   nearest.TargetSpeed,
		DeviationM:    deviation,
		Segment:       nearest.SegmentName,
		OnTrack:       deviation < c.cfg.OnTrackThreshold,
		SpeedDiff:     round(nearest.TargetSpeed-pose.Speed, 1),
	}
	if seg, ok := track.SegmentByID(nearest.SegmentID); ok {
		ret.Efficiency = seg.Efficiency
	}
	c.l.Debug("overlay composed",
		log.Int("nearest", idx),
		log.Float64("deviation", deviation),
		log.Int("visible", len(points)))
	return ret, nil
}

// round rounds half away from zero.
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
