// Package analysis evaluates a recorded attempt against the racing line.
package analysis

import (
	"errors"
	"time"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/model"
)

var ErrEmptyTrack = errors.New("track has no points")

const (
	DefaultSamplePeriod = 100 * time.Millisecond
	DefaultStopSpeed    = 0.5 // km/h
	DefaultMinStop      = 10 * time.Second
	DefaultStopGap      = 5 // samples
	// maxDistanceStep drops odometer jumps caused by resets or logging gaps.
	maxDistanceStep = 0.1 // km
)

type (
	Analyzer struct {
		samplePeriod time.Duration
		stopSpeed    float64
		minStop      time.Duration
		stopGap      int
		exclude      *exclusion
		l            *log.Logger
	}
	Option func(*Analyzer)

	exclusion struct {
		lat, lon float64
		radiusM  float64
	}
)

//nolint:tagliatelle // report is consumed by the python tooling
type (
	Report struct {
		Samples  int            `json:"samples"`
		Located  int            `json:"located"`
		Segments []SegmentStats `json:"segments"`
		Stops    []Stop         `json:"stops"`
		StopLine *Stop          `json:"stop_line,omitempty"`
		Turns    []Turn         `json:"turns"`
		// pointSpeeds holds the mean speed per racing line point, NaN if no
		// sample was assigned.
		pointSpeeds []float64
	}

	SegmentStats struct {
		ID          int     `json:"id"`
		Name        string  `json:"name"`
		Samples     int     `json:"samples"`
		MeanSpeed   float64 `json:"mean_speed"`
		StdDevSpeed float64 `json:"stddev_speed"`
		DistanceKm  float64 `json:"distance_km"`
		EnergyWh    float64 `json:"energy_wh"`
		Efficiency  float64 `json:"efficiency"` // km/kWh
	}

	Stop struct {
		First        int     `json:"first_sample"`
		Last         int     `json:"last_sample"`
		DurationS    float64 `json:"duration_s"`
		Lat          float64 `json:"lat"`
		Lon          float64 `json:"lon"`
		NearestPoint int     `json:"nearest_point"`
		DistanceM    float64 `json:"distance_m"`
		Segment      string  `json:"segment"`
	}
)

func WithSamplePeriod(d time.Duration) Option {
	return func(a *Analyzer) {
		a.samplePeriod = d
	}
}

// WithStopSpeed sets the speed in km/h below which the car counts as stopped.
func WithStopSpeed(kmh float64) Option {
	return func(a *Analyzer) {
		a.stopSpeed = kmh
	}
}

func WithMinStop(d time.Duration) Option {
	return func(a *Analyzer) {
		a.minStop = d
	}
}

// WithStopGap sets how many moving samples may interrupt a stop before it is
// split into two.
func WithStopGap(n int) Option {
	return func(a *Analyzer) {
		a.stopGap = n
	}
}

// WithStartExclusion ignores stopped samples within radiusM meters of
// (lat,lon), usually the start grid.
func WithStartExclusion(lat, lon, radiusM float64) Option {
	return func(a *Analyzer) {
		a.exclude = &exclusion{lat: lat, lon: lon, radiusM: radiusM}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *Analyzer) {
		a.l = l
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	ret := &Analyzer{
		samplePeriod: DefaultSamplePeriod,
		stopSpeed:    DefaultStopSpeed,
		minStop:      DefaultMinStop,
		stopGap:      DefaultStopGap,
		l:            log.Default().Named("analysis"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Analyze evaluates samples in recording order against track.
func (a *Analyzer) Analyze(track *model.Track, samples []model.TelemetryPacket) (*Report, error) {
	if track.Len() == 0 {
		return nil, ErrEmptyTrack
	}
	assigned := assign(track, samples)
	ret := &Report{
		Samples:  len(samples),
		Located:  len(samples) - countUnlocated(assigned),
		Segments: a.segmentStats(track, samples, assigned),
		Stops:    a.findStops(track, samples),
		Turns:    Turns(track, defaultTurnSpan, defaultTurnThreshold),
	}
	ret.pointSpeeds = pointSpeeds(track, samples, assigned)
	if len(ret.Stops) > 0 {
		ret.StopLine = &ret.Stops[0]
	}
	a.l.Info("Analyzed recording",
		log.Int("samples", ret.Samples),
		log.Int("located", ret.Located),
		log.Int("segments", len(ret.Segments)),
		log.Int("stops", len(ret.Stops)),
		log.Int("turns", len(ret.Turns)))
	return ret, nil
}
