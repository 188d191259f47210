// Package livefeed computes overlays for live positions received over NATS
// and publishes them for the dashboard.
package livefeed

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/camera"
	"github.com/psuracing/racingline-service-go/pkg/model"
)

const (
	DefaultTelemetrySubject = "car.telemetry"
	DefaultGPSSubject       = "car.pi_gps"
	DefaultOverlaySubject   = "car.overlay"
)

// Conn is the part of *nats.Conn used by the bridge.
type Conn interface {
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	Publish(subj string, data []byte) error
}

type Composer interface {
	Compose(ctx context.Context, pose model.CarPose, params camera.Params) (*model.OverlayResult, error)
}

type Stats struct {
	Received  int
	Published int
	Skipped   int
}

type (
	Bridge struct {
		ctx            context.Context
		conn           Conn
		composer       Composer
		params         camera.Params
		overlaySubject string
		decoders       map[string]decodeFunc
		trackers       map[string]*poseTracker
		sink           chan<- *model.LiveOverlay
		subs           []*nats.Subscription
		stats          Stats
		mutex          sync.Mutex
		l              *log.Logger
	}
	Option func(*Bridge)
)

func WithContext(ctx context.Context) Option {
	return func(b *Bridge) {
		b.ctx = ctx
	}
}

func WithLogger(l *log.Logger) Option {
	return func(b *Bridge) {
		b.l = l
	}
}

func WithParams(p camera.Params) Option {
	return func(b *Bridge) {
		b.params = p
	}
}

func WithOverlaySubject(subj string) Option {
	return func(b *Bridge) {
		b.overlaySubject = subj
	}
}

// WithTelemetrySubject replaces the subject carrying dashboard telemetry.
// An empty subject disables it.
func WithTelemetrySubject(subj string) Option {
	return func(b *Bridge) {
		b.replaceSource(DefaultTelemetrySubject, subj, decodeTelemetry)
	}
}

// WithGPSSubject replaces the subject carrying the pi gps state.
// An empty subject disables it.
func WithGPSSubject(subj string) Option {
	return func(b *Bridge) {
		b.replaceSource(DefaultGPSSubject, subj, decodeGPS)
	}
}

// WithSink additionally hands every overlay to ch. Overlays are dropped if
// ch is not ready to receive.
func WithSink(ch chan<- *model.LiveOverlay) Option {
	return func(b *Bridge) {
		b.sink = ch
	}
}

func NewBridge(conn Conn, composer Composer, opts ...Option) *Bridge {
	ret := &Bridge{
		ctx:            context.Background(),
		conn:           conn,
		composer:       composer,
		params:         camera.DefaultParams(),
		overlaySubject: DefaultOverlaySubject,
		decoders: map[string]decodeFunc{
			DefaultTelemetrySubject: decodeTelemetry,
			DefaultGPSSubject:       decodeGPS,
		},
		trackers: map[string]*poseTracker{},
		l:        log.Default().Named("livefeed"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (b *Bridge) replaceSource(old, subj string, dec decodeFunc) {
	delete(b.decoders, old)
	if subj != "" {
		b.decoders[subj] = dec
	}
}

// Start subscribes to all configured source subjects.
func (b *Bridge) Start() error {
	for subj := range b.decoders {
		sub, err := b.conn.Subscribe(subj, func(msg *nats.Msg) {
			b.handle(subj, msg.Data)
		})
		if err != nil {
			b.Close()
			return err
		}
		b.subs = append(b.subs, sub)
		b.l.Info("subscribed", log.String("subject", subj))
	}
	return nil
}

func (b *Bridge) Close() {
	var errs []error
	for _, sub := range b.subs {
		if sub != nil {
			errs = append(errs, sub.Unsubscribe())
		}
	}
	b.subs = nil
	if err := errors.Join(errs...); err != nil {
		b.l.Warn("error unsubscribing", log.ErrorField(err))
	}
	st := b.Stats()
	b.l.Info("livefeed closed",
		log.Int("received", st.Received),
		log.Int("published", st.Published),
		log.Int("skipped", st.Skipped))
}

func (b *Bridge) Stats() Stats {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.stats
}

func (b *Bridge) handle(subject string, data []byte) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.stats.Received++

	dec, ok := b.decoders[subject]
	if !ok {
		b.stats.Skipped++
		return
	}
	s, err := dec(data)
	if err != nil {
		b.stats.Skipped++
		b.l.Warn("could not decode message",
			log.String("subject", subject), log.ErrorField(err))
		return
	}
	tracker, ok := b.trackers[subject]
	if !ok {
		tracker = &poseTracker{}
		b.trackers[subject] = tracker
	}
	pose, located := tracker.update(s)
	if !located {
		b.stats.Skipped++
		b.l.Debug("no position yet", log.String("subject", subject))
		return
	}
	res, err := b.composer.Compose(b.ctx, pose, b.params)
	if err != nil {
		b.stats.Skipped++
		b.l.Error("could not compose overlay", log.ErrorField(err))
		return
	}
	out := &model.LiveOverlay{Source: subject, OverlayResult: *res}
	payload, err := json.Marshal(out)
	if err != nil {
		b.stats.Skipped++
		b.l.Error("could not encode overlay", log.ErrorField(err))
		return
	}
	if err := b.conn.Publish(b.overlaySubject, payload); err != nil {
		b.stats.Skipped++
		b.l.Warn("could not publish overlay", log.ErrorField(err))
		return
	}
	b.stats.Published++
	if b.sink != nil {
		select {
		case b.sink <- out:
		default:
		}
	}
}
