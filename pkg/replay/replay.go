// Package replay publishes recorded telemetry as if it came from the car.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/model"
)

const (
	DefaultSubject  = "car.telemetry"
	DefaultInterval = 100 * time.Millisecond
	HeaderReplayID  = "Replay-Id"
	progressEvery   = 100
)

// Publisher is the part of *nats.Conn used for the replay.
type Publisher interface {
	PublishMsg(m *nats.Msg) error
}

// Source yields packets until it returns io.EOF.
type Source interface {
	Next() (*model.TelemetryPacket, error)
}

type (
	Replayer struct {
		pub         Publisher
		subject     string
		interval    time.Duration
		speed       int
		fastForward time.Duration
		replayID    string
		l           *log.Logger
	}
	Option func(*Replayer)
)

func WithSubject(subj string) Option {
	return func(r *Replayer) {
		r.subject = subj
	}
}

// WithInterval sets the time between two recorded packets.
func WithInterval(d time.Duration) Option {
	return func(r *Replayer) {
		r.interval = d
	}
}

// WithSpeed sets the playback speed multiplier. 0 means as fast as possible.
func WithSpeed(speed int) Option {
	return func(r *Replayer) {
		r.speed = speed
	}
}

// WithFastForward sends the first d of the recording without delay.
func WithFastForward(d time.Duration) Option {
	return func(r *Replayer) {
		r.fastForward = d
	}
}

func WithReplayID(id string) Option {
	return func(r *Replayer) {
		r.replayID = id
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Replayer) {
		r.l = l
	}
}

func NewReplayer(pub Publisher, opts ...Option) *Replayer {
	ret := &Replayer{
		pub:      pub,
		subject:  DefaultSubject,
		interval: DefaultInterval,
		speed:    1,
		replayID: uuid.NewString(),
		l:        log.Default().Named("replay"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (r *Replayer) ReplayID() string {
	return r.replayID
}

// delay returns the pause after packet n (zero based).
func (r *Replayer) delay(n int) time.Duration {
	if r.speed <= 0 {
		return 0
	}
	if time.Duration(n+1)*r.interval <= r.fastForward {
		return 0
	}
	return r.interval / time.Duration(r.speed)
}

// Run publishes all packets of src. It returns the number of published
// packets. Cancelling ctx stops the replay without error.
func (r *Replayer) Run(ctx context.Context, src Source) (int, error) {
	start := time.Now()
	r.l.Info("Starting replay",
		log.String("subject", r.subject),
		log.String("replayId", r.replayID),
		log.Int("speed", r.speed))

	n := 0
	for {
		p, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}
		if err := r.publish(p); err != nil {
			return n, err
		}
		if n%progressEvery == 0 {
			r.l.Info("progress",
				log.Int("packets", n),
				log.Float64("speed", p.Speed),
				log.Float64("lat", p.Latitude),
				log.Float64("lon", p.Longitude),
				log.Duration("elapsed", time.Since(start)))
		}
		n++

		if d := r.delay(n - 1); d > 0 {
			select {
			case <-ctx.Done():
				r.l.Info("Replay interrupted", log.Int("packets", n))
				return n, nil
			case <-time.After(d):
			}
		} else if ctx.Err() != nil {
			r.l.Info("Replay interrupted", log.Int("packets", n))
			return n, nil
		}
	}
	r.l.Info("Replay complete",
		log.Int("packets", n),
		log.Duration("duration", time.Since(start)))
	return n, nil
}

func (r *Replayer) publish(p *model.TelemetryPacket) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(r.subject)
	msg.Header.Set(HeaderReplayID, r.replayID)
	msg.Data = data
	return r.pub.PublishMsg(msg)
}
