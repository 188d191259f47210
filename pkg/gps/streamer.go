package gps

import (
	"context"
	"encoding/json"
	"time"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/gpsstate"
)

const (
	DefaultSubject  = "car.pi_gps"
	DefaultInterval = 500 * time.Millisecond
)

type Publisher interface {
	Publish(subj string, data []byte) error
}

type (
	Streamer struct {
		pub      Publisher
		state    *gpsstate.State
		subject  string
		interval time.Duration
		sent     int
		l        *log.Logger
	}
	StreamerOption func(*Streamer)
)

func WithSubject(subj string) StreamerOption {
	return func(s *Streamer) {
		s.subject = subj
	}
}

func WithInterval(d time.Duration) StreamerOption {
	return func(s *Streamer) {
		s.interval = d
	}
}

func WithLogger(l *log.Logger) StreamerOption {
	return func(s *Streamer) {
		s.l = l
	}
}

func NewStreamer(pub Publisher, st *gpsstate.State, opts ...StreamerOption) *Streamer {
	ret := &Streamer{
		pub:      pub,
		state:    st,
		subject:  DefaultSubject,
		interval: DefaultInterval,
		l:        log.Default().Named("gps"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Run publishes a snapshot of the state every interval until ctx is done.
func (s *Streamer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.l.Info("gps streamer stopped", log.Int("sent", s.sent))
			return
		case <-ticker.C:
			s.publish()
		}
	}
}

func (s *Streamer) publish() {
	data, err := json.Marshal(s.state.Snapshot())
	if err != nil {
		s.l.Error("could not encode gps state", log.ErrorField(err))
		return
	}
	if err := s.pub.Publish(s.subject, data); err != nil {
		s.l.Warn("could not publish gps state", log.ErrorField(err))
		return
	}
	s.sent++
}
