package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/psuracing/racingline-service-go/log"
)

// fan out pattern based on
// https://betterprogramming.pub/how-to-broadcast-messages-in-go-using-channels-b68f42bdf32e

type BroadcastServer[T any] interface {
	Subscribe() <-chan T
	CancelSubscription(<-chan T)
	Close()
}

type (
	broadcastServer[T any] struct {
		name           string
		source         <-chan T
		listeners      []chan T
		addListener    chan chan T
		removeListener chan (<-chan T)
		ctx            context.Context
		cancel         context.CancelFunc
		sendTimeout    time.Duration
		mutex          sync.Mutex
		numRcv         int64
		numSnd         int64
		numSkip        int64
		numListeners   int64
		l              *log.Logger
	}
	Option[T any] func(*broadcastServer[T])
)

// WithSendTimeout sets how long a message waits for a slow listener before
// it is skipped for that listener.
func WithSendTimeout[T any](d time.Duration) Option[T] {
	return func(b *broadcastServer[T]) {
		b.sendTimeout = d
	}
}

func WithLogger[T any](l *log.Logger) Option[T] {
	return func(b *broadcastServer[T]) {
		b.l = l
	}
}

// NewBroadcastServer distributes every message of source to all current
// subscribers. The server stops when source is closed or Close is called.
func NewBroadcastServer[T any](name string, source <-chan T, opts ...Option[T]) BroadcastServer[T] {
	ctx, cancel := context.WithCancel(context.Background())
	b := &broadcastServer[T]{
		name:           name,
		source:         source,
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
		sendTimeout:    50 * time.Millisecond,
		l:              log.Default().Named("broadcast"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.setupMetrics()
	go b.serve()
	return b
}

// Subscribe returns a channel receiving all messages from now on.
// The channel is closed when the server stops.
func (b *broadcastServer[T]) Subscribe() <-chan T {
	ch := make(chan T)
	select {
	case b.addListener <- ch:
	case <-b.ctx.Done():
		close(ch)
	}
	return ch
}

func (b *broadcastServer[T]) CancelSubscription(ch <-chan T) {
	select {
	case b.removeListener <- ch:
	case <-b.ctx.Done():
	}
}

func (b *broadcastServer[T]) Close() {
	b.mutex.Lock()
	b.l.Info("Closing broadcast server",
		log.String("name", b.name),
		log.Int64("rcv", b.numRcv),
		log.Int64("snd", b.numSnd),
		log.Int64("skip", b.numSkip))
	b.mutex.Unlock()
	b.cancel()
}

func (b *broadcastServer[T]) setupMetrics() {
	meter := otel.GetMeterProvider().Meter(fmt.Sprintf("rls.broadcast.%s", b.name))
	register := func(metricName, desc string, value *int64) {
		if _, err := meter.Int64ObservableGauge(
			metricName,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				b.mutex.Lock()
				defer b.mutex.Unlock()
				o.Observe(*value, metric.WithAttributes(attribute.String("name", b.name)))
				return nil
			})); err != nil {
			b.l.Error("failed to register metric",
				log.String("metric", metricName),
				log.ErrorField(err))
		}
	}
	register("rls.broadcast.rcv", "Number of received messages", &b.numRcv)
	register("rls.broadcast.snd", "Number of sent messages", &b.numSnd)
	register("rls.broadcast.skip", "Number of skipped messages", &b.numSkip)
	register("rls.broadcast.listener", "Number of listeners", &b.numListeners)
}

func (b *broadcastServer[T]) serve() {
	defer func() {
		b.l.Debug("Closing listeners", log.String("name", b.name))
		b.mutex.Lock()
		defer b.mutex.Unlock()
		for _, listener := range b.listeners {
			close(listener)
		}
		b.listeners = nil
		b.numListeners = 0
		b.cancel()
	}()
	for {
		select {
		case <-b.ctx.Done():
			return
		case ch := <-b.addListener:
			b.mutex.Lock()
			b.listeners = append(b.listeners, ch)
			b.numListeners = int64(len(b.listeners))
			b.mutex.Unlock()
		case ch := <-b.removeListener:
			b.remove(ch)
		case msg, ok := <-b.source:
			if !ok {
				b.l.Debug("source closed", log.String("name", b.name))
				return
			}
			b.send(msg)
		}
	}
}

func (b *broadcastServer[T]) remove(ch <-chan T) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(listener)
			break
		}
	}
	b.numListeners = int64(len(b.listeners))
	b.l.Debug("removed listener",
		log.String("name", b.name), log.Int("len", len(b.listeners)))
}

func (b *broadcastServer[T]) send(msg T) {
	b.mutex.Lock()
	listeners := append([]chan T(nil), b.listeners...)
	b.numRcv++
	b.mutex.Unlock()

	var snd, skip int64
	for _, listener := range listeners {
		select {
		case listener <- msg:
			snd++
		case <-time.After(b.sendTimeout):
			skip++
		}
	}
	b.mutex.Lock()
	b.numSnd += snd
	b.numSkip += skip
	b.mutex.Unlock()
}
