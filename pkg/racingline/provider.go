package racingline

import (
	"context"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/model"
	"github.com/psuracing/racingline-service-go/pkg/utils/cache"
	"github.com/psuracing/racingline-service-go/pkg/utils/cache/loadercache"
)

// Provider hands out the current track snapshot.
// Snapshots are immutable, callers must not modify them.
type Provider interface {
	Track(ctx context.Context) (*model.Track, error)
	// Invalidate drops the current snapshot, the next call to Track reloads.
	Invalidate(ctx context.Context)
}

type (
	FileProvider struct {
		path  string
		cache cache.Cache[string, model.Track]
		l     *log.Logger
	}
	Option func(*FileProvider)
)

func WithLogger(l *log.Logger) Option {
	return func(p *FileProvider) {
		p.l = l
	}
}

// NewFileProvider creates a provider backed by the document at path.
// The document is read on first use only. Concurrent first callers wait for
// a single load and share its result.
func NewFileProvider(path string, opts ...Option) *FileProvider {
	ret := &FileProvider{
		path: path,
		l:    log.Default().Named("racingline"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.cache = loadercache.New[string, model.Track](
		loadercache.WithLoader[string, model.Track](func(_ context.Context, p string) (*model.Track, error) {
			return Load(p, ret.l), nil
		}),
		loadercache.WithExpiration[string, model.Track](0),
		loadercache.WithLogger[string, model.Track](ret.l.Named("cache")),
	)
	return ret
}

func (p *FileProvider) Path() string {
	return p.path
}

func (p *FileProvider) Track(ctx context.Context) (*model.Track, error) {
	return p.cache.Get(ctx, p.path)
}

func (p *FileProvider) Invalidate(ctx context.Context) {
	p.cache.Invalidate(ctx, p.path)
}

type staticProvider struct {
	track *model.Track
}

// Static returns a provider which always yields track.
func Static(track *model.Track) Provider {
	return staticProvider{track: track}
}

func (s staticProvider) Track(context.Context) (*model.Track, error) {
	return s.track, nil
}

func (s staticProvider) Invalidate(context.Context) {}
