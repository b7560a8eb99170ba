package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Pool bounds how many tasks of one batch call external services at once.
// A Pool is stateless between batches and may be shared.
type Pool struct {
	name        string
	concurrency int
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithRate paces task starts to perSecond with the given burst. Zero disables pacing.
func WithRate(perSecond float64, burst int) Option {
	return func(p *Pool) {
		if perSecond <= 0 {
			p.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger used for task failures.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) {
		p.logger = l
	}
}

// New creates a pool running at most concurrency tasks at a time.
func New(name string, concurrency int, opts ...Option) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	p := &Pool{
		name:        name,
		concurrency: concurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Concurrency returns the ceiling of simultaneous tasks.
func (p *Pool) Concurrency() int {
	return p.concurrency
}

// Result is the outcome of one task, identified by the caller's key.
type Result[K comparable, V any] struct {
	Key      K
	Value    V
	Err      error
	Duration time.Duration
}

// Run executes fn for every item with bounded concurrency. A failing task
// never cancels its siblings: its error is returned in its Result. Results
// arrive in completion order and must be matched to inputs by Key. When ctx
// is cancelled, tasks that have not started report ctx.Err().
func Run[K comparable, T any, V any](ctx context.Context, p *Pool, items []T, key func(T) K, fn func(context.Context, T) (V, error)) []Result[K, V] {
	var (
		mu      sync.Mutex
		results = make([]Result[K, V], 0, len(items))
	)
	record := func(r Result[K, V]) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for _, item := range items {
		item := item
		k := key(item)
		g.Go(func() error {
			if err := p.wait(ctx); err != nil {
				record(Result[K, V]{Key: k, Err: err})
				return nil
			}
			start := time.Now()
			v, err := safeCall(ctx, item, fn)
			if err != nil {
				p.logger.Warn("task failed",
					zap.String("pool", p.name),
					zap.Any("key", k),
					zap.Error(err),
				)
			}
			record(Result[K, V]{Key: k, Value: v, Err: err, Duration: time.Since(start)})
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ByKey indexes results by key.
func ByKey[K comparable, V any](results []Result[K, V]) map[K]Result[K, V] {
	m := make(map[K]Result[K, V], len(results))
	for _, r := range results {
		m[r.Key] = r
	}
	return m
}

func (p *Pool) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

func safeCall[T any, V any](ctx context.Context, item T, fn func(context.Context, T) (V, error)) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn(ctx, item)
}
