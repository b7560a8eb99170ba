package validation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dibaisales/central/internal/domain/validation"
	"github.com/dibaisales/central/internal/infrastructure/cache"
	"github.com/dibaisales/central/internal/infrastructure/telemetry"
	"github.com/dibaisales/central/internal/infrastructure/worker"
)

// Feature is the metrics label of this use case.
const Feature = "whatsapp"

// CacheKeyPrefix namespaces cached verdicts inside the shared store.
const CacheKeyPrefix = "whatsapp:"

// ErrNoNumbers is returned when a request names no number.
var ErrNoNumbers = errors.New("Nenhum número fornecido")

// Service validates phone numbers against the messaging service, one at a
// time or as a batch fanned out over a worker pool.
type Service struct {
	checker  validation.Checker
	pool     *worker.Pool
	store    cache.Store
	cacheTTL time.Duration
	metrics  *telemetry.Metrics
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache stores definitive verdicts in store for ttl.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(s *Service) {
		s.store = store
		s.cacheTTL = ttl
	}
}

// WithMetrics records per-number outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a validation service. A nil pool checks one number at a time.
func NewService(checker validation.Checker, pool *worker.Pool, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pool == nil {
		pool = worker.New(Feature, 1)
	}
	s := &Service{
		checker: checker,
		pool:    pool,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks a single number.
func (s *Service) Validate(ctx context.Context, number string) validation.Result {
	return s.check(ctx, strings.TrimSpace(number))
}

// ValidateBatch checks every number and returns the results in input order.
func (s *Service) ValidateBatch(ctx context.Context, numbers []string) ([]validation.Result, error) {
	if len(numbers) == 0 {
		return nil, ErrNoNumbers
	}

	ctx, span := telemetry.StartSpan(ctx, "whatsapp.validate_batch", attribute.Int("numbers", len(numbers)))
	defer span.End()

	type job struct {
		index  int
		number string
	}
	jobs := make([]job, len(numbers))
	for i, n := range numbers {
		jobs[i] = job{index: i, number: strings.TrimSpace(n)}
	}

	results := worker.Run(ctx, s.pool, jobs,
		func(j job) int { return j.index },
		func(ctx context.Context, j job) (validation.Result, error) {
			return s.check(ctx, j.number), nil
		})
	byIndex := worker.ByKey(results)

	out := make([]validation.Result, len(jobs))
	counts := make(map[validation.Status]int)
	for _, j := range jobs {
		r, ok := byIndex[j.index]
		switch {
		case !ok:
			out[j.index] = validation.Unknown(j.number, errors.New("not checked"))
		case r.Err != nil:
			out[j.index] = validation.Unknown(j.number, r.Err)
		default:
			out[j.index] = r.Value
		}
		counts[out[j.index].Status]++
	}

	s.logger.Info("whatsapp batch validated",
		zap.Int("numbers", len(numbers)),
		zap.Int("valid", counts[validation.StatusValid]),
		zap.Int("invalid", counts[validation.StatusInvalid]),
		zap.Int("unknown", counts[validation.StatusUnknown]))

	return out, nil
}

func (s *Service) check(ctx context.Context, number string) validation.Result {
	if r, ok := s.cached(ctx, number); ok {
		s.metrics.RecordOutcome(ctx, Feature, "cached")
		return r
	}

	r := s.checker.Check(ctx, number)
	s.metrics.RecordOutcome(ctx, Feature, string(r.Status))
	if r.Status == validation.StatusUnknown {
		s.logger.Warn("whatsapp check inconclusive",
			zap.String("number", number),
			zap.String("sub_status", r.SubStatus))
		return r
	}
	s.remember(ctx, number, r)
	return r
}

func (s *Service) cached(ctx context.Context, number string) (validation.Result, bool) {
	if s.store == nil || number == "" {
		return validation.Result{}, false
	}
	raw, ok, err := s.store.Get(ctx, CacheKeyPrefix+number)
	if err != nil {
		s.logger.Warn("whatsapp cache read failed", zap.String("number", number), zap.Error(err))
		return validation.Result{}, false
	}
	if !ok {
		return validation.Result{}, false
	}
	var r validation.Result
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		s.logger.Warn("whatsapp cache entry corrupt", zap.String("number", number), zap.Error(err))
		return validation.Result{}, false
	}
	return r, true
}

// remember caches a verdict. Unknown results never reach it.
func (s *Service) remember(ctx context.Context, number string, r validation.Result) {
	if s.store == nil || number == "" {
		return
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, CacheKeyPrefix+number, string(raw), s.cacheTTL); err != nil {
		s.logger.Warn("whatsapp cache write failed", zap.String("number", number), zap.Error(err))
	}
}
