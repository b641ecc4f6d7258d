package profiles

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultLookupConcurrency bounds parallel user directory lookups per search.
const DefaultLookupConcurrency = 8

// MaxMergeAttempts bounds the read-modify-write retries Merge performs when a
// concurrent merge for the same user wins the compare-and-set.
const MaxMergeAttempts = 5

// ResultCache caches search results keyed by the normalized query. Invalidate
// is called after every successful merge.
//
// Get reports the generation it read, hit or miss. Put must store under that
// generation, so results scanned before a concurrent Invalidate are never
// reachable afterwards.
type ResultCache interface {
	Get(ctx context.Context, query []string) (matches []CandidateMatch, gen int64, ok bool, err error)
	Put(ctx context.Context, gen int64, query []string, matches []CandidateMatch) error
	Invalidate(ctx context.Context) error
}

// Recorder receives merge and search outcomes for metrics.
type Recorder interface {
	ObserveMerge(outcome string, elapsed time.Duration)
	ObserveSearch(outcome string, results int, elapsed time.Duration)
}

// Outcome labels passed to Recorder.
const (
	OutcomeCreated    = "created"
	OutcomeUpdated    = "updated"
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeStorageErr = "storage_error"
)

// Service runs the merge and search operations against a Store.
type Service struct {
	store             Store
	directory         UserDirectory
	cache             ResultCache
	recorder          Recorder
	logger            *zap.Logger
	now               func() time.Time
	lookupConcurrency int

	// cacheStale is set when an invalidation failed; the cache is bypassed
	// until a later Invalidate succeeds.
	cacheStale atomic.Bool
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables search result caching.
func WithCache(c ResultCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithRecorder reports outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLookupConcurrency sets how many directory lookups a search runs at once.
func WithLookupConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.lookupConcurrency = n
		}
	}
}

// NewService creates a Service over store, resolving names through directory.
func NewService(store Store, directory UserDirectory, opts ...Option) *Service {
	s := &Service{
		store:             store,
		directory:         directory,
		logger:            zap.NewNop(),
		now:               time.Now,
		lookupConcurrency: DefaultLookupConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) observeMerge(outcome string, start time.Time) {
	if s.recorder != nil {
		s.recorder.ObserveMerge(outcome, s.now().Sub(start))
	}
}

func (s *Service) observeSearch(outcome string, results int, start time.Time) {
	if s.recorder != nil {
		s.recorder.ObserveSearch(outcome, results, s.now().Sub(start))
	}
}
