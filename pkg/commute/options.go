package commute

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/catdiagram/pkg/observability"
)

const (
	// DefaultMaxExpansions bounds the search nodes expanded across all axioms.
	DefaultMaxExpansions = 1_000_000

	// DefaultTimeout bounds the wall-clock time of a check.
	DefaultTimeout = 10 * time.Second
)

// Option configures a call to [Check].
type Option func(*config)

type config struct {
	maxExpansions int64
	timeout       time.Duration
	maxCandidates int
	pathLen       int
	workers       int
	logger        *log.Logger
	hooks         observability.SearchHooks
}

func newConfig(opts []Option) *config {
	cfg := &config{
		maxExpansions: DefaultMaxExpansions,
		timeout:       DefaultTimeout,
		workers:       runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.maxExpansions <= 0 {
		cfg.maxExpansions = DefaultMaxExpansions
	}
	if cfg.workers <= 0 {
		cfg.workers = 1
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	if cfg.hooks == nil {
		cfg.hooks = observability.NoopSearchHooks{}
	}
	return cfg
}

// WithMaxExpansions bounds the number of search nodes expanded across all
// axioms. Values below one select [DefaultMaxExpansions].
func WithMaxExpansions(n int64) Option {
	return func(c *config) { c.maxExpansions = n }
}

// WithTimeout bounds the wall-clock duration of the search. Zero disables
// the timeout; the context passed to [Check] still applies.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithMaxCandidates limits how many target morphisms are tried for each
// axiom morphism at each search node. Zero means no limit.
func WithMaxCandidates(k int) Option {
	return func(c *config) { c.maxCandidates = k }
}

// WithPaths lets an atomic axiom morphism map to a path of 2 to maxLen
// atomic target morphisms. Paths the target does not contain as morphisms
// are derived images: they are structurally valid but cover nothing.
//
// Every atom is offered paths, whether or not its endpoints are already
// mapped. Path enumeration grows exponentially with maxLen and the target's
// density; each morphism it examines is charged to the expansion budget and
// the timeout is polled while it runs.
func WithPaths(maxLen int) Option {
	return func(c *config) { c.pathLen = maxLen }
}

// WithWorkers sets how many axioms are searched concurrently. The default
// is GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithLogger traces the search at debug level.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithHooks receives per-axiom search events.
func WithHooks(h observability.SearchHooks) Option {
	return func(c *config) { c.hooks = h }
}
