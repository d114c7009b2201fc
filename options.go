package contractsearch

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Engine.
type Option func(*engineConfig)

type engineConfig struct {
	addrs    []string
	password string

	recordsURL     string
	recordsTimeout time.Duration
	pageSize       int

	debounce       time.Duration
	snapshotTTL    time.Duration
	fuzzyThreshold float64
	exactWeight    int
	partialWeight  int
	fuzzyWeight    int

	historyLimit    int
	suggestionLimit int

	logger *zap.Logger
}

// WithRedis configures a Redis connection for history persistence and
// saved searches. Without it both live in process memory only.
func WithRedis(addr, password string) Option {
	return func(c *engineConfig) {
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithRecordsURL points the engine at a remote contract source instead of
// a static record set.
func WithRecordsURL(url string) Option {
	return func(c *engineConfig) {
		c.recordsURL = url
	}
}

// WithRecordsTimeout bounds one source fetch. Default: 10s.
func WithRecordsTimeout(d time.Duration) Option {
	return func(c *engineConfig) {
		c.recordsTimeout = d
	}
}

// WithPageSize sets how many records one source fetch requests.
// Default: 1000.
func WithPageSize(n int) Option {
	return func(c *engineConfig) {
		c.pageSize = n
	}
}

// WithDebounce sets the typing pause before a live query fires.
// Default: 280ms.
func WithDebounce(d time.Duration) Option {
	return func(c *engineConfig) {
		c.debounce = d
	}
}

// WithSnapshotTTL bounds how stale the cached index may grow before the
// next query triggers a rebuild. Default: 5m.
func WithSnapshotTTL(d time.Duration) Option {
	return func(c *engineConfig) {
		c.snapshotTTL = d
	}
}

// WithFuzzyThreshold sets the minimum edit-distance similarity for the
// fuzzy tier, in (0, 1]. Default: 0.75.
func WithFuzzyThreshold(threshold float64) Option {
	return func(c *engineConfig) {
		c.fuzzyThreshold = threshold
	}
}

// WithWeights sets the per-tier relevance increments.
// Defaults: exact 10, partial 6, fuzzy 2.
func WithWeights(exact, partial, fuzzy int) Option {
	return func(c *engineConfig) {
		c.exactWeight = exact
		c.partialWeight = partial
		c.fuzzyWeight = fuzzy
	}
}

// WithHistoryLimit caps the recent-query list. Default: 10.
func WithHistoryLimit(n int) Option {
	return func(c *engineConfig) {
		c.historyLimit = n
	}
}

// WithSuggestionLimit caps one suggestion reply. Default: 10.
func WithSuggestionLimit(n int) Option {
	return func(c *engineConfig) {
		c.suggestionLimit = n
	}
}

// WithLogger enables structured logging for engine operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = l
	}
}
