package live

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atrium-labs/contractsearch/internal/domain"
	"github.com/atrium-labs/contractsearch/internal/domain/search/filter"
	"github.com/atrium-labs/contractsearch/internal/domain/search/request"
	"github.com/atrium-labs/contractsearch/internal/domain/search/result"
	"github.com/atrium-labs/contractsearch/internal/domain/search/sortkey"
	"github.com/atrium-labs/contractsearch/internal/index"
	"github.com/atrium-labs/contractsearch/internal/metrics"
	"github.com/atrium-labs/contractsearch/internal/repository/saved"
	"github.com/atrium-labs/contractsearch/internal/usecase/analytics"
	"github.com/atrium-labs/contractsearch/internal/usecase/search"
)

// State is the controller's lifecycle phase as seen by consumers.
type State string

const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateQuerying   State = "querying"
	StateDisplaying State = "displaying"
	StateEmpty      State = "empty"
	StateError      State = "error"
)

const (
	// DefaultDebounce is how long typing must pause before a query fires.
	DefaultDebounce = 280 * time.Millisecond
	// DefaultSnapshotTTL bounds how stale the cached index may grow.
	DefaultSnapshotTTL = 5 * time.Minute
	// DefaultHistoryLimit caps the recent-query list.
	DefaultHistoryLimit = 10
	// DefaultSuggestionLimit caps one suggestion reply.
	DefaultSuggestionLimit = 10
)

// Config tunes the live controller.
type Config struct {
	Debounce        time.Duration
	SnapshotTTL     time.Duration
	HistoryLimit    int
	SuggestionLimit int
	PageSize        int
}

// ApplyDefaults fills zero fields with the standard tuning.
func (c *Config) ApplyDefaults() {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.SnapshotTTL <= 0 {
		c.SnapshotTTL = DefaultSnapshotTTL
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.SuggestionLimit <= 0 {
		c.SuggestionLimit = DefaultSuggestionLimit
	}
	if c.PageSize <= 0 {
		c.PageSize = 1000
	}
}

// Controller drives the live search session: it debounces keystrokes,
// runs queries against a cached index snapshot, keeps the recent-query
// history, and discards stale replies so only the latest keystroke's
// results ever display.
type Controller struct {
	cfg    Config
	source SnapshotSource
	engine Searcher
	hist   HistoryStore
	savedS SavedSearches
	stats  StatsSource
	export Exporter
	logger *zap.Logger

	mu         sync.Mutex
	state      State
	query      string
	filters    filter.Filters
	sortBy     sortkey.Key
	direction  sortkey.Direction
	limit      int
	generation uint64
	timer      *time.Timer
	results    []result.Result
	total      int
	searchTime time.Duration
	lastErr    error
	history    []string

	// fetchMu serializes snapshot rebuilds; mu is never held across a fetch.
	fetchMu sync.Mutex
	snap    *index.Snapshot
	snapAt  time.Time
}

// New creates a live controller. hist, savedS, stats, and export may be
// nil; the matching features then simply do nothing.
func New(
	cfg Config,
	source SnapshotSource,
	engine Searcher,
	hist HistoryStore,
	savedS SavedSearches,
	stats StatsSource,
	export Exporter,
	logger *zap.Logger,
) *Controller {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		cfg:       cfg,
		source:    source,
		engine:    engine,
		hist:      hist,
		savedS:    savedS,
		stats:     stats,
		export:    export,
		logger:    logger,
		state:     StateIdle,
		sortBy:    sortkey.Relevance,
		direction: sortkey.Desc,
	}
}

// Start loads persisted history and warms the index snapshot. Either step
// failing is logged and degraded, not fatal: search works without history,
// and the first query will retry the fetch.
func (c *Controller) Start(ctx context.Context) {
	if c.hist != nil {
		entries, err := c.hist.Load(ctx)
		if err != nil {
			c.logger.Warn("history load failed", zap.Error(err))
		} else {
			c.mu.Lock()
			c.history = entries
			c.mu.Unlock()
		}
	}
	if _, err := c.snapshot(ctx, false); err != nil {
		c.logger.Warn("initial snapshot fetch failed", zap.Error(err))
	}
}

// Close cancels any pending debounce timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.generation++
}

// SetQuery registers a keystroke. The query fires after the debounce
// interval elapses without another keystroke; clearing the query cancels
// any pending or in-flight work and returns the controller to idle.
func (c *Controller) SetQuery(ctx context.Context, query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.query = query
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if strings.TrimSpace(query) == "" {
		c.state = StateIdle
		c.results = nil
		c.total = 0
		c.searchTime = 0
		c.lastErr = nil
		return
	}

	gen := c.generation
	c.state = StateDebouncing
	c.timer = time.AfterFunc(c.cfg.Debounce, func() {
		c.run(ctx, gen)
	})
}

// SetFilters patches the active filters and, when a query is live,
// re-executes it immediately. Filter changes are deliberate clicks, not
// keystrokes, so they skip the debounce.
func (c *Controller) SetFilters(ctx context.Context, p filter.Patch) {
	c.mu.Lock()
	c.filters = c.filters.Apply(p)
	c.rerunLocked(ctx)
}

// ReplaceFilters swaps the whole filter set and re-executes a live query.
func (c *Controller) ReplaceFilters(ctx context.Context, f filter.Filters) {
	c.mu.Lock()
	c.filters = f
	c.rerunLocked(ctx)
}

// ResetFilters clears all filters, keeping the query.
func (c *Controller) ResetFilters(ctx context.Context) {
	c.mu.Lock()
	c.filters = filter.Filters{}
	c.rerunLocked(ctx)
}

// SetSort changes the result ordering and re-executes a live query.
func (c *Controller) SetSort(ctx context.Context, key sortkey.Key, dir sortkey.Direction) {
	c.mu.Lock()
	c.sortBy = key
	c.direction = dir
	c.rerunLocked(ctx)
}

// rerunLocked re-fires the current query without debounce.
// The caller must hold mu; it is released here.
func (c *Controller) rerunLocked(ctx context.Context) {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if strings.TrimSpace(c.query) == "" {
		c.mu.Unlock()
		return
	}
	gen := c.generation
	c.state = StateQuerying
	c.mu.Unlock()
	c.run(ctx, gen)
}

// run executes one generation of the live query. Replies for a stale
// generation are discarded wholesale: a later keystroke always wins,
// regardless of which reply lands first.
func (c *Controller) run(ctx context.Context, gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.state = StateQuerying
	req := request.New(c.query, c.filters, c.sortBy, c.direction, c.limit)
	c.mu.Unlock()

	snap, err := c.snapshot(ctx, false)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.generation {
			return
		}
		c.state = StateError
		c.lastErr = err
		c.results = nil
		c.total = 0
		return
	}

	resp := c.engine.Search(snap, &req)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.results = resp.Results
	c.total = resp.TotalResults
	c.searchTime = resp.SearchTime
	c.lastErr = nil
	if resp.TotalResults > 0 {
		c.state = StateDisplaying
	} else {
		c.state = StateEmpty
	}
	c.pushHistoryLocked(req.Query())
	entries := append([]string(nil), c.history...)
	c.mu.Unlock()

	c.persistHistory(ctx, entries)
}

// Search runs a one-shot query synchronously, bypassing the debounce.
// It shares the cached snapshot and records history like the live path.
func (c *Controller) Search(ctx context.Context, req request.Request) (search.Response, error) {
	snap, err := c.snapshot(ctx, false)
	if err != nil {
		return search.Response{}, err
	}
	resp := c.engine.Search(snap, &req)

	if req.Query() != "" {
		c.mu.Lock()
		c.pushHistoryLocked(req.Query())
		entries := append([]string(nil), c.history...)
		c.mu.Unlock()
		c.persistHistory(ctx, entries)
	}
	return resp, nil
}

// Reindex forces a snapshot rebuild regardless of TTL.
func (c *Controller) Reindex(ctx context.Context) error {
	_, err := c.snapshot(ctx, true)
	return err
}

// snapshot returns the cached index, rebuilding it from the source when
// missing, expired, or forced.
func (c *Controller) snapshot(ctx context.Context, force bool) (*index.Snapshot, error) {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	if !force && c.snap != nil && time.Since(c.snapAt) < c.cfg.SnapshotTTL {
		return c.snap, nil
	}

	records, err := c.source.FetchAll(ctx, c.cfg.PageSize)
	if err != nil {
		// A stale snapshot beats no snapshot.
		if c.snap != nil {
			c.logger.Warn("snapshot refresh failed, serving stale index", zap.Error(err))
			return c.snap, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSnapshotUnavailable, err)
	}

	snap := index.Build(records)
	c.snap = snap
	c.snapAt = time.Now()
	metrics.IndexRebuildsTotal.Inc()
	metrics.IndexedContracts.Set(float64(snap.Len()))
	c.logger.Info("index rebuilt",
		zap.Int("contracts", snap.Len()),
		zap.Int("terms", len(snap.Tokens())),
	)
	return snap, nil
}

// pushHistoryLocked records an executed query, most recent first, with
// exact-duplicate promotion and a hard cap. The caller must hold mu.
func (c *Controller) pushHistoryLocked(query string) {
	entries := make([]string, 0, len(c.history)+1)
	entries = append(entries, query)
	for _, e := range c.history {
		if e != query {
			entries = append(entries, e)
		}
	}
	if len(entries) > c.cfg.HistoryLimit {
		entries = entries[:c.cfg.HistoryLimit]
	}
	c.history = entries
}

func (c *Controller) persistHistory(ctx context.Context, entries []string) {
	if c.hist == nil {
		return
	}
	if err := c.hist.Save(ctx, entries); err != nil {
		c.logger.Warn("history save failed", zap.Error(err))
	}
}

// Results returns the current result page.
func (c *Controller) Results() []result.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// TotalResults returns the pre-truncation match count of the last query.
func (c *Controller) TotalResults() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// SearchTime returns the last query's execution time.
func (c *Controller) SearchTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchTime
}

// State returns the controller's current phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsLoading reports whether a query is pending or in flight.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateDebouncing || c.state == StateQuerying
}

// Err returns the last query error, nil outside the error state.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Query returns the current query text.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Filters returns the active filter set.
func (c *Controller) Filters() filter.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// History returns the recent-query list, most recent first.
func (c *Controller) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.history...)
}

// SaveSearch persists the current query under the given name.
func (c *Controller) SaveSearch(ctx context.Context, name string) (saved.Search, error) {
	if c.savedS == nil {
		return saved.Search{}, domain.ErrNotFound
	}
	c.mu.Lock()
	query := c.query
	c.mu.Unlock()
	return c.savedS.Save(ctx, name, query)
}

// ExportResults serializes the current result page in the given format.
func (c *Controller) ExportResults(format string) ([]byte, error) {
	if c.export == nil {
		return nil, domain.ErrUnsupportedFormat
	}
	c.mu.Lock()
	results := append([]result.Result(nil), c.results...)
	c.mu.Unlock()
	return c.export.Export(format, results)
}

// Analytics returns aggregate search statistics.
func (c *Controller) Analytics() analytics.Stats {
	if c.stats == nil {
		return analytics.Stats{}
	}
	return c.stats.Snapshot()
}
