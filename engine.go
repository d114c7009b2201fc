package contractsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/atrium-labs/contractsearch/internal/db"
	dbRedis "github.com/atrium-labs/contractsearch/internal/db/redis"
	"github.com/atrium-labs/contractsearch/internal/domain"
	"github.com/atrium-labs/contractsearch/internal/domain/search/request"
	historyrepo "github.com/atrium-labs/contractsearch/internal/repository/history"
	recordsrepo "github.com/atrium-labs/contractsearch/internal/repository/records"
	savedrepo "github.com/atrium-labs/contractsearch/internal/repository/saved"
	analyticsuc "github.com/atrium-labs/contractsearch/internal/usecase/analytics"
	exportuc "github.com/atrium-labs/contractsearch/internal/usecase/export"
	liveuc "github.com/atrium-labs/contractsearch/internal/usecase/live"
	searchuc "github.com/atrium-labs/contractsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Source supplies the contract set the index is built from.
type Source interface {
	FetchAll(ctx context.Context, pageSize int) ([]Contract, error)
}

// Engine is the contractsearch SDK entry point: a live full-text search
// session over a contract set.
type Engine struct {
	store      db.Store
	controller *liveuc.Controller
	savedStore *savedrepo.Store
	analytics  *analyticsuc.Service
}

// New creates an Engine over the given source and starts its live
// controller. Pass a StaticSource for an in-process contract set, or use
// WithRecordsURL to fetch from a remote service instead.
func New(source Source, opts ...Option) (*Engine, error) {
	cfg := &engineConfig{}
	for _, o := range opts {
		o(cfg)
	}
	logger := cfg.logger

	var internalSource liveuc.SnapshotSource
	switch {
	case cfg.recordsURL != "":
		internalSource = recordsrepo.New(cfg.recordsURL, cfg.recordsTimeout, logger)
	case source != nil:
		internalSource = &sourceAdapter{inner: source}
	default:
		return nil, fmt.Errorf("contractsearch: a source is required (pass one or use WithRecordsURL)")
	}

	var store db.Store
	var savedStore *savedrepo.Store
	var histStore liveuc.HistoryStore = historyrepo.NewMemory()
	if len(cfg.addrs) > 0 {
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("contractsearch: create redis store: %w", err)
		}
		ctx := context.Background()
		if err := redisStore.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			redisStore.Close()
			return nil, fmt.Errorf("contractsearch: database not ready: %w", err)
		}
		store = redisStore
		histStore = historyrepo.New(store, "")
		savedStore = savedrepo.New(store)
	}

	analyticsSvc := analyticsuc.New()
	engine := searchuc.New(searchuc.Config{
		FuzzyThreshold: cfg.fuzzyThreshold,
		Weights: searchuc.Weights{
			Exact:   cfg.exactWeight,
			Partial: cfg.partialWeight,
			Fuzzy:   cfg.fuzzyWeight,
		},
	}, analyticsSvc)

	var savedLive liveuc.SavedSearches
	if savedStore != nil {
		savedLive = savedStore
	}

	controller := liveuc.New(
		liveuc.Config{
			Debounce:        cfg.debounce,
			SnapshotTTL:     cfg.snapshotTTL,
			HistoryLimit:    cfg.historyLimit,
			SuggestionLimit: cfg.suggestionLimit,
			PageSize:        cfg.pageSize,
		},
		internalSource, engine, histStore, savedLive, analyticsSvc, exportuc.New(), logger,
	)
	controller.Start(context.Background())

	return &Engine{
		store:      store,
		controller: controller,
		savedStore: savedStore,
		analytics:  analyticsSvc,
	}, nil
}

// Close releases all resources.
func (e *Engine) Close() {
	e.controller.Close()
	if e.store != nil {
		e.store.Close()
	}
}

// SetQuery registers a keystroke; the query fires once typing pauses.
func (e *Engine) SetQuery(ctx context.Context, query string) {
	e.controller.SetQuery(ctx, query)
}

// SetFilters replaces the active filters and re-runs a live query.
func (e *Engine) SetFilters(ctx context.Context, f Filters) {
	e.controller.ReplaceFilters(ctx, toDomainFilters(f))
}

// ResetFilters clears all filters, keeping the query.
func (e *Engine) ResetFilters(ctx context.Context) {
	e.controller.ResetFilters(ctx)
}

// SetSort changes the result ordering and re-runs a live query.
func (e *Engine) SetSort(ctx context.Context, key SortKey, dir Direction) {
	e.controller.SetSort(ctx, toSortKey(key), toDirection(dir))
}

// Results returns the current ranked result page.
func (e *Engine) Results() []Result {
	return fromResults(e.controller.Results())
}

// TotalResults returns the pre-truncation match count of the last query.
func (e *Engine) TotalResults() int { return e.controller.TotalResults() }

// SearchTime returns the last query's execution time.
func (e *Engine) SearchTime() time.Duration { return e.controller.SearchTime() }

// IsLoading reports whether a query is pending or in flight.
func (e *Engine) IsLoading() bool { return e.controller.IsLoading() }

// Err returns the last query error, if the session is in an error state.
func (e *Engine) Err() error { return e.controller.Err() }

// Suggestions proposes query completions for a prefix.
func (e *Engine) Suggestions(prefix string) []string {
	return e.controller.Suggestions(prefix)
}

// History returns the recent-query list, most recent first.
func (e *Engine) History() []string { return e.controller.History() }

// Search runs a one-shot query synchronously, bypassing the debounce.
func (e *Engine) Search(
	ctx context.Context, query string, f Filters,
	sortBy SortKey, dir Direction, limit int,
) ([]Result, int, error) {
	req := request.New(query, toDomainFilters(f), toSortKey(sortBy), toDirection(dir), limit)
	resp, err := e.controller.Search(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}
	return fromResults(resp.Results), resp.TotalResults, nil
}

// SaveSearch persists the current query under a name.
// Requires WithRedis; returns ErrNotFound otherwise.
func (e *Engine) SaveSearch(ctx context.Context, name string) (SavedSearch, error) {
	entry, err := e.controller.SaveSearch(ctx, name)
	if err != nil {
		return SavedSearch{}, fmt.Errorf("save search: %w", err)
	}
	return fromSaved(entry), nil
}

// SavedSearches lists persisted queries, newest first.
func (e *Engine) SavedSearches(ctx context.Context) ([]SavedSearch, error) {
	if e.savedStore == nil {
		return nil, fmt.Errorf("saved searches: %w", domain.ErrNotFound)
	}
	entries, err := e.savedStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("saved searches: %w", err)
	}
	out := make([]SavedSearch, len(entries))
	for i, s := range entries {
		out[i] = fromSaved(s)
	}
	return out, nil
}

// ExportResults serializes the current result page as "csv" or "json".
func (e *Engine) ExportResults(format string) ([]byte, error) {
	return e.controller.ExportResults(format)
}

// Analytics returns aggregate search statistics.
func (e *Engine) Analytics() Stats {
	return fromStats(e.controller.Analytics())
}

// Reindex forces a snapshot rebuild regardless of TTL.
func (e *Engine) Reindex(ctx context.Context) error {
	return e.controller.Reindex(ctx)
}

// StaticSource serves a fixed in-process contract set.
type StaticSource []Contract

// FetchAll returns the full set; pageSize is ignored.
func (s StaticSource) FetchAll(_ context.Context, _ int) ([]Contract, error) {
	return s, nil
}

// sourceAdapter bridges the public Source to the internal controller.
type sourceAdapter struct {
	inner Source
}

func (a *sourceAdapter) FetchAll(ctx context.Context, pageSize int) ([]domain.Contract, error) {
	records, err := a.inner.FetchAll(ctx, pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	out := make([]domain.Contract, len(records))
	for i, c := range records {
		out[i] = toDomainContract(c)
	}
	return out, nil
}
