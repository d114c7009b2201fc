package live

import (
	"context"

	"github.com/atrium-labs/contractsearch/internal/domain"
	"github.com/atrium-labs/contractsearch/internal/domain/search/request"
	"github.com/atrium-labs/contractsearch/internal/domain/search/result"
	"github.com/atrium-labs/contractsearch/internal/index"
	"github.com/atrium-labs/contractsearch/internal/repository/saved"
	"github.com/atrium-labs/contractsearch/internal/usecase/analytics"
	"github.com/atrium-labs/contractsearch/internal/usecase/search"
)

// SnapshotSource supplies the full contract set the index is built from.
type SnapshotSource interface {
	FetchAll(ctx context.Context, pageSize int) ([]domain.Contract, error)
}

// Searcher executes one query against an index snapshot.
type Searcher interface {
	Search(snap *index.Snapshot, req *request.Request) search.Response
}

// HistoryStore persists the recent-query list.
type HistoryStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, entries []string) error
}

// SavedSearches persists named queries.
type SavedSearches interface {
	Save(ctx context.Context, name, query string) (saved.Search, error)
}

// StatsSource exposes aggregate search analytics.
type StatsSource interface {
	Snapshot() analytics.Stats
	Popular(n int) []string
}

// Exporter serializes a result page into a downloadable document.
type Exporter interface {
	Export(format string, results []result.Result) ([]byte, error)
}
