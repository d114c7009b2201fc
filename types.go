package contractsearch

import (
	"time"

	"github.com/atrium-labs/contractsearch/internal/domain"
	"github.com/atrium-labs/contractsearch/internal/domain/search/filter"
	"github.com/atrium-labs/contractsearch/internal/domain/search/result"
	"github.com/atrium-labs/contractsearch/internal/domain/search/sortkey"
	"github.com/atrium-labs/contractsearch/internal/repository/saved"
	"github.com/atrium-labs/contractsearch/internal/usecase/analytics"
)

// Contract is one searchable business contract.
type Contract struct {
	ID          string
	Title       string
	PartyA      string
	PartyB      string
	Description string
	Category    string
	Branch      string
	Notes       string
	Value       float64
	SignedAt    time.Time
	Active      bool
}

// MatchTier classifies how a result matched the query.
type MatchTier string

// Match tiers, strongest first.
const (
	MatchExact   MatchTier = "exact"
	MatchPartial MatchTier = "partial"
	MatchFuzzy   MatchTier = "fuzzy"
)

// Result is one ranked search match.
type Result struct {
	Contract   Contract
	Score      int
	Tier       MatchTier
	Tokens     []string
	Highlights map[string]string
	Snippet    string
	Recency    float64
	Magnitude  float64
}

// SortKey selects the result ordering.
type SortKey string

// Sort keys.
const (
	SortRelevance    SortKey = "relevance"
	SortDate         SortKey = "date"
	SortValue        SortKey = "value"
	SortAlphabetical SortKey = "alphabetical"
)

// Direction is the sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Filters narrows a result set. Zero-value fields impose no constraint.
type Filters struct {
	Categories []string
	Branches   []string
	DateFrom   *time.Time
	DateTo     *time.Time
	ValueMin   *float64
	ValueMax   *float64
	Party      string
}

// Stats is a point-in-time view of the search analytics.
type Stats struct {
	TotalSearches   int64
	AvgResponseTime time.Duration
	SuccessRate     float64
	PopularQueries  []string
}

// SavedSearch is a named query kept for reuse.
type SavedSearch struct {
	ID        string
	Name      string
	Query     string
	CreatedAt time.Time
}

func toDomainContract(c Contract) domain.Contract {
	return domain.Contract{
		ID:          c.ID,
		Title:       c.Title,
		PartyA:      c.PartyA,
		PartyB:      c.PartyB,
		Description: c.Description,
		Category:    c.Category,
		Branch:      c.Branch,
		Notes:       c.Notes,
		Value:       c.Value,
		SignedAt:    c.SignedAt,
		Active:      c.Active,
	}
}

func fromDomainContract(c domain.Contract) Contract {
	return Contract{
		ID:          c.ID,
		Title:       c.Title,
		PartyA:      c.PartyA,
		PartyB:      c.PartyB,
		Description: c.Description,
		Category:    c.Category,
		Branch:      c.Branch,
		Notes:       c.Notes,
		Value:       c.Value,
		SignedAt:    c.SignedAt,
		Active:      c.Active,
	}
}

func fromResults(results []result.Result) []Result {
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = Result{
			Contract:   fromDomainContract(r.Contract()),
			Score:      r.Score(),
			Tier:       MatchTier(r.Tier()),
			Tokens:     r.Tokens(),
			Highlights: r.Highlights(),
			Snippet:    r.Snippet(),
			Recency:    r.Recency(),
			Magnitude:  r.Magnitude(),
		}
	}
	return out
}

func toDomainFilters(f Filters) filter.Filters {
	return filter.New(
		f.Categories, f.Branches,
		f.DateFrom, f.DateTo,
		f.ValueMin, f.ValueMax,
		f.Party,
	)
}

func toSortKey(k SortKey) sortkey.Key           { return sortkey.Key(k) }
func toDirection(d Direction) sortkey.Direction { return sortkey.Direction(d) }

func fromStats(s analytics.Stats) Stats {
	return Stats{
		TotalSearches:   s.TotalSearches,
		AvgResponseTime: s.AvgResponseTime,
		SuccessRate:     s.SuccessRate,
		PopularQueries:  s.PopularQueries,
	}
}

func fromSaved(s saved.Search) SavedSearch {
	return SavedSearch{
		ID:        s.ID,
		Name:      s.Name,
		Query:     s.Query,
		CreatedAt: s.CreatedAt,
	}
}
