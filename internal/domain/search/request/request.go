package request

import (
	"strings"

	"github.com/atrium-labs/contractsearch/internal/domain/search/filter"
	"github.com/atrium-labs/contractsearch/internal/domain/search/sortkey"
)

// Search parameter limits.
const (
	// MaxQueryLength caps pathological query strings. Longer input is
	// truncated rather than rejected.
	MaxQueryLength = 512
	DefaultLimit   = 20
	MaxLimit       = 100
)

// Request is a normalized search query.
type Request struct {
	query     string
	filters   filter.Filters
	sortBy    sortkey.Key
	direction sortkey.Direction
	limit     int
}

// New normalizes search parameters.
// Defaults: sort=relevance, direction=desc, limit=20. The query is trimmed
// and capped at MaxQueryLength; an empty query is a valid request that the
// engine answers with an empty result set, so it is not an error here.
func New(
	query string,
	filters filter.Filters,
	sortBy sortkey.Key,
	direction sortkey.Direction,
	limit int,
) Request {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		query = query[:MaxQueryLength]
	}
	if !sortBy.IsValid() {
		sortBy = sortkey.Relevance
	}
	if !direction.IsValid() {
		if sortBy == sortkey.Alphabetical {
			direction = sortkey.Asc
		} else {
			direction = sortkey.Desc
		}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{
		query:     query,
		filters:   filters,
		sortBy:    sortBy,
		direction: direction,
		limit:     limit,
	}
}

// Query returns the trimmed search text.
func (r *Request) Query() string { return r.query }

// Filters returns the facet constraints.
func (r *Request) Filters() filter.Filters { return r.filters }

// SortBy returns the ordering criterion.
func (r *Request) SortBy() sortkey.Key { return r.sortBy }

// Direction returns the ordering direction.
func (r *Request) Direction() sortkey.Direction { return r.direction }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }
