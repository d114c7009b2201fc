package search

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/atrium-labs/contractsearch/internal/domain"
	"github.com/atrium-labs/contractsearch/internal/domain/search/filter"
	"github.com/atrium-labs/contractsearch/internal/domain/search/result"
	"github.com/atrium-labs/contractsearch/internal/domain/search/sortkey"
)

// matchesFilters applies every active predicate; a record must satisfy all
// of them (logical AND). An absent predicate passes.
func matchesFilters(f filter.Filters, c domain.Contract) bool {
	if len(f.Categories()) > 0 && !containsString(f.Categories(), c.Category) {
		return false
	}
	if len(f.Branches()) > 0 && !containsString(f.Branches(), c.Branch) {
		return false
	}
	if from := f.DateFrom(); from != nil && c.SignedAt.Before(*from) {
		return false
	}
	if to := f.DateTo(); to != nil && c.SignedAt.After(*to) {
		return false
	}
	if min := f.ValueMin(); min != nil && c.Value < *min {
		return false
	}
	if max := f.ValueMax(); max != nil && c.Value > *max {
		return false
	}
	if party := f.Party(); party != "" {
		needle := strings.ToLower(party)
		if !strings.Contains(strings.ToLower(c.PartyA), needle) &&
			!strings.Contains(strings.ToLower(c.PartyB), needle) {
			return false
		}
	}
	return true
}

// sortResults orders results by the requested key and explicit direction.
// Ties are broken deterministically by a secondary key, never by insertion
// order, so repeated identical queries return identical orderings.
func sortResults(results []result.Result, key sortkey.Key, dir sortkey.Direction) {
	// Title comparison is locale-aware: Portuguese collation keeps
	// accented titles in dictionary order.
	collator := collate.New(language.BrazilianPortuguese)
	asc := dir == sortkey.Asc

	less := func(a, b *result.Result) bool {
		switch key {
		case sortkey.Date:
			if !a.Contract().SignedAt.Equal(b.Contract().SignedAt) {
				return orient(a.Contract().SignedAt.Before(b.Contract().SignedAt), asc)
			}
		case sortkey.Value:
			if a.Contract().Value != b.Contract().Value {
				return orient(a.Contract().Value < b.Contract().Value, asc)
			}
		case sortkey.Alphabetical:
			if cmp := collator.CompareString(a.Contract().Title, b.Contract().Title); cmp != 0 {
				return orient(cmp < 0, asc)
			}
		default: // relevance
			if a.Score() != b.Score() {
				return orient(a.Score() < b.Score(), asc)
			}
			// Secondary for relevance ties: newer first.
			if !a.Contract().SignedAt.Equal(b.Contract().SignedAt) {
				return a.Contract().SignedAt.After(b.Contract().SignedAt)
			}
		}
		// Final deterministic tie-break.
		return a.Contract().ID < b.Contract().ID
	}

	sort.SliceStable(results, func(i, j int) bool {
		return less(&results[i], &results[j])
	})
}

// orient flips a natural ascending comparison for descending order.
func orient(lessAsc, asc bool) bool {
	if asc {
		return lessAsc
	}
	return !lessAsc
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
