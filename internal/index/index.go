package index

import (
	"sort"
	"strings"
	"time"

	"github.com/atrium-labs/contractsearch/internal/domain"
)

// Snapshot is an immutable inverted index over one batch of contracts.
// Build produces a brand-new Snapshot every time; callers swap the
// reference atomically, so a query never sees a half-rebuilt index.
//
// Two views exist: whole-document postings (tokens from all text fields
// concatenated) and field-qualified postings keyed "field:token", which
// let highlighting target the exact field a token came from.
type Snapshot struct {
	contracts  []domain.Contract
	terms      map[string][]int
	fieldTerms map[string][]int
	vocabulary []string
	builtAt    time.Time
}

// Build constructs a Snapshot from the given records. Inactive contracts
// are filtered out first and never enter the index. Postings are sets of
// ordinal positions into the surviving slice, stored sorted so iteration
// order is deterministic across rebuilds.
func Build(records []domain.Contract) *Snapshot {
	var active []domain.Contract
	for _, c := range records {
		if c.Active {
			active = append(active, c)
		}
	}

	terms := make(map[string]map[int]struct{})
	fieldTerms := make(map[string]map[int]struct{})

	for ord, c := range active {
		var all []string
		for _, field := range domain.TextFields {
			all = append(all, c.TextField(field))
		}
		for _, token := range Tokenize(strings.Join(all, " ")) {
			addPosting(terms, token, ord)
		}

		for _, field := range domain.TextFields {
			for _, token := range Tokenize(c.TextField(field)) {
				addPosting(fieldTerms, fieldKey(field, token), ord)
			}
		}
	}

	snap := &Snapshot{
		contracts:  active,
		terms:      freeze(terms),
		fieldTerms: freeze(fieldTerms),
		builtAt:    time.Now(),
	}
	snap.vocabulary = make([]string, 0, len(snap.terms))
	for token := range snap.terms {
		snap.vocabulary = append(snap.vocabulary, token)
	}
	sort.Strings(snap.vocabulary)
	return snap
}

// Len returns the number of indexed contracts.
func (s *Snapshot) Len() int { return len(s.contracts) }

// Contract returns the contract at the given ordinal position.
func (s *Snapshot) Contract(ordinal int) domain.Contract {
	return s.contracts[ordinal]
}

// Postings returns the ordinals of contracts containing token anywhere,
// sorted ascending. Nil when the token is not in the index.
func (s *Snapshot) Postings(token string) []int {
	return s.terms[token]
}

// Tokens returns the whole-document vocabulary in sorted order,
// giving partial and fuzzy tier scans a stable iteration order.
func (s *Snapshot) Tokens() []string { return s.vocabulary }

// FieldsContaining returns which text fields of the contract at ordinal
// contain token, in display order. Empty when none do.
func (s *Snapshot) FieldsContaining(ordinal int, token string) []string {
	var fields []string
	for _, field := range domain.TextFields {
		for _, ord := range s.fieldTerms[fieldKey(field, token)] {
			if ord == ordinal {
				fields = append(fields, field)
				break
			}
		}
	}
	return fields
}

// CategoryCounts returns live per-category contract counts,
// used for facet suggestions.
func (s *Snapshot) CategoryCounts() map[string]int {
	counts := make(map[string]int)
	for _, c := range s.contracts {
		if c.Category != "" {
			counts[c.Category]++
		}
	}
	return counts
}

// BuiltAt returns when this snapshot was constructed.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

func fieldKey(field, token string) string {
	return field + ":" + token
}

func addPosting(m map[string]map[int]struct{}, key string, ord int) {
	set, ok := m[key]
	if !ok {
		set = make(map[int]struct{})
		m[key] = set
	}
	set[ord] = struct{}{}
}

func freeze(m map[string]map[int]struct{}) map[string][]int {
	out := make(map[string][]int, len(m))
	for key, set := range m {
		ords := make([]int, 0, len(set))
		for ord := range set {
			ords = append(ords, ord)
		}
		sort.Ints(ords)
		out[key] = ords
	}
	return out
}
