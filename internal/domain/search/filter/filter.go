package filter

import (
	"strings"
	"time"
)

// Filters is the set of user-selected facets narrowing a result set.
// The zero value passes every record. All active predicates are AND-ed:
// a record must satisfy every one of them to remain a candidate.
type Filters struct {
	categories []string
	branches   []string
	dateFrom   *time.Time
	dateTo     *time.Time
	valueMin   *float64
	valueMax   *float64
	party      string
}

// New normalizes and creates Filters. Malformed facets degrade to "no
// constraint" instead of raising: an inverted value range (min above max)
// or an inverted date range is dropped, and zero time bounds are ignored.
func New(
	categories, branches []string,
	dateFrom, dateTo *time.Time,
	valueMin, valueMax *float64,
	party string,
) Filters {
	f := Filters{
		categories: compact(categories),
		branches:   compact(branches),
		dateFrom:   normTime(dateFrom),
		dateTo:     normTime(dateTo),
		valueMin:   valueMin,
		valueMax:   valueMax,
		party:      strings.TrimSpace(party),
	}
	if f.valueMin != nil && f.valueMax != nil && *f.valueMin > *f.valueMax {
		f.valueMin, f.valueMax = nil, nil
	}
	if f.dateFrom != nil && f.dateTo != nil && f.dateFrom.After(*f.dateTo) {
		f.dateFrom, f.dateTo = nil, nil
	}
	return f
}

// Categories returns the category facet values.
func (f Filters) Categories() []string { return f.categories }

// Branches returns the branch facet values.
func (f Filters) Branches() []string { return f.branches }

// DateFrom returns the inclusive lower date bound, nil when unbounded.
func (f Filters) DateFrom() *time.Time { return f.dateFrom }

// DateTo returns the inclusive upper date bound, nil when unbounded.
func (f Filters) DateTo() *time.Time { return f.dateTo }

// ValueMin returns the inclusive lower value bound, nil when unbounded.
func (f Filters) ValueMin() *float64 { return f.valueMin }

// ValueMax returns the inclusive upper value bound, nil when unbounded.
func (f Filters) ValueMax() *float64 { return f.valueMax }

// Party returns the counterparty substring facet.
func (f Filters) Party() string { return f.party }

// IsEmpty reports whether no facet is active.
func (f Filters) IsEmpty() bool {
	return len(f.categories) == 0 && len(f.branches) == 0 &&
		f.dateFrom == nil && f.dateTo == nil &&
		f.valueMin == nil && f.valueMax == nil && f.party == ""
}

// Patch is a partial filter update. Nil fields are unchanged;
// provided fields replace the current facet wholesale.
type Patch struct {
	Categories *[]string
	Branches   *[]string
	DateFrom   *time.Time
	DateTo     *time.Time
	ValueMin   *float64
	ValueMax   *float64
	Party      *string
}

// Apply merges the patch into f and returns the normalized result.
func (f Filters) Apply(p Patch) Filters {
	categories := f.categories
	if p.Categories != nil {
		categories = *p.Categories
	}
	branches := f.branches
	if p.Branches != nil {
		branches = *p.Branches
	}
	dateFrom := f.dateFrom
	if p.DateFrom != nil {
		dateFrom = p.DateFrom
	}
	dateTo := f.dateTo
	if p.DateTo != nil {
		dateTo = p.DateTo
	}
	valueMin := f.valueMin
	if p.ValueMin != nil {
		valueMin = p.ValueMin
	}
	valueMax := f.valueMax
	if p.ValueMax != nil {
		valueMax = p.ValueMax
	}
	party := f.party
	if p.Party != nil {
		party = *p.Party
	}
	return New(categories, branches, dateFrom, dateTo, valueMin, valueMax, party)
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func normTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return t
}
