package search

import (
	"testing"
	"time"

	"github.com/atrium-labs/contractsearch/internal/domain"
	"github.com/atrium-labs/contractsearch/internal/domain/search/filter"
	"github.com/atrium-labs/contractsearch/internal/domain/search/match"
	"github.com/atrium-labs/contractsearch/internal/domain/search/result"
	"github.com/atrium-labs/contractsearch/internal/domain/search/sortkey"
)

func fptr(v float64) *float64 { return &v }

func sample() domain.Contract {
	return domain.Contract{
		ID: "c1", Title: "Licença de Software", PartyA: "Acme Sistemas", PartyB: "Globex",
		Category: "Tecnologia", Branch: "Matriz", Value: 12000,
		SignedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Active: true,
	}
}

func TestMatchesFiltersEmptyPasses(t *testing.T) {
	if !matchesFilters(filter.Filters{}, sample()) {
		t.Error("no active predicate means pass")
	}
}

func TestMatchesFiltersCategory(t *testing.T) {
	c := sample()
	if !matchesFilters(filter.New([]string{"Tecnologia", "Serviços"}, nil, nil, nil, nil, nil, ""), c) {
		t.Error("category membership should pass")
	}
	if matchesFilters(filter.New([]string{"Serviços"}, nil, nil, nil, nil, nil, ""), c) {
		t.Error("category mismatch should fail")
	}
}

func TestMatchesFiltersDateRangeInclusive(t *testing.T) {
	c := sample()
	exact := c.SignedAt
	f := filter.New(nil, nil, &exact, &exact, nil, nil, "")
	if !matchesFilters(f, c) {
		t.Error("bounds are inclusive: a record on the bound passes")
	}

	after := c.SignedAt.AddDate(0, 1, 0)
	if matchesFilters(filter.New(nil, nil, &after, nil, nil, nil, ""), c) {
		t.Error("record before the lower bound should fail")
	}
}

func TestMatchesFiltersOpenEndedRanges(t *testing.T) {
	c := sample()
	if !matchesFilters(filter.New(nil, nil, nil, nil, fptr(1000), nil, ""), c) {
		t.Error("only a lower value bound: 12000 >= 1000 passes")
	}
	if matchesFilters(filter.New(nil, nil, nil, nil, nil, fptr(5000), ""), c) {
		t.Error("only an upper value bound: 12000 > 5000 fails")
	}
}

func TestMatchesFiltersPartyEitherField(t *testing.T) {
	c := sample()
	if !matchesFilters(filter.New(nil, nil, nil, nil, nil, nil, "acme"), c) {
		t.Error("party substring should match PartyA case-insensitively")
	}
	if !matchesFilters(filter.New(nil, nil, nil, nil, nil, nil, "GLOBEX"), c) {
		t.Error("party substring should match PartyB case-insensitively")
	}
	if matchesFilters(filter.New(nil, nil, nil, nil, nil, nil, "initech"), c) {
		t.Error("absent party should fail")
	}
}

func TestMatchesFiltersConjunction(t *testing.T) {
	c := sample()
	// Every active predicate must hold simultaneously.
	f := filter.New([]string{"Tecnologia"}, []string{"Filial Sul"}, nil, nil, nil, nil, "")
	if matchesFilters(f, c) {
		t.Error("one failing predicate must fail the conjunction")
	}
}

func mkResult(id, title string, score int, value float64, signed time.Time) result.Result {
	return result.New(domain.Contract{
		ID: id, Title: title, Value: value, SignedAt: signed, Active: true,
	}, score, match.Exact, nil)
}

func TestSortByRelevanceDesc(t *testing.T) {
	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rs := []result.Result{
		mkResult("a", "A", 5, 0, jan),
		mkResult("b", "B", 20, 0, jan),
		mkResult("c", "C", 10, 0, jan),
	}
	sortResults(rs, sortkey.Relevance, sortkey.Desc)
	if rs[0].Contract().ID != "b" || rs[1].Contract().ID != "c" || rs[2].Contract().ID != "a" {
		t.Errorf("unexpected order: %s %s %s",
			rs[0].Contract().ID, rs[1].Contract().ID, rs[2].Contract().ID)
	}
}

func TestSortRelevanceTieBrokenByDate(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	rs := []result.Result{
		mkResult("old", "A", 10, 0, older),
		mkResult("new", "B", 10, 0, newer),
	}
	sortResults(rs, sortkey.Relevance, sortkey.Desc)
	if rs[0].Contract().ID != "new" {
		t.Error("equal scores: newer record should rank first")
	}
}

func TestSortByValueBothDirections(t *testing.T) {
	now := time.Now()
	rs := []result.Result{
		mkResult("mid", "A", 1, 500, now),
		mkResult("low", "B", 1, 100, now),
		mkResult("high", "C", 1, 900, now),
	}
	sortResults(rs, sortkey.Value, sortkey.Asc)
	if rs[0].Contract().ID != "low" || rs[2].Contract().ID != "high" {
		t.Error("value asc ordering wrong")
	}
	sortResults(rs, sortkey.Value, sortkey.Desc)
	if rs[0].Contract().ID != "high" || rs[2].Contract().ID != "low" {
		t.Error("value desc ordering wrong")
	}
}

func TestSortAlphabeticalLocaleAware(t *testing.T) {
	now := time.Now()
	rs := []result.Result{
		mkResult("c", "Órgão Regulador", 1, 0, now),
		mkResult("b", "Zeladoria", 1, 0, now),
		mkResult("a", "Água Mineral", 1, 0, now),
	}
	sortResults(rs, sortkey.Alphabetical, sortkey.Asc)
	// Portuguese collation puts accented Á with A and Ó with O,
	// not after Z as raw byte order would.
	if rs[0].Contract().Title != "Água Mineral" {
		t.Errorf("first = %q, want Água Mineral", rs[0].Contract().Title)
	}
	if rs[2].Contract().Title != "Zeladoria" {
		t.Errorf("last = %q, want Zeladoria", rs[2].Contract().Title)
	}
}

func TestSortDeterministicFinalTieBreak(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rs := []result.Result{
		mkResult("z", "Same", 10, 100, now),
		mkResult("a", "Same", 10, 100, now),
	}
	sortResults(rs, sortkey.Relevance, sortkey.Desc)
	if rs[0].Contract().ID != "a" {
		t.Error("full ties must fall back to ID order, not insertion order")
	}
}
