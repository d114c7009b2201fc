package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atrium-labs/contractsearch/internal/domain"
	"github.com/atrium-labs/contractsearch/internal/domain/search/filter"
	"github.com/atrium-labs/contractsearch/internal/domain/search/request"
	"github.com/atrium-labs/contractsearch/internal/domain/search/result"
	"github.com/atrium-labs/contractsearch/internal/domain/search/sortkey"
	"github.com/atrium-labs/contractsearch/internal/index"
	"github.com/atrium-labs/contractsearch/internal/usecase/search"
)

func fixtureContracts() []domain.Contract {
	return []domain.Contract{
		{
			ID: "c1", Title: "Licença de Software Corporativo",
			PartyA: "Empresa Alfa", PartyB: "Beta Tecnologia",
			Description: "Licenciamento anual de software de gestão",
			Category:    "Tecnologia", Branch: "Matriz",
			Value: 12000, SignedAt: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Active: true,
		},
		{
			ID: "c2", Title: "Contrato de Frete Rodoviário",
			PartyA: "Empresa Alfa", PartyB: "Trans Logística",
			Description: "Transporte de cargas entre filiais",
			Category:    "Logística", Branch: "Filial Sul",
			Value: 8000, SignedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Active: true,
		},
		{
			ID: "c3", Title: "Manutenção Predial",
			PartyA: "Empresa Alfa", PartyB: "Predial Serviços",
			Description: "Manutenção preventiva das instalações",
			Category:    "Tecnologia", Branch: "Matriz",
			Value: 3000, SignedAt: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), Active: true,
		},
	}
}

type fakeSource struct {
	mu      sync.Mutex
	records []domain.Contract
	err     error
	calls   int
}

func (f *fakeSource) FetchAll(ctx context.Context, pageSize int) ([]domain.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeSource) fetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []string
	saves   int
}

func (f *fakeHistory) Load(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.entries...), nil
}

func (f *fakeHistory) Save(ctx context.Context, entries []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append([]string(nil), entries...)
	f.saves++
	return nil
}

// slowEngine delays named queries so replies land out of order.
type slowEngine struct {
	inner  Searcher
	delays map[string]time.Duration
}

func (e *slowEngine) Search(snap *index.Snapshot, req *request.Request) search.Response {
	if d, ok := e.delays[req.Query()]; ok {
		time.Sleep(d)
	}
	return e.inner.Search(snap, req)
}

func newTestController(t *testing.T, src SnapshotSource, hist HistoryStore, engine Searcher) *Controller {
	t.Helper()
	if engine == nil {
		engine = search.New(search.DefaultConfig(), nil)
	}
	cfg := Config{Debounce: 5 * time.Millisecond, HistoryLimit: 3, SuggestionLimit: 5}
	c := New(cfg, src, engine, hist, nil, nil, nil, nil)
	t.Cleanup(c.Close)
	return c
}

func waitForState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("state = %q, want %q", c.State(), want)
}

func TestQueryFiresAfterDebounce(t *testing.T) {
	src := &fakeSource{records: fixtureContracts()}
	c := newTestController(t, src, nil, nil)
	ctx := context.Background()

	c.SetQuery(ctx, "software")
	if got := c.State(); got != StateDebouncing {
		t.Fatalf("state right after keystroke = %q, want %q", got, StateDebouncing)
	}
	if !c.IsLoading() {
		t.Fatal("IsLoading should be true while debouncing")
	}

	waitForState(t, c, StateDisplaying)
	results := c.Results()
	if len(results) == 0 {
		t.Fatal("expected results after debounce fired")
	}
	if results[0].Contract().ID != "c1" {
		t.Fatalf("top result = %s, want c1", results[0].Contract().ID)
	}
	if c.TotalResults() == 0 {
		t.Fatal("TotalResults should be set")
	}
	if c.IsLoading() {
		t.Fatal("IsLoading should be false once displaying")
	}
}

func TestKeystrokesCoalesceIntoOneQuery(t *testing.T) {
	src := &fakeSource{records: fixtureContracts()}
	c := newTestController(t, src, nil, nil)
	ctx := context.Background()

	c.SetQuery(ctx, "s")
	c.SetQuery(ctx, "so")
	c.SetQuery(ctx, "software")
	waitForState(t, c, StateDisplaying)

	// One fetch feeds all keystrokes; only the final query executed.
	if calls := src.fetchCalls(); calls != 1 {
		t.Fatalf("source fetched %d times, want 1", calls)
	}
	if got := c.History(); len(got) != 1 || got[0] != "software" {
		t.Fatalf("history = %v, want [software]", got)
	}
}

func TestClearingQueryReturnsToIdle(t *testing.T) {
	src := &fakeSource{records: fixtureContracts()}
	c := newTestController(t, src, nil, nil)
	ctx := context.Background()

	c.SetQuery(ctx, "software")
	waitForState(t, c, StateDisplaying)

	c.SetQuery(ctx, "   ")
	if got := c.State(); got != StateIdle {
		t.Fatalf("state = %q, want %q", got, StateIdle)
	}
	if len(c.Results()) != 0 || c.TotalResults() != 0 {
		t.Fatal("clearing the query should clear results")
	}
}

func TestStaleReplyIsDiscarded(t *testing.T) {
	src := &fakeSource{records: fixtureContracts()}
	inner := search.New(search.DefaultConfig(), nil)
	engine := &slowEngine{inner: inner, delays: map[string]time.Duration{"software": 80 * time.Millisecond}}
	c := newTestController(t, src, nil, engine)
	ctx := context.Background()

	c.SetQuery(ctx, "software")
	// Let the slow query get past the debounce and into flight.
	time.Sleep(30 * time.Millisecond)
	c.SetQuery(ctx, "frete")
	waitForState(t, c, StateDisplaying)

	// Give the slow reply time to land; it must not overwrite.
	time.Sleep(100 * time.Millisecond)
	results := c.Results()
	if len(results) == 0 || results[0].Contract().ID != "c2" {
		t.Fatalf("results belong to a stale generation: %+v", ids(results))
	}
	if got := c.History(); len(got) != 1 || got[0] != "frete" {
		t.Fatalf("history = %v, want only the winning query", got)
	}
}

func TestFilterChangeRerunsImmediately(t *testing.T) {
	src := &fakeSource{records: fixtureContracts()}
	c := newTestController(t, src, nil, nil)
	ctx := context.Background()

	c.SetQuery(ctx, "empresa")
	waitForState(t, c, StateDisplaying)
	if c.TotalResults() != 3 {
		t.Fatalf("TotalResults = %d, want 3", c.TotalResults())
	}

	// Filter clicks rerun synchronously, no debounce wait needed.
	c.SetFilters(ctx, filter.Patch{Categories: &[]string{"Logística"}})
	if got := c.State(); got != StateDisplaying {
		t.Fatalf("state = %q, want %q", got, StateDisplaying)
	}
	if c.TotalResults() != 1 {
		t.Fatalf("TotalResults after filter = %d, want 1", c.TotalResults())
	}

	c.SetFilters(ctx, filter.Patch{Categories: &[]string{"Jurídico"}})
	if got := c.State(); got != StateEmpty {
		t.Fatalf("state = %q, want %q", got, StateEmpty)
	}

	c.ResetFilters(ctx)
	if c.TotalResults() != 3 {
		t.Fatalf("TotalResults after reset = %d, want 3", c.TotalResults())
	}
}

func TestSortChangeRerunsImmediately(t *testing.T) {
	src := &fakeSource{records: fixtureContracts()}
	c := newTestController(t, src, nil, nil)
	ctx := context.Background()

	c.SetQuery(ctx, "empresa")
	waitForState(t, c, StateDisplaying)

	c.SetSort(ctx, sortkey.Value, sortkey.Asc)
	results := c.Results()
	if len(results) != 3 || results[0].Contract().ID != "c3" {
		t.Fatalf("value asc order = %v, want c3 first", ids(results))
	}
}

func TestHistoryDedupAndCap(t *testing.T) {
	src := &fakeSource{records: fixtureContracts()}
	hist := &fakeHistory{}
	c := newTestController(t, src, hist, nil)
	ctx := context.Background()

	for _, q := range []string{"software", "frete", "manutenção", "software", "empresa"} {
		c.SetQuery(ctx, q)
		waitForState(t, c, StateDisplaying)
	}

	got := c.History()
	want := []string{"empresa", "software", "manutenção"}
	if len(got) != len(want) {
		t.Fatalf("history = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("history = %v, want %v", got, want)
		}
	}
	hist.mu.Lock()
	defer hist.mu.Unlock()
	if hist.saves == 0 {
		t.Fatal("history was never persisted")
	}
	if len(hist.entries) != 3 || hist.entries[0] != "empresa" {
		t.Fatalf("persisted history = %v", hist.entries)
	}
}

func TestHistoryLoadedOnStart(t *testing.T) {
	src := &fakeSource{records: fixtureContracts()}
	hist := &fakeHistory{entries: []string{"frete", "software"}}
	c := newTestController(t, src, hist, nil)

	c.Start(context.Background())
	got := c.History()
	if len(got) != 2 || got[0] != "frete" {
		t.Fatalf("history after start = %v", got)
	}
}

func TestSourceFailureEntersErrorState(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	c := newTestController(t, src, nil, nil)
	ctx := context.Background()

	c.SetQuery(ctx, "software")
	waitForState(t, c, StateError)
	if !errors.Is(c.Err(), domain.ErrSnapshotUnavailable) {
		t.Fatalf("err = %v, want ErrSnapshotUnavailable", c.Err())
	}
	if len(c.Results()) != 0 {
		t.Fatal("error state should carry no results")
	}
}

func TestStaleSnapshotServedWhenRefreshFails(t *testing.T) {
	src := &fakeSource{records: fixtureContracts()}
	c := newTestController(t, src, nil, nil)
	ctx := context.Background()

	c.SetQuery(ctx, "software")
	waitForState(t, c, StateDisplaying)

	// Source goes down; a forced rebuild keeps serving the old index.
	src.mu.Lock()
	src.err = errors.New("source down")
	src.mu.Unlock()

	if err := c.Reindex(ctx); err != nil {
		t.Fatalf("Reindex should degrade to stale snapshot, got %v", err)
	}
	c.SetQuery(ctx, "frete")
	waitForState(t, c, StateDisplaying)
	if got := c.Results()[0].Contract().ID; got != "c2" {
		t.Fatalf("top result = %s, want c2 from stale snapshot", got)
	}
}

func TestOneShotSearch(t *testing.T) {
	src := &fakeSource{records: fixtureContracts()}
	c := newTestController(t, src, &fakeHistory{}, nil)

	req := request.New("frete", filter.Filters{}, sortkey.Relevance, sortkey.Desc, 0)
	resp, err := c.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.TotalResults != 1 || resp.Results[0].Contract().ID != "c2" {
		t.Fatalf("response = %+v", resp)
	}
	if got := c.History(); len(got) != 1 || got[0] != "frete" {
		t.Fatalf("one-shot search should record history, got %v", got)
	}
}

func TestExportWithoutExporter(t *testing.T) {
	src := &fakeSource{records: fixtureContracts()}
	c := newTestController(t, src, nil, nil)

	if _, err := c.ExportResults("csv"); !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func ids(results []result.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Contract().ID)
	}
	return out
}
