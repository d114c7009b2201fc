package live

import (
	"context"
	"testing"
	"time"

	"github.com/atrium-labs/contractsearch/internal/usecase/analytics"
)

type fakeStats struct {
	popular []string
}

func (f *fakeStats) Snapshot() analytics.Stats {
	return analytics.Stats{PopularQueries: f.popular}
}

func (f *fakeStats) Popular(n int) []string {
	if len(f.popular) > n {
		return f.popular[:n]
	}
	return f.popular
}

func newSuggestController(t *testing.T, stats StatsSource) *Controller {
	t.Helper()
	src := &fakeSource{records: fixtureContracts()}
	cfg := Config{Debounce: 5 * time.Millisecond, SuggestionLimit: 4}
	c := New(cfg, src, nil, nil, nil, stats, nil, nil)
	t.Cleanup(c.Close)
	return c
}

func TestSuggestionsPriorityOrder(t *testing.T) {
	c := newSuggestController(t, &fakeStats{popular: []string{"aluguel", "frete"}})
	c.Start(context.Background())
	c.mu.Lock()
	c.history = []string{"software", "manutenção"}
	c.mu.Unlock()

	got := c.Suggestions("")
	// History first, then snapshot categories by population, then popular,
	// capped at the configured limit.
	want := []string{"software", "manutenção", "Tecnologia", "Logística"}
	if len(got) != len(want) {
		t.Fatalf("suggestions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("suggestions = %v, want %v", got, want)
		}
	}
}

func TestSuggestionsPrefixFilterAndDedup(t *testing.T) {
	c := newSuggestController(t, &fakeStats{popular: []string{"software", "frete"}})
	c.Start(context.Background())
	c.mu.Lock()
	c.history = []string{"software", "serviço de limpeza"}
	c.mu.Unlock()

	got := c.Suggestions("so")
	// "software" appears in history and popular; it must show once.
	if len(got) != 1 || got[0] != "software" {
		t.Fatalf("suggestions = %v, want [software]", got)
	}
}

func TestSuggestionsWithoutSnapshotOrStats(t *testing.T) {
	src := &fakeSource{records: fixtureContracts()}
	cfg := Config{Debounce: 5 * time.Millisecond}
	c := New(cfg, src, nil, nil, nil, nil, nil, nil)
	t.Cleanup(c.Close)

	if got := c.Suggestions("x"); len(got) != 0 {
		t.Fatalf("suggestions = %v, want none", got)
	}
}
