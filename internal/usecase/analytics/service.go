package analytics

import (
	"sort"
	"sync"
	"time"

	"github.com/atrium-labs/contractsearch/internal/metrics"
)

// MaxPopular bounds the popular-query list.
const MaxPopular = 10

// Stats is a point-in-time view of the aggregate counters.
type Stats struct {
	TotalSearches   int64
	AvgResponseTime time.Duration
	SuccessRate     float64
	PopularQueries  []string
}

// Service keeps process-wide search aggregates: totals, rolling average
// response time, success rate, and a bounded list of popular queries that
// returned at least one result. State resets only on reinitialization.
type Service struct {
	mu            sync.Mutex
	totalSearches int64
	totalDuration time.Duration
	successes     int64
	hits          map[string]int
}

// New creates an analytics service with zeroed counters.
func New() *Service {
	return &Service{hits: make(map[string]int)}
}

// Record folds one executed search into the aggregates.
// Implements the search engine's Recorder contract.
func (s *Service) Record(query string, duration time.Duration, results int) {
	outcome := "miss"
	if results > 0 {
		outcome = "hit"
	}
	metrics.SearchesTotal.WithLabelValues(outcome).Inc()
	metrics.SearchDuration.Observe(duration.Seconds())
	metrics.SearchResults.Observe(float64(results))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalSearches++
	s.totalDuration += duration
	if results > 0 {
		s.successes++
		s.hits[query]++
		s.trimPopular()
	}
}

// Snapshot returns the current aggregate counters.
func (s *Service) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		TotalSearches:  s.totalSearches,
		PopularQueries: s.popularLocked(MaxPopular),
	}
	if s.totalSearches > 0 {
		stats.AvgResponseTime = s.totalDuration / time.Duration(s.totalSearches)
		stats.SuccessRate = float64(s.successes) / float64(s.totalSearches)
	}
	return stats
}

// Popular returns up to n popular queries, most-hit first.
func (s *Service) Popular(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popularLocked(n)
}

func (s *Service) popularLocked(n int) []string {
	queries := make([]string, 0, len(s.hits))
	for q := range s.hits {
		queries = append(queries, q)
	}
	sort.Slice(queries, func(i, j int) bool {
		if s.hits[queries[i]] != s.hits[queries[j]] {
			return s.hits[queries[i]] > s.hits[queries[j]]
		}
		return queries[i] < queries[j]
	})
	if len(queries) > n {
		queries = queries[:n]
	}
	return queries
}

// trimPopular evicts the least-hit query once the list exceeds its bound.
func (s *Service) trimPopular() {
	if len(s.hits) <= MaxPopular {
		return
	}
	worst, worstHits := "", int(^uint(0)>>1)
	for q, h := range s.hits {
		if h < worstHits || (h == worstHits && q > worst) {
			worst, worstHits = q, h
		}
	}
	delete(s.hits, worst)
}
