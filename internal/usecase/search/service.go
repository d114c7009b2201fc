package search

import (
	"sort"
	"strings"
	"time"

	"github.com/atrium-labs/contractsearch/internal/domain/search/match"
	"github.com/atrium-labs/contractsearch/internal/domain/search/request"
	"github.com/atrium-labs/contractsearch/internal/domain/search/result"
	"github.com/atrium-labs/contractsearch/internal/index"
)

// Weights are the per-tier relevance increments. Scores accumulate across
// tokens and tiers; they are never overwritten.
type Weights struct {
	Exact   int
	Partial int
	Fuzzy   int
}

// DefaultWeights returns the standard tier increments.
func DefaultWeights() Weights {
	return Weights{Exact: 10, Partial: 6, Fuzzy: 2}
}

// fuzzyLengthWindow bounds the fuzzy tier: Levenshtein is O(n·m) per pair,
// so only vocabulary terms within this many runes of the query token's
// length are evaluated.
const fuzzyLengthWindow = 2

// Config tunes the query engine. Divergent thresholds and weights are
// configuration, not separate algorithms.
type Config struct {
	FuzzyThreshold float64
	Weights        Weights
}

// DefaultConfig returns the standard engine tuning.
func DefaultConfig() Config {
	return Config{
		FuzzyThreshold: index.DefaultFuzzyThreshold,
		Weights:        DefaultWeights(),
	}
}

// Response is the outcome of one query execution.
type Response struct {
	// Results is the ranked page, truncated to the request limit.
	Results []result.Result
	// TotalResults is the pre-truncation match count, so callers can
	// offer "see all N results".
	TotalResults int
	// SearchTime is the wall-clock query duration.
	SearchTime time.Duration
}

// Service is the query engine: tiered matching, relevance accumulation,
// filtering, sorting, and enrichment over an index snapshot.
type Service struct {
	cfg      Config
	recorder Recorder
}

// New creates a query engine. recorder may be nil.
func New(cfg Config, recorder Recorder) *Service {
	if cfg.FuzzyThreshold <= 0 || cfg.FuzzyThreshold > 1 {
		cfg.FuzzyThreshold = index.DefaultFuzzyThreshold
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	return &Service{cfg: cfg, recorder: recorder}
}

// candidate accumulates match state for one record ordinal.
type candidate struct {
	ordinal int
	score   int
	tier    match.Tier
	tokens  map[string]struct{}
}

// Search executes a query against the snapshot. Failure modes degrade to
// fewer or no results; nothing here returns an error to the caller.
//
// An empty or whitespace-only query returns immediately with zero results
// and zero time, without touching the index.
func (s *Service) Search(snap *index.Snapshot, req *request.Request) Response {
	if req.Query() == "" || snap == nil {
		return Response{}
	}

	start := time.Now()
	// Symmetry invariant: the query runs through the same tokenizer the
	// index was built with.
	queryTokens := index.Tokenize(req.Query())

	candidates := s.collect(snap, queryTokens)

	kept := candidates[:0]
	for _, c := range candidates {
		if matchesFilters(req.Filters(), snap.Contract(c.ordinal)) {
			kept = append(kept, c)
		}
	}

	results := make([]result.Result, 0, len(kept))
	ordinals := make(map[string]int, len(kept))
	for _, c := range kept {
		tokens := make([]string, 0, len(c.tokens))
		for token := range c.tokens {
			tokens = append(tokens, token)
		}
		sort.Strings(tokens)
		contract := snap.Contract(c.ordinal)
		ordinals[contract.ID] = c.ordinal
		results = append(results, result.New(contract, c.score, c.tier, tokens))
	}

	sortResults(results, req.SortBy(), req.Direction())

	total := len(results)
	if len(results) > req.Limit() {
		results = results[:req.Limit()]
	}

	now := time.Now()
	for i, r := range results {
		results[i] = enrich(r, queryTokens, ordinals[r.Contract().ID], snap, now)
	}

	elapsed := time.Since(start)
	if s.recorder != nil {
		s.recorder.Record(req.Query(), elapsed, total)
	}

	return Response{Results: results, TotalResults: total, SearchTime: elapsed}
}

// collect runs the three match tiers for every query token, accumulating
// per-record scores. A record may qualify under multiple tiers and tokens;
// its final tier is the best achieved, a max, while the score is a sum.
func (s *Service) collect(snap *index.Snapshot, queryTokens []string) []candidate {
	byOrdinal := make(map[int]*candidate)

	bump := func(ordinal, weight int, tier match.Tier, token string) {
		c, ok := byOrdinal[ordinal]
		if !ok {
			c = &candidate{ordinal: ordinal, tokens: make(map[string]struct{})}
			byOrdinal[ordinal] = c
		}
		c.score += weight
		c.tier = match.Best(c.tier, tier)
		c.tokens[token] = struct{}{}
	}

	for _, qt := range queryTokens {
		// Exact: the token is an index key.
		for _, ord := range snap.Postings(qt) {
			bump(ord, s.cfg.Weights.Exact, match.Exact, qt)
		}

		qtLen := len([]rune(qt))
		for _, term := range snap.Tokens() {
			if term == qt {
				continue
			}
			// Partial: substring in either direction.
			if strings.Contains(term, qt) || strings.Contains(qt, term) {
				for _, ord := range snap.Postings(term) {
					bump(ord, s.cfg.Weights.Partial, match.Partial, term)
				}
				continue
			}
			// Fuzzy: edit-distance similarity, bounded to terms of
			// comparable length.
			termLen := len([]rune(term))
			if termLen < qtLen-fuzzyLengthWindow || termLen > qtLen+fuzzyLengthWindow {
				continue
			}
			if index.FuzzyMatch(qt, term, s.cfg.FuzzyThreshold) {
				for _, ord := range snap.Postings(term) {
					bump(ord, s.cfg.Weights.Fuzzy, match.Fuzzy, term)
				}
			}
		}
	}

	ordinals := make([]int, 0, len(byOrdinal))
	for ord := range byOrdinal {
		ordinals = append(ordinals, ord)
	}
	sort.Ints(ordinals)

	out := make([]candidate, 0, len(ordinals))
	for _, ord := range ordinals {
		out = append(out, *byOrdinal[ord])
	}
	return out
}
