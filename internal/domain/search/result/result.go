package result

import (
	"github.com/atrium-labs/contractsearch/internal/domain"
	"github.com/atrium-labs/contractsearch/internal/domain/search/match"
)

// Result is a single ranked match. It is created fresh per query and
// never mutated after assembly completes.
type Result struct {
	contract   domain.Contract
	score      int
	tier       match.Tier
	tokens     []string
	highlights map[string]string
	snippet    string
	recency    float64
	magnitude  float64
}

// New creates a search result.
func New(
	contract domain.Contract,
	score int,
	tier match.Tier,
	tokens []string,
) Result {
	return Result{contract: contract, score: score, tier: tier, tokens: tokens}
}

// WithEnrichment returns a copy carrying highlights, snippet, and
// the advisory recency/magnitude scores.
func (r Result) WithEnrichment(
	highlights map[string]string, snippet string,
	recency, magnitude float64,
) Result {
	r.highlights = highlights
	r.snippet = snippet
	r.recency = recency
	r.magnitude = magnitude
	return r
}

// Contract returns the matched contract.
func (r *Result) Contract() domain.Contract { return r.contract }

// Score returns the accumulated relevance score.
func (r *Result) Score() int { return r.score }

// Tier returns the best match tier achieved across all tokens.
func (r *Result) Tier() match.Tier { return r.tier }

// Tokens returns the matched index tokens.
func (r *Result) Tokens() []string { return r.tokens }

// Highlights returns field name → HTML with matches wrapped.
// Fields without a match are absent.
func (r *Result) Highlights() map[string]string { return r.highlights }

// Snippet returns the generated content excerpt.
func (r *Result) Snippet() string { return r.snippet }

// Recency returns the 0-100 date-recency score. Advisory only: it is not
// folded into the relevance score unless the sort key requests it.
func (r *Result) Recency() float64 { return r.recency }

// Magnitude returns the 0-100 value-magnitude score. Advisory only.
func (r *Result) Magnitude() float64 { return r.magnitude }
