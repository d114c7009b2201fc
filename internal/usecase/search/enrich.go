package search

import (
	"math"
	"strings"
	"time"

	"github.com/atrium-labs/contractsearch/internal/domain"
	"github.com/atrium-labs/contractsearch/internal/domain/search/result"
	"github.com/atrium-labs/contractsearch/internal/index"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
	ellipsis  = "..."

	snippetWindow      = 50
	snippetFallbackLen = 120

	recencyDecayDays = 365
	magnitudeScale   = 20
)

// snippetFields are scanned in priority order for snippet extraction.
var snippetFields = []string{domain.FieldDescription, domain.FieldNotes, domain.FieldTitle}

// enrich adds highlights, a snippet, and the advisory recency and
// magnitude scores to one surfaced result. Matched index terms are
// highlighted alongside the raw query tokens so fuzzy hits still light up
// the term the record actually contains.
func enrich(r result.Result, queryTokens []string, ordinal int, snap *index.Snapshot, now time.Time) result.Result {
	c := r.Contract()
	highlightTokens := union(queryTokens, r.Tokens())

	var highlights map[string]string
	for _, field := range domain.TextFields {
		text := c.TextField(field)
		if text == "" {
			continue
		}
		if marked, ok := highlight(text, highlightTokens); ok {
			if highlights == nil {
				highlights = make(map[string]string)
			}
			highlights[field] = marked
		}
	}

	return r.WithEnrichment(
		highlights,
		makeSnippet(c, queryTokens, r.Tokens(), ordinal, snap),
		recencyScore(c.SignedAt, now),
		magnitudeScore(c.Value),
	)
}

// union merges token lists preserving first-seen order.
func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// highlight wraps every case-insensitive occurrence of every query token
// in mark tags. Overlapping occurrences merge into a single span, so
// stripping the tags always yields the original text verbatim.
func highlight(text string, tokens []string) (string, bool) {
	runes := []rune(text)
	lower := []rune(strings.ToLower(text))
	if len(lower) != len(runes) {
		// Case folding changed the rune count (exotic mappings);
		// degrade to case-sensitive matching on the original runes.
		lower = runes
	}

	marked := make([]bool, len(runes))
	found := false
	for _, token := range tokens {
		t := []rune(strings.ToLower(token))
		if len(t) == 0 {
			continue
		}
		for i := 0; i+len(t) <= len(lower); i++ {
			if !runesEqual(lower[i:i+len(t)], t) {
				continue
			}
			for j := i; j < i+len(t); j++ {
				marked[j] = true
			}
			found = true
		}
	}
	if !found {
		return text, false
	}

	var b strings.Builder
	inMark := false
	for i, r := range runes {
		if marked[i] && !inMark {
			b.WriteString(markOpen)
			inMark = true
		}
		if !marked[i] && inMark {
			b.WriteString(markClose)
			inMark = false
		}
		b.WriteRune(r)
	}
	if inMark {
		b.WriteString(markClose)
	}
	return b.String(), true
}

// makeSnippet extracts a window around the first literal query-token
// occurrence in the priority fields, with ellipses when the window is
// clipped. When no field contains a query token verbatim (only fuzzy
// matches fired), the field-qualified index locates the matched term
// instead; failing that, a fixed-length prefix of the description.
func makeSnippet(c domain.Contract, queryTokens, matchedTokens []string, ordinal int, snap *index.Snapshot) string {
	if s, ok := snippetAround(c, queryTokens); ok {
		return s
	}

	// Fuzzy-only match: center the snippet on the indexed term the record
	// actually contains, targeting the field the per-field view recorded.
	for _, token := range matchedTokens {
		for _, field := range snap.FieldsContaining(ordinal, token) {
			if s, ok := windowIn(c.TextField(field), token); ok {
				return s
			}
		}
	}

	desc := []rune(c.Description)
	if len(desc) <= snippetFallbackLen {
		return c.Description
	}
	return string(desc[:snippetFallbackLen]) + ellipsis
}

func snippetAround(c domain.Contract, tokens []string) (string, bool) {
	for _, field := range snippetFields {
		text := c.TextField(field)
		if text == "" {
			continue
		}
		for _, token := range tokens {
			if s, ok := windowIn(text, token); ok {
				return s, true
			}
		}
	}
	return "", false
}

func windowIn(text, token string) (string, bool) {
	if text == "" {
		return "", false
	}
	runes := []rune(text)
	lower := []rune(strings.ToLower(text))
	if len(lower) != len(runes) {
		lower = runes
	}
	t := []rune(strings.ToLower(token))
	idx := runeIndex(lower, t)
	if idx < 0 {
		return "", false
	}
	return clipWindow(runes, idx, len(t)), true
}

func clipWindow(runes []rune, idx, tokenLen int) string {
	start := idx - snippetWindow
	if start < 0 {
		start = 0
	}
	end := idx + tokenLen + snippetWindow
	if end > len(runes) {
		end = len(runes)
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(string(runes[start:end]))
	if end < len(runes) {
		b.WriteString(ellipsis)
	}
	return b.String()
}

// recencyScore decays linearly from 100 toward 0 as the signing date ages,
// bottoming out after roughly a year. Zero dates score zero.
func recencyScore(signedAt, now time.Time) float64 {
	if signedAt.IsZero() {
		return 0
	}
	ageDays := now.Sub(signedAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	score := 100 * (1 - ageDays/recencyDecayDays)
	if score < 0 {
		return 0
	}
	return score
}

// magnitudeScore maps the monetary value onto 0-100 via log10(value+1),
// clamped at 100 so outsized contracts do not dominate.
func magnitudeScore(value float64) float64 {
	if value <= 0 {
		return 0
	}
	score := math.Log10(value+1) * magnitudeScale
	if score > 100 {
		return 100
	}
	return score
}

func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if runesEqual(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
