package index

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxTokensPerCall bounds index-build cost on pathologically long fields.
const MaxTokensPerCall = 50

// stopWords lists Portuguese articles, prepositions, and conjunctions
// excluded from indexing. Single-rune words are dropped by the length
// rule before this set is consulted.
var stopWords = map[string]struct{}{
	"de": {}, "da": {}, "do": {}, "das": {}, "dos": {},
	"em": {}, "no": {}, "na": {}, "nos": {}, "nas": {},
	"um": {}, "uma": {}, "uns": {}, "umas": {},
	"ao": {}, "aos": {}, "à": {}, "às": {},
	"pelo": {}, "pela": {}, "pelos": {}, "pelas": {},
	"por": {}, "para": {}, "com": {}, "sem": {}, "sob": {}, "sobre": {},
	"ou": {}, "que": {}, "se": {}, "mas": {}, "como": {}, "mais": {},
	"entre": {}, "até": {}, "desde": {}, "ante": {}, "após": {},
}

// nonWord matches runs of everything that is not a letter or digit.
// \p{L} keeps accented Unicode letters intact: diacritics are preserved.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Tokenize normalizes free text into searchable terms: lowercase, strip
// punctuation, split on whitespace runs, drop single-rune tokens and
// stop-words. Output is capped at MaxTokensPerCall. Pure and deterministic.
func Tokenize(text string) []string {
	normalized := nonWord.ReplaceAllString(strings.ToLower(text), " ")

	var tokens []string
	for _, word := range strings.Fields(normalized) {
		if utf8.RuneCountInString(word) <= 1 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		tokens = append(tokens, word)
		if len(tokens) == MaxTokensPerCall {
			break
		}
	}
	return tokens
}
