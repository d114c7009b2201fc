package index

import "strings"

// DefaultFuzzyThreshold is the similarity a candidate must reach to count
// as a typo-tolerant match.
const DefaultFuzzyThreshold = 0.75

// Levenshtein computes the classic edit distance between a and b:
// cost 1 for insertion, deletion, and substitution. Operates on runes so
// accented terms are measured per character, not per byte.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 0; i <= m; i++ {
		for j := 0; j <= n; j++ {
			switch {
			case i == 0:
				dp[i][j] = j
			case j == 0:
				dp[i][j] = i
			case ra[i-1] == rb[j-1]:
				dp[i][j] = dp[i-1][j-1]
			default:
				dp[i][j] = 1 + min(dp[i-1][j], dp[i][j-1], dp[i-1][j-1])
			}
		}
	}
	return dp[m][n]
}

// FuzzyMatch reports whether candidate is an acceptable typo-tolerant match
// for query. Substring containment is the cheap path; otherwise the
// normalized edit-distance similarity must reach threshold.
func FuzzyMatch(query, candidate string, threshold float64) bool {
	if query == "" || candidate == "" {
		return false
	}
	if strings.Contains(candidate, query) {
		return true
	}

	qLen := len([]rune(query))
	cLen := len([]rune(candidate))
	maxLen := qLen
	if cLen > maxLen {
		maxLen = cLen
	}

	similarity := 1 - float64(Levenshtein(query, candidate))/float64(maxLen)
	return similarity >= threshold
}
