package live

import (
	"sort"
	"strings"
)

// Suggestions proposes query completions for a prefix, drawn from three
// pools in priority order: the user's own history, category names from
// the current snapshot, then globally popular queries. The reply is
// deduplicated and capped; an empty prefix suggests recent history as-is.
func (c *Controller) Suggestions(prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	limit := c.cfg.SuggestionLimit

	seen := make(map[string]struct{})
	out := make([]string, 0, limit)
	add := func(s string) {
		if len(out) >= limit {
			return
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			return
		}
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}

	for _, entry := range c.History() {
		add(entry)
	}
	for _, category := range c.snapshotCategories() {
		add(category)
	}
	if c.stats != nil {
		for _, popular := range c.stats.Popular(limit) {
			add(popular)
		}
	}
	return out
}

// snapshotCategories lists the cached snapshot's categories, most
// populated first. An absent snapshot yields no category suggestions.
func (c *Controller) snapshotCategories() []string {
	c.fetchMu.Lock()
	snap := c.snap
	c.fetchMu.Unlock()
	if snap == nil {
		return nil
	}

	counts := snap.CategoryCounts()
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if counts[categories[i]] != counts[categories[j]] {
			return counts[categories[i]] > counts[categories[j]]
		}
		return categories[i] < categories[j]
	})
	return categories
}
