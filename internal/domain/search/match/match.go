package match

// Tier classifies how a record matched a query.
type Tier string

// Match tiers, best first.
const (
	Exact   Tier = "exact"
	Partial Tier = "partial"
	Fuzzy   Tier = "fuzzy"
	None    Tier = ""
)

// rank orders tiers: exact beats partial beats fuzzy.
func (t Tier) rank() int {
	switch t {
	case Exact:
		return 3
	case Partial:
		return 2
	case Fuzzy:
		return 1
	}
	return 0
}

// Better reports whether t outranks other.
func (t Tier) Better(other Tier) bool {
	return t.rank() > other.rank()
}

// Best returns the higher-ranked of two tiers.
// A record's final tier is the best it achieved across all tokens,
// even though its score accumulates across tiers.
func Best(a, b Tier) Tier {
	if b.Better(a) {
		return b
	}
	return a
}
