package sortkey

// Key is the result ordering criterion.
type Key string

// Sort keys.
const (
	// Relevance orders by accumulated score, highest first by default.
	Relevance    Key = "relevance"
	Date         Key = "date"
	Value        Key = "value"
	Alphabetical Key = "alphabetical"
)

// IsValid checks if the key is one of the supported values.
func (k Key) IsValid() bool {
	return k == Relevance || k == Date || k == Value || k == Alphabetical
}

// Direction is an explicit ascending/descending flag.
// It is never inferred from the sort key.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// IsValid checks if the direction is one of the supported values.
func (d Direction) IsValid() bool {
	return d == Asc || d == Desc
}
