package search

import "time"

// Recorder collects per-query statistics. Implemented by the analytics
// service; a nil recorder disables bookkeeping.
type Recorder interface {
	Record(query string, duration time.Duration, results int)
}
