package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// SourceChecker probes the contract record source.
type SourceChecker interface {
	HealthCheck(ctx context.Context) error
}
