package health

import "context"

// StorePinger checks cache store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// GenerationChecker checks generation provider availability.
type GenerationChecker interface {
	HealthCheck(ctx context.Context) error
}
