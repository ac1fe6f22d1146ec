package application

import (
	"time"

	"github.com/wms-platform/exception-service/internal/domain"
)

// ExceptionConfiguration holds the process-wide tunables of the
// reconciliation engine. It is loaded once at startup and read-only
// during sweeps.
type ExceptionConfiguration struct {
	Enabled              bool
	WarehouseOperational bool
	SupportedOrderTypes  []domain.Type
	MaxAutoStraggles     int
	AutoStraggleWindow   time.Duration
	AutoStraggleEnabled  bool
}

// DefaultExceptionConfiguration returns the standard tunables: every
// order type supported, five auto-repicks per item, a 45 minute
// eligibility window, auto-repick itself off until explicitly enabled.
func DefaultExceptionConfiguration() ExceptionConfiguration {
	return ExceptionConfiguration{
		Enabled:              true,
		WarehouseOperational: true,
		SupportedOrderTypes:  domain.OrderTypes(),
		MaxAutoStraggles:     5,
		AutoStraggleWindow:   45 * time.Minute,
		AutoStraggleEnabled:  false,
	}
}

// PoolConfig sizes the engine's three worker pools. Pools are
// constructor-injected; nothing in the engine spins up concurrency
// beyond these.
type PoolConfig struct {
	// TypeWorkers runs one sweep task per order type.
	TypeWorkers int
	// ResolverWorkers runs the singleton and consolidatable resolver
	// tasks across all in-flight type sweeps.
	ResolverWorkers int
	// CompletionWorkers processes pick-completion message batches.
	CompletionWorkers int
}

// DefaultPoolConfig mirrors the engine's historical executor sizes.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		TypeWorkers:       len(domain.OrderTypes()),
		ResolverWorkers:   8,
		CompletionWorkers: 10,
	}
}
