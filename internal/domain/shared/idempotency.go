package shared

import (
	"context"
	"time"
)

// OperationGuard claims short-lived exclusive keys so that a side-effecting
// operation (such as sending an email) is not executed twice in parallel
type OperationGuard interface {
	// Acquire claims key for ttl
	// Returns true if the key was newly claimed, false if someone else holds it
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees key before its ttl elapses
	Release(ctx context.Context, key string) error

	// Close closes the guard and releases resources
	Close() error
}

// GuardConfig holds configuration for operation guards
type GuardConfig struct {
	// TTL bounds how long a claim survives a crashed holder
	// Default: 2 minutes
	TTL time.Duration
}

// DefaultGuardConfig returns the default guard configuration
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		TTL: 2 * time.Minute,
	}
}
