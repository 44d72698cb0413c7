package utils

import (
	"context"
	"time"
)

const (
	// DefaultTimeout is the default timeout for database operations
	DefaultTimeout = 10 * time.Second

	// ShortTimeout is for quick operations (cache lookups, rate limit counters)
	ShortTimeout = 2 * time.Second
)

// WithTimeout creates a context with default timeout
func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultTimeout)
}

// WithShortTimeout creates a context with short timeout for quick operations
func WithShortTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, ShortTimeout)
}

// Detached keeps the values of parent but not its cancellation, bounded by DefaultTimeout.
// Used for writes that must outlive a disconnected client.
func Detached(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), DefaultTimeout)
}
