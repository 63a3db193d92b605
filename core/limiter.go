package core

import (
	"context"
	"time"
)

// Limiter throttles repeated actions identified by key.
type Limiter interface {
	// Allow reports whether the action may proceed, blocking the same key for `window` when it does.
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}
