// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"
)

// RunLocker provides advisory locking for materialization runs, so overlapping
// scheduled invocations never process the same template concurrently.
type RunLocker interface {
	// Acquire attempts to take the lock for the given key. It returns false
	// without error when the lock is already held elsewhere.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release releases the lock for the given key.
	Release(ctx context.Context, key string) error
}
