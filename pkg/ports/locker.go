package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates access to a shared response store across
// multiple server replicas. A single in-process session never needs it; the
// HTTP adapter uses it when several replicas serve the same respondent.
type DistributedLocker interface {
	// Lock attempts to acquire a distributed lock for the given key (for
	// example a respondent session ID). It blocks until the lock is acquired
	// or the context is canceled. The returned UnlockFunc MUST be called to
	// release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
