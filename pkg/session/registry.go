// Package session tracks live sessions for the hosting adapters (HTTP, MCP),
// keyed by a host-assigned ID, with per-session locking. With a distributed
// locker configured, mutations on one respondent's session are also serialized
// across replicas sharing a response store.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	espalier "github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// Entry is one live session plus the identity it was opened for.
type Entry struct {
	Session *espalier.Session
	FormID  string
	StepID  string
}

// lockEntry holds the per-session mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Registry maps session IDs to live sessions. Locks are reference counted so
// idle sessions don't accumulate mutexes.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
	locks   map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLocker enables distributed locking around WithLock sections.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(r *Registry) { r.locker = locker }
}

// WithLockTTL overrides the distributed lock TTL (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.lockTTL = ttl }
}

// WithLogger configures a logger for deferred errors.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates an empty session registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*Entry),
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Put registers a live session under the given ID.
func (r *Registry) Put(id string, e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = e
}

// Get returns the entry for the ID, or false.
func (r *Registry) Get(id string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return e, ok
}

// Remove detaches the entry without closing it; the caller owns the close.
func (r *Registry) Remove(id string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	return e, ok
}

// List returns the registered session IDs.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close closes every registered session and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*Entry)
	r.mu.Unlock()

	for id, e := range entries {
		if err := e.Session.Close(); err != nil {
			r.logger.Warn("session close failed", "session_id", id, "err", err)
		}
	}
}

// acquire gets or creates a lock entry and increments its reference count.
func (r *Registry) acquire(id string) *lockEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.locks[id]
	if !exists {
		entry = &lockEntry{}
		r.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count, dropping the entry at zero.
func (r *Registry) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(r.locks, id)
	}
}

// WithLock executes fn while holding the session's lock. With a distributed
// locker configured, the same key is also locked across replicas.
func (r *Registry) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := r.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		r.release(id)
	}()

	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, id, r.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				r.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
