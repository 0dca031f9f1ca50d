// Package lock provides per-key mutual exclusion for operations that must be
// serialized, such as assignment attempts on the same exchange. A Redis
// implementation coordinates across instances; the in-process implementation
// is used when Redis is not configured.
package lock

import (
	"context"
	"sync"

	dErrors "giftex/pkg/domain-errors"
)

// ErrHeld is returned when the key is already locked by another holder.
var ErrHeld = dErrors.New(dErrors.CodeConflict, "operation already in progress")

// Locker acquires a lock for a key. The returned release function must be
// called exactly once; releasing is best-effort and never blocks.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Memory is a process-local Locker. Sufficient for single-instance
// deployments and tests.
type Memory struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemory creates an in-process locker.
func NewMemory() *Memory {
	return &Memory{held: make(map[string]struct{})}
}

// Acquire takes the lock for key, failing fast with ErrHeld when taken.
func (m *Memory) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.held[key]; taken {
		return nil, ErrHeld
	}
	m.held[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, key)
			m.mu.Unlock()
		})
	}
	return release, nil
}
