package mocks

import (
	"context"
	"sync"
	"time"
)

// MockDistributedLock is an in-memory DistributedLock for testing
type MockDistributedLock struct {
	mu    sync.Mutex
	held  map[string]bool

	// Error injection
	AcquireErr error

	// FailAcquire makes every Acquire report the lock as already held
	FailAcquire bool
}

// NewMockDistributedLock creates a new MockDistributedLock
func NewMockDistributedLock() *MockDistributedLock {
	return &MockDistributedLock{held: make(map[string]bool)}
}

func (m *MockDistributedLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AcquireErr != nil {
		return false, m.AcquireErr
	}
	if m.FailAcquire || m.held[name] {
		return false, nil
	}
	m.held[name] = true
	return true, nil
}

func (m *MockDistributedLock) Release(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, name)
	return nil
}

func (m *MockDistributedLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	return nil
}

func (m *MockDistributedLock) Ping(ctx context.Context) error { return nil }

// Held reports whether the named lock is currently held.
func (m *MockDistributedLock) Held(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[name]
}
