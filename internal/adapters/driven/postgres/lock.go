package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"hash/fnv"
	"sync"
	"time"

	"github.com/custodia-labs/lexcore/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*AdvisoryLock)(nil)

// AdvisoryLock implements DistributedLock using PostgreSQL advisory locks.
//
// Advisory locks are session-scoped, so each held lock pins a dedicated
// connection out of the pool for its lifetime. Acquire checks the lock out
// on that connection and Release unlocks on the same connection before
// returning it; going through the pooled *sql.DB instead would unlock on
// whatever connection happens to serve the query.
//
// IMPORTANT LIMITATIONS:
// - The TTL parameter is ignored (locks don't expire automatically)
// - If the pinned connection is lost, the lock is automatically released
// - Extend is a no-op since locks don't have TTL
//
// For production multi-worker deployments, Redis locks are recommended.
// This is provided as a fallback when Redis is unavailable.
type AdvisoryLock struct {
	db *DB

	mu       sync.Mutex
	sessions map[string]*sql.Conn
}

// NewAdvisoryLock creates a new PostgreSQL advisory lock adapter.
func NewAdvisoryLock(db *DB) *AdvisoryLock {
	return &AdvisoryLock{
		db:       db,
		sessions: make(map[string]*sql.Conn),
	}
}

// hashLockName converts a string lock name to a 64-bit integer for PostgreSQL advisory locks.
// Uses FNV-1a hash for consistent, well-distributed values.
func hashLockName(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte("lexcore:lock:" + name))
	return int64(h.Sum64())
}

// Acquire attempts to acquire a named advisory lock.
// Uses pg_try_advisory_lock which returns immediately without blocking.
// The lock is taken on a dedicated connection that stays checked out of
// the pool until Release.
//
// Note: The TTL parameter is ignored - PostgreSQL advisory locks don't have TTL.
func (l *AdvisoryLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	lockID := hashLockName(name)

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, err
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired); err != nil {
		_ = conn.Close()
		return false, err
	}
	if !acquired {
		_ = conn.Close()
		return false, nil
	}

	l.mu.Lock()
	l.sessions[name] = conn
	l.mu.Unlock()
	return true, nil
}

// Release releases a named advisory lock on the connection that acquired
// it, then returns the connection to the pool.
// Safe to call even if the lock is not held.
func (l *AdvisoryLock) Release(ctx context.Context, name string) error {
	l.mu.Lock()
	conn, held := l.sessions[name]
	delete(l.sessions, name)
	l.mu.Unlock()

	if !held {
		return nil
	}

	var released bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", hashLockName(name)).Scan(&released); err != nil {
		// The session still holds the lock. Poison the connection so the
		// pool discards it and the lock dies with the session.
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		_ = conn.Close()
		return err
	}

	// released=false means the session no longer held the lock, which is
	// not an error
	return conn.Close()
}

// Extend is a no-op for PostgreSQL advisory locks since they don't have TTL.
// Advisory locks are held until explicitly released or the session ends.
func (l *AdvisoryLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	return nil
}

// Ping checks if the PostgreSQL backend is healthy.
func (l *AdvisoryLock) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}
