package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// advisoryState models server-side advisory lock bookkeeping: which
// session holds which lock, and which session issued each call.
type advisoryState struct {
	mu          sync.Mutex
	nextConnID  int
	held        map[int64]int // lock ID -> holding conn ID
	lockConns   []int         // conn ID per pg_try_advisory_lock call
	unlockConns []int         // conn ID per pg_advisory_unlock call
}

type advisoryDriver struct {
	state *advisoryState
}

func (d *advisoryDriver) Open(string) (driver.Conn, error) {
	d.state.mu.Lock()
	d.state.nextConnID++
	id := d.state.nextConnID
	d.state.mu.Unlock()
	return &advisoryConn{id: id, state: d.state}, nil
}

type advisoryConn struct {
	id    int
	state *advisoryState
}

func (c *advisoryConn) Prepare(string) (driver.Stmt, error) {
	return nil, fmt.Errorf("prepare not supported")
}

func (c *advisoryConn) Close() error { return nil }

func (c *advisoryConn) Begin() (driver.Tx, error) {
	return nil, fmt.Errorf("transactions not supported")
}

func (c *advisoryConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	s := c.state
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case strings.Contains(query, "pg_try_advisory_lock"):
		id := args[0].Value.(int64)
		s.lockConns = append(s.lockConns, c.id)
		if holder, taken := s.held[id]; taken && holder != c.id {
			return &boolRow{}, nil
		}
		s.held[id] = c.id
		return &boolRow{value: true}, nil

	case strings.Contains(query, "pg_advisory_unlock"):
		id := args[0].Value.(int64)
		s.unlockConns = append(s.unlockConns, c.id)
		if s.held[id] == c.id {
			delete(s.held, id)
			return &boolRow{value: true}, nil
		}
		return &boolRow{}, nil

	default:
		return &boolRow{value: true}, nil
	}
}

type boolRow struct {
	value bool
	done  bool
}

func (r *boolRow) Columns() []string { return []string{"ok"} }
func (r *boolRow) Close() error      { return nil }
func (r *boolRow) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = r.value
	return nil
}

var advisoryDriverSeq atomic.Int64

func newAdvisoryFixture(t *testing.T) (*AdvisoryLock, *advisoryState, *DB) {
	t.Helper()
	state := &advisoryState{held: make(map[int64]int)}
	name := fmt.Sprintf("advisory-fake-%d", advisoryDriverSeq.Add(1))
	sql.Register(name, &advisoryDriver{state: state})

	sqlDB, err := sql.Open(name, "")
	if err != nil {
		t.Fatal(err)
	}
	// No idle pooling, so every unpinned query lands on a fresh session
	// the way a busy pool would rotate them.
	sqlDB.SetMaxIdleConns(0)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := &DB{sqlDB}
	return NewAdvisoryLock(db), state, db
}

func TestAdvisoryLockReleasesOnAcquiringSession(t *testing.T) {
	lock, state, db := newAdvisoryFixture(t)
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "document:doc-1", time.Minute)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !acquired {
		t.Fatal("free lock should be acquired")
	}

	// Interleave unrelated queries, rotating the pool past the session
	// that took the lock.
	for i := 0; i < 5; i++ {
		var ok bool
		if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&ok); err != nil {
			t.Fatalf("pool query failed: %v", err)
		}
	}

	if err := lock.Release(ctx, "document:doc-1"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if len(state.lockConns) != 1 || len(state.unlockConns) != 1 {
		t.Fatalf("lock calls = %v, unlock calls = %v, want one each", state.lockConns, state.unlockConns)
	}
	if state.lockConns[0] != state.unlockConns[0] {
		t.Errorf("unlock ran on conn %d but lock was taken on conn %d", state.unlockConns[0], state.lockConns[0])
	}
	if len(state.held) != 0 {
		t.Errorf("lock still held after Release: %v", state.held)
	}
}

func TestAdvisoryLockMutualExclusion(t *testing.T) {
	lock, _, _ := newAdvisoryFixture(t)
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "document:doc-1", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("first Acquire = %v, %v", acquired, err)
	}

	// A second acquire opens its own session, so it must observe the
	// held lock instead of re-entering it.
	acquired, err = lock.Acquire(ctx, "document:doc-1", time.Minute)
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if acquired {
		t.Error("held lock should not be acquired again")
	}

	if err := lock.Release(ctx, "document:doc-1"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	acquired, err = lock.Acquire(ctx, "document:doc-1", time.Minute)
	if err != nil || !acquired {
		t.Errorf("Acquire after Release = %v, %v, want true", acquired, err)
	}
}

func TestAdvisoryLockReleaseUnheld(t *testing.T) {
	lock, state, _ := newAdvisoryFixture(t)

	if err := lock.Release(context.Background(), "document:never-acquired"); err != nil {
		t.Fatalf("releasing an unheld lock should be a no-op, got %v", err)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if len(state.unlockConns) != 0 {
		t.Error("no unlock query should be issued for an unheld lock")
	}
}

func TestAdvisoryLockIndependentNames(t *testing.T) {
	lock, _, _ := newAdvisoryFixture(t)
	ctx := context.Background()

	for _, name := range []string{"document:doc-1", "document:doc-2"} {
		acquired, err := lock.Acquire(ctx, name, time.Minute)
		if err != nil || !acquired {
			t.Fatalf("Acquire(%s) = %v, %v", name, acquired, err)
		}
	}

	if err := lock.Release(ctx, "document:doc-1"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	acquired, err := lock.Acquire(ctx, "document:doc-2", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if acquired {
		t.Error("doc-2 lock should still be held after releasing doc-1")
	}
}
