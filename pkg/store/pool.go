package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Pool is a bounded FIFO of pre-built read connections pulled from a shared
// *sql.DB. acquire/release are thread-safe via a single mutex around the
// deque, matching spec.md §4.2 — there is no need for anything fancier since
// SQLite readers only ever block briefly on the writer's transaction commit.
type Pool struct {
	source *sql.DB
	size   int

	mu   sync.Mutex
	idle []*sql.Conn
	// outstanding counts connections currently on loan, so Acquire can
	// refuse to open more than `size` connections in total.
	outstanding int
	cond        *sync.Cond
	closed      bool
}

// NewPool wraps source with a bound of size concurrently-live connections.
func NewPool(source *sql.DB, size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{source: source, size: size}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Acquire blocks until a reader connection is available, or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*sql.Conn, error) {
	p.mu.Lock()
	for {
		if p.closed {
			p.mu.Unlock()
			return nil, fmt.Errorf("store: pool is closed")
		}
		if len(p.idle) > 0 {
			conn := p.idle[0]
			p.idle = p.idle[1:]
			p.outstanding++
			p.mu.Unlock()
			return conn, nil
		}
		if p.outstanding < p.size {
			p.outstanding++
			p.mu.Unlock()
			conn, err := p.source.Conn(ctx)
			if err != nil {
				p.mu.Lock()
				p.outstanding--
				p.mu.Unlock()
				p.cond.Broadcast()
				return nil, fmt.Errorf("store: acquire connection: %w", err)
			}
			return conn, nil
		}

		// All connections are on loan; wait for a Release. cond.Wait()
		// atomically unlocks p.mu and re-locks it on wakeup, so the wait
		// registers before any concurrent Release can broadcast — the
		// standard sync.Cond pattern, no lost-wakeup window.
		//
		// ctx cancellation still needs its own wakeup: a goroutine that
		// broadcasts once ctx is done, so a blocked Wait() unblocks and
		// re-checks the loop condition (which then observes ctx.Err()
		// itself below) instead of hanging until the next Release.
		if ctx.Done() != nil {
			stop := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					p.cond.Broadcast()
				case <-stop:
				}
			}()
			p.cond.Wait()
			close(stop)
		} else {
			p.cond.Wait()
		}
		if err := ctx.Err(); err != nil {
			p.mu.Unlock()
			return nil, err
		}
	}
}

// Release returns conn to the pool. If the pool is already at capacity (can
// happen after a Teardown race) the connection is closed instead of kept.
func (p *Pool) Release(conn *sql.Conn) {
	p.mu.Lock()
	p.outstanding--
	if p.closed || len(p.idle) >= p.size {
		p.mu.Unlock()
		conn.Close()
		p.cond.Broadcast()
		return
	}
	p.idle = append(p.idle, conn)
	p.mu.Unlock()
	p.cond.Broadcast()
}

// Teardown drains and closes all idle connections and marks the pool
// closed; outstanding connections are closed as they are released.
func (p *Pool) Teardown() error {
	p.mu.Lock()
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()
	p.cond.Broadcast()

	var firstErr error
	for _, conn := range idle {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
