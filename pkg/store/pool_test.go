package store

import (
	"context"
	"testing"
	"time"
)

func TestPoolAcquireBlocksUntilRelease(t *testing.T) {
	pool, cleanup := openTestDB(t)
	defer cleanup()

	ctx := context.Background()
	first, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	second, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	// Pool size is 2 (see openTestDB); a third Acquire must block until one
	// of the first two is released.
	done := make(chan struct{})
	go func() {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			t.Errorf("blocked Acquire() error = %v", err)
			close(done)
			return
		}
		pool.Release(conn)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("blocked Acquire() returned before a connection was released")
	case <-time.After(50 * time.Millisecond):
	}

	pool.Release(first)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("blocked Acquire() never woke up after Release — lost wakeup")
	}

	pool.Release(second)
}

func TestPoolAcquireRespectsContextCancellation(t *testing.T) {
	pool, cleanup := openTestDB(t)
	defer cleanup()

	ctx := context.Background()
	first, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	second, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer pool.Release(first)
	defer pool.Release(second)

	cancelCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = pool.Acquire(cancelCtx)
	if err == nil {
		t.Fatal("Acquire() with exhausted pool and a timed-out context should fail")
	}
}
