// Package watch implements the controller (C11): it owns the single writer
// connection, enforces the one-in-flight-transaction invariant of spec.md
// §4.8, and drives a debounced filesystem watcher that triggers a
// wipe-and-rebuild re-index whenever a watched path changes.
package watch

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tkw1536/lontod/pkg/ingest"
	"github.com/tkw1536/lontod/pkg/store"
)

// debounceWindow is the quiescence period §4.8 requires before a batch of
// filesystem events fires a single re-index.
const debounceWindow = 1 * time.Second

// Controller owns the writer connection and the watched path set, driving
// indexing under a single mutex so at most one writer transaction is ever
// in flight.
type Controller struct {
	db     *sql.DB
	paths  []string
	opts   ingest.Options
	logger *log.Logger

	writerLock sync.Mutex

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	sortCounter int64
	counterMu   sync.Mutex
}

// New builds a Controller around an already-opened writer connection
// (store.OpenWriter). paths is the fixed set of source files/directories
// this controller indexes and, optionally, watches.
func New(db *sql.DB, paths []string, opts ingest.Options, logger *log.Logger) *Controller {
	return &Controller{db: db, paths: paths, opts: opts, logger: logger}
}

// nextSortKey returns a strictly decreasing key, so the earliest discovered
// ontology within one ingest pass has the highest key and sorts first by
// SORT_KEY DESC,
// matching spec.md §4.9's redirect tie-break ("first row is the preferred
// target").
func (c *Controller) nextSortKey(n int) int64 {
	c.counterMu.Lock()
	defer c.counterMu.Unlock()
	c.sortCounter--
	return c.sortCounter
}

// IndexAndCommit runs the initial full index: acquire the writer lock,
// BEGIN, ingest every configured path, and COMMIT whatever files indexed
// successfully; files that failed to parse or extract are only logged. A
// store write failure (or a failing BEGIN/COMMIT) rolls the whole
// transaction back so the previous (possibly empty) index is left untouched.
func (c *Controller) IndexAndCommit() (*ingest.Result, error) {
	c.writerLock.Lock()
	defer c.writerLock.Unlock()
	return c.runInTransaction(false)
}

// reindex performs the wipe-and-rebuild cycle fired by the debounced
// watcher: truncate both tables, then re-ingest every configured path,
// inside the same transaction so a rollback leaves the prior index intact.
func (c *Controller) reindex() (*ingest.Result, error) {
	c.writerLock.Lock()
	defer c.writerLock.Unlock()
	return c.runInTransaction(true)
}

func (c *Controller) runInTransaction(truncate bool) (*ingest.Result, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("watch: begin writer transaction: %w", err)
	}

	if truncate {
		if err := store.Truncate(tx); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("watch: truncate before reindex: %w", err)
		}
	}

	res, err := ingest.Ingest(tx, c.paths, c.opts, c.nextSortKey)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("watch: ingest: %w", err)
	}

	if truncate && len(res.Failed) > 0 {
		tx.Rollback()
		for _, f := range res.Failed {
			c.logger.Printf("watch: failed to index %s: %v", f.Path, f.Err)
		}
		return nil, fmt.Errorf("watch: %d file(s) failed during reindex, rolled back", len(res.Failed))
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("watch: commit writer transaction: %w", err)
	}

	for _, f := range res.Failed {
		c.logger.Printf("watch: failed to index %s: %v", f.Path, f.Err)
	}
	return res, nil
}

// StartWatching installs a recursive filesystem observer on every
// configured path and begins firing debounced re-indexes on change. Call
// Stop to tear it down.
func (c *Controller) StartWatching(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	c.watcher = w
	c.done = make(chan struct{})

	for _, p := range c.paths {
		if err := addRecursive(w, p); err != nil {
			w.Close()
			return fmt.Errorf("watch: watch %s: %w", p, err)
		}
	}

	c.wg.Add(1)
	go c.debounceLoop(ctx)
	return nil
}

// Stop tears down the filesystem observer and waits for its goroutine to
// exit. Safe to call even if StartWatching was never called.
func (c *Controller) Stop() {
	if c.watcher == nil {
		return
	}
	close(c.done)
	c.watcher.Close()
	c.wg.Wait()
}

// debounceLoop collapses bursts of filesystem events into a single
// reindex call per debounceWindow of quiescence.
func (c *Controller) debounceLoop(ctx context.Context) {
	defer c.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-c.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.logger.Printf("watch: observed %s on %s, scheduling reindex", event.Op, event.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounceWindow)
			timerC = timer.C
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Printf("watch: fsnotify error: %v", err)
		case <-timerC:
			timerC = nil
			if _, err := c.reindex(); err != nil {
				c.logger.Printf("watch: reindex failed, previous index retained: %v", err)
			}
		}
	}
}

// addRecursive watches root and, if it is a directory, every subdirectory
// beneath it — fsnotify does not recurse on its own.
func addRecursive(w *fsnotify.Watcher, root string) error {
	info, err := statPath(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.Add(root)
	}
	return walkDirs(root, func(dir string) error {
		return w.Add(dir)
	})
}
