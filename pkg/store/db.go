// Package store implements the persistent ontology catalog: the DEFINIENDA
// and DATA tables plus the derived ONTOLOGIES view (C1), a bounded reader
// pool (C2), write operations (C9, the Indexer) and read operations (C12,
// the Query). It follows the same modernc.org/sqlite wiring the teacher's
// pkg/metadatastore package uses.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Execer is satisfied by *sql.DB, *sql.Tx and *sql.Conn (via ExecContext
// wrappers); it lets schema/indexer code run against either a bare
// connection or an open transaction without caring which.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// execWrapper adapts a *sql.Conn (which only exposes context-ful methods) to
// Execer.
type execWrapper struct {
	conn *sql.Conn
	ctx  context.Context
}

func (w execWrapper) Exec(query string, args ...any) (sql.Result, error) {
	return w.conn.ExecContext(w.ctx, query, args...)
}

// WrapConn adapts a raw *sql.Conn to Execer for callers outside this package
// (the controller runs schema init against its writer conn this way).
func WrapConn(ctx context.Context, conn *sql.Conn) Execer {
	return execWrapper{conn: conn, ctx: ctx}
}

// Dialect describes how to reach the single SQLite-compatible database file
// (or shared in-memory database, per spec.md §6.4) that backs both the
// writer and the reader pool.
type Dialect struct {
	// Path is either a filesystem path or "" to use an in-memory
	// shared-cache database.
	Path string
}

// DSN returns the modernc.org/sqlite connection string for one connection
// against this dialect. Every connection must share _busy_timeout and
// _journal_mode so reader snapshots and the single writer agree on locking
// behavior.
func (d Dialect) DSN() string {
	if d.Path == "" {
		// Shared in-memory cache: all connections using this exact DSN see
		// the same database for the lifetime of the process.
		return "file::memory:?cache=shared&_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL"
	}
	return fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL", d.Path)
}

// OpenWriter opens the single connection the controller (C11) exclusively
// owns. Readers must never use this connection.
func OpenWriter(d Dialect) (*sql.DB, error) {
	db, err := sql.Open("sqlite", d.DSN())
	if err != nil {
		return nil, fmt.Errorf("store: open writer: %w", err)
	}
	// Exactly one physical connection: the writer is single-threaded by
	// design (§4.8), so there is nothing to pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping writer: %w", err)
	}
	if err := InitializeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: initialize schema: %w", err)
	}
	return db, nil
}

// OpenReaderSource opens the *sql.DB that backs the reader Pool (C2). The
// pool hands out *sql.Conn values pulled from this source; the source itself
// may open more physical connections than `size` transiently, but Pool
// bounds how many are handed to callers at once.
func OpenReaderSource(d Dialect, size int) (*sql.DB, error) {
	db, err := sql.Open("sqlite", d.DSN())
	if err != nil {
		return nil, fmt.Errorf("store: open reader source: %w", err)
	}
	db.SetMaxOpenConns(size)
	db.SetMaxIdleConns(size)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping reader source: %w", err)
	}
	return db, nil
}
