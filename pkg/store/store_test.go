package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()
	// Use a fresh database file per test so tests do not share state, opened
	// through the same file DSN Dialect builds in production.
	d := Dialect{Path: filepath.Join(t.TempDir(), "lontod.index")}
	writer, err := OpenWriter(d)
	if err != nil {
		t.Fatalf("OpenWriter() error = %v", err)
	}
	readerSrc, err := OpenReaderSource(d, 2)
	if err != nil {
		t.Fatalf("OpenReaderSource() error = %v", err)
	}
	pool := NewPool(readerSrc, 2)
	return pool, func() {
		pool.Teardown()
		readerSrc.Close()
		writer.Close()
	}
}

func TestUpsertAndQueryRoundTrip(t *testing.T) {
	pool, cleanup := openTestDB(t)
	defer cleanup()

	ctx := context.Background()
	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	spec := UpsertSpec{
		PrimaryURI:    "http://example.org/o",
		AlternateURIs: []string{"http://example.org/o/1.0"},
		SortKey:       1,
		Blobs: map[string][]byte{
			"text/turtle": []byte("@prefix : <http://example.org/o#> .\n"),
		},
		Definienda: []Definiendum{
			{URI: "http://example.org/o/Thing", Fragment: "Thing", Canonical: true},
		},
	}
	if err := Upsert(WrapConn(ctx, conn), "o", spec); err != nil {
		pool.Release(conn)
		t.Fatalf("Upsert() error = %v", err)
	}
	pool.Release(conn)

	q := NewQuery(pool)

	data, ok, err := q.GetData(ctx, "o", "text/turtle")
	if err != nil || !ok {
		t.Fatalf("GetData() = %q, %v, %v", data, ok, err)
	}
	if string(data) != "@prefix : <http://example.org/o#> .\n" {
		t.Errorf("GetData() = %q", data)
	}

	has, err := q.HasMimeType(ctx, "o", "application/rdf+xml")
	if err != nil {
		t.Fatalf("HasMimeType() error = %v", err)
	}
	if has {
		t.Errorf("HasMimeType() = true for unindexed format")
	}

	defs, err := q.GetDefinienda(ctx, "http://example.org/o/Thing")
	if err != nil {
		t.Fatalf("GetDefinienda() error = %v", err)
	}
	if len(defs) != 1 || defs[0].Fragment != "Thing" || defs[0].OntologyID != "o" {
		t.Fatalf("GetDefinienda() = %+v", defs)
	}

	ontologies, err := q.ListOntologies(ctx)
	if err != nil {
		t.Fatalf("ListOntologies() error = %v", err)
	}
	if len(ontologies) != 1 || ontologies[0].URI != "http://example.org/o" {
		t.Fatalf("ListOntologies() = %+v", ontologies)
	}
	if ontologies[0].DefiniendaCount != 1 {
		t.Errorf("DefiniendaCount = %d, want 1", ontologies[0].DefiniendaCount)
	}
}

func TestGetDefiniendaMatchesAlternateURI(t *testing.T) {
	pool, cleanup := openTestDB(t)
	defer cleanup()

	ctx := context.Background()
	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	spec := UpsertSpec{
		PrimaryURI:    "http://example.org/o",
		AlternateURIs: []string{"http://example.org/o/1.0"},
		SortKey:       1,
		Blobs: map[string][]byte{
			"text/turtle": []byte("@prefix : <http://example.org/o#> .\n"),
		},
	}
	if err := Upsert(WrapConn(ctx, conn), "o", spec); err != nil {
		pool.Release(conn)
		t.Fatalf("Upsert() error = %v", err)
	}
	pool.Release(conn)

	q := NewQuery(pool)
	defs, err := q.GetDefinienda(ctx, "http://example.org/o/1.0")
	if err != nil {
		t.Fatalf("GetDefinienda() error = %v", err)
	}
	if len(defs) != 1 || defs[0].OntologyID != "o" || defs[0].Fragment != "" {
		t.Fatalf("GetDefinienda() = %+v, want one identity row for ontology o with no fragment", defs)
	}
}

func TestIdempotentUpsert(t *testing.T) {
	pool, cleanup := openTestDB(t)
	defer cleanup()

	ctx := context.Background()
	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer pool.Release(conn)

	spec := UpsertSpec{
		PrimaryURI: "http://example.org/o",
		SortKey:    1,
		Blobs:      map[string][]byte{"text/turtle": []byte("data")},
	}
	exec := WrapConn(ctx, conn)
	if err := Upsert(exec, "o", spec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := Upsert(exec, "o", spec); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	var count int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM definienda WHERE ontology_id = 'o'`).Scan(&count); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 1 {
		t.Errorf("definienda row count after double upsert = %d, want 1", count)
	}
}
