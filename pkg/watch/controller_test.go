package watch

import (
	"database/sql"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/tkw1536/lontod/pkg/ingest"
	"github.com/tkw1536/lontod/pkg/store"
)

const sampleTurtle = `
@prefix ex: <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix dct: <http://purl.org/dc/terms/> .

ex: a owl:Ontology ;
  dct:title "Example Ontology" .

ex:Widget a owl:Class .
`

func newTestController(t *testing.T, dir string) *Controller {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.InitializeSchema(db); err != nil {
		t.Fatalf("InitializeSchema() error = %v", err)
	}
	logger := log.New(io.Discard, "", 0)
	return New(db, []string{dir}, ingest.Options{}, logger)
}

func TestIndexAndCommitPopulatesStore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "onto.ttl"), []byte(sampleTurtle), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	c := newTestController(t, dir)

	res, err := c.IndexAndCommit()
	if err != nil {
		t.Fatalf("IndexAndCommit() error = %v", err)
	}
	if len(res.Indexed) != 1 {
		t.Fatalf("Indexed = %v, want 1", res.Indexed)
	}

	var count int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM ontologies`).Scan(&count); err != nil {
		t.Fatalf("query ontologies: %v", err)
	}
	if count != 1 {
		t.Fatalf("ontologies count = %d, want 1", count)
	}
}

func TestReindexTruncatesBeforeRebuilding(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "onto.ttl"), []byte(sampleTurtle), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	c := newTestController(t, dir)

	if _, err := c.IndexAndCommit(); err != nil {
		t.Fatalf("IndexAndCommit() error = %v", err)
	}
	if _, err := c.reindex(); err != nil {
		t.Fatalf("reindex() error = %v", err)
	}

	var count int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM ontologies`).Scan(&count); err != nil {
		t.Fatalf("query ontologies: %v", err)
	}
	if count != 1 {
		t.Fatalf("ontologies count after reindex = %d, want 1 (stale rows from the previous pass must be gone)", count)
	}
}

func TestIndexAndCommitRollsBackOnFailure(t *testing.T) {
	// A database whose schema was never initialized causes every Upsert
	// to fail; IndexAndCommit must surface that as an error rather than
	// leaving a partial write committed.
	db, err := sql.Open("sqlite", "file::memory:?cache=shared&mode=rwc")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "onto.ttl"), []byte(sampleTurtle), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	c := New(db, []string{dir}, ingest.Options{}, log.New(io.Discard, "", 0))
	if _, err := c.IndexAndCommit(); err == nil {
		t.Fatalf("expected an error indexing against an uninitialized schema")
	}
}
