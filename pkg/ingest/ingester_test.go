package ingest

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/tkw1536/lontod/pkg/lontoderr"
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

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.InitializeSchema(db); err != nil {
		t.Fatalf("InitializeSchema() error = %v", err)
	}
	return db
}

func TestIngestDirectoryIndexesRecognizedFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "onto.ttl"), []byte(sampleTurtle), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("not rdf"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	db := openTestDB(t)
	res, err := Ingest(db, []string{dir}, Options{}, func(n int) int64 { return int64(n) })
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(res.Indexed) != 1 {
		t.Fatalf("Indexed = %v, want exactly the one .ttl file", res.Indexed)
	}
	if len(res.Failed) != 0 {
		t.Fatalf("Failed = %v, want none", res.Failed)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ontologies`).Scan(&count); err != nil {
		t.Fatalf("query ontologies view: %v", err)
	}
	if count != 1 {
		t.Fatalf("ontologies view has %d rows, want 1", count)
	}
}

func TestIngestAggregatesFailures(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.ttl"), []byte("not valid turtle {{{"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "good.ttl"), []byte(sampleTurtle), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	db := openTestDB(t)
	res, err := Ingest(db, []string{dir}, Options{}, func(n int) int64 { return int64(n) })
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(res.Indexed) != 1 {
		t.Fatalf("Indexed = %v, want 1", res.Indexed)
	}
	if len(res.Failed) != 1 {
		t.Fatalf("Failed = %v, want 1", res.Failed)
	}
}

func TestIngestDistinguishesNotAnOntologyFromParseFailure(t *testing.T) {
	dir := t.TempDir()
	const notAnOntology = `
@prefix ex: <http://example.org/onto#> .
ex:Widget a ex:Thing .
`
	if err := os.WriteFile(filepath.Join(dir, "noontology.ttl"), []byte(notAnOntology), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.ttl"), []byte("not valid turtle {{{"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	db := openTestDB(t)
	res, err := Ingest(db, []string{dir}, Options{}, func(n int) int64 { return int64(n) })
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(res.Failed) != 2 {
		t.Fatalf("Failed = %v, want 2", res.Failed)
	}

	var sawNotAnOntology, sawParseFailure bool
	for _, f := range res.Failed {
		switch {
		case errors.Is(f.Err, lontoderr.ErrNotAnOntology):
			sawNotAnOntology = true
		case errors.Is(f.Err, lontoderr.ErrParseFailure):
			sawParseFailure = true
		}
	}
	if !sawNotAnOntology {
		t.Errorf("Failed = %v, want one failure wrapping ErrNotAnOntology", res.Failed)
	}
	if !sawParseFailure {
		t.Errorf("Failed = %v, want one failure wrapping ErrParseFailure", res.Failed)
	}
}
