package store

import "fmt"

// Definiendum is one row destined for the DEFINIENDA table. Fragment == ""
// marks an ontology-identity row (primary or alternate URI); a non-empty
// Fragment marks a term the ontology defines at that in-document anchor.
type Definiendum struct {
	URI       string
	Fragment  string
	Canonical bool
}

// UpsertSpec is everything Upsert needs to persist one ontology: its
// identity rows, its serialized blobs, and its definienda.
type UpsertSpec struct {
	PrimaryURI    string
	AlternateURIs []string
	SortKey       int64
	Blobs         map[string][]byte // MIME type -> serialized bytes
	Definienda    []Definiendum
}

// Remove deletes every row for id from both tables (C9 remove).
func Remove(exec Execer, id string) error {
	if _, err := exec.Exec(`DELETE FROM definienda WHERE ontology_id = ?`, id); err != nil {
		return fmt.Errorf("store: remove definienda for %s: %w", id, err)
	}
	if _, err := exec.Exec(`DELETE FROM data WHERE ontology_id = ?`, id); err != nil {
		return fmt.Errorf("store: remove data for %s: %w", id, err)
	}
	return nil
}

// Upsert removes any existing rows for id, then bulk-inserts spec: one row
// per alternate URI (fragment NULL), one row per (media type, blob), and one
// row per definiendum. The caller is responsible for wrapping this call (and
// any sibling calls for other ontologies) in a single transaction — Upsert
// itself issues no BEGIN/COMMIT.
func Upsert(exec Execer, id string, spec UpsertSpec) error {
	if err := Remove(exec, id); err != nil {
		return err
	}

	if _, err := exec.Exec(
		`INSERT INTO definienda (uri, ontology_id, sort_key, canonical, fragment) VALUES (?, ?, ?, 1, NULL)`,
		spec.PrimaryURI, id, spec.SortKey,
	); err != nil {
		return fmt.Errorf("store: insert primary uri for %s: %w", id, err)
	}

	for _, alt := range spec.AlternateURIs {
		if _, err := exec.Exec(
			`INSERT INTO definienda (uri, ontology_id, sort_key, canonical, fragment) VALUES (?, ?, ?, 0, NULL)`,
			alt, id, spec.SortKey,
		); err != nil {
			return fmt.Errorf("store: insert alternate uri %s for %s: %w", alt, id, err)
		}
	}

	for mime, blob := range spec.Blobs {
		if _, err := exec.Exec(
			`INSERT INTO data (ontology_id, mime_type, data) VALUES (?, ?, ?)`,
			id, mime, blob,
		); err != nil {
			return fmt.Errorf("store: insert blob %s for %s: %w", mime, id, err)
		}
	}

	for _, def := range spec.Definienda {
		canonical := 0
		if def.Canonical {
			canonical = 1
		}
		if _, err := exec.Exec(
			`INSERT INTO definienda (uri, ontology_id, sort_key, canonical, fragment) VALUES (?, ?, ?, ?, ?)`,
			def.URI, id, spec.SortKey, canonical, def.Fragment,
		); err != nil {
			return fmt.Errorf("store: insert definiendum %s for %s: %w", def.URI, id, err)
		}
	}

	return nil
}
