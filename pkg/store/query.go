package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// OntologySummary is one row of the ONTOLOGIES view (C1 derived view).
type OntologySummary struct {
	ID              string
	URI             string
	AlternateURIs   []string
	MimeTypes       []string
	DefiniendaCount int
}

// DefiniendumRow is one row returned by GetDefinienda.
type DefiniendumRow struct {
	URI        string
	OntologyID string
	Canonical  bool
	Fragment   string
}

// Query implements the read operations of C12 against the bounded reader
// pool; every method acquires and releases a connection for the duration of
// a single statement. ListOntologies reads all rows into a slice before
// releasing its connection, so callers iterate without holding one.
type Query struct {
	pool *Pool
}

// NewQuery wraps pool.
func NewQuery(pool *Pool) *Query {
	return &Query{pool: pool}
}

// ListOntologies returns every row of the ONTOLOGIES view, ordered by
// primary URI for a stable index page.
func (q *Query) ListOntologies(ctx context.Context) ([]OntologySummary, error) {
	conn, err := q.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list ontologies: %w", err)
	}
	defer q.pool.Release(conn)

	rows, err := conn.QueryContext(ctx, `SELECT ontology_id, uri, alternate_uris, definienda_count, mime_types FROM ontologies ORDER BY uri`)
	if err != nil {
		return nil, fmt.Errorf("store: list ontologies: %w", err)
	}
	defer rows.Close()

	var out []OntologySummary
	for rows.Next() {
		var (
			s               OntologySummary
			altJSON, mimeJS sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.URI, &altJSON, &s.DefiniendaCount, &mimeJS); err != nil {
			return nil, fmt.Errorf("store: scan ontology row: %w", err)
		}
		if altJSON.Valid {
			if err := json.Unmarshal([]byte(altJSON.String), &s.AlternateURIs); err != nil {
				return nil, fmt.Errorf("store: decode alternate_uris: %w", err)
			}
		}
		if mimeJS.Valid {
			if err := json.Unmarshal([]byte(mimeJS.String), &s.MimeTypes); err != nil {
				return nil, fmt.Errorf("store: decode mime_types: %w", err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetData returns the stored bytes for (id, mimeType), and whether a row
// existed at all.
func (q *Query) GetData(ctx context.Context, id, mimeType string) ([]byte, bool, error) {
	conn, err := q.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("store: get data: %w", err)
	}
	defer q.pool.Release(conn)

	var data []byte
	err = conn.QueryRowContext(ctx, `SELECT data FROM data WHERE ontology_id = ? AND mime_type = ?`, id, mimeType).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get data: %w", err)
	}
	return data, true, nil
}

// HasMimeType reports whether id has a blob for mimeType.
func (q *Query) HasMimeType(ctx context.Context, id, mimeType string) (bool, error) {
	conn, err := q.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("store: has mime type: %w", err)
	}
	defer q.pool.Release(conn)

	var one int
	err = conn.QueryRowContext(ctx, `SELECT 1 FROM data WHERE ontology_id = ? AND mime_type = ? LIMIT 1`, id, mimeType).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: has mime type: %w", err)
	}
	return true, nil
}

// GetMimeTypes lists the MIME types available for id, in insertion order.
func (q *Query) GetMimeTypes(ctx context.Context, id string) ([]string, error) {
	conn, err := q.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: get mime types: %w", err)
	}
	defer q.pool.Release(conn)

	rows, err := conn.QueryContext(ctx, `SELECT mime_type FROM data WHERE ontology_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("store: get mime types: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("store: scan mime type: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetDefinienda resolves a set of candidate IRIs to the ontologies that
// define (or declare themselves as) them, ordered by (canonical DESC,
// sort_key DESC) — the first row is the preferred redirect target. Matches
// both term rows (FRAGMENT set) and ontology-identity rows (FRAGMENT NULL,
// primary or alternate IRI), so dereferencing an ontology's own IRI
// redirects the same way as dereferencing one of its terms.
func (q *Query) GetDefinienda(ctx context.Context, candidateURIs ...string) ([]DefiniendumRow, error) {
	if len(candidateURIs) == 0 {
		return nil, nil
	}

	conn, err := q.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: get definienda: %w", err)
	}
	defer q.pool.Release(conn)

	placeholders := make([]byte, 0, len(candidateURIs)*2)
	args := make([]any, 0, len(candidateURIs))
	for i, u := range candidateURIs {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, u)
	}

	query := fmt.Sprintf(
		`SELECT uri, ontology_id, canonical, fragment FROM definienda
		 WHERE uri IN (%s)
		 ORDER BY canonical DESC, sort_key DESC`,
		string(placeholders),
	)

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: get definienda: %w", err)
	}
	defer rows.Close()

	var out []DefiniendumRow
	for rows.Next() {
		var (
			d        DefiniendumRow
			canon    int
			fragment sql.NullString
		)
		if err := rows.Scan(&d.URI, &d.OntologyID, &canon, &fragment); err != nil {
			return nil, fmt.Errorf("store: scan definiendum: %w", err)
		}
		d.Canonical = canon != 0
		d.Fragment = fragment.String
		out = append(out, d)
	}
	return out, rows.Err()
}
