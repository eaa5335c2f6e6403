package store

// schemaDDL creates DEFINIENDA, DATA and the derived ONTOLOGIES view. It is
// safe to run repeatedly: tables use IF NOT EXISTS and the view is dropped
// and recreated so a schema change to the view never requires a migration.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS definienda (
	uri          TEXT NOT NULL,
	ontology_id  TEXT NOT NULL,
	sort_key     INTEGER NOT NULL DEFAULT 0,
	canonical    INTEGER NOT NULL DEFAULT 0,
	fragment     TEXT
);

CREATE INDEX IF NOT EXISTS idx_definienda_ontology ON definienda (ontology_id);
CREATE INDEX IF NOT EXISTS idx_definienda_uri ON definienda (uri);

CREATE TABLE IF NOT EXISTS data (
	ontology_id TEXT NOT NULL,
	mime_type   TEXT NOT NULL,
	data        BLOB NOT NULL,
	PRIMARY KEY (ontology_id, mime_type)
);

DROP VIEW IF EXISTS ontologies;
CREATE VIEW ontologies AS
SELECT
	d.ontology_id AS ontology_id,
	(
		SELECT uri FROM definienda
		WHERE ontology_id = d.ontology_id AND fragment IS NULL AND canonical = 1
		LIMIT 1
	) AS uri,
	(
		SELECT coalesce(json_group_array(uri), '[]') FROM definienda
		WHERE ontology_id = d.ontology_id AND fragment IS NULL AND canonical = 0
	) AS alternate_uris,
	(
		SELECT COUNT(*) FROM definienda
		WHERE ontology_id = d.ontology_id AND fragment IS NOT NULL
	) AS definienda_count,
	(
		SELECT coalesce(json_group_array(mime_type), '[]') FROM data
		WHERE ontology_id = d.ontology_id
	) AS mime_types
FROM definienda d
GROUP BY d.ontology_id;
`

// InitializeSchema runs the idempotent DDL above. It is typically called once
// at daemon startup before the watcher begins its first index_and_commit.
func InitializeSchema(exec Execer) error {
	_, err := exec.Exec(schemaDDL)
	return err
}

// Truncate empties both tables, leaving the schema intact.
func Truncate(exec Execer) error {
	if _, err := exec.Exec(`DELETE FROM definienda`); err != nil {
		return err
	}
	if _, err := exec.Exec(`DELETE FROM data`); err != nil {
		return err
	}
	return nil
}
