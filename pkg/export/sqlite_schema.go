package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in meta so readers can reject newer layouts.
const SchemaVersion = 1

// Meta keys written by SQLiteExporter.
const (
	MetaSchemaVersion = "schema_version"
	MetaVersion       = "version"
	MetaGeneratedAt   = "generated_at"
	MetaSource        = "source"
	MetaKind          = "kind"
	MetaColumns       = "columns"
	MetaEffectColumn  = "effect_column"
	MetaSigColumn     = "significance_column"
	MetaIDColumn      = "id_column"
	MetaSigThreshold  = "significance_threshold"
	MetaFoldThreshold = "fold_change_threshold"
	MetaRowCount      = "row_count"
)

// CreateSchema creates the points and meta tables and their indexes.
func CreateSchema(db *sql.DB) error {
	if err := createPointsTable(db); err != nil {
		return fmt.Errorf("create points table: %w", err)
	}
	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// createPointsTable holds one row per dataset row. effect and significance
// are NULL when the cell was not numeric; fields_json keeps every raw cell
// so the dataset can be rebuilt exactly.
func createPointsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS points (
			row_index INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			effect REAL,
			significance REAL,
			category TEXT NOT NULL,
			fields_json TEXT NOT NULL
		)
	`)
	return err
}

func createMetaTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`)
	return err
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_points_id ON points(id)`,
		`CREATE INDEX IF NOT EXISTS idx_points_category ON points(category, significance DESC)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// InsertMetaValue stores one metadata entry, replacing an existing key.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// OptimizeDatabase compacts the file once all rows are written.
func OptimizeDatabase(db *sql.DB) error {
	for _, stmt := range []string{`PRAGMA journal_mode=DELETE`, `ANALYZE`, `PRAGMA optimize`} {
		// Some pragmas fail depending on state; none are required.
		_, _ = db.Exec(stmt)
	}
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}
