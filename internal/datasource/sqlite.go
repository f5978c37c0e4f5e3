package datasource

import (
	"database/sql"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/proteoview/pkg/debug"
	"github.com/vanderheijden86/proteoview/pkg/export"
	"github.com/vanderheijden86/proteoview/pkg/loader"
	"github.com/vanderheijden86/proteoview/pkg/metrics"
	"github.com/vanderheijden86/proteoview/pkg/model"
)

// SQLiteReader provides read access to a database written by
// export.SQLiteExporter.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA temp_store = MEMORY"); err != nil {
		debug.Log("sqlite pragma on %s: %v", source.Path, err)
	}

	return &SQLiteReader{db: db, path: source.Path}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Meta returns every key of the meta table.
func (r *SQLiteReader) Meta() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("read meta: %w", err)
		}
		meta[key] = value.String
	}
	return meta, rows.Err()
}

// CheckSchema rejects databases without a points table or written by a
// newer schema than this build understands.
func (r *SQLiteReader) CheckSchema() error {
	meta, err := r.Meta()
	if err != nil {
		return err
	}
	raw, ok := meta[export.MetaSchemaVersion]
	if !ok {
		return fmt.Errorf("not a proteoview database: no %s", export.MetaSchemaVersion)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid schema version %q", raw)
	}
	if v > export.SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported %d", v, export.SchemaVersion)
	}
	return nil
}

// CountRows returns the number of stored points.
func (r *SQLiteReader) CountRows() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM points`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// LoadDataset rebuilds the dataset the database was exported from. Every
// cell is re-coerced from its raw text, so the result matches a fresh load
// of the original file.
func (r *SQLiteReader) LoadDataset() (*model.Dataset, error) {
	defer metrics.Timer(metrics.DatasetLoad)()

	if err := r.CheckSchema(); err != nil {
		return nil, fmt.Errorf("%w: %v", loader.ErrParse, err)
	}
	meta, err := r.Meta()
	if err != nil {
		return nil, err
	}

	ds := &model.Dataset{Source: r.path}
	if err := json.Unmarshal([]byte(meta[export.MetaColumns]), &ds.Columns); err != nil {
		return nil, fmt.Errorf("%w: columns meta: %v", loader.ErrParse, err)
	}
	if len(ds.Columns) == 0 {
		return nil, fmt.Errorf("%w: database has no columns", loader.ErrParse)
	}

	rows, err := r.db.Query(`SELECT row_index, fields_json FROM points ORDER BY row_index`)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idx int
		var fieldsJSON string
		if err := rows.Scan(&idx, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		var raw map[string]string
		if err := json.Unmarshal([]byte(fieldsJSON), &raw); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", loader.ErrParse, idx, err)
		}
		row := make(model.Row, len(ds.Columns))
		for _, col := range ds.Columns {
			row[col] = model.ParseValue(raw[col])
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	debug.Log("loaded %d rows from %s", len(ds.Rows), r.path)
	return ds, nil
}

// StoredCategory is a row's category as classified at export time.
type StoredCategory struct {
	ID       string
	Category model.Category
}

// LoadCategories returns the categories recorded at export time, in row
// order. They reflect the thresholds in meta, not the current config.
func (r *SQLiteReader) LoadCategories() ([]StoredCategory, error) {
	rows, err := r.db.Query(`SELECT id, category FROM points ORDER BY row_index`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []StoredCategory
	for rows.Next() {
		var id, cat string
		if err := rows.Scan(&id, &cat); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c, err := model.ParseCategory(cat)
		if err != nil {
			return nil, err
		}
		out = append(out, StoredCategory{ID: id, Category: c})
	}
	return out, rows.Err()
}
