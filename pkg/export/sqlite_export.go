package export

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/classify"
	"github.com/vanderheijden86/proteoview/pkg/metrics"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/version"
)

// SQLiteExporter writes a classified dataset to a SQLite database that
// internal/datasource can load back.
type SQLiteExporter struct {
	Dataset    *model.Dataset
	Classifier classify.Classifier
	IDColumn   string
	Kind       chart.Kind

	now func() time.Time
}

// NewSQLiteExporter exports the rows behind a volcano or scatter chart.
func NewSQLiteExporter(v *chart.Volcano) *SQLiteExporter {
	x, y, id := v.Columns()
	return &SQLiteExporter{
		Dataset:    v.Dataset(),
		Classifier: classify.Classifier{Effect: x, Significance: y, Thresholds: v.Config().Thresholds},
		IDColumn:   id,
		Kind:       v.Kind(),
		now:        time.Now,
	}
}

// Export writes the database to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	defer metrics.Timer(metrics.Export)()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertPoints(db); err != nil {
		return fmt.Errorf("insert points: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(db); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func (e *SQLiteExporter) insertPoints(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO points (row_index, id, effect, significance, category, fields_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range e.Dataset.Rows {
		raw := make(map[string]string, len(r))
		for col, v := range r {
			raw[col] = v.Raw
		}
		fields, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		cat := e.Classifier.Row(r)
		if _, err := stmt.Exec(i, r.Text(e.IDColumn), nullable(r.Float(e.Classifier.Effect)),
			nullable(r.Float(e.Classifier.Significance)), cat.String(), string(fields)); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	columns, err := json.Marshal(e.Dataset.Columns)
	if err != nil {
		return err
	}
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	meta := map[string]string{
		MetaSchemaVersion: strconv.Itoa(SchemaVersion),
		MetaVersion:       version.Version,
		MetaGeneratedAt:   now().UTC().Format(time.RFC3339),
		MetaSource:        e.Dataset.Source,
		MetaKind:          string(e.Kind),
		MetaColumns:       string(columns),
		MetaEffectColumn:  e.Classifier.Effect,
		MetaSigColumn:     e.Classifier.Significance,
		MetaIDColumn:      e.IDColumn,
		MetaSigThreshold:  strconv.FormatFloat(e.Classifier.Thresholds.Significance, 'g', -1, 64),
		MetaFoldThreshold: strconv.FormatFloat(e.Classifier.Thresholds.FoldChange, 'g', -1, 64),
		MetaRowCount:      strconv.Itoa(e.Dataset.Len()),
	}
	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}

func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
