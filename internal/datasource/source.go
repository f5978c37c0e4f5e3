// Package datasource detects what kind of input pv was pointed at and
// loads it: a delimited table on disk, a delimited table behind an http(s)
// URL, or a SQLite database previously written by export.SQLiteExporter.
package datasource

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/proteoview/pkg/loader"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeSQLite is a database written by pv --sqlite
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeDelimited is a CSV or TSV file on disk
	SourceTypeDelimited SourceType = "delimited"
	// SourceTypeURL is a delimited file fetched over http(s)
	SourceTypeURL SourceType = "url"
)

// sqliteMagic is the 16-byte header of every SQLite 3 database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// DataSource describes one input.
type DataSource struct {
	Type    SourceType `json:"type"`
	Path    string     `json:"path"`
	ModTime time.Time  `json:"mod_time,omitempty"`
	Size    int64      `json:"size"`
	// Valid and ValidationError are filled in by ValidateSource.
	Valid           bool   `json:"valid"`
	ValidationError string `json:"validation_error,omitempty"`
	// RowCount is the number of stored rows, known only for SQLite sources
	// after validation.
	RowCount int `json:"row_count"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	if s.Type == SourceTypeURL {
		return fmt.Sprintf("%s (%s, %s)", s.Path, s.Type, status)
	}
	return fmt.Sprintf("%s (%s, mod=%s, rows=%d, %s)",
		s.Path, s.Type, s.ModTime.Format(time.RFC3339), s.RowCount, status)
}

// Detect classifies src. URLs are never touched; local files are stat'ed
// and recognised as SQLite by extension or by their header bytes.
func Detect(src string) (DataSource, error) {
	if loader.IsURL(src) {
		return DataSource{Type: SourceTypeURL, Path: src}, nil
	}

	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return DataSource{}, fmt.Errorf("%w: no data file at %s", loader.ErrFetch, src)
		}
		return DataSource{}, fmt.Errorf("%w: %v", loader.ErrFetch, err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("%w: %s is a directory", loader.ErrFetch, src)
	}

	ds := DataSource{
		Type:    SourceTypeDelimited,
		Path:    src,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}
	switch strings.ToLower(filepath.Ext(src)) {
	case ".sqlite", ".sqlite3", ".db":
		ds.Type = SourceTypeSQLite
	default:
		if hasSQLiteHeader(src) {
			ds.Type = SourceTypeSQLite
		}
	}
	return ds, nil
}

func hasSQLiteHeader(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return bytes.Equal(head, sqliteMagic)
}

// ValidateSource checks that a source can be loaded and records the result
// on the source itself.
func ValidateSource(source *DataSource) error {
	var err error
	switch source.Type {
	case SourceTypeSQLite:
		err = validateSQLite(source)
	case SourceTypeDelimited:
		if source.Size == 0 {
			err = fmt.Errorf("empty file")
		}
	case SourceTypeURL:
		// Checked when fetched.
	default:
		err = fmt.Errorf("unknown source type: %s", source.Type)
	}

	source.Valid = err == nil
	source.ValidationError = ""
	if err != nil {
		source.ValidationError = err.Error()
	}
	return err
}

func validateSQLite(source *DataSource) error {
	reader, err := NewSQLiteReader(*source)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := reader.CheckSchema(); err != nil {
		return err
	}
	n, err := reader.CountRows()
	if err != nil {
		return fmt.Errorf("count rows: %w", err)
	}
	source.RowCount = n
	return nil
}
