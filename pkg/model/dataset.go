// Package model holds the data types shared by the loaders, classifiers
// and renderers: tabular datasets, cell values, thresholds and the
// regulation category derived from them.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is one cell of a delimited table. Raw always holds the text as it
// appeared in the file; Num is only meaningful when IsNum is true.
type Value struct {
	Raw   string  `json:"raw"`
	Num   float64 `json:"num,omitempty"`
	IsNum bool    `json:"is_num"`
}

// ParseValue coerces a raw cell to a number when it parses as a finite
// float. Text that fails to parse, or that parses to NaN or an infinity, is
// kept as a string.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{Raw: raw}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{Raw: raw}
	}
	return Value{Raw: raw, Num: f, IsNum: true}
}

// Float returns the numeric value, or NaN for string cells.
func (v Value) Float() float64 {
	if !v.IsNum {
		return math.NaN()
	}
	return v.Num
}

// String formats numbers with two decimals and returns strings untouched.
// A zero is falsy in the coercion rule, so its cell shows as typed ("0",
// "0.0"); the number still takes part in classification.
func (v Value) String() string {
	if v.IsNum && v.Num != 0 {
		return strconv.FormatFloat(v.Num, 'f', 2, 64)
	}
	return v.Raw
}

// Row maps a column name to its cell.
type Row map[string]Value

// Float looks up a column and returns its numeric value (NaN if absent or
// non-numeric).
func (r Row) Float(col string) float64 {
	v, ok := r[col]
	if !ok {
		return math.NaN()
	}
	return v.Float()
}

// Text returns the raw text of a column, or "" when absent.
func (r Row) Text(col string) string {
	return r[col].Raw
}

// Dataset is an ordered table loaded from one source. Rows are never
// mutated after loading.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	Source  string   `json:"source"`
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// HasColumn reports whether the header contains name.
func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// ColumnIndex returns the header position of name, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ResolveColumn maps a column reference to a header name. A reference is
// either a literal column name or a 0-based positional index written as
// "#N". Literal names win when a header happens to start with '#'.
func (d *Dataset) ResolveColumn(ref string) (string, error) {
	if d.HasColumn(ref) {
		return ref, nil
	}
	if strings.HasPrefix(ref, "#") {
		idx, err := strconv.Atoi(ref[1:])
		if err != nil {
			return "", fmt.Errorf("invalid column index %q: %w", ref, err)
		}
		if idx < 0 || idx >= len(d.Columns) {
			return "", fmt.Errorf("column index %d out of range (have %d columns)", idx, len(d.Columns))
		}
		return d.Columns[idx], nil
	}
	return "", fmt.Errorf("column %q not found", ref)
}

// Floats extracts a column as numbers, NaN for non-numeric cells.
func (d *Dataset) Floats(col string) []float64 {
	out := make([]float64, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Float(col)
	}
	return out
}
