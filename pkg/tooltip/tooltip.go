// Package tooltip builds hover content for data points and tracks where the
// tooltip is shown. It holds no chart state beyond visibility and position.
package tooltip

import (
	"strings"

	"github.com/vanderheijden86/proteoview/pkg/model"
)

// Offset from the pointer to the tooltip's top-left corner.
const (
	OffsetX = 20
	OffsetY = -5
)

// DefaultRecordBase is where point clicks navigate to.
const DefaultRecordBase = "https://salivaryproteome.org/protein/"

// Field is one label/value line of a tooltip.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Builder formats rows. IDColumn always comes first, labelled IDLabel (or
// the column name when empty), followed by Details in order.
type Builder struct {
	IDColumn string
	IDLabel  string
	Details  []string
}

// Content returns the ordered fields for r. Nonzero numbers are shown
// with two decimals; anything else, zero included, is passed through
// verbatim.
func (b Builder) Content(r model.Row) []Field {
	fields := make([]Field, 0, 1+len(b.Details))
	label := b.IDLabel
	if label == "" {
		label = b.IDColumn
	}
	fields = append(fields, Field{Label: label, Value: r[b.IDColumn].Raw})
	for _, col := range b.Details {
		if col == b.IDColumn {
			continue
		}
		fields = append(fields, Field{Label: col, Value: r[col].String()})
	}
	return fields
}

// Text joins fields as "label: value" lines.
func Text(fields []Field) string {
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(f.Label)
		sb.WriteString(": ")
		sb.WriteString(f.Value)
	}
	return sb.String()
}

// State is the visibility and position of a single tooltip.
type State struct {
	Visible bool
	X, Y    float64
	Fields  []Field
}

// Enter shows the tooltip for a point under the pointer at (px, py).
func (s *State) Enter(fields []Field, px, py float64) {
	s.Visible = true
	s.Fields = fields
	s.Move(px, py)
}

// Move follows the pointer.
func (s *State) Move(px, py float64) {
	s.X = px + OffsetX
	s.Y = py + OffsetY
}

// Leave hides the tooltip.
func (s *State) Leave() {
	s.Visible = false
	s.Fields = nil
}

// RecordURL appends the percent-encoded identifier to base. Every byte
// outside A-Z a-z 0-9 and -_.!~*'() is escaped, as encodeURIComponent does.
func RecordURL(base, id string) string {
	if base == "" {
		base = DefaultRecordBase
	}
	return base + escapeComponent(id)
}

func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0xf])
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
