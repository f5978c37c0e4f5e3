// Package venn derives the three regions of a two-set comparison and lays
// them out as two circles whose overlap is proportional to the shared
// members.
package venn

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/proteoview/pkg/loader"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/tooltip"
)

// Column names of a comparison table.
const (
	ColumnUniqueA = "Unique A"
	ColumnUniqueB = "Unique B"
	ColumnCommon  = "Common A B"
)

// Comparison holds the members of each region. Members keep file order.
type Comparison struct {
	NameA, NameB string
	UniqueA      []string
	UniqueB      []string
	Common       []string
}

// SizeA is the total size of set A (unique plus shared).
func (c Comparison) SizeA() int { return len(c.UniqueA) + len(c.Common) }

// SizeB is the total size of set B.
func (c Comparison) SizeB() int { return len(c.UniqueB) + len(c.Common) }

func skip(cell string) bool {
	s := strings.TrimSpace(cell)
	return s == "" || s == "NA"
}

// ParseComparison reads the three region columns of ds. Empty and "NA"
// cells are skipped, so columns of different lengths are fine.
func ParseComparison(ds *model.Dataset) (Comparison, error) {
	if _, err := loader.RequireColumns(ds, ColumnUniqueA, ColumnUniqueB, ColumnCommon); err != nil {
		return Comparison{}, fmt.Errorf("venn comparison: %w", err)
	}
	c := Comparison{NameA: "A", NameB: "B"}
	for _, r := range ds.Rows {
		if v := r.Text(ColumnUniqueA); !skip(v) {
			c.UniqueA = append(c.UniqueA, strings.TrimSpace(v))
		}
		if v := r.Text(ColumnUniqueB); !skip(v) {
			c.UniqueB = append(c.UniqueB, strings.TrimSpace(v))
		}
		if v := r.Text(ColumnCommon); !skip(v) {
			c.Common = append(c.Common, strings.TrimSpace(v))
		}
	}
	return c, nil
}

// Compare splits two identifier lists into their regions. Duplicates and
// "NA" entries are dropped; order follows first appearance.
func Compare(nameA string, a []string, nameB string, b []string) Comparison {
	inA := make(map[string]bool, len(a))
	inB := make(map[string]bool, len(b))
	for _, s := range a {
		if !skip(s) {
			inA[strings.TrimSpace(s)] = true
		}
	}
	for _, s := range b {
		if !skip(s) {
			inB[strings.TrimSpace(s)] = true
		}
	}

	c := Comparison{NameA: nameA, NameB: nameB}
	seen := make(map[string]bool)
	for _, s := range a {
		s = strings.TrimSpace(s)
		if skip(s) || seen[s] {
			continue
		}
		seen[s] = true
		if inB[s] {
			c.Common = append(c.Common, s)
		} else {
			c.UniqueA = append(c.UniqueA, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if skip(s) || seen[s] {
			continue
		}
		seen[s] = true
		c.UniqueB = append(c.UniqueB, s)
	}
	return c
}

// Region identifies one area of the diagram.
type Region int

const (
	RegionNone Region = iota - 1
	RegionA
	RegionB
	RegionAB
)

// Set is one region as presented to the user: which sets it belongs to,
// its member count, and a link to the record of its first member.
type Set struct {
	Region  Region   `json:"-"`
	Sets    []string `json:"sets"`
	Size    int      `json:"size"`
	Link    string   `json:"link,omitempty"`
	Members []string `json:"members"`
}

// Label is "A", "B" or "A & B".
func (s Set) Label() string { return strings.Join(s.Sets, " & ") }

// Tooltip returns the hover lines for s.
func (s Set) Tooltip() []tooltip.Field {
	return []tooltip.Field{
		{Label: "Sets", Value: s.Label()},
		{Label: "Size", Value: fmt.Sprint(s.Size)},
	}
}

// Sets returns the unique-A, unique-B and shared regions in that order.
// Sizes count region members, not whole sets.
func (c Comparison) Sets(recordBase string) []Set {
	mk := func(r Region, names []string, members []string) Set {
		s := Set{Region: r, Sets: names, Size: len(members), Members: members}
		if len(members) > 0 {
			s.Link = tooltip.RecordURL(recordBase, members[0])
		}
		return s
	}
	return []Set{
		mk(RegionA, []string{c.NameA}, c.UniqueA),
		mk(RegionB, []string{c.NameB}, c.UniqueB),
		mk(RegionAB, []string{c.NameA, c.NameB}, c.Common),
	}
}
