// Package testutil provides deterministic dataset generators for tests.
// All generators produce the same output for the same seed.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/vanderheijden86/proteoview/pkg/model"
)

// Column names used by the volcano generator.
const (
	ColID     = "Protein"
	ColEffect = "log2FoldChange"
	ColSig    = "-log10(p)"
	ColGene   = "Gene"
)

// GeneratorConfig controls dataset generation.
type GeneratorConfig struct {
	Seed     int64  // Random seed (0 = 42)
	IDPrefix string // Prefix for identifiers (default: "P")
	// Fractions of rows placed clearly in the UP and DOWN regions for the
	// default thresholds; the rest straddle the non-significant area.
	UpFraction   float64
	DownFraction float64
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:         42,
		IDPrefix:     "P",
		UpFraction:   0.2,
		DownFraction: 0.2,
	}
}

// Generator creates datasets.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "P"
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// VolcanoRow is one generated row with the category it was built for under
// model.DefaultThresholds.
type VolcanoRow struct {
	ID     string
	Gene   string
	Effect float64
	Sig    float64
	Want   model.Category
}

// Volcano generates n rows. Values are rounded to two decimals so they
// survive a trip through text unchanged.
func (g *Generator) Volcano(n int) []VolcanoRow {
	rows := make([]VolcanoRow, n)
	nUp := int(float64(n) * g.cfg.UpFraction)
	nDown := int(float64(n) * g.cfg.DownFraction)
	for i := range rows {
		r := VolcanoRow{
			ID:   fmt.Sprintf("%s%05d", g.cfg.IDPrefix, i+1),
			Gene: fmt.Sprintf("GENE%d", i+1),
		}
		switch {
		case i < nUp:
			r.Effect = round2(2.5 + g.rng.Float64()*4)
			r.Sig = round2(1 + g.rng.Float64()*9)
			r.Want = model.Up
		case i < nUp+nDown:
			r.Effect = round2(-2.5 - g.rng.Float64()*4)
			r.Sig = round2(1 + g.rng.Float64()*9)
			r.Want = model.Down
		default:
			r.Effect = round2(-1.9 + g.rng.Float64()*3.8)
			r.Sig = round2(g.rng.Float64() * 10)
			r.Want = model.NonSignificant
		}
		rows[i] = r
	}
	return rows
}

// ToDataset converts generated rows into a dataset with columns ColID,
// ColEffect, ColSig and ColGene.
func ToDataset(rows []VolcanoRow) *model.Dataset {
	ds := &model.Dataset{
		Columns: []string{ColID, ColEffect, ColSig, ColGene},
		Source:  "generated",
	}
	for _, r := range rows {
		ds.Rows = append(ds.Rows, model.Row{
			ColID:     model.ParseValue(r.ID),
			ColEffect: model.ParseValue(strconv.FormatFloat(r.Effect, 'f', -1, 64)),
			ColSig:    model.ParseValue(strconv.FormatFloat(r.Sig, 'f', -1, 64)),
			ColGene:   model.ParseValue(r.Gene),
		})
	}
	return ds
}

// ToDelimited renders rows as delimited text with a header line.
func ToDelimited(rows []VolcanoRow, sep string) string {
	var sb strings.Builder
	sb.WriteString(strings.Join([]string{ColID, ColEffect, ColSig, ColGene}, sep))
	sb.WriteByte('\n')
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s%s%v%s%v%s%s\n", r.ID, sep, r.Effect, sep, r.Sig, sep, r.Gene)
	}
	return sb.String()
}

// Wide generates a box-plot table: a "Protein" label column followed by
// samples numeric columns. Row i is centred on i so medians increase with
// the row index.
func (g *Generator) Wide(rows, samples int) *model.Dataset {
	ds := &model.Dataset{Columns: []string{ColID}, Source: "generated"}
	for j := 0; j < samples; j++ {
		ds.Columns = append(ds.Columns, fmt.Sprintf("S%d", j+1))
	}
	for i := 0; i < rows; i++ {
		r := model.Row{ColID: model.ParseValue(fmt.Sprintf("%s%05d", g.cfg.IDPrefix, i+1))}
		for j := 0; j < samples; j++ {
			v := round2(float64(i) + g.rng.NormFloat64()*0.3)
			r[ds.Columns[j+1]] = model.ParseValue(strconv.FormatFloat(v, 'f', -1, 64))
		}
		ds.Rows = append(ds.Rows, r)
	}
	return ds
}

// Normal draws n samples from N(mean, sd).
func (g *Generator) Normal(n int, mean, sd float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + g.rng.NormFloat64()*sd
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// QuickVolcano generates n rows with the default config.
func QuickVolcano(n int) *model.Dataset {
	return ToDataset(NewDefault().Volcano(n))
}

// Single returns a one-row volcano dataset.
func Single(id string, effect, sig float64) *model.Dataset {
	return ToDataset([]VolcanoRow{{ID: id, Gene: "G", Effect: effect, Sig: sig}})
}
