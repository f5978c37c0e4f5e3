package ui

import (
	"image/color"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Canvas is a character grid where every cell holds a 2x4 block of braille
// dots, plus an overlay layer for text. Dot coordinates run from (0, 0) at
// the top-left to (2*cols-1, 4*rows-1).
type Canvas struct {
	cols, rows int
	dots       []uint8
	ink        []color.RGBA
	text       []rune
	layer      []cellLayer
	textInk    []color.RGBA
}

type cellLayer uint8

const (
	layerDots cellLayer = iota
	layerText
	layerTip
	// layerCont marks the trailing cell of a double-width rune.
	layerCont
)

const brailleBase = 0x2800

// brailleBits[y][x] is the dot bit for position (x, y) inside a cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// NewCanvas returns an empty canvas. Non-positive sizes yield a 1x1 canvas.
func NewCanvas(cols, rows int) *Canvas {
	cols, rows = max(cols, 1), max(rows, 1)
	n := cols * rows
	return &Canvas{
		cols:    cols,
		rows:    rows,
		dots:    make([]uint8, n),
		ink:     make([]color.RGBA, n),
		text:    make([]rune, n),
		layer:   make([]cellLayer, n),
		textInk: make([]color.RGBA, n),
	}
}

// Cols and Rows are the size in cells.
func (c *Canvas) Cols() int { return c.cols }
func (c *Canvas) Rows() int { return c.rows }

// DotSize is the size in dots.
func (c *Canvas) DotSize() (w, h int) { return c.cols * 2, c.rows * 4 }

// Set turns on the dot at (x, y). Out-of-range dots are ignored. The last
// colour set in a cell wins.
func (c *Canvas) Set(x, y int, ink color.RGBA) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	i := (y/4)*c.cols + x/2
	c.dots[i] |= brailleBits[y%4][x%2]
	c.ink[i] = ink
}

// IsSet reports whether the dot at (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return false
	}
	return c.dots[(y/4)*c.cols+x/2]&brailleBits[y%4][x%2] != 0
}

// Line draws a segment with Bresenham's algorithm. When dashed, dots
// alternate in runs of two.
func (c *Canvas) Line(x0, y0, x1, y1 int, ink color.RGBA, dashed bool) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for step := 0; ; step++ {
		if !dashed || step%4 < 2 {
			c.Set(x0, y0, ink)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Text writes s starting at cell (col, row), clipped to the canvas. Wide
// runes take two cells.
func (c *Canvas) Text(col, row int, s string, ink color.RGBA) {
	c.write(col, row, s, ink, layerText)
}

// Box writes lines as a block whose top-left cell is (col, row). The block
// is shifted left and up as needed to stay on the canvas.
func (c *Canvas) Box(col, row int, lines []string) {
	w := 0
	for _, l := range lines {
		w = max(w, runewidth.StringWidth(l))
	}
	if col+w > c.cols {
		col = c.cols - w
	}
	if row+len(lines) > c.rows {
		row = c.rows - len(lines)
	}
	col, row = max(col, 0), max(row, 0)
	for i, l := range lines {
		c.write(col, row+i, padRight(l, w), color.RGBA{}, layerTip)
	}
}

func (c *Canvas) write(col, row int, s string, ink color.RGBA, layer cellLayer) {
	if row < 0 || row >= c.rows {
		return
	}
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col >= 0 && col+rw <= c.cols {
			i := row*c.cols + col
			c.text[i], c.layer[i], c.textInk[i] = r, layer, ink
			if rw == 2 {
				c.layer[i+1] = layerCont
			}
		}
		col += rw
		if col >= c.cols {
			return
		}
	}
}

// Cell returns the rune displayed at (col, row).
func (c *Canvas) Cell(col, row int) rune {
	i := row*c.cols + col
	switch c.layer[i] {
	case layerText, layerTip:
		return c.text[i]
	case layerCont:
		return 0
	}
	if c.dots[i] == 0 {
		return ' '
	}
	return rune(brailleBase + int(c.dots[i]))
}

// Lines returns the canvas as plain text, one string per row.
func (c *Canvas) Lines() []string {
	out := make([]string, c.rows)
	var sb strings.Builder
	for row := 0; row < c.rows; row++ {
		sb.Reset()
		for col := 0; col < c.cols; col++ {
			if r := c.Cell(col, row); r != 0 {
				sb.WriteRune(r)
			}
		}
		out[row] = sb.String()
	}
	return out
}

// Render draws the canvas with colours. Runs of cells with the same style
// are rendered together.
func (c *Canvas) Render(th Theme) string {
	var out strings.Builder
	var run strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		var cur cellStyle
		flush := func() {
			if run.Len() == 0 {
				return
			}
			out.WriteString(th.cellStyle(cur).Render(run.String()))
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			i := row*c.cols + col
			r := c.Cell(col, row)
			if r == 0 {
				continue
			}
			st := cellStyle{layer: c.layer[i]}
			switch c.layer[i] {
			case layerText:
				st.ink = c.textInk[i]
			case layerDots:
				if c.dots[i] != 0 {
					st.ink = c.ink[i]
				}
			}
			if st != cur {
				flush()
				cur = st
			}
			run.WriteRune(r)
		}
		flush()
	}
	return out.String()
}

type cellStyle struct {
	layer cellLayer
	ink   color.RGBA
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
