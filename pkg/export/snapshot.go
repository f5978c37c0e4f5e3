// Package export writes chart scenes and classified datasets to files:
// static SVG and PNG snapshots, a self-contained interactive HTML page,
// a SQLite database and a markdown summary.
package export

import (
	"fmt"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/metrics"
)

// Format is an output file format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatHTML Format = "html"
)

// FormatFor infers the format from a path's extension. Paths without an
// extension default to SVG.
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg", "":
		return FormatSVG, nil
	case ".png":
		return FormatPNG, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want .svg, .png or .html)", ext)
	}
}

// SaveChart renders c to path in the format given by its extension.
func SaveChart(c chart.Chart, path string) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if filepath.Ext(path) == "" {
		path += ".svg"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case FormatHTML:
		err = WriteHTML(f, c)
	case FormatPNG:
		err = WritePNG(f, c.Scene())
	default:
		err = WriteSVG(f, c.Scene())
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteSVG draws s as a standalone SVG document.
func WriteSVG(w io.Writer, s *chart.Scene) error {
	defer metrics.Timer(metrics.Render)()

	canvas := svg.New(w)
	canvas.Start(px(s.Width), px(s.Height))
	if s.Title != "" {
		canvas.Title(s.Title)
	}
	canvas.Def()
	canvas.ClipPath(`id="plot-clip"`)
	canvas.Rect(px(s.Plot.X0), px(s.Plot.Y0), px(s.Plot.Width()), px(s.Plot.Height()))
	canvas.ClipEnd()
	canvas.DefEnd()
	canvas.Rect(0, 0, px(s.Width), px(s.Height), "fill:"+css(s.Background))
	drawSVGItems(canvas, s)
	canvas.End()
	return nil
}

func drawSVGItems(canvas *svg.SVG, s *chart.Scene) {
	for _, it := range s.Items {
		switch v := it.(type) {
		case chart.Circle:
			withClip(canvas, v.Clip, func() {
				canvas.Circle(px(v.X), px(v.Y), pxr(v.R), attrs(v.Class, fillStroke(v.Fill, v.Stroke, v.StrokeWidth))...)
			})
		case chart.Line:
			style := fmt.Sprintf("stroke:%s;stroke-width:%s", css(v.Stroke), num(v.Width))
			if v.Dashed {
				style += ";stroke-dasharray:4,4"
			}
			withClip(canvas, v.Clip, func() {
				canvas.Line(px(v.X1), px(v.Y1), px(v.X2), px(v.Y2), attrs(v.Class, `style="`+style+`"`)...)
			})
		case chart.Rect:
			withClip(canvas, v.Clip, func() {
				canvas.Rect(px(v.X), px(v.Y), px(v.W), px(v.H), attrs(v.Class, fillStroke(v.Fill, v.Stroke, v.StrokeWidth))...)
			})
		case chart.Polyline:
			xs := make([]int, len(v.Points))
			ys := make([]int, len(v.Points))
			for i, p := range v.Points {
				xs[i], ys[i] = px(p.X), px(p.Y)
			}
			fill := "none"
			if v.Fill.A > 0 {
				fill = css(v.Fill)
			}
			style := fmt.Sprintf(`style="fill:%s;stroke:%s;stroke-width:%s"`, fill, css(v.Stroke), num(v.Width))
			withClip(canvas, v.Clip, func() {
				if v.Closed {
					canvas.Polygon(xs, ys, attrs(v.Class, style)...)
				} else {
					canvas.Polyline(xs, ys, attrs(v.Class, style)...)
				}
			})
		case chart.Text:
			style := fmt.Sprintf("fill:%s;font-size:%spx;font-family:sans-serif;text-anchor:%s", css(v.Color), num(v.Size), anchor(v.Anchor))
			if v.Bold {
				style += ";font-weight:bold"
			}
			at := attrs(v.Class, `style="`+style+`"`)
			if v.Rotate != 0 {
				at = append(at, fmt.Sprintf(`transform="rotate(%s %d %d)"`, num(v.Rotate), px(v.X), px(v.Y)))
			}
			canvas.Text(px(v.X), px(v.Y), v.Text, at...)
		}
	}
}

func withClip(canvas *svg.SVG, clip bool, draw func()) {
	if !clip {
		draw()
		return
	}
	canvas.Group(`clip-path="url(#plot-clip)"`)
	draw()
	canvas.Gend()
}

// WritePNG rasterises s.
func WritePNG(w io.Writer, s *chart.Scene) error {
	defer metrics.Timer(metrics.Render)()

	dc := gg.NewContext(px(s.Width), px(s.Height))
	dc.SetColor(s.Background)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	plot := s.Plot
	clip := func(on bool) {
		if on {
			dc.DrawRectangle(plot.X0, plot.Y0, plot.Width(), plot.Height())
			dc.Clip()
		}
	}
	for _, it := range s.Items {
		dc.Push()
		switch v := it.(type) {
		case chart.Circle:
			clip(v.Clip)
			dc.DrawCircle(v.X, v.Y, v.R)
			fillStrokeGG(dc, v.Fill, v.Stroke, v.StrokeWidth)
		case chart.Line:
			clip(v.Clip)
			if v.Dashed {
				dc.SetDash(4, 4)
			}
			dc.SetColor(v.Stroke)
			dc.SetLineWidth(v.Width)
			dc.DrawLine(v.X1, v.Y1, v.X2, v.Y2)
			dc.Stroke()
		case chart.Rect:
			clip(v.Clip)
			dc.DrawRectangle(v.X, v.Y, v.W, v.H)
			fillStrokeGG(dc, v.Fill, v.Stroke, v.StrokeWidth)
		case chart.Polyline:
			clip(v.Clip)
			for i, p := range v.Points {
				if i == 0 {
					dc.MoveTo(p.X, p.Y)
				} else {
					dc.LineTo(p.X, p.Y)
				}
			}
			if v.Closed {
				dc.ClosePath()
			}
			fillStrokeGG(dc, v.Fill, v.Stroke, v.Width)
		case chart.Text:
			dc.SetColor(v.Color)
			if v.Rotate != 0 {
				dc.RotateAbout(gg.Radians(v.Rotate), v.X, v.Y)
			}
			dc.DrawStringAnchored(v.Text, v.X, v.Y, anchorGG(v.Anchor), 0)
		}
		dc.Pop()
		dc.ResetClip()
	}
	return png.Encode(w, dc.Image())
}

func fillStrokeGG(dc *gg.Context, fill, stroke color.RGBA, width float64) {
	if fill.A > 0 {
		dc.SetColor(nrgba(fill))
		if stroke.A > 0 && width > 0 {
			dc.FillPreserve()
		} else {
			dc.Fill()
			return
		}
	}
	if stroke.A > 0 && width > 0 {
		dc.SetColor(nrgba(stroke))
		dc.SetLineWidth(width)
		dc.Stroke()
		return
	}
	dc.ClearPath()
}

// nrgba reinterprets scene colours, which carry straight alpha, for gg.
func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func anchorGG(a chart.Anchor) float64 {
	switch a {
	case chart.AnchorMiddle:
		return 0.5
	case chart.AnchorEnd:
		return 1
	default:
		return 0
	}
}

// --- helpers ---------------------------------------------------------------

func px(v float64) int { return int(math.Round(v)) }

// pxr keeps tiny markers visible after rounding.
func pxr(v float64) int {
	if r := px(v); r > 0 {
		return r
	}
	return 1
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(c color.RGBA) string {
	return num(float64(c.A) / 255)
}

// attrs prepends a class attribute when class is set. svgo turns empty
// strings into empty style attributes, so they are never passed through.
func attrs(class string, rest ...string) []string {
	if class == "" {
		return rest
	}
	return append([]string{`class="` + class + `"`}, rest...)
}

func fillStroke(fill, stroke color.RGBA, width float64) string {
	var parts []string
	if fill.A > 0 {
		parts = append(parts, "fill:"+css(fill))
		if fill.A < 255 {
			parts = append(parts, "fill-opacity:"+opacity(fill))
		}
	} else {
		parts = append(parts, "fill:none")
	}
	if stroke.A > 0 && width > 0 {
		parts = append(parts, "stroke:"+css(stroke), "stroke-width:"+num(width))
	}
	return `style="` + strings.Join(parts, ";") + `"`
}

func anchor(a chart.Anchor) string {
	switch a {
	case chart.AnchorMiddle:
		return "middle"
	case chart.AnchorEnd:
		return "end"
	default:
		return "start"
	}
}
