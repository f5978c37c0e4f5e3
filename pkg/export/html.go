package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/metrics"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/tooltip"
	"github.com/vanderheijden86/proteoview/pkg/version"
	"github.com/vanderheijden86/proteoview/pkg/zoom"
)

// viewerAssets holds the page template and the browser runtime.
//
//go:embed viewer_assets
var viewerAssets embed.FS

var pageTemplate = template.Must(template.ParseFS(viewerAssets, "viewer_assets/page.html.tmpl"))

type legendItem struct {
	Label string `json:"label"`
	Color string `json:"color"`
	N     int    `json:"-"`
}

type hitJSON struct {
	Shape  string          `json:"shape"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	R      float64         `json:"r,omitempty"`
	W      float64         `json:"w,omitempty"`
	H      float64         `json:"h,omitempty"`
	Index  int             `json:"index"`
	Fields []tooltip.Field `json:"fields"`
	Link   string          `json:"link,omitempty"`
}

type circleJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

type vennJSON struct {
	A circleJSON `json:"a"`
	B circleJSON `json:"b"`
}

// pagePayload is everything the browser runtime needs.
type pagePayload struct {
	Kind          chart.Kind        `json:"kind"`
	Width         float64           `json:"width"`
	Height        float64           `json:"height"`
	Plot          zoom.Rect         `json:"plot"`
	TooltipOffset [2]float64        `json:"tooltip_offset"`
	Hits          []hitJSON         `json:"hits,omitempty"`
	Venn          *vennJSON         `json:"venn,omitempty"`
	Points        []chart.Point     `json:"points,omitempty"`
	XDomain       [2]float64        `json:"x_domain,omitempty"`
	YDomain       [2]float64        `json:"y_domain,omitempty"`
	XLabel        string            `json:"x_label,omitempty"`
	YLabel        string            `json:"y_label,omitempty"`
	XTicks        int               `json:"x_ticks,omitempty"`
	YTicks        int               `json:"y_ticks,omitempty"`
	Thresholds    *model.Thresholds `json:"thresholds,omitempty"`
	Radius        float64           `json:"radius,omitempty"`
	ScaleRadius   bool              `json:"scale_radius,omitempty"`
	MinZoom       float64           `json:"min_zoom,omitempty"`
	MaxZoom       float64           `json:"max_zoom,omitempty"`
	ResetMs       int64             `json:"reset_ms,omitempty"`
	ResetEase     float64           `json:"reset_ease,omitempty"`
	Colors        map[string]string `json:"colors,omitempty"`
	Legend        []legendItem      `json:"legend,omitempty"`
}

type pageData struct {
	Title    string
	Version  string
	Counts   []legendItem
	Zoomable bool
	SVG      template.HTML
	Data     template.JS
	Script   template.JS
}

// WriteHTML writes a self-contained page for c. Volcano and scatter charts
// zoom and pan in the browser with the same rules as zoom.Controller; the
// other kinds are static with tooltips and click-through.
func WriteHTML(w io.Writer, c chart.Chart) error {
	defer metrics.Timer(metrics.Export)()

	scene := c.Scene()
	var svgBuf bytes.Buffer
	if err := WriteSVG(&svgBuf, scene); err != nil {
		return err
	}

	payload := buildPayload(c, scene)
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode chart data: %w", err)
	}
	script, err := viewerAssets.ReadFile("viewer_assets/viewer.js")
	if err != nil {
		return err
	}

	title := scene.Title
	if title == "" {
		title = "proteoview " + string(c.Kind())
	}
	pd := pageData{
		Title:    title,
		Version:  version.Version,
		Zoomable: payload.Points != nil,
		SVG:      template.HTML(svgBuf.String()),
		Data:     template.JS(data),
		Script:   template.JS(script),
	}
	if v, ok := c.(*chart.Volcano); ok && v.Classified() {
		pd.Counts = payload.Legend
	}
	return pageTemplate.Execute(w, pd)
}

func buildPayload(c chart.Chart, scene *chart.Scene) pagePayload {
	cfg := c.Config()
	p := pagePayload{
		Kind:          c.Kind(),
		Width:         scene.Width,
		Height:        scene.Height,
		Plot:          scene.Plot,
		TooltipOffset: [2]float64{tooltip.OffsetX, tooltip.OffsetY},
	}

	switch v := c.(type) {
	case *chart.Volcano:
		bx, by := v.BaseScales()
		xCol, yCol, _ := v.Columns()
		opts := v.Controller().Options()
		p.Points = v.Points()
		if p.Points == nil {
			p.Points = []chart.Point{}
		}
		p.XDomain = [2]float64{bx.Domain.Min, bx.Domain.Max}
		p.YDomain = [2]float64{by.Domain.Min, by.Domain.Max}
		p.XLabel = labelOr(cfg.XLabel, xCol)
		p.YLabel = labelOr(cfg.YLabel, yCol)
		p.XTicks, p.YTicks = cfg.XTicks, cfg.YTicks
		p.Radius = cfg.PointRadius
		p.ScaleRadius = v.Kind() == chart.KindVolcano
		p.MinZoom, p.MaxZoom = opts.MinScale, opts.MaxScale
		p.ResetMs = opts.ResetDuration.Milliseconds()
		p.ResetEase = zoom.DefaultResetEase
		p.Colors = map[string]string{}
		for _, cat := range model.Categories {
			p.Colors[cat.String()] = css(cat.Color())
		}
		if v.Kind() == chart.KindVolcano {
			t := cfg.Thresholds
			p.Thresholds = &t
		}
		if v.Classified() {
			counts := v.Counts()
			for _, cat := range model.Categories {
				p.Legend = append(p.Legend, legendItem{Label: cat.Label(), Color: css(cat.Color()), N: counts[cat]})
			}
			if cfg.HideLegend {
				p.Legend = nil
			}
		}
	default:
		p.Hits = hitsJSON(scene.Hits)
		if vn, ok := c.(*chart.Venn); ok {
			l := vn.Layout()
			ox, oy := scene.Plot.X0, scene.Plot.Y0
			p.Venn = &vennJSON{
				A: circleJSON{X: ox + l.A.CX, Y: oy + l.A.CY, R: l.A.R},
				B: circleJSON{X: ox + l.B.CX, Y: oy + l.B.CY, R: l.B.R},
			}
		}
	}
	return p
}

func hitsJSON(hits []chart.Hit) []hitJSON {
	out := make([]hitJSON, len(hits))
	for i, h := range hits {
		j := hitJSON{X: h.X, Y: h.Y, R: h.R, W: h.W, H: h.H, Index: h.Index, Fields: h.Fields, Link: h.Link}
		switch h.Shape {
		case chart.HitRect:
			j.Shape = "rect"
		case chart.HitRegion:
			j.Shape = "region"
		default:
			j.Shape = "circle"
		}
		out[i] = j
	}
	return out
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
