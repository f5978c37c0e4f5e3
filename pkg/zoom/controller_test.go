package zoom

import (
	"math"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/proteoview/pkg/scale"
)

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func newTestController(t fataler) *Controller {
	t.Helper()
	c, err := New(Options{Viewport: Rect{X1: 100, Y1: 100}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func baseScales() (scale.Linear, scale.Linear) {
	x := scale.Project(scale.Extent{Min: 0, Max: 10}, scale.Extent{Min: 0, Max: 100})
	y := scale.Project(scale.Extent{Min: 0, Max: 10}, scale.Extent{Min: 100, Max: 0})
	return x, y
}

func TestTransformBasics(t *testing.T) {
	tr := Transform{K: 2, X: 10, Y: -5}
	p := Point{X: 3, Y: 4}
	got := tr.Apply(p)
	if got.X != 16 || got.Y != 3 {
		t.Errorf("Apply = %+v", got)
	}
	if back := tr.Invert(got); !approx(back.X, 3) || !approx(back.Y, 4) {
		t.Errorf("Invert(Apply) = %+v", back)
	}
	if s := tr.String(); s != "translate(10,-5) scale(2)" {
		t.Errorf("String = %q", s)
	}
	if s := Identity.String(); s != "translate(0,0) scale(1)" {
		t.Errorf("identity String = %q", s)
	}
	moved := tr.Translate(1, 1)
	if moved.X != 12 || moved.Y != -3 {
		t.Errorf("Translate uses scaled units, got %+v", moved)
	}
}

func TestIdentityReproducesProjection(t *testing.T) {
	x, y := baseScales()
	c := newTestController(t)
	zx, zy := c.Scales(x, y)
	if zx != x || zy != y {
		t.Fatalf("identity changed scales: %+v %+v", zx, zy)
	}
	for _, v := range []float64{-3, 0, 0.1, 7.77, 12} {
		p := Point{X: x.Map(v), Y: y.Map(v)}
		if got := Identity.Apply(p); got != p {
			t.Errorf("identity moved %+v to %+v", p, got)
		}
	}
}

func TestRescale(t *testing.T) {
	x, _ := baseScales()
	tr := Transform{K: 2, X: -50, Y: -50}
	zx := tr.RescaleX(x)
	if !approx(zx.Domain.Min, 2.5) || !approx(zx.Domain.Max, 7.5) {
		t.Errorf("RescaleX domain = %+v, want [2.5,7.5]", zx.Domain)
	}
	if zx.Range != x.Range {
		t.Errorf("RescaleX changed range")
	}
	if x.Domain.Min != 0 || x.Domain.Max != 10 {
		t.Errorf("base scale mutated: %+v", x.Domain)
	}
}

func TestZoomKeepsAnchorFixed(t *testing.T) {
	c := newTestController(t)
	anchor := Point{X: 30, Y: 70}
	before := c.Transform().Invert(anchor)
	c.ZoomAt(3, anchor)

	if c.State() != StateTransformed {
		t.Fatalf("state = %v, want transformed", c.State())
	}
	if c.Transform().K != 3 {
		t.Fatalf("K = %v, want 3", c.Transform().K)
	}
	after := c.Transform().Apply(before)
	if !approx(after.X, anchor.X) || !approx(after.Y, anchor.Y) {
		t.Errorf("anchor moved from %+v to %+v", anchor, after)
	}
}

func TestScaleExtentClamp(t *testing.T) {
	c := newTestController(t)
	c.ZoomCenter(1e9)
	if c.Transform().K != DefaultMaxScale {
		t.Errorf("K = %v, want %v", c.Transform().K, DefaultMaxScale)
	}
	c.ZoomCenter(1e-12)
	if c.Transform().K != DefaultMinScale {
		t.Errorf("K = %v, want %v", c.Transform().K, DefaultMinScale)
	}
	c.ZoomAt(-1, Point{})
	c.ZoomAt(math.NaN(), Point{})
	if c.Transform().K != DefaultMinScale {
		t.Errorf("invalid factors should be ignored, K = %v", c.Transform().K)
	}
}

func TestPanConstrained(t *testing.T) {
	c := newTestController(t)

	c.Pan(50, 20)
	if !c.Transform().IsIdentity() {
		t.Errorf("pan at scale 1 should be fully constrained, got %+v", c.Transform())
	}
	if c.State() != StateTransformed {
		t.Errorf("any gesture should move to transformed, got %v", c.State())
	}

	c.ZoomCenter(2)
	if tr := c.Transform(); tr.X != -50 || tr.Y != -50 {
		t.Fatalf("zoom at centre = %+v, want X=Y=-50", tr)
	}
	c.Pan(100, 0)
	if tr := c.Transform(); tr.X != 0 {
		t.Errorf("pan past the left edge should stop at X=0, got %+v", tr)
	}
	c.Pan(-30, 0)
	if tr := c.Transform(); tr.X != -30 {
		t.Errorf("free pan inside extent, got %+v", tr)
	}
}

func TestResetAnimation(t *testing.T) {
	x, y := baseScales()
	c := newTestController(t)
	c.ZoomAt(8, Point{X: 20, Y: 20})
	c.Pan(-15, 10)

	start := time.Unix(1000, 0)
	c.Reset(start)
	if !c.Animating() {
		t.Fatal("reset should start an animation")
	}
	if c.Step(start.Add(375 * time.Millisecond)) {
		t.Fatal("animation finished early")
	}
	if c.State() != StateTransformed {
		t.Errorf("state during animation = %v", c.State())
	}
	mid := c.Transform()
	if mid.IsIdentity() || mid.K < 1 {
		t.Errorf("unexpected mid-animation transform %+v", mid)
	}

	if !c.Step(start.Add(DefaultResetDuration)) {
		t.Fatal("animation should be finished at its duration")
	}
	if c.State() != StateIdentity || !c.Transform().IsIdentity() {
		t.Fatalf("after reset: state %v transform %+v", c.State(), c.Transform())
	}
	zx, zy := c.Scales(x, y)
	if zx.Domain != x.Domain || zy.Domain != y.Domain {
		t.Errorf("reset did not restore domains: %+v %+v", zx.Domain, zy.Domain)
	}
}

func TestGestureInterruptsReset(t *testing.T) {
	c := newTestController(t)
	c.ZoomCenter(4)
	now := time.Unix(0, 0)
	c.Reset(now)
	c.Pan(-1, 0)
	if c.Animating() {
		t.Error("gesture should cancel the reset animation")
	}
	if c.State() != StateTransformed {
		t.Errorf("state = %v", c.State())
	}
}

func TestResetFromIdentityIsNoop(t *testing.T) {
	c := newTestController(t)
	c.Reset(time.Now())
	if c.Animating() || c.State() != StateIdentity {
		t.Errorf("reset at identity should do nothing")
	}
}

func TestPointRadiusAndStroke(t *testing.T) {
	c := newTestController(t)
	c.ZoomCenter(4)
	if got := c.PointRadius(3); got != 1.5 {
		t.Errorf("PointRadius = %v, want 1.5", got)
	}
	if got := c.StrokeWidth(1); got != 0.25 {
		t.Errorf("StrokeWidth = %v, want 0.25", got)
	}
}

func TestScreenRadiusGrowsWithZoom(t *testing.T) {
	tests := []struct {
		k, radius float64
	}{
		{1, 3},
		{4, 6},
		{20, 3 * math.Sqrt(20)},
		{2000, 3 * math.Sqrt(2000)},
	}
	for _, tc := range tests {
		c := newTestController(t)
		c.ZoomCenter(tc.k)
		if got := c.ScreenRadius(3); math.Abs(got-tc.radius) > 1e-9 {
			t.Errorf("k=%v: ScreenRadius = %v, want %v", tc.k, got, tc.radius)
		}
		if got := c.ScreenStrokeWidth(1); math.Abs(got-1) > 1e-9 {
			t.Errorf("k=%v: ScreenStrokeWidth = %v, want 1", tc.k, got)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	bad := []Options{
		{},
		{Viewport: Rect{X1: 10, Y1: 10}, MinScale: 2, MaxScale: 1},
		{Viewport: Rect{X1: 10, Y1: 10}, MinScale: -1, MaxScale: 1},
		{Viewport: Rect{X1: 10, Y1: 10}, ResetDuration: -time.Second},
	}
	for i, o := range bad {
		if _, err := New(o); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestWheelFactor(t *testing.T) {
	if WheelFactor(0) != 1 {
		t.Error("zero delta should not zoom")
	}
	if WheelFactor(-100) <= 1 || WheelFactor(100) >= 1 {
		t.Error("negative delta zooms in, positive zooms out")
	}
}

func TestGesturesStayInExtents(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := newTestController(t)
		x, y := baseScales()
		n := rapid.IntRange(1, 30).Draw(t, "n")
		for i := 0; i < n; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				f := rapid.Float64Range(0.1, 10).Draw(t, "factor")
				px := rapid.Float64Range(0, 100).Draw(t, "px")
				py := rapid.Float64Range(0, 100).Draw(t, "py")
				c.ZoomAt(f, Point{X: px, Y: py})
			case 1:
				c.Pan(rapid.Float64Range(-200, 200).Draw(t, "dx"), rapid.Float64Range(-200, 200).Draw(t, "dy"))
			case 2:
				c.SetTransform(Transform{
					K: rapid.Float64Range(0.5, 50).Draw(t, "k"),
					X: rapid.Float64Range(-500, 500).Draw(t, "x"),
					Y: rapid.Float64Range(-500, 500).Draw(t, "y"),
				})
			}
			tr := c.Transform()
			if tr.K < DefaultMinScale || tr.K > DefaultMaxScale {
				t.Fatalf("K out of extent: %v", tr.K)
			}
			tol := 1e-6
			if tr.InvertX(0) < -tol || tr.InvertX(100) > 100+tol || tr.InvertY(0) < -tol || tr.InvertY(100) > 100+tol {
				t.Fatalf("viewport escaped translate extent: %+v", tr)
			}
		}

		c.Reset(time.Unix(0, 0))
		c.Step(time.Unix(0, 0).Add(time.Hour))
		zx, zy := c.Scales(x, y)
		if zx.Domain != x.Domain || zy.Domain != y.Domain {
			t.Fatalf("reset did not restore domains exactly")
		}
		if c.State() != StateIdentity {
			t.Fatalf("state after reset = %v", c.State())
		}
	})
}
