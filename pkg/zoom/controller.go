package zoom

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vanderheijden86/proteoview/pkg/scale"
)

// State of the controller.
type State int

const (
	// StateIdentity means no gesture has happened since creation or the
	// last completed reset.
	StateIdentity State = iota
	// StateTransformed means at least one pan or zoom gesture has been
	// applied.
	StateTransformed
)

func (s State) String() string {
	if s == StateTransformed {
		return "transformed"
	}
	return "identity"
}

// Rect is an axis-aligned rectangle given by two corners.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns X1 - X0.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns Y1 - Y0.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Center returns the midpoint.
func (r Rect) Center() Point {
	return Point{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2}
}

// Defaults.
const (
	DefaultMinScale      = 1
	DefaultMaxScale      = 2000
	DefaultResetDuration = 750 * time.Millisecond
	DefaultResetEase     = 4.0
)

// Options configures a Controller. Viewport is the plot area in pixels.
// A zero TranslateExtent means "same as Viewport".
type Options struct {
	Viewport        Rect
	TranslateExtent Rect
	MinScale        float64
	MaxScale        float64
	ResetDuration   time.Duration
	Ease            func(float64) float64
}

// Validate reports unusable options.
func (o Options) Validate() error {
	if o.Viewport.Width() <= 0 || o.Viewport.Height() <= 0 {
		return fmt.Errorf("viewport must have positive size, got %vx%v", o.Viewport.Width(), o.Viewport.Height())
	}
	if o.MinScale <= 0 || o.MaxScale < o.MinScale {
		return fmt.Errorf("invalid scale extent [%v, %v]", o.MinScale, o.MaxScale)
	}
	if o.ResetDuration < 0 {
		return errors.New("reset duration must not be negative")
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.MinScale == 0 && o.MaxScale == 0 {
		o.MinScale, o.MaxScale = DefaultMinScale, DefaultMaxScale
	}
	if o.TranslateExtent == (Rect{}) {
		o.TranslateExtent = o.Viewport
	}
	if o.ResetDuration == 0 {
		o.ResetDuration = DefaultResetDuration
	}
	if o.Ease == nil {
		o.Ease = PolyIn(DefaultResetEase)
	}
	return o
}

// Controller owns one view transform. It is not safe for concurrent use;
// each chart drives its own controller from a single event loop.
type Controller struct {
	opts  Options
	t     Transform
	state State
	anim  *animation
}

type animation struct {
	start  time.Time
	interp func(float64) Transform
}

// New validates opts and returns a controller at identity.
func New(opts Options) (*Controller, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Controller{opts: opts, t: Identity}, nil
}

// Options returns the effective options.
func (c *Controller) Options() Options { return c.opts }

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.t }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Animating reports whether a reset animation is in progress.
func (c *Controller) Animating() bool { return c.anim != nil }

// ZoomAt multiplies the scale by factor keeping p fixed on screen.
func (c *Controller) ZoomAt(factor float64, p Point) {
	if factor <= 0 || math.IsNaN(factor) {
		return
	}
	c.ZoomTo(c.t.K*factor, p)
}

// ZoomTo sets the scale to k keeping p fixed on screen.
func (c *Controller) ZoomTo(k float64, p Point) {
	c.gesture()
	t0 := c.t
	p1 := t0.Invert(p)
	t1 := c.clampScale(t0, k)
	c.t = c.constrain(Transform{K: t1.K, X: p.X - p1.X*t1.K, Y: p.Y - p1.Y*t1.K})
}

// ZoomCenter zooms around the centre of the viewport.
func (c *Controller) ZoomCenter(factor float64) {
	c.ZoomAt(factor, c.opts.Viewport.Center())
}

// Pan moves the view by (dx, dy) screen pixels.
func (c *Controller) Pan(dx, dy float64) {
	c.gesture()
	c.t = c.constrain(Transform{K: c.t.K, X: c.t.X + dx, Y: c.t.Y + dy})
}

// SetTransform jumps to t, subject to the extents.
func (c *Controller) SetTransform(t Transform) {
	c.gesture()
	c.t = c.constrain(c.clampScale(t, t.K))
}

// Reset starts the animated return to identity. Step drives it.
func (c *Controller) Reset(now time.Time) {
	if c.state == StateIdentity && c.t.IsIdentity() {
		c.anim = nil
		return
	}
	vp := c.opts.Viewport
	w := math.Max(vp.Width(), vp.Height())
	c.anim = &animation{
		start:  now,
		interp: interpolateTransform(c.t, Identity, vp.Center(), w),
	}
	c.Step(now)
}

// ResetNow returns to identity without animation.
func (c *Controller) ResetNow() {
	c.anim = nil
	c.t = Identity
	c.state = StateIdentity
}

// Step advances a running reset animation to now. It returns true once the
// animation has finished (or when none is running).
func (c *Controller) Step(now time.Time) bool {
	if c.anim == nil {
		return true
	}
	elapsed := now.Sub(c.anim.start)
	if elapsed >= c.opts.ResetDuration {
		c.ResetNow()
		return true
	}
	frac := float64(elapsed) / float64(c.opts.ResetDuration)
	if frac < 0 {
		frac = 0
	}
	c.t = c.anim.interp(c.opts.Ease(frac))
	return false
}

// Scales returns the base scales rescaled through the current transform.
func (c *Controller) Scales(x, y scale.Linear) (scale.Linear, scale.Linear) {
	if c.t.IsIdentity() {
		return x, y
	}
	return c.t.RescaleX(x), c.t.RescaleY(y)
}

// PointRadius keeps markers visually stable while zoomed.
func (c *Controller) PointRadius(base float64) float64 {
	return base / math.Sqrt(c.t.K)
}

// StrokeWidth keeps line weight constant under the scale transform.
func (c *Controller) StrokeWidth(base float64) float64 {
	return base / c.t.K
}

// ScreenRadius is PointRadius as it appears once the content is scaled by
// k, for renderers that re-project into screen space: base * sqrt(k).
func (c *Controller) ScreenRadius(base float64) float64 {
	return c.t.K * c.PointRadius(base)
}

// ScreenStrokeWidth is StrokeWidth seen through the k-scaled view, which
// is base at every zoom level.
func (c *Controller) ScreenStrokeWidth(base float64) float64 {
	return c.t.K * c.StrokeWidth(base)
}

// gesture records that the user interacted; it interrupts a running reset.
func (c *Controller) gesture() {
	c.anim = nil
	c.state = StateTransformed
}

func (c *Controller) clampScale(t Transform, k float64) Transform {
	k = math.Max(c.opts.MinScale, math.Min(c.opts.MaxScale, k))
	if k == t.K {
		return t
	}
	return Transform{K: k, X: t.X, Y: t.Y}
}

// constrain translates t so that the viewport stays within the translate
// extent. When the viewport is larger than the extent along an axis the
// extent is centred instead.
func (c *Controller) constrain(t Transform) Transform {
	vp, te := c.opts.Viewport, c.opts.TranslateExtent
	dx0 := t.InvertX(vp.X0) - te.X0
	dx1 := t.InvertX(vp.X1) - te.X1
	dy0 := t.InvertY(vp.Y0) - te.Y0
	dy1 := t.InvertY(vp.Y1) - te.Y1
	return t.Translate(constrainAxis(dx0, dx1), constrainAxis(dy0, dy1))
}

func constrainAxis(d0, d1 float64) float64 {
	if d1 > d0 {
		return (d0 + d1) / 2
	}
	if m := math.Min(0, d0); m != 0 {
		return m
	}
	return math.Max(0, d1)
}

// WheelFactor converts a wheel delta in pixels to a zoom factor.
func WheelFactor(deltaY float64) float64 {
	return math.Pow(2, -deltaY*0.002)
}
