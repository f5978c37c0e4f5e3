// Package scale maps data values to pixel coordinates.
//
// A Linear scale pairs a data domain with a pixel range. It never clamps:
// values outside the domain project linearly outside the range, which is
// what zoomed views rely on. Tick placement comes from go-moremath.
package scale

import (
	"errors"
	"math"
	"strconv"

	mscale "github.com/aclements/go-moremath/scale"
	"gonum.org/v1/gonum/floats"
)

// ErrNoFiniteValues is returned when an extent cannot be computed.
var ErrNoFiniteValues = errors.New("no finite values")

// Extent is a closed interval.
type Extent struct {
	Min, Max float64
}

// ExtentOf returns the min and max of values, ignoring NaN and infinities.
func ExtentOf(values []float64) (Extent, error) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return Extent{}, ErrNoFiniteValues
	}
	return Extent{Min: floats.Min(finite), Max: floats.Max(finite)}, nil
}

// Span is Max - Min.
func (e Extent) Span() float64 { return e.Max - e.Min }

// Contains reports whether v lies within the closed interval.
func (e Extent) Contains(v float64) bool { return v >= e.Min && v <= e.Max }

// Pad widens both ends by frac of the span. A zero-span extent is widened
// by frac of its magnitude, or by 1 around zero, so the result is never
// degenerate.
func (e Extent) Pad(frac float64) Extent {
	span := e.Span()
	if span == 0 {
		w := math.Abs(e.Min) * frac
		if w == 0 {
			w = 1
		}
		return Extent{Min: e.Min - w, Max: e.Max + w}
	}
	return Extent{Min: e.Min - span*frac, Max: e.Max + span*frac}
}

// Union returns the smallest extent covering e and o.
func (e Extent) Union(o Extent) Extent {
	return Extent{Min: math.Min(e.Min, o.Min), Max: math.Max(e.Max, o.Max)}
}

// Linear is an immutable linear projection from Domain to Range. Range may
// be inverted (Min > Max), as it is for a y axis that grows downwards.
type Linear struct {
	Domain Extent
	Range  Extent
}

// Project builds the scale for a padded data extent and pixel extent.
func Project(domain, rng Extent) Linear {
	return Linear{Domain: domain, Range: rng}
}

func (l Linear) unit() mscale.Linear {
	return mscale.Linear{Min: l.Domain.Min, Max: l.Domain.Max}
}

// Map projects a data value to a pixel coordinate.
func (l Linear) Map(v float64) float64 {
	return l.Range.Min + l.unit().Map(v)*l.Range.Span()
}

// Invert projects a pixel coordinate back to a data value.
func (l Linear) Invert(px float64) float64 {
	rs := l.Range.Span()
	if rs == 0 {
		return l.Domain.Min
	}
	return l.Domain.Min + (px-l.Range.Min)/rs*l.Domain.Span()
}

// WithDomain returns a copy with a different domain and the same range.
func (l Linear) WithDomain(d Extent) Linear {
	l.Domain = d
	return l
}

// Ticks returns at most n evenly spaced round values within the domain.
func (l Linear) Ticks(n int) []float64 {
	if n < 1 || l.Domain.Span() == 0 || math.IsNaN(l.Domain.Span()) {
		return nil
	}
	d := l.Domain
	if d.Min > d.Max {
		d.Min, d.Max = d.Max, d.Min
	}
	major, _ := mscale.Linear{Min: d.Min, Max: d.Max}.Ticks(mscale.TickOptions{Max: n})
	return major
}

// CountTicks returns about n+1 evenly spaced round values covering the
// domain, choosing the step from the count the way d3's ticks(n) does.
// Ticks bounds the count from above instead and returns far fewer values,
// which suits axes but undersamples a curve.
func (l Linear) CountTicks(n int) []float64 {
	d := l.Domain
	if n < 1 || d.Span() == 0 || math.IsNaN(d.Span()) || math.IsInf(d.Span(), 0) {
		return nil
	}
	if d.Min > d.Max {
		d.Min, d.Max = d.Max, d.Min
	}
	inc, inverted := tickIncrement(d.Min, d.Max, n)
	var i0, i1 float64
	if inverted {
		i0, i1 = math.Ceil(d.Min*inc), math.Floor(d.Max*inc)
	} else {
		i0, i1 = math.Ceil(d.Min/inc), math.Floor(d.Max/inc)
	}
	out := make([]float64, 0, int(i1-i0)+1)
	for i := i0; i <= i1; i++ {
		if inverted {
			out = append(out, i/inc)
		} else {
			out = append(out, i*inc)
		}
	}
	return out
}

// tickIncrement picks a step of 1, 2 or 5 times a power of ten. For steps
// below one it returns the reciprocal with inverted set, so ticks are
// computed as i/inc and stay exact decimals.
func tickIncrement(lo, hi float64, n int) (inc float64, inverted bool) {
	step := (hi - lo) / float64(n)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= math.Sqrt(50):
		factor = 10
	case e >= math.Sqrt(10):
		factor = 5
	case e >= math.Sqrt(2):
		factor = 2
	}
	if power < 0 {
		return math.Pow(10, -power) / factor, true
	}
	return factor * math.Pow(10, power), false
}

// Nice extends the domain outwards to the tick step chosen for n ticks.
func (l Linear) Nice(n int) Linear {
	ticks := l.Ticks(n)
	if len(ticks) < 2 {
		return l
	}
	step := ticks[1] - ticks[0]
	l.Domain = Extent{
		Min: math.Floor(l.Domain.Min/step) * step,
		Max: math.Ceil(l.Domain.Max/step) * step,
	}
	return l
}

// TickLabel formats v with just enough decimals to tell neighbouring ticks
// apart.
func TickLabel(v float64, ticks []float64) string {
	prec := 0
	if len(ticks) >= 2 {
		step := math.Abs(ticks[1] - ticks[0])
		if step > 0 && step < 1 {
			prec = int(math.Ceil(-math.Log10(step) - 1e-9))
		}
	}
	if math.Abs(v) < 1e-12 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
