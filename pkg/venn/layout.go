package venn

import (
	"math"
)

// Circle is a circle in pixel coordinates.
type Circle struct {
	CX, CY, R float64
}

// Contains reports whether (x, y) lies inside c.
func (c Circle) Contains(x, y float64) bool {
	dx, dy := x-c.CX, y-c.CY
	return dx*dx+dy*dy <= c.R*c.R
}

// Layout places the two circles inside a width×height box.
type Layout struct {
	A, B          Circle
	Width, Height float64
}

// LensArea is the area of intersection of two circles with radii r1, r2
// whose centres are d apart.
func LensArea(r1, r2, d float64) float64 {
	if d >= r1+r2 {
		return 0
	}
	if d <= math.Abs(r1-r2) {
		r := math.Min(r1, r2)
		return math.Pi * r * r
	}
	a1 := r1 * r1 * math.Acos((d*d+r1*r1-r2*r2)/(2*d*r1))
	a2 := r2 * r2 * math.Acos((d*d+r2*r2-r1*r1)/(2*d*r2))
	k := 0.5 * math.Sqrt((-d+r1+r2)*(d+r1-r2)*(d-r1+r2)*(d+r1+r2))
	return a1 + a2 - k
}

// distanceForOverlap finds the centre distance at which two circles
// overlap by area by bisection. LensArea decreases in d.
func distanceForOverlap(r1, r2, area float64) float64 {
	lo, hi := math.Abs(r1-r2), r1+r2
	if area <= 0 {
		return hi
	}
	if area >= LensArea(r1, r2, lo) {
		return lo
	}
	for i := 0; i < 100 && hi-lo > 1e-10; i++ {
		mid := (lo + hi) / 2
		if LensArea(r1, r2, mid) > area {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// Solve computes an area-proportional layout for c. Empty sets still get a
// small circle so they remain visible and clickable.
func Solve(c Comparison, width, height, padding float64) Layout {
	areaA := math.Max(float64(c.SizeA()), 0.5)
	areaB := math.Max(float64(c.SizeB()), 0.5)
	r1 := math.Sqrt(areaA / math.Pi)
	r2 := math.Sqrt(areaB / math.Pi)
	d := distanceForOverlap(r1, r2, float64(len(c.Common)))
	if len(c.Common) == 0 {
		d += 0.1 * math.Min(r1, r2)
	}

	spanX := r1 + d + r2
	spanY := 2 * math.Max(r1, r2)
	availX := math.Max(width-2*padding, 1)
	availY := math.Max(height-2*padding, 1)
	k := math.Min(availX/spanX, availY/spanY)

	left := (width - spanX*k) / 2
	cy := height / 2
	return Layout{
		A:      Circle{CX: left + r1*k, CY: cy, R: r1 * k},
		B:      Circle{CX: left + (r1+d)*k, CY: cy, R: r2 * k},
		Width:  width,
		Height: height,
	}
}

// Hit returns the region under (x, y).
func (l Layout) Hit(x, y float64) Region {
	inA, inB := l.A.Contains(x, y), l.B.Contains(x, y)
	switch {
	case inA && inB:
		return RegionAB
	case inA:
		return RegionA
	case inB:
		return RegionB
	default:
		return RegionNone
	}
}

// LabelPos returns a point inside region r suitable for its label.
func (l Layout) LabelPos(r Region) (float64, float64) {
	switch r {
	case RegionA:
		x := l.A.CX - l.A.R/2
		if l.B.CX-l.B.R > l.A.CX {
			x = l.A.CX
		}
		return x, l.A.CY
	case RegionB:
		x := l.B.CX + l.B.R/2
		if l.A.CX+l.A.R < l.B.CX {
			x = l.B.CX
		}
		return x, l.B.CY
	case RegionAB:
		// Midpoint of the lens along the centre line.
		left := math.Max(l.A.CX-l.A.R, l.B.CX-l.B.R)
		right := math.Min(l.A.CX+l.A.R, l.B.CX+l.B.R)
		return (left + right) / 2, l.A.CY
	}
	return l.Width / 2, l.Height / 2
}
