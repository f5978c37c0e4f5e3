package zoom

import "math"

const (
	rho     = math.Sqrt2
	rho2    = 2
	rho4    = 4
	epsilon = 1e-12
)

// view is a viewport described by its centre (ux, uy) and width w.
type view struct {
	ux, uy, w float64
}

// smoothZoom returns the van Wijk and Nuij optimal path between two views,
// parameterised on t in [0,1].
func smoothZoom(a, b view) func(t float64) view {
	dx, dy := b.ux-a.ux, b.uy-a.uy
	d2 := dx*dx + dy*dy

	if d2 < epsilon {
		s := math.Log(b.w/a.w) / rho
		return func(t float64) view {
			return view{a.ux + t*dx, a.uy + t*dy, a.w * math.Exp(rho*t*s)}
		}
	}

	d1 := math.Sqrt(d2)
	b0 := (b.w*b.w - a.w*a.w + rho4*d2) / (2 * a.w * rho2 * d1)
	b1 := (b.w*b.w - a.w*a.w - rho4*d2) / (2 * b.w * rho2 * d1)
	r0 := math.Log(math.Sqrt(b0*b0+1) - b0)
	r1 := math.Log(math.Sqrt(b1*b1+1) - b1)
	s := (r1 - r0) / rho
	coshr0 := math.Cosh(r0)

	return func(t float64) view {
		st := t * s
		u := a.w / (rho2 * d1) * (coshr0*math.Tanh(rho*st+r0) - math.Sinh(r0))
		return view{a.ux + u*dx, a.uy + u*dy, a.w * coshr0 / math.Cosh(rho*st+r0)}
	}
}

// interpolateTransform interpolates between two transforms along the smooth
// zoom path, as seen through a viewport centred at p with size w. At t=1 it
// returns `to` exactly.
func interpolateTransform(from, to Transform, p Point, w float64) func(t float64) Transform {
	pa, pb := from.Invert(p), to.Invert(p)
	path := smoothZoom(view{pa.X, pa.Y, w / from.K}, view{pb.X, pb.Y, w / to.K})
	return func(t float64) Transform {
		if t >= 1 {
			return to
		}
		v := path(t)
		k := w / v.w
		return Transform{K: k, X: p.X - v.ux*k, Y: p.Y - v.uy*k}
	}
}

// PolyIn returns the polynomial ease-in t^e.
func PolyIn(e float64) func(float64) float64 {
	return func(t float64) float64 {
		return math.Pow(t, e)
	}
}
