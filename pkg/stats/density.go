package stats

import (
	"errors"
	"fmt"
	"math"

	mstats "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/proteoview/pkg/scale"
)

// Kernel selects the density kernel.
type Kernel string

const (
	// Epanechnikov is the parabolic kernel with compact support.
	Epanechnikov Kernel = "epanechnikov"
	// Gaussian uses go-moremath's KDE with a normal kernel.
	Gaussian Kernel = "gaussian"
)

// Defaults for Density.
const (
	DefaultBandwidth = 0.5
	DefaultPoints    = 100
)

// ErrEmptySample is returned when there is nothing to estimate from.
var ErrEmptySample = errors.New("empty sample")

// DensityOptions configures Density. Bandwidth 0 means DefaultBandwidth for
// Epanechnikov and Scott's rule for Gaussian.
type DensityOptions struct {
	Kernel    Kernel  `yaml:"kernel" json:"kernel"`
	Bandwidth float64 `yaml:"bandwidth" json:"bandwidth"`
	Points    int     `yaml:"points" json:"points"`
}

// DensityPoint is one sample of the estimated density.
type DensityPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EpanechnikovKernel returns K(u) = 0.75(1-(u/k)²)/k for |u/k| <= 1.
func EpanechnikovKernel(k float64) func(float64) float64 {
	return func(u float64) float64 {
		u /= k
		if math.Abs(u) <= 1 {
			return 0.75 * (1 - u*u) / k
		}
		return 0
	}
}

// EvalPoints returns the x positions a density over values is sampled at:
// about n+1 round values spanning the niced value extent.
func EvalPoints(values []float64, n int) ([]float64, error) {
	ext, err := scale.ExtentOf(values)
	if err != nil {
		return nil, ErrEmptySample
	}
	if ext.Span() == 0 {
		ext = ext.Pad(0.1)
	}
	s := scale.Project(ext, scale.Extent{Min: 0, Max: 1}).Nice(10)
	return s.CountTicks(n), nil
}

// Density estimates the probability density of values at EvalPoints.
func Density(values []float64, opts DensityOptions) ([]DensityPoint, error) {
	xs := Finite(values)
	if len(xs) == 0 {
		return nil, ErrEmptySample
	}
	if opts.Points <= 0 {
		opts.Points = DefaultPoints
	}
	at, err := EvalPoints(xs, opts.Points)
	if err != nil {
		return nil, err
	}

	var pdf func(float64) float64
	switch opts.Kernel {
	case Epanechnikov, "":
		bw := opts.Bandwidth
		if bw <= 0 {
			bw = DefaultBandwidth
		}
		kern := EpanechnikovKernel(bw)
		buf := make([]float64, len(xs))
		pdf = func(x float64) float64 {
			for i, v := range xs {
				buf[i] = kern(x - v)
			}
			return stat.Mean(buf, nil)
		}
	case Gaussian:
		kde := mstats.KDE{
			Sample:    mstats.Sample{Xs: xs},
			Kernel:    mstats.GaussianKernel,
			Bandwidth: opts.Bandwidth,
		}
		if kde.Bandwidth <= 0 {
			kde.Bandwidth = mstats.BandwidthScott(kde.Sample)
		}
		if !(kde.Bandwidth > 0) {
			kde.Bandwidth = DefaultBandwidth
		}
		pdf = kde.PDF
	default:
		return nil, fmt.Errorf("unknown kernel %q", opts.Kernel)
	}

	out := make([]DensityPoint, len(at))
	for i, x := range at {
		out[i] = DensityPoint{X: x, Y: pdf(x)}
	}
	return out, nil
}

// Nearest returns the index of the density point whose X is closest to x.
// pts must be ordered by X.
func Nearest(pts []DensityPoint, x float64) int {
	if len(pts) == 0 {
		return -1
	}
	lo, hi := 0, len(pts)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if pts[mid].X < x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo > 0 && math.Abs(pts[lo-1].X-x) <= math.Abs(pts[lo].X-x) {
		return lo - 1
	}
	return lo
}
