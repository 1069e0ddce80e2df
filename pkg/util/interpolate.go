package util

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

var (
	ErrOutOfDomain    = errors.New("quantity lookup out of domain")
	ErrTooFewSamples  = errors.New("interpolation needs at least two samples")
	ErrLengthMismatch = errors.New("x and y sample counts differ")
)

// LookupResult is the outcome of a piecewise-linear lookup. Clamped is set
// when the target lies outside the sampled x range and Y is the boundary
// sample instead of an interpolated value.
type LookupResult struct {
	Y       float64
	Clamped bool
}

// Interpolate sorts the (xs, ys) pairs by x and evaluates the piecewise
// linear curve through them at x. Targets outside the sampled range clamp
// to the nearest boundary value. Samples sharing the same x collapse to the
// last one in stable sort order. The input slices are not modified.
func Interpolate(x float64, xs, ys []float64) (LookupResult, error) {
	if len(xs) != len(ys) {
		return LookupResult{}, errors.Wrapf(ErrLengthMismatch, "%d x samples, %d y samples", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return LookupResult{}, errors.Wrapf(ErrTooFewSamples, "got %d", len(xs))
	}
	if math.IsNaN(x) {
		return LookupResult{}, errors.New("lookup target is NaN")
	}
	if floats.HasNaN(xs) {
		return LookupResult{}, errors.New("x samples contain NaN")
	}

	sx := make([]float64, len(xs))
	copy(sx, xs)
	order := make([]int, len(xs))
	floats.ArgsortStable(sx, order)

	ux := make([]float64, 0, len(sx))
	uy := make([]float64, 0, len(sx))
	for i, v := range sx {
		y := ys[order[i]]
		if n := len(ux); n > 0 && ux[n-1] == v {
			uy[n-1] = y
			continue
		}
		ux = append(ux, v)
		uy = append(uy, y)
	}

	clamped := x < ux[0] || x > ux[len(ux)-1]
	if len(ux) == 1 {
		return LookupResult{Y: uy[0], Clamped: clamped}, nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(ux, uy); err != nil {
		return LookupResult{}, errors.Wrap(err, "fit piecewise linear")
	}
	return LookupResult{Y: pl.Predict(x), Clamped: clamped}, nil
}

// YOfX returns y at x along the sampled curve, clamping outside the range.
func YOfX(x float64, xs, ys []float64) (float64, error) {
	r, err := Interpolate(x, xs, ys)
	if err != nil {
		return 0, err
	}
	return r.Y, nil
}

// YOfXStrict is YOfX but fails with ErrOutOfDomain instead of clamping.
func YOfXStrict(x float64, xs, ys []float64) (float64, error) {
	r, err := Interpolate(x, xs, ys)
	if err != nil {
		return 0, err
	}
	if r.Clamped {
		lo, hi := floats.Min(xs), floats.Max(xs)
		return r.Y, errors.Wrapf(ErrOutOfDomain, "target %g outside [%g, %g]", x, lo, hi)
	}
	return r.Y, nil
}
