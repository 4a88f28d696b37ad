// Package curve defines the observed inputs and the fitted-curve
// abstraction shared by the spline and NSS models.
package curve

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Curve is a fitted yield curve. Implementations own immutable fitted
// state, so a Curve may be queried concurrently by independent callers.
type Curve interface {
	// YieldAt evaluates the curve at maturity m (years), as a decimal.
	YieldAt(m float64) float64
	// Domain returns the maturity range the model was fitted over.
	Domain() (min, max float64)
	// IsExtrapolated reports whether YieldAt(m) falls outside the fitted
	// range. Parametric models always report false.
	IsExtrapolated(m float64) bool
}

// Sample evaluates c on an evenly spaced grid of n maturities spanning its
// domain, for plotting or export. n must be at least 2.
func Sample(c Curve, n int) (xs, ys []float64) {
	if n < 2 {
		n = 2
	}
	min, max := c.Domain()
	if math.IsInf(max, 1) {
		// Parametric curves are unbounded above; 30Y covers the quoted
		// treasury curve.
		max = 30
	}
	xs = make([]float64, n)
	floats.Span(xs, min, max)
	ys = make([]float64, n)
	for i, x := range xs {
		ys[i] = c.YieldAt(x)
	}
	return xs, ys
}
