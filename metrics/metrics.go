// Package metrics derives analytic quantities from a fitted yield curve:
// slope, butterfly curvature, instantaneous forward rates and duration.
// All functions are pure; state lives in the curve they are handed.
package metrics

import (
	"math"

	"github.com/meenmo/yieldcurve/curve"
)

// Default maturities (years) for the standard 2s10s30s butterfly.
const (
	DefaultShort = 2.0
	DefaultMid   = 10.0
	DefaultLong  = 30.0
)

// DefaultStep is the finite-difference step (years) for forward rates.
const DefaultStep = 1e-4

// Slope returns yield(longM) - yield(shortM), the term-spread between two
// maturities, and whether either point was extrapolated beyond the fitted
// range. Antisymmetric: Slope(c, a, b) == -Slope(c, b, a). Non-positive
// maturities are a DomainError.
func Slope(c curve.Curve, shortM, longM float64) (float64, bool, error) {
	if err := checkMaturities(c, shortM, longM); err != nil {
		return 0, false, err
	}
	extrapolated := c.IsExtrapolated(shortM) || c.IsExtrapolated(longM)
	return c.YieldAt(longM) - c.YieldAt(shortM), extrapolated, nil
}

// Curvature returns the butterfly spread 2·yield(midM) − yield(shortM) −
// yield(longM). Positive values mean the belly sits above the wings.
func Curvature(c curve.Curve, shortM, midM, longM float64) (float64, bool, error) {
	if err := checkMaturities(c, shortM, midM, longM); err != nil {
		return 0, false, err
	}
	extrapolated := c.IsExtrapolated(shortM) || c.IsExtrapolated(midM) || c.IsExtrapolated(longM)
	return 2*c.YieldAt(midM) - c.YieldAt(shortM) - c.YieldAt(longM), extrapolated, nil
}

// CurvatureDefault is Curvature at the standard 2Y/10Y/30Y points.
func CurvatureDefault(c curve.Curve) (float64, bool, error) {
	return Curvature(c, DefaultShort, DefaultMid, DefaultLong)
}

// InstantaneousForward approximates the instantaneous forward rate at
// maturity m by forward-differencing the yield×maturity product:
//
//	f(m) ≈ (y(m+h)·(m+h) − y(m)·m) / h
//
// h must be positive (ValidationError otherwise) and defaults are the
// caller's concern; DefaultStep is a sensible choice.
func InstantaneousForward(c curve.Curve, m, h float64) (float64, error) {
	if h <= 0 || math.IsNaN(h) {
		return 0, &curve.ValidationError{Reason: "forward-difference step must be positive"}
	}
	if err := checkMaturities(c, m); err != nil {
		return 0, err
	}
	return (c.YieldAt(m+h)*(m+h) - c.YieldAt(m)*m) / h, nil
}

// CashFlow is a single dated cash amount, with time in years from today.
type CashFlow struct {
	Time   float64 `json:"time"`
	Amount float64 `json:"amount"`
}

// MacaulayDuration is the present-value-weighted average time to cash
// flow, discounting every flow at the curve yield for maturity m with
// discrete compounding freq times per year. Flows must be non-empty with
// strictly positive times.
func MacaulayDuration(c curve.Curve, m float64, flows []CashFlow, freq int) (float64, error) {
	if err := checkMaturities(c, m); err != nil {
		return 0, err
	}
	if len(flows) == 0 {
		return 0, &curve.ValidationError{Reason: "duration needs at least one cash flow"}
	}
	if freq <= 0 {
		return 0, &curve.ValidationError{Reason: "compounding frequency must be positive"}
	}

	y := c.YieldAt(m)
	f := float64(freq)
	pv := 0.0
	weighted := 0.0
	for _, cf := range flows {
		if cf.Time <= 0 || math.IsNaN(cf.Time) {
			return 0, &curve.ValidationError{Reason: "cash flow times must be positive"}
		}
		disc := cf.Amount / math.Pow(1+y/f, f*cf.Time)
		pv += disc
		weighted += cf.Time * disc
	}
	if pv == 0 {
		return 0, &curve.DomainError{Maturity: m, Reason: "cash flows have zero present value"}
	}
	return weighted / pv, nil
}

// ModifiedDuration is MacaulayDuration scaled by 1/(1 + y/freq): the
// first-order price sensitivity to a parallel yield shift.
func ModifiedDuration(c curve.Curve, m float64, flows []CashFlow, freq int) (float64, error) {
	mac, err := MacaulayDuration(c, m, flows, freq)
	if err != nil {
		return 0, err
	}
	return mac / (1 + c.YieldAt(m)/float64(freq)), nil
}

func checkMaturities(c curve.Curve, ms ...float64) error {
	for _, m := range ms {
		if m <= 0 || math.IsNaN(m) {
			return &curve.DomainError{Maturity: m, Reason: "maturity must be positive"}
		}
	}
	return nil
}
