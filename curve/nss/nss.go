// Package nss fits and evaluates the Nelson–Siegel–Svensson yield curve
// model: a level, a slope and two curvature (hump) factors with independent
// decay constants.
package nss

import (
	"math"

	"github.com/meenmo/yieldcurve/curve"
)

// loadingLimit is the m/τ threshold below which the factor loadings switch
// to their analytic limits: (1-e^-x)/x → 1 and the curvature loading → 0
// as x → 0, where the direct division blows up.
const loadingLimit = 1e-6

// Parameters holds the six NSS parameters. Beta0 is the long-run level,
// Beta1 the short-end slope, Beta2/Beta3 the curvature factors with decay
// constants Tau1/Tau2. Immutable once a fit succeeds.
type Parameters struct {
	Beta0 float64 `json:"beta0"`
	Beta1 float64 `json:"beta1"`
	Beta2 float64 `json:"beta2"`
	Beta3 float64 `json:"beta3"`
	Tau1  float64 `json:"tau1"`
	Tau2  float64 `json:"tau2"`
}

// Validate rejects non-finite betas and non-positive or non-finite decay
// constants. Zero or negative τ makes the functional form singular.
func (p Parameters) Validate() error {
	for _, b := range []float64{p.Beta0, p.Beta1, p.Beta2, p.Beta3} {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return &curve.ValidationError{Reason: "nss: beta is not finite"}
		}
	}
	for _, tau := range []float64{p.Tau1, p.Tau2} {
		if math.IsNaN(tau) || math.IsInf(tau, 0) || tau <= 0 {
			return &curve.ValidationError{Reason: "nss: tau must be positive and finite"}
		}
	}
	return nil
}

// Evaluate computes the NSS yield at maturity m (years):
//
//	y(m) = β0 + β1·L(m/τ1) + β2·C(m/τ1) + β3·C(m/τ2)
//
// with slope loading L(x) = (1-e^-x)/x and curvature loading
// C(x) = L(x) - e^-x.
func (p Parameters) Evaluate(m float64) float64 {
	l1, c1 := loadings(m / p.Tau1)
	_, c2 := loadings(m / p.Tau2)
	return p.Beta0 + p.Beta1*l1 + p.Beta2*c1 + p.Beta3*c2
}

func loadings(x float64) (slope, curvature float64) {
	if x < loadingLimit {
		return 1, 0
	}
	e := math.Exp(-x)
	slope = (1 - e) / x
	return slope, slope - e
}

// Model is a fitted NSS curve. Immutable; safe for concurrent queries.
type Model struct {
	params Parameters
}

var _ curve.Curve = (*Model)(nil)

// NewModel wraps validated parameters in a Model. Useful for evaluating a
// known parametrization, e.g. generating synthetic curves.
func NewModel(p Parameters) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Model{params: p}, nil
}

// YieldAt evaluates the fitted closed form at maturity m.
func (m *Model) YieldAt(maturity float64) float64 {
	return m.params.Evaluate(maturity)
}

// Domain is (0, +Inf): the parametric form is defined at every positive
// maturity.
func (m *Model) Domain() (min, max float64) {
	return 0, math.Inf(1)
}

// IsExtrapolated always reports false; a parametric model does not
// distinguish interpolation from extrapolation.
func (m *Model) IsExtrapolated(maturity float64) bool {
	return false
}

// Params returns the fitted parameters.
func (m *Model) Params() Parameters {
	return m.params
}
