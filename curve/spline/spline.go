// Package spline fits a natural cubic spline yield curve: exact
// interpolation through every observation, continuous first and second
// derivatives at interior knots, zero second derivative at both endpoints.
package spline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/yieldcurve/curve"
)

// Model is a fitted natural cubic spline. Immutable after Fit; safe for
// concurrent queries.
type Model struct {
	xs []float64 // knot maturities, ascending
	ys []float64 // observed yields at the knots
	m2 []float64 // second derivatives (moments) at the knots, endpoints zero
}

var _ curve.Curve = (*Model)(nil)

// Fit builds the spline over the observation set. This is exact
// interpolation, not least squares; there is no residual. With exactly two
// knots the spline degenerates to the straight line through them.
func Fit(obs *curve.ObservationSet) (*Model, error) {
	if obs == nil {
		return nil, &curve.ValidationError{Reason: "nil observation set"}
	}

	m := &Model{
		xs: obs.Maturities(),
		ys: obs.Yields(),
		m2: make([]float64, obs.Len()),
	}
	if err := m.solveMoments(); err != nil {
		return nil, err
	}
	return m, nil
}

// solveMoments solves the tridiagonal system for the interior second
// derivatives. The natural boundary pins the endpoint moments at zero, so
// for n knots there are n-2 unknowns:
//
//	h[i-1]·M[i-1] + 2(h[i-1]+h[i])·M[i] + h[i]·M[i+1]
//	    = 6·((y[i+1]-y[i])/h[i] - (y[i]-y[i-1])/h[i-1])
//
// Knot counts are small, so the system is assembled dense and handed to
// gonum.
func (s *Model) solveMoments() error {
	n := len(s.xs)
	if n == 2 {
		return nil // single linear segment, both moments zero
	}

	interior := n - 2
	a := mat.NewDense(interior, interior, nil)
	b := mat.NewVecDense(interior, nil)

	h := func(i int) float64 { return s.xs[i+1] - s.xs[i] }
	for i := 1; i <= interior; i++ {
		row := i - 1
		if row > 0 {
			a.Set(row, row-1, h(i-1))
		}
		a.Set(row, row, 2*(h(i-1)+h(i)))
		if row < interior-1 {
			a.Set(row, row+1, h(i))
		}
		b.SetVec(row, 6*((s.ys[i+1]-s.ys[i])/h(i)-(s.ys[i]-s.ys[i-1])/h(i-1)))
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return fmt.Errorf("spline.Fit: moment system is singular: %w", err)
	}
	for i := 0; i < interior; i++ {
		s.m2[i+1] = sol.AtVec(i)
	}
	return nil
}

// YieldAt evaluates the spline at maturity m (years). Segments are
// half-open [x[i], x[i+1]) with the final segment closed, so the last knot
// evaluates via the last segment. Outside the fitted range the curve is
// continued linearly using the boundary segment's first derivative at the
// nearest endpoint, which keeps the curve C1 at the boundary.
func (s *Model) YieldAt(m float64) float64 {
	n := len(s.xs)
	if m < s.xs[0] {
		return s.ys[0] + s.DerivAt(s.xs[0])*(m-s.xs[0])
	}
	if m > s.xs[n-1] {
		return s.ys[n-1] + s.DerivAt(s.xs[n-1])*(m-s.xs[n-1])
	}
	i := s.segment(m)
	return s.evalSegment(i, m)
}

// DerivAt returns the first derivative of the fitted spline at maturity m.
// Outside the fitted range it is the constant boundary-segment slope.
func (s *Model) DerivAt(m float64) float64 {
	n := len(s.xs)
	switch {
	case m < s.xs[0]:
		m = s.xs[0]
	case m > s.xs[n-1]:
		m = s.xs[n-1]
	}
	i := s.segment(m)
	h := s.xs[i+1] - s.xs[i]
	dl := s.xs[i+1] - m
	dr := m - s.xs[i]
	return -s.m2[i]*dl*dl/(2*h) + s.m2[i+1]*dr*dr/(2*h) +
		(s.ys[i+1]-s.ys[i])/h - (s.m2[i+1]-s.m2[i])*h/6
}

// Domain returns the fitted maturity range.
func (s *Model) Domain() (min, max float64) {
	return s.xs[0], s.xs[len(s.xs)-1]
}

// IsExtrapolated reports whether m lies strictly outside the fitted range.
func (s *Model) IsExtrapolated(m float64) bool {
	return m < s.xs[0] || m > s.xs[len(s.xs)-1]
}

// Knots returns the knot maturities as a copy, for diagnostics.
func (s *Model) Knots() []float64 {
	out := make([]float64, len(s.xs))
	copy(out, s.xs)
	return out
}

func (s *Model) segment(m float64) int {
	return curve.Bracket(s.xs, m)
}

// evalSegment evaluates the cubic on [x[i], x[i+1]] in moment form.
func (s *Model) evalSegment(i int, m float64) float64 {
	h := s.xs[i+1] - s.xs[i]
	dl := s.xs[i+1] - m
	dr := m - s.xs[i]
	return s.m2[i]*dl*dl*dl/(6*h) + s.m2[i+1]*dr*dr*dr/(6*h) +
		(s.ys[i]/h-s.m2[i]*h/6)*dl + (s.ys[i+1]/h-s.m2[i+1]*h/6)*dr
}
