package nss

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/yieldcurve/curve"
)

// freeParameters is the dimension of the NSS parameter space; a fit with
// fewer observations than this is underdetermined.
const freeParameters = 6

// Defaults for FitOptions zero values.
const (
	DefaultMaxIterations    = 2000
	DefaultTolerance        = 1e-10
	DefaultDivergenceWindow = 25

	// Default decay seeds. Distinct on purpose: τ1 == τ2 makes the two
	// curvature loadings linearly dependent and the Jacobian rank-deficient.
	defaultTau1Seed = 1.0
	defaultTau2Seed = 3.0
)

// Parameter box from the reference calibration; betas and taus outside
// these ranges are not economically meaningful fits.
const (
	betaBound = 20.0
	tauMin    = 0.01
	tauMax    = 50.0
)

// FitError reports an optimization that was underdetermined or diverged.
// Partial is the best-found diagnostic state when the optimizer produced
// one.
type FitError struct {
	Reason  string
	Partial *FitResult
}

func (e *FitError) Error() string {
	return "nss: fit failed: " + e.Reason
}

// FitOptions configures the optimizer. The zero value selects defaults.
type FitOptions struct {
	// MaxIterations caps the optimizer's major iterations. Hitting the cap
	// is not an error; the result carries Converged=false.
	MaxIterations int
	// Tolerance is the absolute objective-improvement threshold for
	// convergence.
	Tolerance float64
	// DivergenceWindow is the number of consecutive worsening objective
	// evaluations after which the fit is declared divergent.
	DivergenceWindow int
	// InitialGuess overrides the built-in seed heuristic.
	InitialGuess *Parameters
}

func (o *FitOptions) withDefaults() FitOptions {
	out := FitOptions{}
	if o != nil {
		out = *o
	}
	if out.MaxIterations <= 0 {
		out.MaxIterations = DefaultMaxIterations
	}
	if out.Tolerance <= 0 {
		out.Tolerance = DefaultTolerance
	}
	if out.DivergenceWindow <= 0 {
		out.DivergenceWindow = DefaultDivergenceWindow
	}
	return out
}

// FitResult is the outcome of a single fit call.
type FitResult struct {
	Parameters   Parameters `json:"parameters"`
	ResidualNorm float64    `json:"residual_norm"`
	RSquared     float64    `json:"r_squared"`
	Converged    bool       `json:"converged"`
	Iterations   int        `json:"iterations"`
}

// Fit calibrates the six NSS parameters to the observation set by
// minimizing the sum of squared yield residuals with Nelder–Mead. The
// decay constants are optimized in log space, so τ1, τ2 > 0 holds
// structurally rather than by penalty.
//
// Seed heuristic: β0 is the longest-maturity yield, β1 the short-minus-long
// spread, curvatures start flat, and the taus are seeded apart at 1.0 and
// 3.0 years.
//
// Hitting the iteration cap returns the best-found parameters with
// Converged=false; callers decide acceptance. A FitError is returned only
// when the problem is underdetermined or the optimizer diverged.
func Fit(obs *curve.ObservationSet, opts *FitOptions) (*Model, FitResult, error) {
	if obs == nil {
		return nil, FitResult{}, &curve.ValidationError{Reason: "nil observation set"}
	}
	if obs.Len() < freeParameters {
		return nil, FitResult{}, &FitError{
			Reason: fmt.Sprintf("underdetermined: %d observations for %d free parameters", obs.Len(), freeParameters),
		}
	}
	cfg := opts.withDefaults()

	xs := obs.Maturities()
	ys := obs.Yields()

	seed := seedParameters(xs, ys, cfg.InitialGuess)
	if err := seed.Validate(); err != nil {
		return nil, FitResult{}, err
	}
	x0 := encode(seed)

	ssr := func(x []float64) float64 {
		p := decode(x)
		sum := 0.0
		for i, m := range xs {
			r := p.Evaluate(m) - ys[i]
			sum += r * r
		}
		return sum
	}

	// Divergence guard: count consecutive worsening evaluations relative
	// to the previous one while no new best is found.
	guard := divergenceGuard{prev: math.Inf(1), best: math.Inf(1)}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			f := ssr(x)
			guard.observe(f)
			return f
		},
	}

	settings := &optimize.Settings{
		MajorIterations: cfg.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.Tolerance,
			Iterations: 50,
		},
	}

	seedSSR := ssr(x0)
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if result == nil {
		return nil, FitResult{}, &FitError{Reason: fmt.Sprintf("optimizer failed: %v", err)}
	}

	params := clampParameters(decode(result.X))
	fit := FitResult{
		Parameters: params,
		Converged:  convergedStatus(result.Status) && err == nil,
		Iterations: result.Stats.MajorIterations,
	}

	residuals := make([]float64, len(xs))
	estimates := make([]float64, len(xs))
	for i, m := range xs {
		estimates[i] = params.Evaluate(m)
		residuals[i] = estimates[i] - ys[i]
	}
	fit.ResidualNorm = floats.Norm(residuals, 2)
	fit.RSquared = stat.RSquaredFrom(estimates, ys, nil)
	if math.IsNaN(fit.RSquared) {
		// Zero-variance target (flat curve): R² is undefined.
		fit.RSquared = 0
	}

	finalSSR := fit.ResidualNorm * fit.ResidualNorm
	switch {
	case math.IsNaN(finalSSR) || math.IsInf(finalSSR, 0):
		return nil, FitResult{}, &FitError{Reason: "objective is not finite at the solution", Partial: &fit}
	case finalSSR > seedSSR && guard.maxStreak >= cfg.DivergenceWindow:
		return nil, FitResult{}, &FitError{
			Reason:  fmt.Sprintf("diverged: objective worsened across %d consecutive evaluations", guard.maxStreak),
			Partial: &fit,
		}
	}

	return &Model{params: params}, fit, nil
}

type divergenceGuard struct {
	prev      float64
	best      float64
	streak    int
	maxStreak int
}

func (g *divergenceGuard) observe(f float64) {
	if f < g.best {
		g.best = f
		g.streak = 0
	} else if f > g.prev {
		g.streak++
		if g.streak > g.maxStreak {
			g.maxStreak = g.streak
		}
	}
	g.prev = f
}

func seedParameters(xs, ys []float64, override *Parameters) Parameters {
	if override != nil {
		return *override
	}
	long := ys[len(ys)-1]
	short := ys[0]
	return Parameters{
		Beta0: long,
		Beta1: short - long,
		Beta2: 0,
		Beta3: 0,
		Tau1:  defaultTau1Seed,
		Tau2:  defaultTau2Seed,
	}
}

// encode maps parameters onto the unconstrained optimizer domain; the taus
// travel as logarithms.
func encode(p Parameters) []float64 {
	return []float64{p.Beta0, p.Beta1, p.Beta2, p.Beta3, math.Log(p.Tau1), math.Log(p.Tau2)}
}

func decode(x []float64) Parameters {
	return Parameters{
		Beta0: x[0],
		Beta1: x[1],
		Beta2: x[2],
		Beta3: x[3],
		Tau1:  math.Exp(x[4]),
		Tau2:  math.Exp(x[5]),
	}
}

func clampParameters(p Parameters) Parameters {
	p.Beta0 = clamp(p.Beta0, -betaBound, betaBound)
	p.Beta1 = clamp(p.Beta1, -betaBound, betaBound)
	p.Beta2 = clamp(p.Beta2, -betaBound, betaBound)
	p.Beta3 = clamp(p.Beta3, -betaBound, betaBound)
	p.Tau1 = clamp(p.Tau1, tauMin, tauMax)
	p.Tau2 = clamp(p.Tau2, tauMin, tauMax)
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func convergedStatus(s optimize.Status) bool {
	switch s {
	case optimize.FunctionConvergence, optimize.MethodConverge,
		optimize.StepConvergence, optimize.GradientThreshold, optimize.Success:
		return true
	}
	return false
}
