package nss_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/yieldcurve/curve"
	"github.com/meenmo/yieldcurve/curve/nss"
)

func TestParameters_Evaluate_SmallMaturityLimit(t *testing.T) {
	t.Parallel()

	p := nss.Parameters{Beta0: 0.045, Beta1: -0.01, Beta2: 0.02, Beta3: -0.005, Tau1: 1.5, Tau2: 4}

	// As m → 0 the slope loading tends to 1 and the curvature loadings to
	// 0, so y(0) = β0 + β1 without any division.
	got := p.Evaluate(0)
	require.False(t, math.IsNaN(got))
	assert.Equal(t, p.Beta0+p.Beta1, got)

	// The analytic-limit branch must join the closed form continuously.
	assert.InDelta(t, p.Evaluate(1e-7), p.Evaluate(1e-5), 1e-6)
}

func TestParameters_Evaluate_LongEndLevel(t *testing.T) {
	t.Parallel()

	p := nss.Parameters{Beta0: 0.045, Beta1: -0.01, Beta2: 0.02, Beta3: -0.005, Tau1: 1.5, Tau2: 4}
	assert.InDelta(t, p.Beta0, p.Evaluate(1e4), 1e-4, "level is the long-run limit")
}

func TestParameters_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    nss.Parameters
		ok   bool
	}{
		{"valid", nss.Parameters{Beta0: 0.04, Tau1: 1, Tau2: 3}, true},
		{"zero tau", nss.Parameters{Beta0: 0.04, Tau1: 0, Tau2: 3}, false},
		{"negative tau", nss.Parameters{Beta0: 0.04, Tau1: 1, Tau2: -2}, false},
		{"nan beta", nss.Parameters{Beta0: math.NaN(), Tau1: 1, Tau2: 3}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.p.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestModel_DomainAndExtrapolation(t *testing.T) {
	t.Parallel()

	model, err := nss.NewModel(nss.Parameters{Beta0: 0.04, Beta1: -0.005, Tau1: 1, Tau2: 3})
	require.NoError(t, err)

	min, max := model.Domain()
	assert.Equal(t, 0.0, min)
	assert.True(t, math.IsInf(max, 1))
	assert.False(t, model.IsExtrapolated(0.001))
	assert.False(t, model.IsExtrapolated(100))
}

func syntheticSet(t *testing.T, p nss.Parameters, maturities []float64) *curve.ObservationSet {
	t.Helper()
	obs := make([]curve.Observation, len(maturities))
	for i, m := range maturities {
		obs[i] = curve.Observation{Maturity: m, Yield: p.Evaluate(m)}
	}
	set, err := curve.FromPairs(obs)
	require.NoError(t, err)
	return set
}

func TestFit_RoundTripRecoversCurve(t *testing.T) {
	t.Parallel()

	truth := nss.Parameters{Beta0: 0.045, Beta1: -0.012, Beta2: 0.015, Beta3: -0.004, Tau1: 1.5, Tau2: 4}
	maturities := []float64{0.25, 0.5, 1, 2, 3, 5, 7, 10, 20, 30}
	set := syntheticSet(t, truth, maturities)

	model, result, err := nss.Fit(set, &nss.FitOptions{MaxIterations: 5000, Tolerance: 1e-12})
	require.NoError(t, err)
	assert.True(t, result.Converged)
	assert.Less(t, result.ResidualNorm, 1e-3)
	assert.Greater(t, result.RSquared, 0.999)

	// Noiseless data generated from the family: the fitted curve must
	// reproduce the generator, observed points and in between.
	for _, m := range []float64{0.25, 0.75, 2, 4, 8, 15, 30} {
		assert.InDelta(t, truth.Evaluate(m), model.YieldAt(m), 5e-4, "yield at %gY", m)
	}
}

func TestFit_RoundTripRecoversParameters(t *testing.T) {
	t.Parallel()

	truth := nss.Parameters{Beta0: 0.045, Beta1: -0.012, Beta2: 0.015, Beta3: -0.004, Tau1: 1.5, Tau2: 4}
	maturities := []float64{0.25, 0.5, 1, 2, 3, 5, 7, 10, 15, 20, 30}
	set := syntheticSet(t, truth, maturities)

	// Seed near the truth: with a noiseless target the optimizer should
	// land on the generator parameters, not just an equivalent curve.
	seed := truth
	seed.Beta0 *= 1.1
	seed.Beta1 *= 0.9
	seed.Tau1 *= 1.2
	seed.Tau2 *= 0.8
	model, result, err := nss.Fit(set, &nss.FitOptions{InitialGuess: &seed, MaxIterations: 5000, Tolerance: 1e-12})
	require.NoError(t, err)
	require.True(t, result.Converged)

	got := model.Params()
	assert.InDelta(t, truth.Beta0, got.Beta0, 2e-3)
	assert.InDelta(t, truth.Beta1, got.Beta1, 2e-3)
	assert.InDelta(t, truth.Tau1, got.Tau1, 0.5)
	assert.InDelta(t, truth.Tau2, got.Tau2, 1.0)
}

func TestFit_ConcreteScenario(t *testing.T) {
	t.Parallel()

	set, err := curve.FromPairs([]curve.Observation{
		{Maturity: 0.5, Yield: 0.040},
		{Maturity: 1, Yield: 0.042},
		{Maturity: 2, Yield: 0.043},
		{Maturity: 5, Yield: 0.045},
		{Maturity: 10, Yield: 0.047},
		{Maturity: 30, Yield: 0.048},
	})
	require.NoError(t, err)

	// Default options must be enough for a plain six-point treasury
	// curve: the converger, not the iteration cap, ends the fit.
	model, result, err := nss.Fit(set, nil)
	require.NoError(t, err)
	assert.True(t, result.Converged)
	assert.Less(t, result.Iterations, nss.DefaultMaxIterations)
	assert.Less(t, result.ResidualNorm, 1e-3)

	slope := model.YieldAt(10) - model.YieldAt(2)
	assert.InDelta(t, 0.004, slope, 1e-3)
}

func TestFit_Underdetermined(t *testing.T) {
	t.Parallel()

	set, err := curve.FromPairs([]curve.Observation{
		{Maturity: 1, Yield: 0.04},
		{Maturity: 2, Yield: 0.042},
		{Maturity: 5, Yield: 0.045},
	})
	require.NoError(t, err)

	_, _, err = nss.Fit(set, nil)
	var ferr *nss.FitError
	require.True(t, errors.As(err, &ferr), "expected FitError, got %v", err)
	assert.Contains(t, ferr.Reason, "underdetermined")
}

func TestFit_TausStayPositive(t *testing.T) {
	t.Parallel()

	// A flat curve tempts the optimizer toward degenerate decay
	// constants; the log-space parametrization must keep them positive.
	obs := make([]curve.Observation, 0, 8)
	for _, m := range []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30} {
		obs = append(obs, curve.Observation{Maturity: m, Yield: 0.03})
	}
	set, err := curve.FromPairs(obs)
	require.NoError(t, err)

	model, _, err := nss.Fit(set, nil)
	require.NoError(t, err)
	p := model.Params()
	assert.Greater(t, p.Tau1, 0.0)
	assert.Greater(t, p.Tau2, 0.0)
	require.NoError(t, p.Validate())
}

func TestFit_IterationCapReturnsBestFound(t *testing.T) {
	t.Parallel()

	truth := nss.Parameters{Beta0: 0.045, Beta1: -0.012, Beta2: 0.015, Beta3: -0.004, Tau1: 1.5, Tau2: 4}
	set := syntheticSet(t, truth, []float64{0.25, 0.5, 1, 2, 3, 5, 7, 10, 20, 30})

	_, result, err := nss.Fit(set, &nss.FitOptions{MaxIterations: 3})
	require.NoError(t, err, "hitting the cap is a flagged result, not an error")
	assert.False(t, result.Converged)
	require.NoError(t, result.Parameters.Validate())
}
