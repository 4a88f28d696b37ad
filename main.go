package main

import (
	"fmt"

	"github.com/meenmo/yieldcurve/curve"
	"github.com/meenmo/yieldcurve/curve/nss"
	"github.com/meenmo/yieldcurve/curve/spline"
	"github.com/meenmo/yieldcurve/metrics"
)

func main() {
	set, err := curve.FromPairs([]curve.Observation{
		{Maturity: 0.5, Yield: 0.040},
		{Maturity: 1, Yield: 0.042},
		{Maturity: 2, Yield: 0.043},
		{Maturity: 5, Yield: 0.045},
		{Maturity: 10, Yield: 0.047},
		{Maturity: 30, Yield: 0.048},
	})
	if err != nil {
		panic(err)
	}

	sp, err := spline.Fit(set)
	if err != nil {
		panic(err)
	}

	model, result, err := nss.Fit(set, nil)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Spline 1Y yield:   %.4f%%\n", sp.YieldAt(1)*100)
	fmt.Printf("NSS 1Y yield:      %.4f%%\n", model.YieldAt(1)*100)
	fmt.Printf("NSS residual norm: %.3e (converged=%v, %d iterations)\n",
		result.ResidualNorm, result.Converged, result.Iterations)

	slope, _, err := metrics.Slope(sp, 2, 10)
	if err != nil {
		panic(err)
	}
	curvature, _, err := metrics.CurvatureDefault(sp)
	if err != nil {
		panic(err)
	}
	fwd, err := metrics.InstantaneousForward(model, 5, metrics.DefaultStep)
	if err != nil {
		panic(err)
	}

	fmt.Printf("2s10s slope:       %.1f bp\n", slope*1e4)
	fmt.Printf("2s10s30s fly:      %.1f bp\n", curvature*1e4)
	fmt.Printf("5Y inst. forward:  %.4f%%\n", fwd*100)
}
