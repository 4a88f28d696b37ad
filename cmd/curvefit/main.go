// curvefit fits both curve models to a set of observed yields and prints
// fitted parameters plus the standard curve metrics as JSON.
//
// Input (file via -input, or stdin):
//
//	{
//	  "percent": true,
//	  "quotes": [
//	    {"tenor": "6M", "yield": 4.00},
//	    {"maturity": 2, "yield": 4.30}
//	  ]
//	}
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/yieldcurve/curve"
	"github.com/meenmo/yieldcurve/curve/nss"
	"github.com/meenmo/yieldcurve/curve/spline"
	"github.com/meenmo/yieldcurve/metrics"
)

type quoteJSON struct {
	Tenor    string  `json:"tenor,omitempty"`
	Maturity float64 `json:"maturity,omitempty"`
	Yield    float64 `json:"yield"`
}

type fitInput struct {
	// Percent marks yields quoted in percent (4.5) rather than decimals
	// (0.045).
	Percent bool        `json:"percent"`
	Quotes  []quoteJSON `json:"quotes"`
}

type fitConfig struct {
	MaxIterations   int     `yaml:"max_iterations"`
	Tolerance       float64 `yaml:"tolerance"`
	ShortMaturity   float64 `yaml:"short_maturity"`
	MidMaturity     float64 `yaml:"mid_maturity"`
	LongMaturity    float64 `yaml:"long_maturity"`
	ForwardMaturity float64 `yaml:"forward_maturity"`
	ForwardStep     float64 `yaml:"forward_step"`
}

func defaultConfig() fitConfig {
	return fitConfig{
		ShortMaturity:   metrics.DefaultShort,
		MidMaturity:     metrics.DefaultMid,
		LongMaturity:    metrics.DefaultLong,
		ForwardMaturity: 5,
		ForwardStep:     metrics.DefaultStep,
	}
}

type modelMetrics struct {
	Slope        float64 `json:"slope"`
	Curvature    float64 `json:"curvature"`
	Forward      float64 `json:"forward"`
	Extrapolated bool    `json:"extrapolated,omitempty"`
}

type fitOutput struct {
	Observations int            `json:"observations"`
	DomainMin    float64        `json:"domain_min"`
	DomainMax    float64        `json:"domain_max"`
	NSS          *nss.FitResult `json:"nss,omitempty"`
	NSSMetrics   *modelMetrics  `json:"nss_metrics,omitempty"`
	Spline       *modelMetrics  `json:"spline_metrics,omitempty"`
	Error        string         `json:"error,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "JSON input path (reads stdin if omitted)")
	configPath := flag.String("config", "", "Optional YAML config for fit options and metric maturities")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	logger := newLogger(*debug)
	defer logger.Sync()

	cfg := defaultConfig()
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			logger.Fatalw("read config", "path", *configPath, "error", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			logger.Fatalw("parse config", "path", *configPath, "error", err)
		}
	}

	in, err := readInput(*inputPath)
	if err != nil {
		logger.Fatalw("read input", "error", err)
	}

	out := run(in, cfg, logger)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatalw("encode output", "error", err)
	}
	if out.Error != "" {
		os.Exit(1)
	}
}

func newLogger(debug bool) *zap.SugaredLogger {
	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger.Sugar()
}

func readInput(path string) (fitInput, error) {
	var raw []byte
	var err error
	if strings.TrimSpace(path) == "" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return fitInput{}, err
	}
	var in fitInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return fitInput{}, fmt.Errorf("parse input JSON: %w", err)
	}
	return in, nil
}

func run(in fitInput, cfg fitConfig, logger *zap.SugaredLogger) fitOutput {
	obs, err := toObservations(in)
	if err != nil {
		return fitOutput{Error: err.Error()}
	}
	set, err := curve.FromPairs(obs)
	if err != nil {
		return fitOutput{Error: err.Error()}
	}

	out := fitOutput{Observations: set.Len()}
	out.DomainMin = set.MinMaturity()
	out.DomainMax = set.MaxMaturity()

	sp, err := spline.Fit(set)
	if err != nil {
		return fitOutput{Error: err.Error()}
	}
	out.Spline = curveMetrics(sp, cfg, logger)

	model, result, err := nss.Fit(set, &nss.FitOptions{
		MaxIterations: cfg.MaxIterations,
		Tolerance:     cfg.Tolerance,
	})
	if err != nil {
		logger.Warnw("nss fit failed, spline metrics only", "error", err)
		out.Error = err.Error()
		return out
	}
	if !result.Converged {
		logger.Warnw("nss fit hit iteration cap", "iterations", result.Iterations,
			"residual_norm", result.ResidualNorm)
	}
	out.NSS = &result
	out.NSSMetrics = curveMetrics(model, cfg, logger)
	return out
}

func toObservations(in fitInput) ([]curve.Observation, error) {
	if len(in.Quotes) == 0 {
		return nil, fmt.Errorf("no quotes in input")
	}
	obs := make([]curve.Observation, 0, len(in.Quotes))
	for _, q := range in.Quotes {
		maturity := q.Maturity
		if q.Tenor != "" {
			years, err := curve.TenorToYears(q.Tenor)
			if err != nil {
				return nil, err
			}
			maturity = years
		}
		yld := q.Yield
		if in.Percent {
			yld /= 100.0
		}
		obs = append(obs, curve.Observation{Maturity: maturity, Yield: yld})
	}
	return obs, nil
}

func curveMetrics(c curve.Curve, cfg fitConfig, logger *zap.SugaredLogger) *modelMetrics {
	out := &modelMetrics{}
	slope, extrapolated, err := metrics.Slope(c, cfg.ShortMaturity, cfg.LongMaturity)
	if err != nil {
		logger.Warnw("slope", "error", err)
		return out
	}
	out.Slope = slope
	out.Extrapolated = extrapolated

	if curvature, flagged, err := metrics.Curvature(c, cfg.ShortMaturity, cfg.MidMaturity, cfg.LongMaturity); err == nil {
		out.Curvature = curvature
		out.Extrapolated = out.Extrapolated || flagged
	} else {
		logger.Warnw("curvature", "error", err)
	}

	if fwd, err := metrics.InstantaneousForward(c, cfg.ForwardMaturity, cfg.ForwardStep); err == nil {
		out.Forward = fwd
	} else {
		logger.Warnw("instantaneous forward", "error", err)
	}
	return out
}
