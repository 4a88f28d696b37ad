package curve

import (
	"math"
	"sort"
)

// Observation is a single observed point on the yield curve.
type Observation struct {
	// Maturity is the time to maturity in years (e.g. 0.25 for 3M).
	Maturity float64
	// Yield is the annualised yield as a decimal (e.g. 0.045 for 4.5%).
	Yield float64
}

// ObservationSet is a validated collection of observations, strictly
// increasing by maturity. It is immutable once constructed; accessors
// return copies.
type ObservationSet struct {
	maturities []float64
	yields     []float64
}

// FromPairs builds an ObservationSet from raw (maturity, yield) pairs.
// Input may arrive unsorted; exact duplicate pairs are collapsed. It returns
// a ValidationError when any maturity is non-positive, any value is not
// finite, the same maturity carries conflicting yields, or fewer than 2
// distinct maturities remain.
func FromPairs(pairs []Observation) (*ObservationSet, error) {
	if len(pairs) == 0 {
		return nil, validationErrorf("no observations supplied")
	}

	sorted := make([]Observation, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Maturity < sorted[j].Maturity })

	set := &ObservationSet{
		maturities: make([]float64, 0, len(sorted)),
		yields:     make([]float64, 0, len(sorted)),
	}
	for _, obs := range sorted {
		if math.IsNaN(obs.Maturity) || math.IsInf(obs.Maturity, 0) {
			return nil, validationErrorf("maturity is not finite")
		}
		if obs.Maturity <= 0 {
			return nil, validationErrorf("maturity %g is not positive", obs.Maturity)
		}
		if math.IsNaN(obs.Yield) || math.IsInf(obs.Yield, 0) {
			return nil, validationErrorf("yield at maturity %g is not finite", obs.Maturity)
		}
		if n := len(set.maturities); n > 0 && set.maturities[n-1] == obs.Maturity {
			if set.yields[n-1] != obs.Yield {
				return nil, validationErrorf("duplicate maturity %g with conflicting yields", obs.Maturity)
			}
			continue // exact duplicate pair
		}
		set.maturities = append(set.maturities, obs.Maturity)
		set.yields = append(set.yields, obs.Yield)
	}

	if len(set.maturities) < 2 {
		return nil, validationErrorf("need at least 2 distinct maturities, got %d", len(set.maturities))
	}
	return set, nil
}

// Len returns the number of distinct observations.
func (s *ObservationSet) Len() int { return len(s.maturities) }

// Maturities returns the ordered maturities as a copy.
func (s *ObservationSet) Maturities() []float64 {
	out := make([]float64, len(s.maturities))
	copy(out, s.maturities)
	return out
}

// Yields returns the yields ordered by maturity as a copy.
func (s *ObservationSet) Yields() []float64 {
	out := make([]float64, len(s.yields))
	copy(out, s.yields)
	return out
}

// MinMaturity returns the shortest observed maturity.
func (s *ObservationSet) MinMaturity() float64 { return s.maturities[0] }

// MaxMaturity returns the longest observed maturity.
func (s *ObservationSet) MaxMaturity() float64 { return s.maturities[len(s.maturities)-1] }

// At returns the i-th observation in maturity order.
func (s *ObservationSet) At(i int) Observation {
	return Observation{Maturity: s.maturities[i], Yield: s.yields[i]}
}

// Nearest returns the pair of observations bracketing maturity m, for
// diagnostic use. Outside the observed range it returns the nearest
// boundary pair.
func (s *ObservationSet) Nearest(m float64) (lo, hi Observation) {
	i := Bracket(s.maturities, m)
	return s.At(i), s.At(i + 1)
}

// Bracket finds the index i of the segment [xs[i], xs[i+1]] containing x.
// Segments are half-open on the right except the final one, which is
// closed; outside the range the nearest boundary segment is returned.
//
// Binary search, O(log n). xs must be sorted ascending with len >= 2.
func Bracket(xs []float64, x float64) int {
	// First index with xs[idx] > x; the containing segment starts one
	// before it.
	idx := sort.Search(len(xs), func(i int) bool { return xs[i] > x })
	if idx <= 0 {
		return 0
	}
	if idx >= len(xs) {
		return len(xs) - 2
	}
	return idx - 1
}
