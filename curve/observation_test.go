package curve_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/yieldcurve/curve"
)

func TestFromPairs_SortsUnsortedInput(t *testing.T) {
	t.Parallel()

	set, err := curve.FromPairs([]curve.Observation{
		{Maturity: 10, Yield: 0.047},
		{Maturity: 0.5, Yield: 0.040},
		{Maturity: 2, Yield: 0.043},
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 2, 10}, set.Maturities())
	assert.Equal(t, []float64{0.040, 0.043, 0.047}, set.Yields())
	assert.Equal(t, 0.5, set.MinMaturity())
	assert.Equal(t, 10.0, set.MaxMaturity())
}

func TestFromPairs_CollapsesExactDuplicates(t *testing.T) {
	t.Parallel()

	set, err := curve.FromPairs([]curve.Observation{
		{Maturity: 1, Yield: 0.04},
		{Maturity: 1, Yield: 0.04},
		{Maturity: 2, Yield: 0.042},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
}

func TestFromPairs_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pairs []curve.Observation
	}{
		{"empty", nil},
		{"single point", []curve.Observation{{Maturity: 1, Yield: 0.04}}},
		{"zero maturity", []curve.Observation{{Maturity: 0, Yield: 0.04}, {Maturity: 1, Yield: 0.04}}},
		{"negative maturity", []curve.Observation{{Maturity: -1, Yield: 0.04}, {Maturity: 1, Yield: 0.04}}},
		{"nan yield", []curve.Observation{{Maturity: 1, Yield: math.NaN()}, {Maturity: 2, Yield: 0.04}}},
		{"inf yield", []curve.Observation{{Maturity: 1, Yield: math.Inf(1)}, {Maturity: 2, Yield: 0.04}}},
		{"conflicting duplicate maturity", []curve.Observation{{Maturity: 5, Yield: 0.030}, {Maturity: 5, Yield: 0.031}}},
		{"duplicates collapse below two points", []curve.Observation{{Maturity: 5, Yield: 0.03}, {Maturity: 5, Yield: 0.03}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := curve.FromPairs(tt.pairs)
			var verr *curve.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
		})
	}
}

func TestObservationSet_AccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	set, err := curve.FromPairs([]curve.Observation{
		{Maturity: 1, Yield: 0.04},
		{Maturity: 2, Yield: 0.042},
	})
	require.NoError(t, err)

	set.Maturities()[0] = 99
	set.Yields()[0] = 99
	assert.Equal(t, 1.0, set.Maturities()[0])
	assert.Equal(t, 0.04, set.Yields()[0])
}

func TestObservationSet_Nearest(t *testing.T) {
	t.Parallel()

	set, err := curve.FromPairs([]curve.Observation{
		{Maturity: 1, Yield: 0.04},
		{Maturity: 2, Yield: 0.042},
		{Maturity: 5, Yield: 0.045},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		m      float64
		lo, hi float64
	}{
		{"interior", 3, 2, 5},
		{"at knot", 2, 2, 5},
		{"below range", 0.25, 1, 2},
		{"above range", 10, 2, 5},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lo, hi := set.Nearest(tt.m)
			assert.Equal(t, tt.lo, lo.Maturity)
			assert.Equal(t, tt.hi, hi.Maturity)
		})
	}
}
