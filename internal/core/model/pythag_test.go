package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWinProbability_StrictlyBetweenZeroAndOne(t *testing.T) {
	cases := []struct{ pf, pa, k float64 }{
		{120.7, 111.5, 14},
		{105.1, 122.0, 14},
		{1, 200, 2},
		{110, 109, 16.5},
		{99.5, 101.2, 1},
		{120.7, 111.5, 150},
		{120.7, 111.5, 200},
		{105.1, 122.0, 200},
	}
	for _, c := range cases {
		p := WinProbability(c.pf, c.pa, c.k)
		assert.Greater(t, p, 0.0, "pf=%v pa=%v", c.pf, c.pa)
		assert.Less(t, p, 1.0, "pf=%v pa=%v", c.pf, c.pa)
	}
}

func TestWinProbability_EqualScoringIsEven(t *testing.T) {
	for _, k := range []float64{0.5, 1, 2, 14, 16.5, 30, 150, 200, 1000} {
		assert.Equal(t, 0.5, WinProbability(112.3, 112.3, k), "k=%v", k)
	}
}

func TestWinProbability_NonPositiveInputsAreNeutral(t *testing.T) {
	assert.Equal(t, NeutralProbability, WinProbability(0, 110, DefaultExponent))
	assert.Equal(t, NeutralProbability, WinProbability(110, 0, DefaultExponent))
	assert.Equal(t, NeutralProbability, WinProbability(-3, 110, DefaultExponent))
	assert.Equal(t, NeutralProbability, WinProbability(110, -1, DefaultExponent))
	assert.Equal(t, NeutralProbability, WinProbability(0, 0, DefaultExponent))
}

func TestWinProbability_Ordering(t *testing.T) {
	strong := WinProbability(122.0, 111.6, DefaultExponent)
	weak := WinProbability(108.6, 122.0, DefaultExponent)
	assert.Greater(t, strong, 0.5)
	assert.Less(t, weak, 0.5)

	// A steeper exponent pushes a good team further from even.
	assert.Greater(t, WinProbability(120, 110, 16), WinProbability(120, 110, 10))
}

func TestWinProbability_Symmetry(t *testing.T) {
	p := WinProbability(118.4, 112.0, DefaultExponent)
	q := WinProbability(112.0, 118.4, DefaultExponent)
	assert.InDelta(t, 1.0, p+q, 1e-12)
}

func TestWinProbability_LargeExponentSaturates(t *testing.T) {
	for _, k := range []float64{1000, 1e6} {
		strong := WinProbability(120.7, 111.5, k)
		weak := WinProbability(111.5, 120.7, k)
		assert.False(t, math.IsNaN(strong), "k=%v", k)
		assert.False(t, math.IsNaN(weak), "k=%v", k)
		assert.InDelta(t, 1.0, strong, 1e-9, "k=%v", k)
		assert.InDelta(t, 0.0, weak, 1e-9, "k=%v", k)
	}
}
