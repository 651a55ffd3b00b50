package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoissonPMFSumsToOne(t *testing.T) {
	for _, lambda := range []float64{0.0, 0.05, 0.5, 1.3, 2.6, 3.8, 10.0} {
		pmf := poissonPMF(lambda, 10)
		assert.Len(t, pmf, 11)

		sum := 0.0
		for _, p := range pmf {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "lambda=%f", lambda)
	}
}

func TestPoissonPMFFoldsTailIntoLastBucket(t *testing.T) {
	// With a large rate most of the mass lies beyond the truncation point, so
	// the last bucket has to absorb it.
	pmf := poissonPMF(10.0, 10)
	assert.Greater(t, pmf[10], 0.4)
}

func TestDixonColesTau(t *testing.T) {
	rho := -0.10
	lh, la := 1.4, 1.1

	assert.InDelta(t, 1.0-rho*lh*la, dixonColesTau(0, 0, lh, la, rho), 1e-12)
	assert.InDelta(t, 1.0+rho*lh, dixonColesTau(0, 1, lh, la, rho), 1e-12)
	assert.InDelta(t, 1.0+rho*la, dixonColesTau(1, 0, lh, la, rho), 1e-12)
	assert.InDelta(t, 1.0-rho, dixonColesTau(1, 1, lh, la, rho), 1e-12)
	assert.Equal(t, 1.0, dixonColesTau(2, 3, lh, la, rho))

	// A pathological rho must never yield a negative cell weight.
	assert.Equal(t, 0.0, dixonColesTau(0, 0, 3.0, 3.0, 0.5))
}

func TestOutcomeProbsZeroRhoMatchesIndependentConvolution(t *testing.T) {
	lh, la := 1.45, 1.10
	maxGoals := 10

	pmfHome := poissonPMF(lh, maxGoals)
	pmfAway := poissonPMF(la, maxGoals)
	var wantHome, wantDraw, wantAway float64
	for i, pi := range pmfHome {
		for j, pj := range pmfAway {
			switch {
			case i > j:
				wantHome += pi * pj
			case i < j:
				wantAway += pi * pj
			default:
				wantDraw += pi * pj
			}
		}
	}

	gotHome, gotDraw, gotAway := outcomeProbs(0, 0, lh, la, 0, maxGoals)
	assert.InDelta(t, wantHome, gotHome, 1e-9)
	assert.InDelta(t, wantDraw, gotDraw, 1e-9)
	assert.InDelta(t, wantAway, gotAway, 1e-9)
}

func TestOutcomeProbsRhoShiftsLowScoringMass(t *testing.T) {
	lh, la := 1.2, 1.2
	plainHome, plainDraw, plainAway := outcomeProbs(0, 0, lh, la, 0, 10)
	dcHome, dcDraw, dcAway := outcomeProbs(0, 0, lh, la, -0.10, 10)

	// A negative rho inflates 0-0 and 1-1, so the draw gains mass.
	assert.Greater(t, dcDraw, plainDraw)
	assert.InDelta(t, 1.0, dcHome+dcDraw+dcAway, 1e-9)
	assert.InDelta(t, 1.0, plainHome+plainDraw+plainAway, 1e-9)
}

func TestOutcomeProbsRespectsCurrentScore(t *testing.T) {
	// Two goals up with almost nothing left, the home side must be a near
	// certainty.
	pHome, _, pAway := outcomeProbs(2, 0, 0.12, 0.11, 0, 10)
	assert.Greater(t, pHome, 0.95)
	assert.Less(t, pAway, 0.01)
}

func TestNormalizePercentSumsToExactlyOneHundred(t *testing.T) {
	cases := [][3]float64{
		{0.42, 0.28, 0.30},
		{42.0, 28.0, 30.0},
		{1.0, 1.0, 1.0},
		{0.97, 0.02, 0.01},
	}
	for _, c := range cases {
		h, d, a := normalizePercent(c[0], c[1], c[2])
		assert.InDelta(t, 100.0, h+d+a, 0.01)
		assert.False(t, math.IsNaN(h) || math.IsNaN(d) || math.IsNaN(a))
	}
}
