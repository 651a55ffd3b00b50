package engine

import (
	"math"

	"github.com/matchpulse/winprob/pkg/artifacts"
)

// leaguePriors is the resolved league-level prior feeding the λ model
type leaguePriors struct {
	base     float64
	homeAdv  float64
	rho      float64
	calScale float64
	calBias  float64
}

// resolvePriors prefers fitted league params and falls back to the config
// defaults when the league was never fitted.
func resolvePriors(lp *artifacts.LeagueParams, cfg *Config) leaguePriors {
	if lp == nil {
		return leaguePriors{
			base:     cfg.GoalsTotalBase,
			homeAdv:  cfg.HomeAdvGoals,
			rho:      cfg.DixonColesRho,
			calScale: 1.0,
			calBias:  0.0,
		}
	}
	out := leaguePriors{
		base:     lp.GoalsTotalBase,
		homeAdv:  lp.HomeAdvGoals,
		rho:      lp.DcRho,
		calScale: lp.PrematchLogitScale,
		calBias:  lp.PrematchDrawBias,
	}
	if out.base <= 0 {
		out.base = cfg.GoalsTotalBase
	}
	if out.calScale <= 0 {
		out.calScale = 1.0
	}
	return out
}

// prematchLambdas turns the league prior, the strength differential and the
// player-impact signal into home/away expected goals for a full match,
// clamped to the pre-adjustment band.
func prematchLambdas(priors leaguePriors, strengthDiff, impactSignal float64, cfg *Config) (lambdaHome, lambdaAway float64) {
	diff := cfg.KStrength * (strengthDiff + impactSignal)
	lambdaHome = clamp(priors.base/2.0+priors.homeAdv/2.0+diff/2.0, cfg.LambdaPreMin, cfg.LambdaPreMax)
	lambdaAway = clamp(priors.base/2.0-priors.homeAdv/2.0-diff/2.0, cfg.LambdaPreMin, cfg.LambdaPreMax)
	return lambdaHome, lambdaAway
}

// disciplineMultipliers computes the opponent-λ boost for the more
// undisciplined side. Both scores must be present; the inequality is strict,
// so a tie applies no multiplier to either side.
// Returns the multipliers applied to the home and away λ respectively.
func disciplineMultipliers(discHome, discAway *float64, cfg *Config) (multHome, multAway float64) {
	multHome, multAway = 1.0, 1.0
	if discHome == nil || discAway == nil {
		return multHome, multAway
	}
	delta := *discHome - *discAway
	if delta == 0 {
		return multHome, multAway
	}
	mult := clamp(1.0+cfg.DisciplineK*math.Abs(delta/100.0), 1.0, cfg.DisciplineMultCap)
	if delta > 0 {
		// Home side is the more undisciplined: its opponent scores more.
		multAway = mult
	} else {
		multHome = mult
	}
	return multHome, multAway
}

// calibrate reshapes a pre-match distribution with the league's fitted
// calibration pair: the scale is a power transform on the simplex
// (equivalent to scaling log-odds), the bias an additive percentage-point
// shift to the draw. Inputs and outputs are percentages summing to 100.
func calibrate(pHome, pDraw, pAway, scale, bias float64) (float64, float64, float64) {
	if scale == 1.0 && bias == 0.0 {
		return pHome, pDraw, pAway
	}

	h := math.Pow(math.Max(pHome/100.0, 1e-9), scale)
	d := math.Pow(math.Max(pDraw/100.0, 1e-9), scale)
	a := math.Pow(math.Max(pAway/100.0, 1e-9), scale)

	sum := h + d + a
	if sum <= 0 {
		return pHome, pDraw, pAway
	}
	h, d, a = h/sum, d/sum, a/sum

	d += bias / 100.0
	if d < 0 {
		d = 0
	}

	sum = h + d + a
	if sum <= 0 {
		return pHome, pDraw, pAway
	}
	return h / sum * 100.0, d / sum * 100.0, a / sum * 100.0
}
