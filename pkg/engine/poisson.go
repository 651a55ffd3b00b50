package engine

import "math"

// poissonPMF returns P(X=k) for k in 0..maxGoals with the residual tail mass
// folded into the last bucket, so the pmf always sums to exactly 1.
func poissonPMF(lambda float64, maxGoals int) []float64 {
	if maxGoals < 0 {
		maxGoals = 0
	}
	if lambda < 0 {
		lambda = 0
	}

	out := make([]float64, maxGoals+1)
	out[0] = math.Exp(-lambda)
	for k := 1; k <= maxGoals; k++ {
		out[k] = out[k-1] * lambda / float64(k)
	}

	sum := 0.0
	for _, p := range out {
		sum += p
	}
	if sum < 1.0 {
		out[maxGoals] += 1.0 - sum
	}
	return out
}

// dixonColesTau is the low-score correlation correction applied to the four
// low-scoring joint cells, clamped to [0, 2] so a pathological rho cannot
// produce a negative cell weight.
func dixonColesTau(homeGoals, awayGoals int, lambdaHome, lambdaAway, rho float64) float64 {
	var tau float64
	switch {
	case homeGoals == 0 && awayGoals == 0:
		tau = 1.0 - rho*lambdaHome*lambdaAway
	case homeGoals == 0 && awayGoals == 1:
		tau = 1.0 + rho*lambdaHome
	case homeGoals == 1 && awayGoals == 0:
		tau = 1.0 + rho*lambdaAway
	case homeGoals == 1 && awayGoals == 1:
		tau = 1.0 - rho
	default:
		return 1.0
	}
	return clamp(tau, 0.0, 2.0)
}

// outcomeProbs convolves the two truncated Poisson pmfs over remaining goals
// into P(home)/P(draw)/P(away) given the current score, weighting joint
// cells by the Dixon-Coles correction when rho is nonzero (pre-match) and
// renormalizing by the weighted mass. rho of zero is the plain independent
// convolution used in-play. Falls back to equal thirds only if the whole
// mass degenerates, which the λ clamps prevent in practice.
func outcomeProbs(scoreHome, scoreAway int, lambdaHome, lambdaAway, rho float64, maxGoals int) (pHome, pDraw, pAway float64) {
	pmfHome := poissonPMF(lambdaHome, maxGoals)
	pmfAway := poissonPMF(lambdaAway, maxGoals)

	total := 0.0
	for i, pi := range pmfHome {
		for j, pj := range pmfAway {
			p := pi * pj
			if rho != 0 {
				p *= dixonColesTau(i, j, lambdaHome, lambdaAway, rho)
			}
			total += p

			finalHome := scoreHome + i
			finalAway := scoreAway + j
			switch {
			case finalHome > finalAway:
				pHome += p
			case finalHome < finalAway:
				pAway += p
			default:
				pDraw += p
			}
		}
	}

	if total <= 0 {
		return 1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0
	}
	return pHome / total, pDraw / total, pAway / total
}

// normalizePercent scales a distribution to percentages summing to exactly
// 100, assigning the rounding residue to the draw (the least visually
// jarring place for it).
func normalizePercent(pHome, pDraw, pAway float64) (float64, float64, float64) {
	sum := pHome + pDraw + pAway
	if sum < 0.0001 {
		sum = 0.0001
	}
	pHome = pHome / sum * 100.0
	pDraw = pDraw / sum * 100.0
	pAway = pAway / sum * 100.0

	residue := 100.0 - (pHome + pDraw + pAway)
	pDraw += residue
	return pHome, pDraw, pAway
}
