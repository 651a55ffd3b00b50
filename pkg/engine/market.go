package engine

import "time"

// NoVigProbabilities removes the overround from a decimal odds triple by
// normalizing the inverse odds to sum to 1. Returns false when any price is
// not a valid decimal quote.
func NoVigProbabilities(homeOdds, drawOdds, awayOdds float64) (pHome, pDraw, pAway float64, ok bool) {
	if homeOdds <= 1.0 || drawOdds <= 1.0 || awayOdds <= 1.0 {
		return 0, 0, 0, false
	}
	invHome := 1.0 / homeOdds
	invDraw := 1.0 / drawOdds
	invAway := 1.0 / awayOdds
	sum := invHome + invDraw + invAway
	if sum <= 0 {
		return 0, 0, 0, false
	}
	return invHome / sum, invDraw / sum, invAway / sum, true
}

// marketImplied returns the snapshot's implied distribution in percent,
// deriving it from the decimal odds when the feed left the implied fields
// empty. False when no complete three-way distribution is available.
func marketImplied(m *MarketOddsSnapshot) (pHome, pDraw, pAway float64, ok bool) {
	if m.ImpliedHome > 0 && m.ImpliedDraw > 0 && m.ImpliedAway > 0 {
		return m.ImpliedHome, m.ImpliedDraw, m.ImpliedAway, true
	}
	h, d, a, ok := NoVigProbabilities(m.HomeOdds, m.DrawOdds, m.AwayOdds)
	if !ok {
		return 0, 0, 0, false
	}
	return h * 100.0, d * 100.0, a * 100.0, true
}

// marketUsable gates the blend: the feature flag must be on, the snapshot
// present, not flagged stale, and no older than the configured TTL (age is
// only checked when both timestamps are known).
func marketUsable(m *MarketOddsSnapshot, asOf time.Time, cfg *Config) bool {
	if !cfg.MarketBlendEnabled || m == nil || m.Stale {
		return false
	}
	if !m.FetchedAt.IsZero() && !asOf.IsZero() {
		age := asOf.Sub(m.FetchedAt)
		if age > time.Duration(cfg.MarketTTLMinutes)*time.Minute {
			return false
		}
	}
	return true
}

// blendMarket mixes the model distribution with the market-implied one in
// probability space using the configured weights. Inputs and outputs are
// percentages; both sides are renormalized before and after the mix.
// Returns the model distribution untouched when the market is unusable.
func blendMarket(pHome, pDraw, pAway float64, m *MarketOddsSnapshot, asOf time.Time, cfg *Config) (float64, float64, float64, bool) {
	if !marketUsable(m, asOf, cfg) {
		return pHome, pDraw, pAway, false
	}
	mktHome, mktDraw, mktAway, ok := marketImplied(m)
	if !ok {
		return pHome, pDraw, pAway, false
	}

	mktHome, mktDraw, mktAway = normalizePercent(mktHome, mktDraw, mktAway)

	outHome := pHome*cfg.MarketModelWeight + mktHome*cfg.MarketWeight
	outDraw := pDraw*cfg.MarketModelWeight + mktDraw*cfg.MarketWeight
	outAway := pAway*cfg.MarketModelWeight + mktAway*cfg.MarketWeight

	outHome, outDraw, outAway = normalizePercent(outHome, outDraw, outAway)
	return outHome, outDraw, outAway, true
}
