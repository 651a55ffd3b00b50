package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoVigProbabilities(t *testing.T) {
	h, d, a, ok := NoVigProbabilities(2.0, 3.5, 4.0)
	assert.True(t, ok)
	assert.InDelta(t, 1.0, h+d+a, 1e-12)
	assert.Greater(t, h, d)
	assert.Greater(t, d, a)

	// Quotes at or under evens-for-nothing are not valid decimal odds.
	_, _, _, ok = NoVigProbabilities(1.0, 3.5, 4.0)
	assert.False(t, ok)
	_, _, _, ok = NoVigProbabilities(2.0, 0, 4.0)
	assert.False(t, ok)
}

func TestMarketImpliedFallsBackToOdds(t *testing.T) {
	m := &MarketOddsSnapshot{HomeOdds: 2.0, DrawOdds: 3.5, AwayOdds: 4.0}
	h, d, a, ok := marketImplied(m)
	assert.True(t, ok)
	assert.InDelta(t, 100.0, h+d+a, 1e-9)

	direct := &MarketOddsSnapshot{ImpliedHome: 50, ImpliedDraw: 30, ImpliedAway: 20}
	h, _, _, ok = marketImplied(direct)
	assert.True(t, ok)
	assert.Equal(t, 50.0, h)

	empty := &MarketOddsSnapshot{}
	_, _, _, ok = marketImplied(empty)
	assert.False(t, ok)
}

func TestBlendMarketGates(t *testing.T) {
	cfg := DefaultConfig()
	asOf := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	market := &MarketOddsSnapshot{
		ImpliedHome: 60, ImpliedDraw: 25, ImpliedAway: 15,
		FetchedAt: asOf.Add(-10 * time.Minute),
	}

	// Disabled by default: the model distribution passes through untouched.
	h, d, a, used := blendMarket(40, 30, 30, market, asOf, cfg)
	assert.False(t, used)
	assert.Equal(t, 40.0, h)
	assert.Equal(t, 30.0, d)
	assert.Equal(t, 30.0, a)

	cfg.MarketBlendEnabled = true
	h, d, a, used = blendMarket(40, 30, 30, market, asOf, cfg)
	assert.True(t, used)
	assert.InDelta(t, 0.65*40+0.35*60, h, 0.01)
	assert.InDelta(t, 100.0, h+d+a, 0.01)

	// Stale flag and expired TTL both disable the blend.
	staleMarket := &MarketOddsSnapshot{ImpliedHome: 60, ImpliedDraw: 25, ImpliedAway: 15, Stale: true}
	_, _, _, used = blendMarket(40, 30, 30, staleMarket, asOf, cfg)
	assert.False(t, used)

	oldMarket := &MarketOddsSnapshot{
		ImpliedHome: 60, ImpliedDraw: 25, ImpliedAway: 15,
		FetchedAt: asOf.Add(-45 * time.Minute),
	}
	_, _, _, used = blendMarket(40, 30, 30, oldMarket, asOf, cfg)
	assert.False(t, used)

	_, _, _, used = blendMarket(40, 30, 30, nil, asOf, cfg)
	assert.False(t, used)
}
