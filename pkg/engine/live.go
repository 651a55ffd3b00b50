package engine

import (
	"math"
	"strings"
)

// liveState is what the live adjuster learned about an in-play match: the
// adjusted remaining expected goals plus flags feeding quality/confidence.
type liveState struct {
	lambdaHomeRem float64
	lambdaAwayRem float64
	t             float64 // elapsed fraction of the estimated total
	xgPresent     bool
	usedLiveStats bool
}

// weakSignal is one entry of the fallback cascade used when live xG is
// absent. The cascade is ordered strongest-first and only the first present
// signal applies, nudging the remaining rates by a small bounded multiplier
// driven by the home-minus-away delta.
type weakSignal struct {
	aliases        []string
	pairedWith     []string // second stat combined into the same delta
	coef           float64
	favorsOpponent bool // fouls: committing more favors the other side
}

var weakSignalCascade = []weakSignal{
	{aliases: []string{"big chances"}, coef: 0.06},
	{aliases: []string{"xgot", "xg on target"}, coef: 0.04},
	{aliases: []string{"ball possession", "possession"}, coef: 0.004},
	{aliases: []string{"total shots", "shots"}, coef: 0.02},
	{aliases: []string{"pass accuracy", "accurate passes %"}, coef: 0.002},
	{aliases: []string{"ground duels won", "ground duels"}, coef: 0.002},
	{aliases: []string{"tackles", "tackles won"}, pairedWith: []string{"interceptions"}, coef: 0.01},
	{aliases: []string{"fouls committed", "fouls"}, coef: 0.008, favorsOpponent: true},
}

// weakSignalMultBounds bound each cascade multiplier so no single weak
// signal can dominate the remaining rates.
const (
	weakSignalMultMin = 0.92
	weakSignalMultMax = 1.08
)

// estimateTotalMinutes is a conservative stoppage estimate: 90 plus one
// minute per goal, card or substitution from the 60th minute on, capped.
func estimateTotalMinutes(m *MatchContext, cfg *Config) float64 {
	if !m.IsLive {
		return 90.0
	}

	events := 0
	for _, e := range m.Events {
		if e.Minute < 60 {
			continue
		}
		switch e.Kind {
		case EventGoal, EventCard, EventSub:
			events++
		}
	}
	if events > cfg.MaxStoppageMinutes {
		events = cfg.MaxStoppageMinutes
	}
	return 90.0 + float64(events)
}

// adjustLive applies the in-play signal chain to the pre-match rates:
// time-scale to the remaining window, rescale by relative xG pace (or the
// shots-on-target nudge, or the weak cascade), stack red-card shocks, and
// damp both rates once a late lead appears. All outputs stay inside the
// live λ band.
func adjustLive(m *MatchContext, lambdaHomePre, lambdaAwayPre float64, cfg *Config) liveState {
	total := estimateTotalMinutes(m, cfg)
	minute := clamp(float64(m.Minute), 1.0, total)
	t := minute / total
	remain := (total - minute) / total

	state := liveState{
		lambdaHomeRem: clampLive(lambdaHomePre*remain, cfg),
		lambdaAwayRem: clampLive(lambdaAwayPre*remain, cfg),
		t:             t,
	}

	if xgHome, xgAway, ok := extractStat(m.Stats, "xg", "expected goals"); ok {
		state.xgPresent = true
		state.usedLiveStats = true

		expectedHome := lambdaHomePre * t
		expectedAway := lambdaAwayPre * t

		multHome := clamp((xgHome+0.10)/(expectedHome+0.10), cfg.XGMultMin, cfg.XGMultMax)
		multAway := clamp((xgAway+0.10)/(expectedAway+0.10), cfg.XGMultMin, cfg.XGMultMax)
		alpha := clamp(t, 0.0, cfg.XGAlphaMax)

		state.lambdaHomeRem = clampLive(lambdaHomePre*math.Pow(multHome, alpha)*remain, cfg)
		state.lambdaAwayRem = clampLive(lambdaAwayPre*math.Pow(multAway, alpha)*remain, cfg)
	} else if sotHome, sotAway, ok := extractStat(m.Stats, "shots on target"); ok {
		state.usedLiveStats = true
		delta := sotHome - sotAway
		b := clamp(t, 0.0, 0.50)
		state.lambdaHomeRem = clampLive(lambdaHomePre*remain*(1.0+cfg.SotCoef*delta*b), cfg)
		state.lambdaAwayRem = clampLive(lambdaAwayPre*remain*(1.0-cfg.SotCoef*delta*b), cfg)
	}

	applyRedCards(m, &state, cfg)

	if !state.xgPresent {
		applyWeakCascade(m, &state, cfg)
	}

	// Late-game damping: teams protect a lead.
	if m.Minute >= cfg.LeadProtectMinute && m.ScoreHome != m.ScoreAway {
		state.lambdaHomeRem = clampLive(state.lambdaHomeRem*cfg.LeadProtectDamp, cfg)
		state.lambdaAwayRem = clampLive(state.lambdaAwayRem*cfg.LeadProtectDamp, cfg)
	}

	return state
}

// applyWeakCascade walks the ordered chain and applies only the first
// secondary signal the feed carries; everything below it in the chain is
// ignored. Tackles and interceptions count as one combined signal.
func applyWeakCascade(m *MatchContext, state *liveState, cfg *Config) {
	b := clamp(state.t, 0.0, 0.50)

	for _, signal := range weakSignalCascade {
		delta, ok := weakSignalDelta(m.Stats, signal)
		if !ok {
			continue
		}
		state.usedLiveStats = true
		if signal.favorsOpponent {
			delta = -delta
		}
		multHome := clamp(1.0+signal.coef*delta*b, weakSignalMultMin, weakSignalMultMax)
		multAway := clamp(1.0-signal.coef*delta*b, weakSignalMultMin, weakSignalMultMax)
		state.lambdaHomeRem = clampLive(state.lambdaHomeRem*multHome, cfg)
		state.lambdaAwayRem = clampLive(state.lambdaAwayRem*multAway, cfg)
		return
	}
}

// weakSignalDelta resolves one cascade entry's home-minus-away delta. A
// paired stat adds into the same delta; the entry is present when either
// stat is.
func weakSignalDelta(stats []StatLine, signal weakSignal) (float64, bool) {
	delta := 0.0
	found := false
	if h, a, ok := extractStat(stats, signal.aliases...); ok {
		delta += h - a
		found = true
	}
	if len(signal.pairedWith) > 0 {
		if h, a, ok := extractStat(stats, signal.pairedWith...); ok {
			delta += h - a
			found = true
		}
	}
	return delta, found
}

// applyRedCards multiplies the carded side's remaining rate down and the
// opponent's up, per confirmed red, with stacked results clamped.
func applyRedCards(m *MatchContext, state *liveState, cfg *Config) {
	redHome, redAway := countRedCards(m)
	if redHome == 0 && redAway == 0 {
		return
	}

	if redHome > 0 {
		penalty := clamp(powi(cfg.RedCardPenalty, redHome), cfg.RedCardFloor, 1.0)
		boost := clamp(powi(cfg.RedCardBoost, redHome), 1.0, cfg.RedCardCeil)
		state.lambdaHomeRem = clampLive(state.lambdaHomeRem*penalty, cfg)
		state.lambdaAwayRem = clampLive(state.lambdaAwayRem*boost, cfg)
	}
	if redAway > 0 {
		penalty := clamp(powi(cfg.RedCardPenalty, redAway), cfg.RedCardFloor, 1.0)
		boost := clamp(powi(cfg.RedCardBoost, redAway), 1.0, cfg.RedCardCeil)
		state.lambdaAwayRem = clampLive(state.lambdaAwayRem*penalty, cfg)
		state.lambdaHomeRem = clampLive(state.lambdaHomeRem*boost, cfg)
	}
}

// countRedCards infers confirmed reds from card events whose description
// mentions "red", attributed by normalized team name.
func countRedCards(m *MatchContext) (home, away int) {
	homeKey := normalizeTeamKey(m.HomeName)
	awayKey := normalizeTeamKey(m.AwayName)

	for _, e := range m.Events {
		if e.Kind != EventCard {
			continue
		}
		if !strings.Contains(strings.ToLower(e.Description), "red") {
			continue
		}
		teamKey := normalizeTeamKey(e.Team)
		if homeKey != "" && teamKey == homeKey {
			home++
		} else if awayKey != "" && teamKey == awayKey {
			away++
		}
	}
	return home, away
}

// extractStat finds the first stat line matching any alias (case
// insensitive) and parses both cells; both must parse or the signal is
// treated as absent.
func extractStat(stats []StatLine, aliases ...string) (home, away float64, ok bool) {
	for _, row := range stats {
		name := strings.TrimSpace(row.Name)
		matched := false
		for _, alias := range aliases {
			if strings.EqualFold(name, strings.TrimSpace(alias)) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		h, hok := parseStatCell(row.Home)
		if !hok {
			return 0, 0, false
		}
		a, aok := parseStatCell(row.Away)
		if !aok {
			return 0, 0, false
		}
		return h, a, true
	}
	return 0, 0, false
}

func clampLive(v float64, cfg *Config) float64 {
	return clamp(v, cfg.LambdaLiveMin, cfg.LambdaLiveMax)
}
