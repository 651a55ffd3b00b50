package engine

import (
	"strconv"
	"strings"
)

// Canonical season-stat keys. Profiles arrive with free-text stat titles;
// statKeyOf maps the known variants onto these before any basket lookup.
const (
	statGoals           = "goals"
	statNonPenaltyXG    = "non_penalty_xg"
	statExpectedAssists = "expected_assists"
	statChancesCreated  = "chances_created"
	statTouchesInBox    = "touches_in_box"
	statShotsOnTarget   = "shots_on_target"
	statRating          = "rating"
	statTackles         = "tackles"
	statInterceptions   = "interceptions"
	statClearances      = "clearances"
	statDuelWinPct      = "duel_win_pct"
	statAerialsWon      = "aerials_won"
	statDribbledPast    = "dribbled_past"
	statConcededOnPitch = "conceded_on_pitch"
	statSaves           = "saves"
	statSavePct         = "save_pct"
	statRecoveries      = "recoveries"
	statXGAgainst       = "xg_against"
	statFoulsCommitted  = "fouls_committed"
	statYellowCards     = "yellow_cards"
	statRedCards        = "red_cards"
)

// statAliases maps normalized feed titles to canonical keys.
var statAliases = map[string]string{
	"goals":                          statGoals,
	"non-penalty xg":                 statNonPenaltyXG,
	"non penalty xg":                 statNonPenaltyXG,
	"non-penalty expected goals":     statNonPenaltyXG,
	"xa":                             statExpectedAssists,
	"expected assists":               statExpectedAssists,
	"expected assists (xa)":          statExpectedAssists,
	"chances created":                statChancesCreated,
	"touches in opposition box":      statTouchesInBox,
	"touches in box":                 statTouchesInBox,
	"shots on target":                statShotsOnTarget,
	"rating":                         statRating,
	"fotmob rating":                  statRating,
	"average rating":                 statRating,
	"tackles":                        statTackles,
	"tackles won":                    statTackles,
	"interceptions":                  statInterceptions,
	"clearances":                     statClearances,
	"duels won %":                    statDuelWinPct,
	"duel win %":                     statDuelWinPct,
	"duels won percentage":           statDuelWinPct,
	"aerials won":                    statAerialsWon,
	"aerial duels won":               statAerialsWon,
	"dribbled past":                  statDribbledPast,
	"goals conceded while on pitch":  statConcededOnPitch,
	"conceded while on pitch":        statConcededOnPitch,
	"saves":                          statSaves,
	"save percentage":                statSavePct,
	"saves %":                        statSavePct,
	"save %":                         statSavePct,
	"recoveries":                     statRecoveries,
	"ball recoveries":                statRecoveries,
	"xg against":                     statXGAgainst,
	"expected goals against":         statXGAgainst,
	"fouls committed":                statFoulsCommitted,
	"fouls":                          statFoulsCommitted,
	"yellow cards":                   statYellowCards,
	"red cards":                      statRedCards,
}

// lowerIsBetter marks stats whose high percentile is bad for the player's
// team, so their z-score is negated.
var lowerIsBetter = map[string]bool{
	statFoulsCommitted:  true,
	statYellowCards:     true,
	statRedCards:        true,
	statDribbledPast:    true,
	statConcededOnPitch: true,
	statXGAgainst:       true,
}

// statKeyOf canonicalizes a free-text stat title; empty when unrecognized.
func statKeyOf(title string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	if key, ok := statAliases[normalized]; ok {
		return key
	}
	return ""
}

// zFromPercentile converts a percentile rank (0-100) into a directionally
// signed z-score: clamp((p-50)/scale, -zClamp, zClamp), negated for
// lower-is-better stats. Total function, never fails; absent percentiles are
// the caller's problem (it skips the stat).
func zFromPercentile(percentile float64, statKey string, cfg *Config) float64 {
	z := clamp((percentile-50.0)/cfg.ZScale, -cfg.ZClamp, cfg.ZClamp)
	if lowerIsBetter[statKey] {
		return -z
	}
	return z
}

// parseStatCell parses a raw stat cell like "1.72", "58%", "1,204" or "-".
// Unparseable cells return false and the stat is skipped, never defaulted.
func parseStatCell(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return 0, false
	}
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// normalizeTeamKey reduces a team label to lowercase alphanumerics with
// single spaces, for lineup-side and event-team matching.
func normalizeTeamKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	for _, ch := range lowered {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == ' ' || ch == '\t' {
			b.WriteRune(ch)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// normalizePlayerName is normalizeTeamKey plus suffix stripping (Jr, III...)
// so lineup slots match cached profiles across feed variants.
func normalizePlayerName(raw string) string {
	cleaned := normalizeTeamKey(raw)
	parts := strings.Fields(cleaned)
	kept := parts[:0]
	for _, p := range parts {
		switch p {
		case "jr", "sr", "ii", "iii", "iv":
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, " ")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
