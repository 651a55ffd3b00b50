package engine

// basket is a weighted set of season stats; the weight is how much the stat
// says about the basket's side of the game for that role.
type basket map[string]float64

var attackBaskets = map[Role]basket{
	RoleAttacker: {
		statGoals:           1.2,
		statNonPenaltyXG:    2.0,
		statExpectedAssists: 1.2,
		statChancesCreated:  1.0,
		statTouchesInBox:    0.9,
		statShotsOnTarget:   0.7,
		statRating:          0.6,
	},
	RoleMidfielder: {
		statExpectedAssists: 1.5,
		statChancesCreated:  1.4,
		statNonPenaltyXG:    1.2,
		statGoals:           0.8,
		statShotsOnTarget:   0.5,
		statRating:          0.6,
	},
	RoleDefender: {
		statExpectedAssists: 0.5,
		statChancesCreated:  0.5,
		statGoals:           0.4,
		statNonPenaltyXG:    0.4,
		statRating:          0.5,
	},
	RoleGoalkeeper: {
		statRating: 1.0,
	},
}

var defenseBaskets = map[Role]basket{
	RoleDefender: {
		statTackles:         1.2,
		statInterceptions:   1.2,
		statDuelWinPct:      1.0,
		statAerialsWon:      0.9,
		statClearances:      0.8,
		statDribbledPast:    0.9,
		statConcededOnPitch: 1.0,
		statRating:          0.6,
	},
	RoleMidfielder: {
		statTackles:       1.0,
		statInterceptions: 1.0,
		statRecoveries:    0.9,
		statDuelWinPct:    0.8,
		statDribbledPast:  0.6,
		statRating:        0.5,
	},
	RoleAttacker: {
		statDuelWinPct:    0.6,
		statTackles:       0.4,
		statInterceptions: 0.4,
		statRating:        0.4,
	},
	RoleGoalkeeper: {
		statSavePct:         1.8,
		statConcededOnPitch: 1.2,
		statSaves:           1.0,
		statRating:          0.8,
	},
}

// roleAttackShare is the attack-basket share of the role blend.
var roleAttackShare = map[Role]float64{
	RoleAttacker:   0.70,
	RoleMidfielder: 0.50,
	RoleDefender:   0.30,
	RoleGoalkeeper: 0.15,
}

// statPercentiles indexes a profile's stats by canonical key, preferring the
// per-90 rank over the total-based one.
func statPercentiles(p *PlayerProfile) map[string]float64 {
	out := make(map[string]float64, len(p.Stats))
	for _, stat := range p.Stats {
		key := statKeyOf(stat.Name)
		if key == "" {
			continue
		}
		if stat.PercentilePer90 != nil {
			out[key] = *stat.PercentilePer90
		} else if stat.Percentile != nil {
			if _, seen := out[key]; !seen {
				out[key] = *stat.Percentile
			}
		}
	}
	return out
}

// basketScore is the weighted mean of per-stat z-scores over the stats the
// profile actually has. The basket is discarded (ok=false) when the covered
// weight falls under the coverage floor, so thin data never masquerades as a
// neutral score.
func basketScore(percentiles map[string]float64, weights basket, cfg *Config) (float64, bool) {
	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight <= 0 {
		return 0, false
	}

	covered := 0.0
	sum := 0.0
	for key, w := range weights {
		p, ok := percentiles[key]
		if !ok {
			continue
		}
		covered += w
		sum += w * zFromPercentile(p, key, cfg)
	}

	if covered < cfg.BasketCoverageMin*totalWeight {
		return 0, false
	}
	return sum / covered, true
}

// seasonScore blends the role's attack and defense baskets into one season
// z-score, clamped to the composite bound. Nil when both baskets are
// discarded.
func seasonScore(p *PlayerProfile, role Role, cfg *Config) *float64 {
	percentiles := statPercentiles(p)
	if len(percentiles) == 0 {
		return nil
	}

	attack, attackOK := basketScore(percentiles, attackBaskets[role], cfg)
	defense, defenseOK := basketScore(percentiles, defenseBaskets[role], cfg)

	var score float64
	switch {
	case attackOK && defenseOK:
		share := roleAttackShare[role]
		score = share*attack + (1.0-share)*defense
	case attackOK:
		score = attack
	case defenseOK:
		score = defense
	default:
		return nil
	}

	score = clamp(score, -cfg.SeasonZClamp, cfg.SeasonZClamp)
	return &score
}

// formScore turns the recent rating history (newest first) into a z-score:
// exponentially decayed mean, shrunk toward the baseline rating in
// proportion to sample count, scaled by the fixed rating stddev. Nil when no
// rating parses.
func formScore(p *PlayerProfile, cfg *Config) *float64 {
	if len(p.RecentRatings) == 0 || cfg.FormWindow == 0 {
		return nil
	}

	weighted := 0.0
	weightSum := 0.0
	count := 0

	limit := cfg.FormWindow
	if limit > len(p.RecentRatings) {
		limit = len(p.RecentRatings)
	}
	for k := 0; k < limit; k++ {
		rating, ok := parseStatCell(p.RecentRatings[k])
		if !ok {
			continue
		}
		w := powi(cfg.FormDecay, k)
		weighted += w * rating
		weightSum += w
		count++
	}

	if count == 0 || weightSum <= 0 {
		return nil
	}

	mean := weighted / weightSum
	shrink := float64(count) / float64(cfg.FormFullSample)
	if shrink > 1.0 {
		shrink = 1.0
	}
	rating := shrink*mean + (1.0-shrink)*cfg.BaselineRating

	z := clamp((rating-cfg.BaselineRating)/cfg.RatingStdDev, -cfg.SeasonZClamp, cfg.SeasonZClamp)
	return &z
}

// playerScore is the player's composite: season and form z-scores blended
// season-heavy, either used alone when the other is absent, nil when both
// are. A nil score means the player contributes nothing to the team
// aggregate rather than a default guess.
func playerScore(p *PlayerProfile, role Role, cfg *Config) *float64 {
	season := seasonScore(p, role, cfg)
	form := formScore(p, cfg)

	switch {
	case season != nil && form != nil:
		blended := cfg.SeasonWeight**season + cfg.FormWeight()**form
		return &blended
	case season != nil:
		return season
	case form != nil:
		return form
	default:
		return nil
	}
}

// powi is x^n for small non-negative integer n
func powi(x float64, n int) float64 {
	out := 1.0
	for i := 0; i < n; i++ {
		out *= x
	}
	return out
}
