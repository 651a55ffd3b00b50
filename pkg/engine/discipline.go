package engine

// disciplineWeights is the foul/card composite: a weighted mean of raw
// percentile ranks, so higher means more undisciplined than peers.
var disciplineWeights = []struct {
	key    string
	weight float64
}{
	{statFoulsCommitted, 0.50},
	{statYellowCards, 0.35},
	{statRedCards, 0.15},
}

// disciplineResult carries the team composite plus how much of the group it
// covered. Score is nil below the minimum player gate; coverage is reported
// regardless so the caller can still gate on it.
type disciplineResult struct {
	score    *float64
	resolved int
	coverage float64
}

// playerDiscipline is one player's composite, requiring at least the
// configured number of the three stats to be present.
func playerDiscipline(p *PlayerProfile, cfg *Config) *float64 {
	percentiles := statPercentiles(p)

	sum := 0.0
	weightSum := 0.0
	present := 0
	for _, item := range disciplineWeights {
		pct, ok := percentiles[item.key]
		if !ok {
			continue
		}
		sum += item.weight * pct
		weightSum += item.weight
		present++
	}

	if present < cfg.DisciplineStatMin || weightSum <= 0 {
		return nil
	}
	score := sum / weightSum
	return &score
}

// lineupDiscipline aggregates the starting XI's composites
func lineupDiscipline(side *LineupSide, players map[int]*PlayerProfile, cfg *Config) disciplineResult {
	if side == nil {
		return disciplineResult{}
	}

	sum := 0.0
	resolved := 0
	for _, slot := range side.Starting {
		profile := resolvePlayer(slot, players, side.Team)
		if profile == nil {
			continue
		}
		score := playerDiscipline(profile, cfg)
		if score == nil {
			continue
		}
		sum += *score
		resolved++
	}

	out := disciplineResult{
		resolved: resolved,
		coverage: float64(resolved) / float64(startingXISize),
	}
	if resolved >= cfg.MinDisciplinePlayers {
		score := sum / float64(resolved)
		out.score = &score
	}
	return out
}

// squadDiscipline is the squad-wide fallback when the lineup composite is
// too thin; coverage is relative to the known squad size.
func squadDiscipline(teamID int, squads map[int][]int, players map[int]*PlayerProfile, cfg *Config) disciplineResult {
	ids := squads[teamID]
	if len(ids) == 0 {
		return disciplineResult{}
	}

	sum := 0.0
	resolved := 0
	for _, id := range ids {
		profile, ok := players[id]
		if !ok {
			continue
		}
		score := playerDiscipline(profile, cfg)
		if score == nil {
			continue
		}
		sum += *score
		resolved++
	}

	out := disciplineResult{
		resolved: resolved,
		coverage: float64(resolved) / float64(len(ids)),
	}
	if resolved >= cfg.MinDisciplinePlayers {
		score := sum / float64(resolved)
		out.score = &score
	}
	return out
}

// teamDiscipline applies the coverage gate: lineup composite when it covers
// enough of the XI, otherwise the squad aggregate under the same gate,
// otherwise the signal is dropped.
func teamDiscipline(side *LineupSide, teamID int, snap *Snapshot, cfg *Config) disciplineResult {
	fromLineup := lineupDiscipline(side, snap.Players, cfg)
	if fromLineup.score != nil && fromLineup.coverage >= cfg.DisciplineCoverageMin {
		return fromLineup
	}

	fromSquad := squadDiscipline(teamID, snap.Squads, snap.Players, cfg)
	if fromSquad.score != nil && fromSquad.coverage >= cfg.DisciplineCoverageMin {
		return fromSquad
	}

	// Keep the better coverage figure for diagnostics even though the score
	// is unusable.
	if fromSquad.coverage > fromLineup.coverage {
		return disciplineResult{resolved: fromSquad.resolved, coverage: fromSquad.coverage}
	}
	return disciplineResult{resolved: fromLineup.resolved, coverage: fromLineup.coverage}
}
