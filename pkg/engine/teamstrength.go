package engine

// teamStrength is a lineup side's aggregated player signal. Strength sits in
// [-1, 1]; coverage is resolved starters over a full XI.
type teamStrength struct {
	strength float64
	resolved int
	coverage float64
}

const startingXISize = 11

// resolvePlayer maps a lineup slot to a cached profile: numeric id first,
// then normalized-name match restricted to the team when that leaves exactly
// one candidate, then a unique name match overall. Ambiguity resolves to
// nothing rather than a guess.
func resolvePlayer(slot PlayerSlot, players map[int]*PlayerProfile, teamHint string) *PlayerProfile {
	if slot.ID != 0 {
		if p, ok := players[slot.ID]; ok {
			return p
		}
	}

	slotKey := normalizePlayerName(slot.Name)
	if slotKey == "" {
		return nil
	}

	var exact []*PlayerProfile
	for _, p := range players {
		if normalizePlayerName(p.Name) == slotKey {
			exact = append(exact, p)
		}
	}
	if len(exact) == 0 {
		return nil
	}

	if teamKey := normalizeTeamKey(teamHint); teamKey != "" {
		var teamFiltered []*PlayerProfile
		for _, p := range exact {
			if normalizeTeamKey(p.Team) == teamKey {
				teamFiltered = append(teamFiltered, p)
			}
		}
		if len(teamFiltered) == 1 {
			return teamFiltered[0]
		}
	}

	if len(exact) == 1 {
		return exact[0]
	}
	return nil
}

// lineupTeamStrength scores each resolvable starter and averages the halved
// scores into one team strength. Below the minimum resolved-player gate the
// side has no lineup-based strength at all (nil, not zero).
func lineupTeamStrength(side *LineupSide, players map[int]*PlayerProfile, cfg *Config) *teamStrength {
	if side == nil {
		return nil
	}

	sum := 0.0
	resolved := 0
	for _, slot := range side.Starting {
		profile := resolvePlayer(slot, players, side.Team)
		if profile == nil {
			continue
		}
		score := playerScore(profile, roleForSlot(slot, profile), cfg)
		if score == nil {
			continue
		}
		sum += *score / 2.0
		resolved++
	}

	if resolved < cfg.MinResolvedPlayers {
		return nil
	}

	return &teamStrength{
		strength: clamp(sum/float64(resolved), -1.0, 1.0),
		resolved: resolved,
		coverage: float64(resolved) / float64(startingXISize),
	}
}

// lineupSides pairs the snapshot's lineup sides with the home and away
// teams: full team name first, abbreviation second, feed order (home then
// away) as the last resort.
func lineupSides(m *MatchContext) (home, away *LineupSide) {
	if m.Lineups == nil || len(m.Lineups.Sides) == 0 {
		return nil, nil
	}
	sides := m.Lineups.Sides

	homeKey := normalizeTeamKey(m.HomeName)
	awayKey := normalizeTeamKey(m.AwayName)
	for i := range sides {
		teamKey := normalizeTeamKey(sides[i].Team)
		if home == nil && homeKey != "" && teamKey == homeKey {
			home = &sides[i]
		}
		if away == nil && awayKey != "" && teamKey == awayKey {
			away = &sides[i]
		}
	}

	homeAbbr := normalizeTeamKey(m.HomeAbbr)
	awayAbbr := normalizeTeamKey(m.AwayAbbr)
	if home == nil || away == nil {
		for i := range sides {
			abbr := normalizeTeamKey(sides[i].TeamAbbr)
			if home == nil && homeAbbr != "" && abbr == homeAbbr {
				home = &sides[i]
			}
			if away == nil && awayAbbr != "" && abbr == awayAbbr {
				away = &sides[i]
			}
		}
	}

	if home == nil {
		home = &sides[0]
	}
	if away == nil && len(sides) > 1 {
		away = &sides[1]
	}
	return home, away
}

// startingNames lists a side's starter names for registry lookups
func startingNames(side *LineupSide) []string {
	if side == nil {
		return nil
	}
	names := make([]string, 0, len(side.Starting))
	for _, slot := range side.Starting {
		names = append(names, slot.Name)
	}
	return names
}
