package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardedProfile(id int, name, team string, fouls, yellows float64) *PlayerProfile {
	return &PlayerProfile{
		ID:   id,
		Name: name,
		Team: team,
		Stats: []PlayerStat{
			{Name: "Fouls committed", Percentile: fptr(fouls)},
			{Name: "Yellow cards", Percentile: fptr(yellows)},
		},
	}
}

func TestPlayerDiscipline(t *testing.T) {
	cfg := DefaultConfig()

	p := cardedProfile(1, "A", "Home FC", 80, 70)
	score := playerDiscipline(p, cfg)
	require.NotNil(t, score)
	// (0.50*80 + 0.35*70) / 0.85
	assert.InDelta(t, 75.88, *score, 0.01)

	// A single stat is below the per-player minimum.
	thin := &PlayerProfile{Stats: []PlayerStat{
		{Name: "Fouls committed", Percentile: fptr(90)},
	}}
	assert.Nil(t, playerDiscipline(thin, cfg))
}

func TestLineupDisciplineGate(t *testing.T) {
	cfg := DefaultConfig()

	players := map[int]*PlayerProfile{
		1: cardedProfile(1, "A", "Home FC", 80, 70),
		2: cardedProfile(2, "B", "Home FC", 60, 50),
	}
	side := &LineupSide{Team: "Home FC", Starting: []PlayerSlot{
		{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"},
	}}

	// Two composites resolve, below the 3-player minimum.
	result := lineupDiscipline(side, players, cfg)
	assert.Nil(t, result.score)
	assert.Equal(t, 2, result.resolved)

	players[3] = cardedProfile(3, "C", "Home FC", 40, 30)
	result = lineupDiscipline(side, players, cfg)
	require.NotNil(t, result.score)
	assert.InDelta(t, 3.0/11.0, result.coverage, 1e-9)
}

func TestTeamDisciplineSquadFallback(t *testing.T) {
	cfg := DefaultConfig()

	snap := prematchSnapshot()
	snap.Players = map[int]*PlayerProfile{
		10: cardedProfile(10, "A", "Home FC", 70, 60),
		11: cardedProfile(11, "B", "Home FC", 50, 55),
		12: cardedProfile(12, "C", "Home FC", 65, 45),
	}
	snap.Squads = map[int][]int{1: {10, 11, 12}}

	// No lineup at all: only the squad aggregate can produce a score.
	result := teamDiscipline(nil, 1, snap, cfg)
	require.NotNil(t, result.score)
	assert.Equal(t, 3, result.resolved)
	assert.InDelta(t, 1.0, result.coverage, 1e-9)
}

func TestDisciplineMultipliers(t *testing.T) {
	cfg := DefaultConfig()

	// Missing either score leaves both sides untouched.
	multHome, multAway := disciplineMultipliers(nil, fptr(60), cfg)
	assert.Equal(t, 1.0, multHome)
	assert.Equal(t, 1.0, multAway)

	// A tie applies no multiplier to either side.
	multHome, multAway = disciplineMultipliers(fptr(55), fptr(55), cfg)
	assert.Equal(t, 1.0, multHome)
	assert.Equal(t, 1.0, multAway)

	// Home more undisciplined: the away side's rate gets the boost.
	multHome, multAway = disciplineMultipliers(fptr(80), fptr(40), cfg)
	assert.Equal(t, 1.0, multHome)
	assert.InDelta(t, 1.032, multAway, 1e-9)

	// The boost is capped however large the gap.
	_, multAway = disciplineMultipliers(fptr(100), fptr(0), cfg)
	assert.InDelta(t, cfg.DisciplineMultCap, multAway, 1e-9)
}
