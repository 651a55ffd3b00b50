package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatPercentilesPrefersPer90(t *testing.T) {
	p := &PlayerProfile{Stats: []PlayerStat{
		{Name: "Goals", Percentile: fptr(40), PercentilePer90: fptr(75)},
		{Name: "Tackles", Percentile: fptr(60)},
	}}

	out := statPercentiles(p)
	assert.Equal(t, 75.0, out[statGoals])
	assert.Equal(t, 60.0, out[statTackles])
}

func TestBasketScoreCoverageGate(t *testing.T) {
	cfg := DefaultConfig()
	weights := attackBaskets[RoleAttacker]

	// A single light stat covers far under 40% of the basket weight.
	_, ok := basketScore(map[string]float64{statRating: 80}, weights, cfg)
	assert.False(t, ok)

	covered := map[string]float64{
		statGoals:         80,
		statNonPenaltyXG:  75,
		statShotsOnTarget: 70,
	}
	score, ok := basketScore(covered, weights, cfg)
	assert.True(t, ok)
	assert.Greater(t, score, 0.0)
}

func TestSeasonScoreBlendsRoleBaskets(t *testing.T) {
	cfg := DefaultConfig()

	p := midfielderProfile(1, "A", "Home FC", 80)
	score := seasonScore(p, RoleMidfielder, cfg)
	require.NotNil(t, score)
	// Every covered stat sits at the 80th percentile, z=2, attack basket only.
	assert.InDelta(t, 2.0, *score, 1e-9)

	empty := &PlayerProfile{}
	assert.Nil(t, seasonScore(empty, RoleMidfielder, cfg))
}

func TestFormScore(t *testing.T) {
	cfg := DefaultConfig()

	// Five identical ratings: full shrinkage weight, z = (7.4-6.8)/0.6.
	steady := &PlayerProfile{RecentRatings: []string{"7.4", "7.4", "7.4", "7.4", "7.4"}}
	score := formScore(steady, cfg)
	require.NotNil(t, score)
	assert.InDelta(t, 1.0, *score, 1e-9)

	// A single rating is shrunk hard toward the baseline.
	single := &PlayerProfile{RecentRatings: []string{"7.4"}}
	score = formScore(single, cfg)
	require.NotNil(t, score)
	assert.InDelta(t, 0.2, *score, 1e-9)

	// Newest-first decay: a recent spike outweighs the same spike long ago.
	recentSpike := &PlayerProfile{RecentRatings: []string{"9.0", "6.8", "6.8", "6.8"}}
	oldSpike := &PlayerProfile{RecentRatings: []string{"6.8", "6.8", "6.8", "9.0"}}
	recent := formScore(recentSpike, cfg)
	old := formScore(oldSpike, cfg)
	require.NotNil(t, recent)
	require.NotNil(t, old)
	assert.Greater(t, *recent, *old)

	// Unparseable ratings are skipped, not defaulted.
	garbled := &PlayerProfile{RecentRatings: []string{"-", "N/A"}}
	assert.Nil(t, formScore(garbled, cfg))
}

func TestPlayerScoreBlend(t *testing.T) {
	cfg := DefaultConfig()

	// Season z=2 (all stats at p80), form z=1 (steady 7.4): 0.7*2 + 0.3*1.
	p := midfielderProfile(1, "A", "Home FC", 80)
	p.RecentRatings = []string{"7.4", "7.4", "7.4", "7.4", "7.4"}
	score := playerScore(p, RoleMidfielder, cfg)
	require.NotNil(t, score)
	assert.InDelta(t, 1.7, *score, 1e-9)

	// Form alone carries the score when season stats are absent.
	formOnly := &PlayerProfile{RecentRatings: []string{"7.4", "7.4", "7.4", "7.4", "7.4"}}
	score = playerScore(formOnly, RoleMidfielder, cfg)
	require.NotNil(t, score)
	assert.InDelta(t, 1.0, *score, 1e-9)

	stub := &PlayerProfile{}
	assert.Nil(t, playerScore(stub, RoleMidfielder, cfg))
}

func TestRoleFromLabel(t *testing.T) {
	assert.Equal(t, RoleGoalkeeper, roleFromLabel("Goalkeeper"))
	assert.Equal(t, RoleGoalkeeper, roleFromLabel("GK"))
	assert.Equal(t, RoleDefender, roleFromLabel("Centre-Back"))
	assert.Equal(t, RoleDefender, roleFromLabel("rb"))
	assert.Equal(t, RoleAttacker, roleFromLabel("Striker"))
	assert.Equal(t, RoleAttacker, roleFromLabel("Right Winger"))
	assert.Equal(t, RoleMidfielder, roleFromLabel("Central Midfielder"))

	// Ambiguous labels coerce to midfielder rather than failing.
	assert.Equal(t, RoleMidfielder, roleFromLabel(""))
	assert.Equal(t, RoleMidfielder, roleFromLabel("utility"))
}

func TestResolvePlayer(t *testing.T) {
	players := map[int]*PlayerProfile{
		1: {ID: 1, Name: "John Smith", Team: "Home FC"},
		2: {ID: 2, Name: "John Smith", Team: "Away FC"},
		3: {ID: 3, Name: "Unique Name", Team: "Home FC"},
	}

	// Numeric id wins outright.
	got := resolvePlayer(PlayerSlot{ID: 2, Name: "wrong name"}, players, "Home FC")
	require.NotNil(t, got)
	assert.Equal(t, 2, got.ID)

	// Duplicate names resolve only when the team hint disambiguates.
	got = resolvePlayer(PlayerSlot{Name: "John Smith"}, players, "Away FC")
	require.NotNil(t, got)
	assert.Equal(t, 2, got.ID)
	assert.Nil(t, resolvePlayer(PlayerSlot{Name: "John Smith"}, players, ""))

	// A globally unique name resolves without a team hint.
	got = resolvePlayer(PlayerSlot{Name: "Unique Name"}, players, "")
	require.NotNil(t, got)
	assert.Equal(t, 3, got.ID)

	assert.Nil(t, resolvePlayer(PlayerSlot{Name: "Nobody"}, players, "Home FC"))
}
