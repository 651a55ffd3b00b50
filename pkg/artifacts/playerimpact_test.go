package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Manchester United", "manchester_united"},
		{"Brighton & Hove Albion", "brighton_a_hove_albion"},
		{"  Saint-Étienne  ", "saint_tienne"},
		{"Real Madrid!!", "real_madrid"},
		{"1. FC Köln", "1_fc_k_ln"},
		{"", ""},
		{"???", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeName(c.in), "in=%q", c.in)
	}
}

func testLeague() LeagueArtifact {
	return LeagueArtifact{
		LeagueID:         47,
		KPlayerImpact:    0.30,
		MinPlayerSamples: 5,
		Entries: []ImpactEntry{
			{
				TeamNorm: "home_fc", PlayerNorm: "alpha",
				Prior: 0.50, Samples: 10, Minutes: 900, Rating: 7.5,
			},
			{
				TeamNorm: "home_fc", PlayerNorm: "beta",
				Prior: -0.10, Samples: 1, Minutes: 90, Rating: 6.5,
			},
			{
				TeamNorm: "away_fc", PlayerNorm: "gamma",
				Prior: 0.10, Samples: 10, Minutes: 900, Rating: 6.9,
			},
		},
	}
}

func TestTeamFeaturesWeighting(t *testing.T) {
	model := NewLeagueModel(testLeague())

	feats := model.TeamFeatures("Home FC", []string{"Alpha", "Beta", "Unknown"})
	require.NotNil(t, feats)

	// Alpha carries full weight; Beta is shrunk to 0.2*0.4.
	wantImpact := (0.50*1.0 + -0.10*0.08) / 1.08
	assert.InDelta(t, wantImpact, feats.Impact, 1e-9)
	assert.InDelta(t, 2.0/3.0, feats.Coverage, 1e-9)

	// Nothing matched means no features, never a zeroed guess.
	assert.Nil(t, model.TeamFeatures("Home FC", []string{"Nobody"}))
	assert.Nil(t, model.TeamFeatures("", []string{"Alpha"}))
	assert.Nil(t, model.TeamFeatures("Home FC", nil))
}

func TestImpactSignalV1(t *testing.T) {
	model := NewLeagueModel(testLeague())

	home := TeamFeatures{Impact: 1.0}
	away := TeamFeatures{Impact: 0.2}
	assert.InDelta(t, 0.30*0.8, model.ImpactSignal(home, away), 1e-9)
	assert.Equal(t, "V1", model.Tag())

	// The signal is clamped no matter how extreme the differential.
	extreme := TeamFeatures{Impact: 100}
	assert.Equal(t, 1.5, model.ImpactSignal(extreme, away))
	assert.Equal(t, -1.5, model.ImpactSignal(away, extreme))
}

func TestImpactSignalV2(t *testing.T) {
	league := testLeague()
	league.ModelV2 = &LinearModel{
		FeatureNames: FeatureNames[:],
		FeatureMeans: make([]float64, 7),
		FeatureStds:  []float64{1, 1, 1, 1, 1, 1, 1},
		Coeffs:       []float64{0.5, 0.1, 0, 0, 0, 0, 0},
	}
	model := NewLeagueModel(league)
	assert.Equal(t, "V2", model.Tag())

	home := TeamFeatures{Impact: 1.0, Rating: 7.2}
	away := TeamFeatures{Impact: 0.0, Rating: 6.8}
	// 0.5*(1.0-0.0) + 0.1*(7.2-6.8)
	assert.InDelta(t, 0.54, model.ImpactSignal(home, away), 1e-9)

	// A zero stored std must not blow up the standardization.
	league.ModelV2.FeatureStds[0] = 0
	model = NewLeagueModel(league)
	signal := model.ImpactSignal(home, away)
	assert.Equal(t, 1.5, signal)
}

func TestRegistryFallback(t *testing.T) {
	shared := testLeague()
	shared.LeagueID = 0
	artifact := RegistryArtifact{
		Version:     1,
		Leagues:     []LeagueArtifact{testLeague()},
		SharedPrior: &shared,
	}

	withFallback := NewRegistry(artifact, true)
	assert.NotNil(t, withFallback.ModelForLeague(47))
	assert.Nil(t, withFallback.ModelForLeague(99))
	assert.NotNil(t, withFallback.FallbackModel(99))

	noFallback := NewRegistry(artifact, false)
	assert.Nil(t, noFallback.FallbackModel(99))
	assert.Equal(t, 0.0, noFallback.ImpactSignalForLeague(99, TeamFeatures{Impact: 1}, TeamFeatures{}))
}

func TestLoadRegistry(t *testing.T) {
	artifact := RegistryArtifact{
		Version:     2,
		GeneratedAt: "2026-03-01T00:00:00Z",
		Leagues:     []LeagueArtifact{testLeague()},
	}
	raw, err := json.Marshal(artifact)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	registry, err := LoadRegistry(path, false)
	require.NoError(t, err)
	require.NotNil(t, registry.ModelForLeague(47))

	feats := registry.TeamFeaturesForLeague(47, "Away FC", []string{"Gamma"})
	require.NotNil(t, feats)
	assert.InDelta(t, 0.10, feats.Impact, 1e-9)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"), false)
	assert.Error(t, err)
}
