package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// FeatureNames lists the seven team feature differentials, in the order the
// fitted linear model stores its means, stds and coefficients.
var FeatureNames = [7]string{
	"impact_diff",
	"rating_diff",
	"shots_on_target_diff",
	"key_passes_diff",
	"tackles_interceptions_diff",
	"duel_win_rate_diff",
	"cards_diff",
}

// signalClamp bounds the scalar signal either path can emit.
const signalClamp = 1.5

// ImpactEntry is one fitted (team, player) prior keyed by normalized names
type ImpactEntry struct {
	TeamNorm             string  `json:"team_norm"`
	PlayerNorm           string  `json:"player_norm"`
	Prior                float64 `json:"prior"`
	Samples              int     `json:"samples"`
	Minutes              float64 `json:"minutes"`
	Rating               float64 `json:"rating"`
	ShotsOnTarget        float64 `json:"shots_on_target"`
	KeyPasses            float64 `json:"key_passes"`
	TacklesInterceptions float64 `json:"tackles_interceptions"`
	DuelWinRate          float64 `json:"duel_win_rate"`
	Cards                float64 `json:"cards"`
}

// LinearModel is the optional fitted linear model over the seven feature
// differentials, with stored standardization parameters and diagnostics.
type LinearModel struct {
	FeatureNames        []string  `json:"feature_names"`
	FeatureMeans        []float64 `json:"feature_means"`
	FeatureStds         []float64 `json:"feature_stds"`
	Coeffs              []float64 `json:"coeffs"`
	RecencyHalfLifeDays float64   `json:"recency_half_life_days"`
	L2                  float64   `json:"l2"`
	TrainLogLoss        float64   `json:"train_log_loss"`
	ValLogLoss          float64   `json:"val_log_loss"`
	BaselineValLogLoss  float64   `json:"baseline_val_log_loss"`
	TrainSamples        int       `json:"train_samples"`
	ValSamples          int       `json:"val_samples"`
}

// LeagueArtifact is the per-league block of the registry document
type LeagueArtifact struct {
	LeagueID         int           `json:"league_id"`
	KPlayerImpact    float64       `json:"k_player_impact"`
	MinPlayerSamples int           `json:"min_player_samples"`
	ModelV2          *LinearModel  `json:"model_v2,omitempty"`
	Entries          []ImpactEntry `json:"entries"`
}

// RegistryArtifact is the versioned registry document as written by the
// offline fitting tool.
type RegistryArtifact struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Source      string           `json:"source,omitempty"`
	Leagues     []LeagueArtifact `json:"leagues"`
	SharedPrior *LeagueArtifact  `json:"shared_prior,omitempty"`
}

// TeamFeatures is the weighted aggregate of a team's matched player entries
type TeamFeatures struct {
	Impact               float64
	Rating               float64
	ShotsOnTarget        float64
	KeyPasses            float64
	TacklesInterceptions float64
	DuelWinRate          float64
	Cards                float64
	Coverage             float64
}

// LeagueModel is one league's registry entries indexed for lookup
type LeagueModel struct {
	artifact LeagueArtifact
	byKey    map[string]ImpactEntry
}

// Registry holds every league model plus the optional shared prior used as a
// cross-league fallback.
type Registry struct {
	leagues        map[int]*LeagueModel
	sharedPrior    *LeagueModel
	useSharedPrior bool
}

// NewLeagueModel indexes a league artifact by normalized team|player key
func NewLeagueModel(artifact LeagueArtifact) *LeagueModel {
	byKey := make(map[string]ImpactEntry, len(artifact.Entries))
	for _, entry := range artifact.Entries {
		byKey[entryKey(entry.TeamNorm, entry.PlayerNorm)] = entry
	}
	return &LeagueModel{artifact: artifact, byKey: byKey}
}

// NewRegistry builds the lookup structures from a parsed artifact
func NewRegistry(artifact RegistryArtifact, useSharedPrior bool) *Registry {
	leagues := make(map[int]*LeagueModel, len(artifact.Leagues))
	for _, item := range artifact.Leagues {
		leagues[item.LeagueID] = NewLeagueModel(item)
	}
	var shared *LeagueModel
	if artifact.SharedPrior != nil {
		shared = NewLeagueModel(*artifact.SharedPrior)
	}
	return &Registry{leagues: leagues, sharedPrior: shared, useSharedPrior: useSharedPrior}
}

// LoadRegistry reads and indexes a registry artifact from disk
func LoadRegistry(path string, useSharedPrior bool) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read player impact registry %s: %w", path, err)
	}
	var artifact RegistryArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("parse player impact registry %s: %w", path, err)
	}
	log.Info().
		Int("version", artifact.Version).
		Int("leagues", len(artifact.Leagues)).
		Bool("sharedPrior", artifact.SharedPrior != nil).
		Msg("player impact registry loaded")
	return NewRegistry(artifact, useSharedPrior), nil
}

func (m *LeagueModel) LeagueID() int          { return m.artifact.LeagueID }
func (m *LeagueModel) KPlayerImpact() float64 { return m.artifact.KPlayerImpact }
func (m *LeagueModel) V2Model() *LinearModel  { return m.artifact.ModelV2 }

// TeamFeatures aggregates the matched player entries for one team into a
// feature vector, weighting each entry by its sample-count shrinkage and
// minutes share. Returns nil unless at least one player matched with
// positive weight.
func (m *LeagueModel) TeamFeatures(teamName string, players []string) *TeamFeatures {
	teamNorm := NormalizeName(teamName)
	if teamNorm == "" {
		return nil
	}

	minSamples := m.artifact.MinPlayerSamples
	if minSamples < 1 {
		minSamples = 1
	}

	var total TeamFeatures
	totalW := 0.0
	matched := 0
	seen := 0

	for _, player := range players {
		playerNorm := NormalizeName(player)
		if playerNorm == "" {
			continue
		}
		seen++
		entry, ok := m.byKey[entryKey(teamNorm, playerNorm)]
		if !ok {
			continue
		}
		n := float64(entry.Samples)
		if n < 1 {
			n = 1
		}
		wSamples := clampF(n/float64(minSamples), 0.2, 1.0)
		wMinutes := clampF(entry.Minutes/900.0, 0.4, 1.0)
		w := wSamples * wMinutes

		totalW += w
		total.Impact += entry.Prior * w
		total.Rating += entry.Rating * w
		total.ShotsOnTarget += entry.ShotsOnTarget * w
		total.KeyPasses += entry.KeyPasses * w
		total.TacklesInterceptions += entry.TacklesInterceptions * w
		total.DuelWinRate += entry.DuelWinRate * w
		total.Cards += entry.Cards * w
		matched++
	}

	if seen == 0 || matched == 0 || totalW <= 0 {
		return nil
	}
	return &TeamFeatures{
		Impact:               total.Impact / totalW,
		Rating:               total.Rating / totalW,
		ShotsOnTarget:        total.ShotsOnTarget / totalW,
		KeyPasses:            total.KeyPasses / totalW,
		TacklesInterceptions: total.TacklesInterceptions / totalW,
		DuelWinRate:          total.DuelWinRate / totalW,
		Cards:                total.Cards / totalW,
		Coverage:             float64(matched) / float64(seen),
	}
}

// ImpactSignal converts the home-vs-away feature differential into a scalar
// expected-goals contribution: a dot product with the fitted coefficients on
// standardized differentials when a linear model is present, otherwise a
// flat coefficient on the prior differential.
func (m *LeagueModel) ImpactSignal(home, away TeamFeatures) float64 {
	if v2 := m.artifact.ModelV2; v2 != nil && len(v2.Coeffs) > 0 {
		raw := featureDiff(home, away)
		sum := 0.0
		for idx, c := range v2.Coeffs {
			if idx >= len(raw) {
				break
			}
			sum += c * standardized(raw[idx], idx, v2)
		}
		return clampF(sum, -signalClamp, signalClamp)
	}
	return clampF(m.artifact.KPlayerImpact*(home.Impact-away.Impact), -signalClamp, signalClamp)
}

// Tag describes which signal path the model would use, for trace output
func (m *LeagueModel) Tag() string {
	if m.artifact.ModelV2 != nil && len(m.artifact.ModelV2.Coeffs) > 0 {
		return "V2"
	}
	return "V1"
}

// ModelForLeague returns the exact league model, if fitted
func (r *Registry) ModelForLeague(leagueID int) *LeagueModel {
	return r.leagues[leagueID]
}

// FallbackModel returns the league model, falling back to the shared prior
// when enabled.
func (r *Registry) FallbackModel(leagueID int) *LeagueModel {
	if m, ok := r.leagues[leagueID]; ok {
		return m
	}
	if r.useSharedPrior {
		return r.sharedPrior
	}
	return nil
}

// TeamFeaturesForLeague resolves team features through the fallback chain
func (r *Registry) TeamFeaturesForLeague(leagueID int, teamName string, players []string) *TeamFeatures {
	model := r.FallbackModel(leagueID)
	if model == nil {
		return nil
	}
	return model.TeamFeatures(teamName, players)
}

// ImpactSignalForLeague computes the scalar signal, zero when no model serves
// the league.
func (r *Registry) ImpactSignalForLeague(leagueID int, home, away TeamFeatures) float64 {
	model := r.FallbackModel(leagueID)
	if model == nil {
		return 0.0
	}
	return model.ImpactSignal(home, away)
}

// NormalizeName canonicalizes a team or player name for registry keys:
// lowercase, ascii alphanumerics only, ampersand mapped to "a", every other
// run of characters collapsed to a single underscore, trimmed. Distinct
// names can collide after normalization; the registry keeps whichever entry
// the fitting tool wrote last, and lookups prefer numeric ids upstream so a
// collision only ever affects the name-keyed fallback.
func NormalizeName(input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))
	var out strings.Builder
	prevUnderscore := false
	for _, ch := range lower {
		var mapped rune
		ok := false
		switch {
		case (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9'):
			mapped, ok = ch, true
		case ch == '&':
			mapped, ok = 'a', true
		}
		if ok {
			out.WriteRune(mapped)
			prevUnderscore = false
		} else if !prevUnderscore && out.Len() > 0 {
			out.WriteByte('_')
			prevUnderscore = true
		}
	}
	return strings.TrimRight(out.String(), "_")
}

func entryKey(teamNorm, playerNorm string) string {
	return teamNorm + "|" + playerNorm
}

func standardized(raw float64, idx int, model *LinearModel) float64 {
	mean := 0.0
	if idx < len(model.FeatureMeans) {
		mean = model.FeatureMeans[idx]
	}
	std := 1.0
	if idx < len(model.FeatureStds) {
		std = model.FeatureStds[idx]
	}
	if std < 1e-6 {
		std = 1e-6
	}
	return (raw - mean) / std
}

func featureDiff(home, away TeamFeatures) [7]float64 {
	return [7]float64{
		home.Impact - away.Impact,
		home.Rating - away.Rating,
		home.ShotsOnTarget - away.ShotsOnTarget,
		home.KeyPasses - away.KeyPasses,
		home.TacklesInterceptions - away.TacklesInterceptions,
		home.DuelWinRate - away.DuelWinRate,
		home.Cards - away.Cards,
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
