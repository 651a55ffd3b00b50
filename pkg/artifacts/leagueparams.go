// Package artifacts loads the read-only documents produced by the offline
// fitting tools: per-league scoring priors and the player-impact registry.
// Loading happens once at startup; everything here is immutable afterwards.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// LeagueParams is the fitted league-level prior consumed by the expected
// goals model. The calibration scale/bias pair reshapes the pre-match
// distribution; scale 1 / bias 0 is the identity.
type LeagueParams struct {
	LeagueID           int     `json:"league_id"`
	SampleMatches      int     `json:"sample_matches"`
	GoalsTotalBase     float64 `json:"goals_total_base"`
	HomeAdvGoals       float64 `json:"home_adv_goals"`
	DcRho              float64 `json:"dc_rho"`
	PrematchLogitScale float64 `json:"prematch_logit_scale"`
	PrematchDrawBias   float64 `json:"prematch_draw_bias"`
}

// DefaultLeagueParams returns the prior the fitting tool shrinks a league
// toward, and the base an artifact entry is decoded over, so a partial entry
// inherits these values for the fields it omits. Home advantage is zero here
// on purpose: a fitted artifact only carries home advantage the data actually
// showed, while a league with no artifact at all falls back to the engine
// config's prior instead.
func DefaultLeagueParams(leagueID int) LeagueParams {
	return LeagueParams{
		LeagueID:           leagueID,
		SampleMatches:      0,
		GoalsTotalBase:     2.60,
		HomeAdvGoals:       0.0,
		DcRho:              -0.10,
		PrematchLogitScale: 1.0,
		PrematchDrawBias:   0.0,
	}
}

// LoadLeagueParams reads a league-params artifact: a JSON object keyed by
// league id. Each entry is decoded over DefaultLeagueParams so omitted fields
// keep the shrink-target values. Entries with an unparseable key or body are
// skipped with a warning rather than failing the whole load.
func LoadLeagueParams(path string) (map[int]LeagueParams, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read league params %s: %w", path, err)
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("parse league params %s: %w", path, err)
	}

	out := make(map[int]LeagueParams, len(keyed))
	for key, entry := range keyed {
		id, err := strconv.Atoi(key)
		if err != nil {
			log.Warn().Str("key", key).Msg("skipping league params entry with non-numeric league id")
			continue
		}
		params := DefaultLeagueParams(id)
		if err := json.Unmarshal(entry, &params); err != nil {
			log.Warn().Str("key", key).Err(err).Msg("skipping malformed league params entry")
			continue
		}
		if params.LeagueID == 0 {
			params.LeagueID = id
		}
		if params.PrematchLogitScale <= 0 {
			params.PrematchLogitScale = 1.0
		}
		out[id] = params
	}
	return out, nil
}
