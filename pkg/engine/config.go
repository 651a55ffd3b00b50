package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config contains all tunable parameters that influence prediction outcomes.
// This centralizes the model's magic numbers so a caller can adjust them
// without touching the engine. The engine treats a Config as read-only; the
// caller owns where its values come from (defaults, YAML, flags).
type Config struct {
	// === TEAM STRENGTH ===

	KStrength          float64 `yaml:"k_strength"`           // scale of the strength+impact differential (default 0.45)
	SeasonWeight       float64 `yaml:"season_weight"`        // season share of the season/form blend (default 0.70)
	BaselineRating     float64 `yaml:"baseline_rating"`      // shrinkage target for match ratings (default 6.80)
	RatingStdDev       float64 `yaml:"rating_std_dev"`       // rating z-score scale (default 0.60)
	FormDecay          float64 `yaml:"form_decay"`           // per-match decay going back in time (default 0.85)
	FormWindow         int     `yaml:"form_window"`          // ratings considered, newest first (default 8)
	FormFullSample     int     `yaml:"form_full_sample"`     // ratings needed for full shrinkage weight (default 5)
	MinResolvedPlayers int     `yaml:"min_resolved_players"` // starters needed for a lineup strength (default 3)

	// === PERCENTILE Z-SCORES ===

	ZScale            float64 `yaml:"z_scale"`             // percentile points per z unit (default 15)
	ZClamp            float64 `yaml:"z_clamp"`             // per-stat z bound (default 3)
	SeasonZClamp      float64 `yaml:"season_z_clamp"`      // composite score bound (default 2)
	BasketCoverageMin float64 `yaml:"basket_coverage_min"` // covered-weight share below which a basket is discarded (default 0.40)

	// === DISCIPLINE ===

	MinDisciplinePlayers  int     `yaml:"min_discipline_players"`  // players needed for a team score (default 3)
	DisciplineStatMin     int     `yaml:"discipline_stat_min"`     // of fouls/yellows/reds, stats needed per player (default 2)
	DisciplineCoverageMin float64 `yaml:"discipline_coverage_min"` // coverage below which the squad fallback kicks in (default 0.40)
	DisciplineK           float64 `yaml:"discipline_k"`            // multiplier slope per 100 score points (default 0.08)
	DisciplineMultCap     float64 `yaml:"discipline_mult_cap"`     // multiplier ceiling (default 1.06)

	// === EXPECTED GOALS ===

	GoalsTotalBase float64 `yaml:"goals_total_base"` // league base when no fitted params exist (default 2.60)
	HomeAdvGoals   float64 `yaml:"home_adv_goals"`   // home advantage when no fitted params exist (default 0.15)
	DixonColesRho  float64 `yaml:"dixon_coles_rho"`  // low-score correlation when no fitted params exist (default -0.10)
	MaxGoals       int     `yaml:"max_goals"`        // pmf truncation bucket (default 10)
	LambdaPreMin   float64 `yaml:"lambda_pre_min"`   // pre-adjustment clamp (default 0.20)
	LambdaPreMax   float64 `yaml:"lambda_pre_max"`   // pre-adjustment clamp (default 3.80)
	LambdaLiveMin  float64 `yaml:"lambda_live_min"`  // post-adjustment clamp (default 0.05)
	LambdaLiveMax  float64 `yaml:"lambda_live_max"`  // post-adjustment clamp (default 3.00)

	// === LIVE SIGNALS ===

	XGMultMin          float64 `yaml:"xg_mult_min"`          // xG rescale floor (default 0.60)
	XGMultMax          float64 `yaml:"xg_mult_max"`          // xG rescale ceiling (default 1.70)
	XGAlphaMax         float64 `yaml:"xg_alpha_max"`         // cap on the time exponent (default 0.75)
	SotCoef            float64 `yaml:"sot_coef"`             // shots-on-target nudge per unit delta (default 0.05)
	RedCardPenalty     float64 `yaml:"red_card_penalty"`     // per-red multiplier on the carded team (default 0.80)
	RedCardFloor       float64 `yaml:"red_card_floor"`       // stacked penalty floor (default 0.55)
	RedCardBoost       float64 `yaml:"red_card_boost"`       // per-red multiplier on the opponent (default 1.10)
	RedCardCeil        float64 `yaml:"red_card_ceil"`        // stacked boost ceiling (default 1.35)
	LeadProtectMinute  int     `yaml:"lead_protect_minute"`  // minute from which a lead damps both rates (default 75)
	LeadProtectDamp    float64 `yaml:"lead_protect_damp"`    // the damping factor (default 0.90)
	MaxStoppageMinutes int     `yaml:"max_stoppage_minutes"` // cap on the stoppage estimate (default 7)

	// === MARKET BLEND ===

	MarketBlendEnabled bool    `yaml:"market_blend_enabled"` // feature flag (default false)
	MarketModelWeight  float64 `yaml:"market_model_weight"`  // model share of the blend (default 0.65)
	MarketWeight       float64 `yaml:"market_weight"`        // market share of the blend (default 0.35)
	MarketTTLMinutes   int     `yaml:"market_ttl_minutes"`   // snapshot freshness window (default 30)

	// === QUALITY / CONFIDENCE ===

	TrackBlendWeightMin float64 `yaml:"track_blend_weight_min"` // lineup blend weight needed for Track quality (default 0.10)
}

// DefaultConfig returns the default configuration with all standard values
func DefaultConfig() *Config {
	return &Config{
		KStrength:          0.45,
		SeasonWeight:       0.70,
		BaselineRating:     6.80,
		RatingStdDev:       0.60,
		FormDecay:          0.85,
		FormWindow:         8,
		FormFullSample:     5,
		MinResolvedPlayers: 3,

		ZScale:            15.0,
		ZClamp:            3.0,
		SeasonZClamp:      2.0,
		BasketCoverageMin: 0.40,

		MinDisciplinePlayers:  3,
		DisciplineStatMin:     2,
		DisciplineCoverageMin: 0.40,
		DisciplineK:           0.08,
		DisciplineMultCap:     1.06,

		GoalsTotalBase: 2.60,
		HomeAdvGoals:   0.15,
		DixonColesRho:  -0.10,
		MaxGoals:       10,
		LambdaPreMin:   0.20,
		LambdaPreMax:   3.80,
		LambdaLiveMin:  0.05,
		LambdaLiveMax:  3.00,

		XGMultMin:          0.60,
		XGMultMax:          1.70,
		XGAlphaMax:         0.75,
		SotCoef:            0.05,
		RedCardPenalty:     0.80,
		RedCardFloor:       0.55,
		RedCardBoost:       1.10,
		RedCardCeil:        1.35,
		LeadProtectMinute:  75,
		LeadProtectDamp:    0.90,
		MaxStoppageMinutes: 7,

		MarketBlendEnabled: false,
		MarketModelWeight:  0.65,
		MarketWeight:       0.35,
		MarketTTLMinutes:   30,

		TrackBlendWeightMin: 0.10,
	}
}

// LoadConfig reads a YAML config file over the defaults, so a partial file
// only overrides the keys it names.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate ensures all configuration values are within reasonable ranges
func (c *Config) Validate() error {
	if c.SeasonWeight < 0.0 || c.SeasonWeight > 1.0 {
		return fmt.Errorf("SeasonWeight must be between 0.0 and 1.0, got: %f", c.SeasonWeight)
	}
	if c.FormDecay <= 0.0 || c.FormDecay > 1.0 {
		return fmt.Errorf("FormDecay must be in (0.0, 1.0], got: %f", c.FormDecay)
	}
	if c.DixonColesRho > 0.0 || c.DixonColesRho < -0.3 {
		return fmt.Errorf("DixonColesRho should be between -0.3 and 0, got: %f", c.DixonColesRho)
	}
	if c.MaxGoals < 3 {
		return fmt.Errorf("MaxGoals should be at least 3 to capture realistic scores, got: %d", c.MaxGoals)
	}
	if c.LambdaPreMin <= 0 || c.LambdaPreMin >= c.LambdaPreMax {
		return fmt.Errorf("pre-match lambda clamps are inverted: [%f, %f]", c.LambdaPreMin, c.LambdaPreMax)
	}
	if c.LambdaLiveMin <= 0 || c.LambdaLiveMin >= c.LambdaLiveMax {
		return fmt.Errorf("live lambda clamps are inverted: [%f, %f]", c.LambdaLiveMin, c.LambdaLiveMax)
	}
	if c.MinResolvedPlayers < 1 || c.MinResolvedPlayers > 11 {
		return fmt.Errorf("MinResolvedPlayers must be between 1 and 11, got: %d", c.MinResolvedPlayers)
	}
	if sum := c.MarketModelWeight + c.MarketWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("market blend weights must sum to 1.0, got: %f", sum)
	}
	if c.MarketTTLMinutes < 0 {
		return fmt.Errorf("MarketTTLMinutes must not be negative, got: %d", c.MarketTTLMinutes)
	}
	if c.DisciplineMultCap < 1.0 {
		return fmt.Errorf("DisciplineMultCap must be at least 1.0, got: %f", c.DisciplineMultCap)
	}
	return nil
}

// FormWeight returns the form share of the season/form blend
func (c *Config) FormWeight() float64 {
	return 1.0 - c.SeasonWeight
}
