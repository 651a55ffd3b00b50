package engine

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Engine turns one immutable snapshot into a win-probability row. It holds
// only read-only configuration, performs no I/O and never mutates its input,
// so a single instance is safe to share across goroutines.
type Engine struct {
	cfg *Config
	log zerolog.Logger
}

// New builds an engine around the given config, falling back to the defaults
// when nil.
func New(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{
		cfg: cfg,
		log: log.With().Str("component", "winprob").Logger(),
	}
}

// Prediction pairs the storable row with the pre-match explainability extras
// (nil for live and finished matches).
type Prediction struct {
	Row    WinProbRow        `json:"row"`
	Extras *PredictionExtras `json:"extras,omitempty"`
}

// prematchInputs is everything the pre-match pipeline needs, resolved once
// per call so the trace can re-evaluate the pipeline with stages toggled.
type prematchInputs struct {
	priors       leaguePriors
	strengthDiff float64
	impactSignal float64
	multHome     float64
	multAway     float64
}

// stageToggles selects which pipeline stages participate in one evaluation.
// Each trace stage turns on one more toggle than the last, so the stage
// deltas telescope to exactly the final-minus-baseline shift.
type stageToggles struct {
	homeAdv   bool
	lineup    bool // team strength and the discipline multipliers
	impact    bool
	calibrate bool
	market    bool
}

// Predict computes the three-way distribution for the snapshot's match.
// Every missing input degrades its signal to absent; the call itself cannot
// fail.
func (e *Engine) Predict(snap *Snapshot) Prediction {
	m := &snap.Match
	phase := PhaseOf(m)

	if phase == PhaseFinished {
		row := finishedRow(m)
		row.DeltaHome = deltaHome(row.PHome, snap.Previous)
		return Prediction{Row: row}
	}

	priors := resolvePriors(snap.League, e.cfg)

	homeSide, awaySide := lineupSides(m)
	sHome := lineupTeamStrength(homeSide, snap.Players, e.cfg)
	sAway := lineupTeamStrength(awaySide, snap.Players, e.cfg)

	// Lineup strength is both-or-nothing: one usable side alone would skew
	// the differential toward whichever team happens to have cached data.
	strengthDiff := 0.0
	blendW := 0.0
	if sHome != nil && sAway != nil {
		strengthDiff = sHome.strength - sAway.strength
		blendW = math.Min(sHome.coverage, sAway.coverage)
	}

	discHome := teamDiscipline(homeSide, m.HomeID, snap, e.cfg)
	discAway := teamDiscipline(awaySide, m.AwayID, snap, e.cfg)
	multHome, multAway := disciplineMultipliers(discHome.score, discAway.score, e.cfg)

	impactSignal := 0.0
	impactTag := ""
	if snap.Impact != nil && homeSide != nil && awaySide != nil {
		featHome := snap.Impact.TeamFeaturesForLeague(m.LeagueID, m.HomeName, startingNames(homeSide))
		featAway := snap.Impact.TeamFeaturesForLeague(m.LeagueID, m.AwayName, startingNames(awaySide))
		if featHome != nil && featAway != nil {
			impactSignal = snap.Impact.ImpactSignalForLeague(m.LeagueID, *featHome, *featAway)
			if model := snap.Impact.FallbackModel(m.LeagueID); model != nil {
				impactTag = model.Tag()
			}
		}
	}

	in := prematchInputs{
		priors:       priors,
		strengthDiff: strengthDiff,
		impactSignal: impactSignal,
		multHome:     multHome,
		multAway:     multAway,
	}

	if phase == PhaseLive {
		return e.predictLive(snap, in, blendW)
	}
	return e.predictPrematch(snap, in, sHome, sAway, discHome, discAway, impactTag, blendW)
}

// predictPrematch runs the telescoping stage evaluations and assembles the
// row plus the explainability extras.
func (e *Engine) predictPrematch(snap *Snapshot, in prematchInputs, sHome, sAway *teamStrength, discHome, discAway disciplineResult, impactTag string, blendW float64) Prediction {
	m := &snap.Match

	stageDefs := []struct {
		name string
		tg   stageToggles
	}{
		{"baseline", stageToggles{}},
		{"home_advantage", stageToggles{homeAdv: true}},
		{"lineup_discipline", stageToggles{homeAdv: true, lineup: true}},
		{"player_impact", stageToggles{homeAdv: true, lineup: true, impact: true}},
		{"calibration", stageToggles{homeAdv: true, lineup: true, impact: true, calibrate: true}},
		{"market_blend", stageToggles{homeAdv: true, lineup: true, impact: true, calibrate: true, market: true}},
	}

	trace := &traceBuilder{}
	var pHome, pDraw, pAway float64
	blended := false
	for _, def := range stageDefs {
		var usedMarket bool
		pHome, pDraw, pAway, usedMarket = e.evalPrematch(snap, in, def.tg)
		if def.tg.market {
			blended = usedMarket
		}
		trace.stage(def.name, pHome, pDraw, pAway)
	}

	trace.signal("HA_%+.2f", in.priors.homeAdv)
	if sHome != nil && sAway != nil {
		trace.signal("LINEUP_%d/11_%d/11", sHome.resolved, sAway.resolved)
	}
	if discHome.score != nil && discAway.score != nil {
		trace.signal("DISC_H%.0f_A%.0f_COV%d/%d_M%.2f/%.2f",
			*discHome.score, *discAway.score,
			discHome.resolved, discAway.resolved,
			in.multHome, in.multAway)
	}
	if impactTag != "" {
		trace.signal("PLAYER_IMPACT_%s_%+.3f", impactTag, in.impactSignal)
	}
	trace.signal("CAL_S%.2f_D%+.2f", in.priors.calScale, in.priors.calBias)
	if blended {
		bookmakers := 0
		if snap.Market != nil {
			bookmakers = snap.Market.Bookmakers
		}
		trace.signal("MARKET_BLEND_%.2f_BK%d", e.cfg.MarketWeight, bookmakers)
	}

	lambdaHome, lambdaAway := e.effectiveLambdas(in, stageToggles{homeAdv: true, lineup: true, impact: true})

	quality := modelQuality(blendW, false, e.cfg)
	row := WinProbRow{
		PHome:      pHome,
		PDraw:      pDraw,
		PAway:      pAway,
		DeltaHome:  deltaHome(pHome, snap.Previous),
		Quality:    quality,
		Confidence: prematchConfidence(blendW),
	}

	extras := &PredictionExtras{
		LambdaHomePre: lambdaHome,
		LambdaAwayPre: lambdaAway,
		BlendWLineup:  blendW,
		Explain:       trace.explain(),
	}
	if sHome != nil {
		extras.SHomeLineup = &sHome.strength
		extras.CoverageHome = sHome.coverage
	}
	if sAway != nil {
		extras.SAwayLineup = &sAway.strength
		extras.CoverageAway = sAway.coverage
	}

	e.log.Debug().
		Str("matchId", m.MatchID).
		Float64("pHome", row.PHome).
		Float64("lambdaHome", lambdaHome).
		Float64("lambdaAway", lambdaAway).
		Str("quality", string(row.Quality)).
		Msg("pre-match prediction")

	return Prediction{Row: row, Extras: extras}
}

// predictLive layers the in-play adjuster on top of the full pre-match rates
// and convolves over the remaining goals from the current score, without the
// Dixon-Coles weighting, calibration or market blend.
func (e *Engine) predictLive(snap *Snapshot, in prematchInputs, blendW float64) Prediction {
	m := &snap.Match

	lambdaHome, lambdaAway := e.effectiveLambdas(in, stageToggles{homeAdv: true, lineup: true, impact: true})
	state := adjustLive(m, lambdaHome, lambdaAway, e.cfg)

	pHome, pDraw, pAway := outcomeProbs(m.ScoreHome, m.ScoreAway,
		state.lambdaHomeRem, state.lambdaAwayRem, 0, e.cfg.MaxGoals)
	pHome, pDraw, pAway = normalizePercent(pHome*100.0, pDraw*100.0, pAway*100.0)

	quality := modelQuality(blendW, state.usedLiveStats, e.cfg)
	row := WinProbRow{
		PHome:      pHome,
		PDraw:      pDraw,
		PAway:      pAway,
		DeltaHome:  deltaHome(pHome, snap.Previous),
		Quality:    quality,
		Confidence: liveConfidence(state.t, state.xgPresent, quality),
	}

	e.log.Debug().
		Str("matchId", m.MatchID).
		Int("minute", m.Minute).
		Float64("pHome", row.PHome).
		Bool("xg", state.xgPresent).
		Str("quality", string(row.Quality)).
		Msg("live prediction")

	return Prediction{Row: row}
}

// effectiveLambdas resolves the pre-match expected goals under the given
// toggles, discipline multipliers included (they ride with the lineup
// toggle).
func (e *Engine) effectiveLambdas(in prematchInputs, tg stageToggles) (lambdaHome, lambdaAway float64) {
	priors := in.priors
	if !tg.homeAdv {
		priors.homeAdv = 0
	}

	strengthDiff := 0.0
	multHome, multAway := 1.0, 1.0
	if tg.lineup {
		strengthDiff = in.strengthDiff
		multHome, multAway = in.multHome, in.multAway
	}

	impactSignal := 0.0
	if tg.impact {
		impactSignal = in.impactSignal
	}

	lambdaHome, lambdaAway = prematchLambdas(priors, strengthDiff, impactSignal, e.cfg)
	lambdaHome = clamp(lambdaHome*multHome, e.cfg.LambdaPreMin, e.cfg.LambdaPreMax)
	lambdaAway = clamp(lambdaAway*multAway, e.cfg.LambdaPreMin, e.cfg.LambdaPreMax)
	return lambdaHome, lambdaAway
}

// evalPrematch runs the full pre-match pipeline under the given toggles and
// reports whether the market stage actually blended anything.
func (e *Engine) evalPrematch(snap *Snapshot, in prematchInputs, tg stageToggles) (pHome, pDraw, pAway float64, usedMarket bool) {
	lambdaHome, lambdaAway := e.effectiveLambdas(in, tg)

	h, d, a := outcomeProbs(0, 0, lambdaHome, lambdaAway, in.priors.rho, e.cfg.MaxGoals)
	pHome, pDraw, pAway = normalizePercent(h*100.0, d*100.0, a*100.0)

	if tg.calibrate {
		pHome, pDraw, pAway = calibrate(pHome, pDraw, pAway, in.priors.calScale, in.priors.calBias)
	}
	if tg.market {
		pHome, pDraw, pAway, usedMarket = blendMarket(pHome, pDraw, pAway, snap.Market, snap.AsOf, e.cfg)
	}
	return pHome, pDraw, pAway, usedMarket
}

// finishedRow is the deterministic split for a match that already ended.
func finishedRow(m *MatchContext) WinProbRow {
	row := WinProbRow{Quality: QualityBasic, Confidence: finishedConfidence}
	switch {
	case m.ScoreHome > m.ScoreAway:
		row.PHome = 100.0
	case m.ScoreHome < m.ScoreAway:
		row.PAway = 100.0
	default:
		row.PDraw = 100.0
	}
	return row
}

// deltaHome is the signed pp change versus the previously stored row, zero
// for a first prediction.
func deltaHome(pHome float64, prev *WinProbRow) float64 {
	if prev == nil {
		return 0.0
	}
	return pHome - prev.PHome
}
