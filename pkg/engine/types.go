package engine

import (
	"time"

	"github.com/matchpulse/winprob/pkg/artifacts"
)

// ModelQuality is a coarse label summarising how much real signal fed a prediction
type ModelQuality string

const (
	QualityBasic ModelQuality = "Basic" // base rates only, or a finished match
	QualityEvent ModelQuality = "Event" // live statistical signal, no lineup coverage
	QualityTrack ModelQuality = "Track" // lineup-based team strength with usable blend weight
)

// EventKind identifies a timeline event in a match
type EventKind string

const (
	EventGoal EventKind = "goal"
	EventCard EventKind = "card"
	EventSub  EventKind = "sub"
	EventShot EventKind = "shot"
)

// MatchEvent is a single timeline entry (goal, card, substitution, shot)
type MatchEvent struct {
	Minute      int       `json:"minute"`
	Kind        EventKind `json:"kind"`
	Team        string    `json:"team"`
	Description string    `json:"description"`
}

// StatLine is one row of the live match statistics table, values as raw text
// exactly as the feed supplied them ("1.72", "58%", "-")
type StatLine struct {
	Name string `json:"name"`
	Home string `json:"home"`
	Away string `json:"away"`
}

// PlayerSlot is one position in a lineup (starting XI or bench)
type PlayerSlot struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

// LineupSide is one team's announced lineup
type LineupSide struct {
	Team      string       `json:"team"`
	TeamAbbr  string       `json:"teamAbbr"`
	Formation string       `json:"formation"`
	Starting  []PlayerSlot `json:"starting"`
	Subs      []PlayerSlot `json:"subs"`
}

// MatchLineups holds both lineups in feed order (home first when order is all we have)
type MatchLineups struct {
	Sides []LineupSide `json:"sides"`
}

// MatchContext is one fixture at a point in time. It is assembled by the
// caller from cached state and never mutated by the engine.
type MatchContext struct {
	MatchID   string        `json:"matchId"`
	LeagueID  int           `json:"leagueId"`
	HomeID    int           `json:"homeId"`
	AwayID    int           `json:"awayId"`
	HomeName  string        `json:"homeName"`
	AwayName  string        `json:"awayName"`
	HomeAbbr  string        `json:"homeAbbr"`
	AwayAbbr  string        `json:"awayAbbr"`
	Minute    int           `json:"minute"`
	ScoreHome int           `json:"scoreHome"`
	ScoreAway int           `json:"scoreAway"`
	IsLive    bool          `json:"isLive"`
	Events    []MatchEvent  `json:"events,omitempty"`
	Stats     []StatLine    `json:"stats,omitempty"`
	Lineups   *MatchLineups `json:"lineups,omitempty"`
}

// PlayerStat is one season statistic with its percentile ranks against the
// player's peer population. Nil percentile means the rank is unknown.
type PlayerStat struct {
	Name            string   `json:"name"`
	Percentile      *float64 `json:"percentile,omitempty"`
	PercentilePer90 *float64 `json:"percentilePer90,omitempty"`
}

// PlayerProfile is one player's cached season/form record. A stub profile
// (no stats, no ratings) is valid input and simply contributes nothing.
type PlayerProfile struct {
	ID       int          `json:"id"`
	Name     string       `json:"name"`
	Team     string       `json:"team"`
	TeamID   int          `json:"teamId"`
	Position string       `json:"position"`
	Stats    []PlayerStat `json:"stats,omitempty"`
	// RecentRatings holds match ratings newest first, as raw feed text.
	RecentRatings []string `json:"recentRatings,omitempty"`
}

// MarketOddsSnapshot is an optional external market quote for the match
type MarketOddsSnapshot struct {
	Source      string    `json:"source"`
	FetchedAt   time.Time `json:"fetchedAt"`
	Bookmakers  int       `json:"bookmakers"`
	HomeOdds    float64   `json:"homeOdds"`
	DrawOdds    float64   `json:"drawOdds"`
	AwayOdds    float64   `json:"awayOdds"`
	ImpliedHome float64   `json:"impliedHome"`
	ImpliedDraw float64   `json:"impliedDraw"`
	ImpliedAway float64   `json:"impliedAway"`
	Stale       bool      `json:"stale"`
}

// WinProbRow is the engine output: a three-way distribution in percent
// (summing to 100, rounding residue assigned to draw), the change in the home
// probability since the previous stored row, and a quality/confidence rating.
type WinProbRow struct {
	PHome      float64      `json:"pHome"`
	PDraw      float64      `json:"pDraw"`
	PAway      float64      `json:"pAway"`
	DeltaHome  float64      `json:"deltaHome"`
	Quality    ModelQuality `json:"quality"`
	Confidence int          `json:"confidence"`
}

// TraceStage is one probability snapshot in the explainability trace
type TraceStage struct {
	Name      string  `json:"name"`
	PHome     float64 `json:"pHome"`
	PDraw     float64 `json:"pDraw"`
	PAway     float64 `json:"pAway"`
	DeltaHome float64 `json:"deltaHome"` // signed pp shift to PHome versus the previous stage
}

// PredictionExplain records how each pre-match stage moved the home
// probability. The stage deltas sum to PHomeFinal-PHomeBaseline.
type PredictionExplain struct {
	PHomeBaseline float64      `json:"pHomeBaseline"`
	PHomeFinal    float64      `json:"pHomeFinal"`
	Stages        []TraceStage `json:"stages"`
	Signals       []string     `json:"signals"`
}

// PredictionExtras is the explainability output, produced for pre-match calls only
type PredictionExtras struct {
	LambdaHomePre float64           `json:"lambdaHomePre"`
	LambdaAwayPre float64           `json:"lambdaAwayPre"`
	SHomeLineup   *float64          `json:"sHomeLineup,omitempty"`
	SAwayLineup   *float64          `json:"sAwayLineup,omitempty"`
	CoverageHome  float64           `json:"coverageHome"`
	CoverageAway  float64           `json:"coverageAway"`
	BlendWLineup  float64           `json:"blendWLineup"`
	Explain       PredictionExplain `json:"explain"`
}

// Snapshot is one immutable bundle of inputs for a single Predict call.
// The caller assembles it per recompute and hands it over whole; the engine
// never reaches back into shared state.
type Snapshot struct {
	AsOf    time.Time              `json:"asOf"`
	Match   MatchContext           `json:"match"`
	Players map[int]*PlayerProfile `json:"players,omitempty"`
	// Squads maps team id to the ids of its known squad members, used as the
	// discipline fallback when lineup coverage is thin.
	Squads map[int][]int       `json:"squads,omitempty"`
	Market *MarketOddsSnapshot `json:"market,omitempty"`

	// Offline-fitted artifacts, attached by the caller after loading.
	League *artifacts.LeagueParams `json:"-"`
	Impact *artifacts.Registry     `json:"-"`

	// Previous is the last stored row for this match id, if any; it only
	// feeds DeltaHome.
	Previous *WinProbRow `json:"-"`
}
