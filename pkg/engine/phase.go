package engine

// MatchPhase is the closed set of phases a prediction can run in. It is
// decided once per call and threaded through every downstream stage so no
// stage re-derives it from flag combinations.
type MatchPhase int

const (
	// PhaseFinished covers matches that are over: the result is known and the
	// row just reflects it.
	PhaseFinished MatchPhase = iota
	// PhasePrematch covers matches that have not kicked off.
	PhasePrematch
	// PhaseLive covers in-play matches, where live signals adjust the
	// remaining expected goals.
	PhaseLive
)

// PhaseOf classifies a match context. A non-live match at or past the 90th
// minute is treated as final.
func PhaseOf(m *MatchContext) MatchPhase {
	if m.IsLive {
		return PhaseLive
	}
	if m.Minute >= 90 {
		return PhaseFinished
	}
	return PhasePrematch
}

func (p MatchPhase) String() string {
	switch p {
	case PhaseFinished:
		return "finished"
	case PhasePrematch:
		return "prematch"
	case PhaseLive:
		return "live"
	default:
		return "unknown"
	}
}
