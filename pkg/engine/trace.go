package engine

import "fmt"

// traceBuilder accumulates the pre-match explainability trace: successive
// probability snapshots whose home deltas telescope, plus machine-readable
// signal tags.
type traceBuilder struct {
	stages  []TraceStage
	signals []string
}

// stage records one probability snapshot; the delta is against the previous
// stage, zero for the first.
func (b *traceBuilder) stage(name string, pHome, pDraw, pAway float64) {
	delta := 0.0
	if n := len(b.stages); n > 0 {
		delta = pHome - b.stages[n-1].PHome
	}
	b.stages = append(b.stages, TraceStage{
		Name:      name,
		PHome:     pHome,
		PDraw:     pDraw,
		PAway:     pAway,
		DeltaHome: delta,
	})
}

func (b *traceBuilder) signal(format string, args ...any) {
	b.signals = append(b.signals, fmt.Sprintf(format, args...))
}

func (b *traceBuilder) explain() PredictionExplain {
	out := PredictionExplain{Stages: b.stages, Signals: b.signals}
	if n := len(b.stages); n > 0 {
		out.PHomeBaseline = b.stages[0].PHome
		out.PHomeFinal = b.stages[n-1].PHome
	}
	return out
}
