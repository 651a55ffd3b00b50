package engine

import "math"

// modelQuality labels how much real signal reached the distribution: lineup
// strength with a usable blend weight earns Track, any live statistical
// signal earns Event, everything else is the base-rate tier.
func modelQuality(blendWLineup float64, usedLiveStats bool, cfg *Config) ModelQuality {
	if blendWLineup > cfg.TrackBlendWeightMin {
		return QualityTrack
	}
	if usedLiveStats {
		return QualityEvent
	}
	return QualityBasic
}

// liveConfidence grows with elapsed time and with the strength of the live
// signal: xG is worth more than the weak cascade, a tracked lineup adds on
// top.
func liveConfidence(t float64, xgPresent bool, quality ModelQuality) int {
	conf := 30.0 + 50.0*t
	if xgPresent {
		conf += 10.0
	}
	if quality == QualityTrack {
		conf += 10.0
	}
	return clampConfidence(conf)
}

// prematchConfidence is driven entirely by how much of the distribution came
// from lineup-level signal rather than league base rates.
func prematchConfidence(blendWLineup float64) int {
	return clampConfidence(35.0 + 60.0*blendWLineup)
}

const finishedConfidence = 95

func clampConfidence(v float64) int {
	return int(clamp(math.Round(v), 5.0, 95.0))
}
