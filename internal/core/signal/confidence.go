package signal

// DormancySaturationDays is the gap length at which dormancy-derived
// confidence saturates at 1.0 (roughly six months)
const DormancySaturationDays = 180

// DormancyConfidence scores a dormancy gap. Longer silence means the actor
// was more clearly inactive, capped at certainty after half a year
func DormancyConfidence(dormantDays int) float64 {
	if dormantDays <= 0 {
		return 0
	}
	c := float64(dormantDays) / float64(DormancySaturationDays)
	return clamp01(c)
}

// SpikeConfidence scores a rate ratio by its distance from the relevant
// threshold. Increases grow toward 1.0 as the ratio approaches 3x the
// baseline; decreases grow toward 1.0 as the recent rate approaches zero
func SpikeConfidence(dir Direction, ratio float64) float64 {
	switch dir {
	case DirectionIncrease:
		return clamp01((ratio - 1) / 2)
	case DirectionDecrease:
		return clamp01((1 - ratio) / 2)
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
