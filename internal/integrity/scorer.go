package integrity

import "math"

// Scorer turns finding counts into a confidence that the metadata was edited.
type Scorer struct {
	IndicatorWeight float64
	WarningWeight   float64
	// Threshold is exclusive: a confidence equal to it is not flagged.
	Threshold float64
}

// DefaultScorer weighs an indicator three times as heavily as a warning.
var DefaultScorer = Scorer{IndicatorWeight: 0.3, WarningWeight: 0.1, Threshold: 0.3}

// Score returns the confidence, capped at 1, and whether it exceeds the
// threshold.
func (s Scorer) Score(indicators, warnings int) (confidence float64, modified bool) {
	confidence = math.Min(1.0, float64(indicators)*s.IndicatorWeight+float64(warnings)*s.WarningWeight)
	return confidence, confidence > s.Threshold
}
