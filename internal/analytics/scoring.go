package analytics

import "math"

// ScoringConfig holds the constants of the intelligence score. The defaults
// model a 300–720 standardized-test style range.
type ScoringConfig struct {
	Base             int
	Ceiling          int
	AccuracyWeight   float64
	QuestionsDivisor float64
	HoursDivisor     float64
}

// DefaultScoring returns the stock scoring constants.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Base:             300,
		Ceiling:          720,
		AccuracyWeight:   4,
		QuestionsDivisor: 10,
		HoursDivisor:     2,
	}
}

// Score is the outcome of the scoring function.
type Score struct {
	// Value is Base+floor(Earned), capped at Ceiling.
	Value int
	// Earned is the unclamped weighted sum.
	Earned float64
	// Gain is Earned rounded to the nearest integer, ties to even.
	Gain int
}

// Score maps aggregate statistics to the bounded intelligence score.
// Negative inputs are treated as zero so the result never drops below Base.
func (c ScoringConfig) Score(accuracy float64, totalQuestions int, studyHours float64) Score {
	earned := math.Max(accuracy, 0)*c.AccuracyWeight +
		safeDiv(math.Max(float64(totalQuestions), 0), c.QuestionsDivisor) +
		safeDiv(math.Max(studyHours, 0), c.HoursDivisor)
	if earned < 0 || math.IsNaN(earned) {
		earned = 0
	}

	value := c.Ceiling
	if floor := math.Floor(earned); floor < float64(c.Ceiling-c.Base) {
		value = c.Base + int(floor)
	}
	if value < c.Base {
		value = c.Base
	}

	return Score{
		Value:  value,
		Earned: earned,
		Gain:   int(math.RoundToEven(earned)),
	}
}

func safeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}
