// Package ai turns a (tenant, entity, table, row) selection into typed
// risk records by prompting a text-completion model, with a
// deterministic fallback when the model is unreachable.
package ai

import (
	"math"

	"grc/models"
)

const scoreFactor = 1.33

// Score computes the risk score: min(100, round(L × I × E × 1.33)).
func Score(likelihood, impact, exposure int) int {
	s := int(math.Round(float64(likelihood*impact*exposure) * scoreFactor))
	if s > 100 {
		return 100
	}
	if s < 0 {
		return 0
	}
	return s
}

// PriorityFor maps a score to its priority band.
func PriorityFor(score int) string {
	switch {
	case score >= 80:
		return models.LevelCritical
	case score >= 60:
		return models.LevelHigh
	case score >= 40:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}
