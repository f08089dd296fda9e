package intent

import "github.com/teranos/palette/internal/util"

// Score weights
const (
	baseConfidence      = 0.5
	intentWeight        = 0.2
	entityWeight        = 0.2
	modifierWeight      = 0.1
	ambiguityPenalty    = 0.1
	ambiguousEntityRuns = 2
)

// Shortcut confidences
const (
	symbolShortcutConfidence = 0.95
	createShortcutConfidence = 0.9
	urgentShortcutConfidence = 0.95
	searchShortcutConfidence = 0.9
)

// Score rates how well a parse matched. It is a ranking hint, not a gate.
func Score(in Intent, entityCount, modifierCount int) float64 {
	score := baseConfidence
	if in != "" {
		score += intentWeight
	}
	if entityCount > 0 {
		score += entityWeight
	}
	if modifierCount > 0 {
		score += modifierWeight
	}
	if entityCount > ambiguousEntityRuns {
		score -= ambiguityPenalty
	}
	return util.Clamp01(score)
}
