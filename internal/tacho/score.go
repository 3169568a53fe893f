package tacho

import (
	"math"
	"tad/internal/models"
)

// maxPenaltyPerInfraction bounds one infraction's contribution: severity is
// at most 5 and confidence at most 1.0, so severity*confidence*5 <= 25.
const maxPenaltyPerInfraction = 25.0

// ComplianceScore reduces a list of infractions to a 0-100 score, rounded
// to one decimal. The denominator is 25 per detected infraction, so the
// score normalizes against the worst case for this infraction set rather
// than a global maximum: the same set always scores the same regardless of
// file size, and an added low-severity infraction can raise the score of an
// already-bad file. That is a deliberate property of the scoring model, not
// a bug.
func ComplianceScore(infractions []models.DetectedInfraction) float64 {
	if len(infractions) == 0 {
		return 100.0
	}

	totalPenalty := 0.0
	for _, inf := range infractions {
		totalPenalty += float64(inf.Severity) * inf.Confidence * 5
	}

	maxPossible := maxPenaltyPerInfraction * float64(len(infractions))
	score := 100 - totalPenalty/maxPossible*100
	if score < 0 {
		score = 0
	}
	return math.Round(score*10) / 10
}
