package tacho

import (
	"fmt"
	"tad/internal/models"
)

// Regulatory thresholds, in minutes. Immutable, process-wide configuration.
const (
	MaxDailyDrivingMinutes      = 540  // 9h
	MaxWeeklyDrivingMinutes     = 3360 // 56h
	MinDailyRestMinutes         = 660  // 11h
	MaxContinuousDrivingMinutes = 270  // 4h30
	MinBreakMinutes             = 45
	MaxManualEntries            = 5
	WeeklyWindowDays            = 7
)

// Fixed recommendation texts per rule.
var (
	dailyDrivingRecommendations = []string{
		"Verify the validity of the tachograph data",
		"Justify any exceptional circumstances",
		"Schedule compensating rest periods",
	}
	dailyRestRecommendations = []string{
		"Organize a compensating rest period",
		"Verify the conditions for an authorized reduction",
		"Review tour scheduling",
	}
	missingBreakRecommendations = []string{
		"Plan regulatory breaks",
		"Use available rest areas",
		"Raise road safety awareness",
	}
	cardNotInsertedRecommendations = []string{
		"Check the driver card for defects",
		"Train the driver on card procedures",
		"Inspect the card reader",
	}
	manualEntriesRecommendations = []string{
		"Cross-check the manual entries for consistency",
		"Train on tachograph usage",
		"Inspect the equipment",
	}
	weeklyDrivingRecommendations = []string{
		"Immediate mandatory weekly rest",
		"Review tour planning",
		"Run a regulatory compliance audit",
	}
)

// RuleEngine evaluates the fixed rule catalogue. Stateless; rules are
// independent and non-exclusive, so one day can trigger several kinds.
type RuleEngine struct{}

func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

// CheckDay evaluates all per-day rules against one daily aggregate.
func (re *RuleEngine) CheckDay(day *models.DailyData) []models.DetectedInfraction {
	var infractions []models.DetectedInfraction

	// TC-001: daily driving excess.
	if day.DrivingMinutes > MaxDailyDrivingMinutes {
		excess := day.DrivingMinutes - MaxDailyDrivingMinutes
		severity := 3
		if excess > 120 {
			severity = 4
		}
		infractions = append(infractions, models.DetectedInfraction{
			Kind:          models.InfractionDailyDriving,
			Severity:      severity,
			Description:   fmt.Sprintf("Daily driving time exceeded by %d minutes", excess),
			Timestamp:     day.Date,
			ExcessMinutes: excess,
			Evidence: &models.DailyDrivingEvidence{
				DrivingMinutes: day.DrivingMinutes,
				LimitMinutes:   MaxDailyDrivingMinutes,
				ExcessMinutes:  excess,
			},
			Confidence:      0.95,
			Recommendations: dailyDrivingRecommendations,
		})
	}

	// TR-001: daily rest deficit.
	if day.RestMinutes < MinDailyRestMinutes {
		deficit := MinDailyRestMinutes - day.RestMinutes
		infractions = append(infractions, models.DetectedInfraction{
			Kind:          models.InfractionDailyRest,
			Severity:      4,
			Description:   fmt.Sprintf("Insufficient daily rest: %d minutes missing", deficit),
			Timestamp:     day.Date,
			ExcessMinutes: deficit,
			Evidence: &models.DailyRestEvidence{
				RestMinutes:    day.RestMinutes,
				MinimumMinutes: MinDailyRestMinutes,
				DeficitMinutes: deficit,
			},
			Confidence:      0.90,
			Recommendations: dailyRestRecommendations,
		})
	}

	// TP-001: continuous driving without a qualifying break, per session.
	for _, session := range day.Sessions {
		if session.DurationMinutes <= MaxContinuousDrivingMinutes {
			continue
		}
		if session.HasQualifyingBreak(MinBreakMinutes) {
			continue
		}
		excess := session.DurationMinutes - MaxContinuousDrivingMinutes
		infractions = append(infractions, models.DetectedInfraction{
			Kind:          models.InfractionMissingBreak,
			Severity:      2,
			Description:   fmt.Sprintf("Excessive continuous driving: %d minutes without a break", excess),
			Timestamp:     session.Start,
			ExcessMinutes: excess,
			Evidence: &models.MissingBreakEvidence{
				ContinuousMinutes: session.DurationMinutes,
				LimitMinutes:      MaxContinuousDrivingMinutes,
				MinBreakMinutes:   MinBreakMinutes,
			},
			Confidence:      0.85,
			Recommendations: missingBreakRecommendations,
		})
	}

	// US-001: driving without an inserted card.
	if !day.CardInserted {
		infractions = append(infractions, models.DetectedInfraction{
			Kind:        models.InfractionCardNotInserted,
			Severity:    3,
			Description: "Driving without an inserted driver card",
			Timestamp:   day.Date,
			Evidence: &models.CardNotInsertedEvidence{
				MinutesWithoutCard: day.DrivingMinutes,
			},
			Confidence:      1.0,
			Recommendations: cardNotInsertedRecommendations,
		})
	}

	// US-002: excessive manual entries.
	if day.ManualEntryCount > MaxManualEntries {
		infractions = append(infractions, models.DetectedInfraction{
			Kind:        models.InfractionManualEntries,
			Severity:    2,
			Description: fmt.Sprintf("High number of manual entries: %d", day.ManualEntryCount),
			Timestamp:   day.Date,
			Evidence: &models.ManualEntriesEvidence{
				Entries: day.ManualEntryCount,
				Limit:   MaxManualEntries,
			},
			Confidence:      0.80,
			Recommendations: manualEntriesRecommendations,
		})
	}

	return infractions
}

// CheckWeek evaluates TC-002 over a 7-day window in date order. The anchor
// date is the first day at which the cumulative total exceeds the limit,
// not the last day of the window.
func (re *RuleEngine) CheckWeek(week []*models.DailyData) []models.DetectedInfraction {
	if len(week) < WeeklyWindowDays {
		return nil
	}

	total := 0
	daily := make([]int, 0, len(week))
	for _, day := range week {
		total += day.DrivingMinutes
		daily = append(daily, day.DrivingMinutes)
	}
	if total <= MaxWeeklyDrivingMinutes {
		return nil
	}

	excess := total - MaxWeeklyDrivingMinutes
	anchor := week[0].Date
	cumulative := 0
	for _, day := range week {
		cumulative += day.DrivingMinutes
		if cumulative > MaxWeeklyDrivingMinutes {
			anchor = day.Date
			break
		}
	}

	return []models.DetectedInfraction{{
		Kind:          models.InfractionWeeklyDriving,
		Severity:      5,
		Description:   fmt.Sprintf("Weekly driving time exceeded by %d minutes", excess),
		Timestamp:     anchor,
		ExcessMinutes: excess,
		Evidence: &models.WeeklyDrivingEvidence{
			WeeklyMinutes: total,
			LimitMinutes:  MaxWeeklyDrivingMinutes,
			ExcessMinutes: excess,
			DailyMinutes:  daily,
		},
		Confidence:      0.98,
		Recommendations: weeklyDrivingRecommendations,
	}}
}
