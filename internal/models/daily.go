package models

import "time"

// DailyData aggregates all activity of one calendar date. Built once by the
// timeline builder and consumed read-only by the rule engine.
type DailyData struct {
	Date                time.Time        `json:"date"`
	DrivingMinutes      int              `json:"driving_minutes"`
	WorkingMinutes      int              `json:"working_minutes"` // driving + other work
	RestMinutes         int              `json:"rest_minutes"`
	AvailabilityMinutes int              `json:"availability_minutes"`
	UnknownMinutes      int              `json:"unknown_minutes"`
	Sessions            []DrivingSession `json:"sessions"`
	ManualEntryCount    int              `json:"manual_entry_count"`
	CardInserted        bool             `json:"card_inserted"`
	// QualityWarnings carries data-quality conditions (per-kind sums above
	// 24h, overlapping periods). The data is still evaluated by the rules;
	// the warnings make the condition visible instead of clamping it away.
	QualityWarnings []string `json:"quality_warnings,omitempty"`
}

// TotalMinutes is the sum of all attributed minutes of the day. Values above
// 1440 indicate a decoding or grouping error and are surfaced as a quality
// warning by the timeline builder.
func (d *DailyData) TotalMinutes() int {
	otherWork := d.WorkingMinutes - d.DrivingMinutes
	return d.DrivingMinutes + otherWork + d.RestMinutes + d.AvailabilityMinutes + d.UnknownMinutes
}
