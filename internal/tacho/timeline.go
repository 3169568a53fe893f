package tacho

import (
	"fmt"
	"sort"
	"tad/internal/models"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

const (
	minutesPerDay = 24 * 60

	// cardGapThreshold is the evidence threshold for driving without an
	// inserted card: a hole longer than this between consecutive periods,
	// bordered by a Driving period, marks the day as card-not-inserted.
	cardGapThreshold = 60 * time.Minute
)

// TimelineBuilder turns the flat decoded activity stream of one file into
// day-bucketed aggregates and continuous driving sessions.
type TimelineBuilder struct{}

func NewTimelineBuilder() *TimelineBuilder {
	return &TimelineBuilder{}
}

// Build groups periods by the calendar date of their start timestamp (the
// device clock is the wall clock; no timezone conversion) and returns the
// daily aggregates sorted ascending by date. A period straddling midnight
// belongs wholly to its start date.
func (tb *TimelineBuilder) Build(periods []models.ActivityPeriod) []*models.DailyData {
	if len(periods) == 0 {
		return nil
	}

	sorted := make([]models.ActivityPeriod, len(periods))
	copy(sorted, periods)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	// Sessions run over continuous physical time, independent of day
	// bucketing; each is attached to the day of its start below.
	sessions := buildSessions(sorted)

	byDate := make(map[time.Time]*models.DailyData)
	periodsByDate := make(map[time.Time][]models.ActivityPeriod)

	for _, p := range sorted {
		date := dayOf(p.Start)
		day, ok := byDate[date]
		if !ok {
			day = &models.DailyData{Date: date, CardInserted: true}
			byDate[date] = day
		}

		switch p.Kind {
		case models.ActivityDriving:
			day.DrivingMinutes += p.DurationMinutes
			day.WorkingMinutes += p.DurationMinutes
		case models.ActivityOtherWork:
			day.WorkingMinutes += p.DurationMinutes
		case models.ActivityAvailability:
			day.AvailabilityMinutes += p.DurationMinutes
		case models.ActivityRest:
			day.RestMinutes += p.DurationMinutes
		default:
			// Unknown stays counted, never attributed to a guessed kind.
			day.UnknownMinutes += p.DurationMinutes
		}
		if p.ManualEntry {
			day.ManualEntryCount++
		}
		periodsByDate[date] = append(periodsByDate[date], p)
	}

	for _, s := range sessions {
		date := dayOf(s.Start)
		if day, ok := byDate[date]; ok {
			day.Sessions = append(day.Sessions, s)
		}
	}

	days := make([]*models.DailyData, 0, len(byDate))
	for date, day := range byDate {
		dayPeriods := periodsByDate[date]
		if hasCardGap(dayPeriods) {
			day.CardInserted = false
		}
		day.QualityWarnings = qualityWarnings(day, dayPeriods)
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

// buildSessions merges the time-ordered stream into continuous driving
// sessions. OtherWork and Availability keep a session alive without adding
// driving minutes; a Rest of any length closes the session and is retained
// as its trailing period — whether it qualifies as a break is the rule
// engine's call, not decided here.
func buildSessions(sorted []models.ActivityPeriod) []models.DrivingSession {
	var sessions []models.DrivingSession
	var cur *models.DrivingSession

	for _, p := range sorted {
		switch p.Kind {
		case models.ActivityDriving:
			if cur == nil {
				cur = &models.DrivingSession{Start: p.Start}
			}
			cur.Periods = append(cur.Periods, p)
			cur.DurationMinutes += p.DurationMinutes
			cur.End = p.End
		case models.ActivityRest:
			if cur != nil {
				cur.Periods = append(cur.Periods, p)
				sessions = append(sessions, *cur)
				cur = nil
			}
		default:
			if cur != nil {
				cur.Periods = append(cur.Periods, p)
			}
		}
	}
	if cur != nil {
		sessions = append(sessions, *cur)
	}
	return sessions
}

// hasCardGap reports card-not-inserted evidence: a gap above the threshold
// between consecutive periods with a Driving period on either side of it.
func hasCardGap(dayPeriods []models.ActivityPeriod) bool {
	for i := 1; i < len(dayPeriods); i++ {
		prev, next := dayPeriods[i-1], dayPeriods[i]
		gap := next.Start.Sub(prev.End)
		if gap <= cardGapThreshold {
			continue
		}
		if prev.Kind == models.ActivityDriving || next.Kind == models.ActivityDriving {
			return true
		}
	}
	return false
}

// qualityWarnings surfaces aggregate invariant violations without clamping
// the data: per-kind sums above 24h and overlapping periods. Overlap is
// measured on a minute-of-epoch occupancy bitmap.
func qualityWarnings(day *models.DailyData, dayPeriods []models.ActivityPeriod) []string {
	var warnings []string

	if total := day.TotalMinutes(); total > minutesPerDay {
		warnings = append(warnings, fmt.Sprintf("daily activity total %d min exceeds 24h", total))
	}

	occupied := roaring.New()
	overlap := uint64(0)
	for _, p := range dayPeriods {
		startMin := uint64(p.Start.Unix() / 60)
		endMin := uint64(p.End.Unix() / 60)
		if endMin <= startMin {
			continue
		}
		r := roaring.New()
		r.AddRange(startMin, endMin)
		overlap += occupied.AndCardinality(r)
		occupied.Or(r)
	}
	if overlap > 0 {
		warnings = append(warnings, fmt.Sprintf("overlapping activity periods: %d min", overlap))
	}

	return warnings
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
