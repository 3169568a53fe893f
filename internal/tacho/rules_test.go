package tacho

import (
	"tad/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cleanDay builds a day that violates no rule.
func cleanDay(date time.Time) *models.DailyData {
	return &models.DailyData{
		Date:           date,
		DrivingMinutes: 300,
		RestMinutes:    700,
		CardInserted:   true,
	}
}

func findInfraction(infractions []models.DetectedInfraction, kind models.InfractionType) *models.DetectedInfraction {
	for i := range infractions {
		if infractions[i].Kind == kind {
			return &infractions[i]
		}
	}
	return nil
}

func TestCheckDay_CleanDay(t *testing.T) {
	assert.Empty(t, NewRuleEngine().CheckDay(cleanDay(day1)))
}

func TestCheckDay_DailyDriving_AtLimit(t *testing.T) {
	day := cleanDay(day1)
	day.DrivingMinutes = MaxDailyDrivingMinutes

	infractions := NewRuleEngine().CheckDay(day)
	assert.Nil(t, findInfraction(infractions, models.InfractionDailyDriving))
}

func TestCheckDay_DailyDriving_OneOver(t *testing.T) {
	day := cleanDay(day1)
	day.DrivingMinutes = MaxDailyDrivingMinutes + 1

	inf := findInfraction(NewRuleEngine().CheckDay(day), models.InfractionDailyDriving)
	require.NotNil(t, inf)
	assert.Equal(t, 3, inf.Severity)
	assert.Equal(t, 1, inf.ExcessMinutes)
	assert.Equal(t, 0.95, inf.Confidence)
	assert.Equal(t, day1, inf.Timestamp)

	ev, ok := inf.Evidence.(*models.DailyDrivingEvidence)
	require.True(t, ok)
	assert.Equal(t, MaxDailyDrivingMinutes+1, ev.DrivingMinutes)
	assert.Equal(t, MaxDailyDrivingMinutes, ev.LimitMinutes)
	assert.Equal(t, 1, ev.ExcessMinutes)
}

func TestCheckDay_DailyDriving_SeverityEscalation(t *testing.T) {
	engine := NewRuleEngine()

	// Excess of exactly 120 stays at severity 3.
	day := cleanDay(day1)
	day.DrivingMinutes = MaxDailyDrivingMinutes + 120
	inf := findInfraction(engine.CheckDay(day), models.InfractionDailyDriving)
	require.NotNil(t, inf)
	assert.Equal(t, 3, inf.Severity)

	// 121 over escalates to 4.
	day.DrivingMinutes = MaxDailyDrivingMinutes + 121
	inf = findInfraction(engine.CheckDay(day), models.InfractionDailyDriving)
	require.NotNil(t, inf)
	assert.Equal(t, 4, inf.Severity)
}

func TestCheckDay_DailyRest_AtMinimum(t *testing.T) {
	day := cleanDay(day1)
	day.RestMinutes = MinDailyRestMinutes

	infractions := NewRuleEngine().CheckDay(day)
	assert.Nil(t, findInfraction(infractions, models.InfractionDailyRest))
}

func TestCheckDay_DailyRest_Deficit(t *testing.T) {
	day := cleanDay(day1)
	day.RestMinutes = MinDailyRestMinutes - 100

	inf := findInfraction(NewRuleEngine().CheckDay(day), models.InfractionDailyRest)
	require.NotNil(t, inf)
	assert.Equal(t, 4, inf.Severity)
	assert.Equal(t, 100, inf.ExcessMinutes)
	assert.Equal(t, 0.90, inf.Confidence)

	ev, ok := inf.Evidence.(*models.DailyRestEvidence)
	require.True(t, ok)
	assert.Equal(t, 100, ev.DeficitMinutes)
}

func TestCheckDay_MissingBreak_LongSessionWithoutBreak(t *testing.T) {
	day := cleanDay(day1)
	day.Sessions = []models.DrivingSession{{
		Start:           day1.Add(8 * time.Hour),
		DurationMinutes: 300,
	}}

	inf := findInfraction(NewRuleEngine().CheckDay(day), models.InfractionMissingBreak)
	require.NotNil(t, inf)
	assert.Equal(t, 2, inf.Severity)
	assert.Equal(t, 30, inf.ExcessMinutes)
	assert.Equal(t, 0.85, inf.Confidence)
	assert.Equal(t, day1.Add(8*time.Hour), inf.Timestamp)

	ev, ok := inf.Evidence.(*models.MissingBreakEvidence)
	require.True(t, ok)
	assert.Equal(t, 300, ev.ContinuousMinutes)
	assert.Equal(t, MaxContinuousDrivingMinutes, ev.LimitMinutes)
	assert.Equal(t, MinBreakMinutes, ev.MinBreakMinutes)
}

func TestCheckDay_MissingBreak_QualifyingBreakSuppresses(t *testing.T) {
	rest := models.ActivityPeriod{Kind: models.ActivityRest, DurationMinutes: 50}
	day := cleanDay(day1)
	day.Sessions = []models.DrivingSession{{
		Start:           day1.Add(8 * time.Hour),
		DurationMinutes: 300,
		Periods:         []models.ActivityPeriod{{Kind: models.ActivityDriving, DurationMinutes: 300}, rest},
	}}

	infractions := NewRuleEngine().CheckDay(day)
	assert.Nil(t, findInfraction(infractions, models.InfractionMissingBreak))
}

func TestCheckDay_MissingBreak_ShortRestDoesNotQualify(t *testing.T) {
	shortRest := models.ActivityPeriod{Kind: models.ActivityRest, DurationMinutes: 30}
	day := cleanDay(day1)
	day.Sessions = []models.DrivingSession{{
		Start:           day1.Add(8 * time.Hour),
		DurationMinutes: 300,
		Periods:         []models.ActivityPeriod{{Kind: models.ActivityDriving, DurationMinutes: 300}, shortRest},
	}}

	inf := findInfraction(NewRuleEngine().CheckDay(day), models.InfractionMissingBreak)
	require.NotNil(t, inf)
	assert.Equal(t, 30, inf.ExcessMinutes)
}

func TestCheckDay_MissingBreak_AtLimit(t *testing.T) {
	day := cleanDay(day1)
	day.Sessions = []models.DrivingSession{{
		Start:           day1.Add(8 * time.Hour),
		DurationMinutes: MaxContinuousDrivingMinutes,
	}}

	infractions := NewRuleEngine().CheckDay(day)
	assert.Nil(t, findInfraction(infractions, models.InfractionMissingBreak))
}

func TestCheckDay_MissingBreak_PerSession(t *testing.T) {
	day := cleanDay(day1)
	day.Sessions = []models.DrivingSession{
		{Start: day1.Add(6 * time.Hour), DurationMinutes: 280},
		{Start: day1.Add(12 * time.Hour), DurationMinutes: 100},
		{Start: day1.Add(16 * time.Hour), DurationMinutes: 290},
	}

	var hits int
	for _, inf := range NewRuleEngine().CheckDay(day) {
		if inf.Kind == models.InfractionMissingBreak {
			hits++
		}
	}
	assert.Equal(t, 2, hits)
}

func TestCheckDay_CardNotInserted(t *testing.T) {
	day := cleanDay(day1)
	day.CardInserted = false
	day.DrivingMinutes = 420

	inf := findInfraction(NewRuleEngine().CheckDay(day), models.InfractionCardNotInserted)
	require.NotNil(t, inf)
	assert.Equal(t, 3, inf.Severity)
	assert.Equal(t, 1.0, inf.Confidence)

	ev, ok := inf.Evidence.(*models.CardNotInsertedEvidence)
	require.True(t, ok)
	assert.Equal(t, 420, ev.MinutesWithoutCard)
}

func TestCheckDay_ManualEntries_AtLimit(t *testing.T) {
	day := cleanDay(day1)
	day.ManualEntryCount = MaxManualEntries

	infractions := NewRuleEngine().CheckDay(day)
	assert.Nil(t, findInfraction(infractions, models.InfractionManualEntries))
}

func TestCheckDay_ManualEntries_OverLimit(t *testing.T) {
	day := cleanDay(day1)
	day.ManualEntryCount = MaxManualEntries + 3

	inf := findInfraction(NewRuleEngine().CheckDay(day), models.InfractionManualEntries)
	require.NotNil(t, inf)
	assert.Equal(t, 2, inf.Severity)
	assert.Equal(t, 0.80, inf.Confidence)

	ev, ok := inf.Evidence.(*models.ManualEntriesEvidence)
	require.True(t, ok)
	assert.Equal(t, 8, ev.Entries)
	assert.Equal(t, MaxManualEntries, ev.Limit)
}

func TestCheckDay_MultipleRulesSameDay(t *testing.T) {
	day := &models.DailyData{
		Date:             day1,
		DrivingMinutes:   700,
		RestMinutes:      200,
		CardInserted:     false,
		ManualEntryCount: 10,
	}

	infractions := NewRuleEngine().CheckDay(day)
	assert.NotNil(t, findInfraction(infractions, models.InfractionDailyDriving))
	assert.NotNil(t, findInfraction(infractions, models.InfractionDailyRest))
	assert.NotNil(t, findInfraction(infractions, models.InfractionCardNotInserted))
	assert.NotNil(t, findInfraction(infractions, models.InfractionManualEntries))
	assert.Len(t, infractions, 4)
}

func weekOf(drivingMinutes ...int) []*models.DailyData {
	week := make([]*models.DailyData, len(drivingMinutes))
	for i, m := range drivingMinutes {
		week[i] = &models.DailyData{
			Date:           day1.AddDate(0, 0, i),
			DrivingMinutes: m,
		}
	}
	return week
}

func TestCheckWeek_ShortWindow(t *testing.T) {
	assert.Nil(t, NewRuleEngine().CheckWeek(weekOf(600, 600, 600, 600, 600, 600)))
}

func TestCheckWeek_AtLimit(t *testing.T) {
	assert.Nil(t, NewRuleEngine().CheckWeek(weekOf(480, 480, 480, 480, 480, 480, 480)))
}

func TestCheckWeek_OverLimit(t *testing.T) {
	infractions := NewRuleEngine().CheckWeek(weekOf(500, 500, 500, 500, 500, 500, 500))
	require.Len(t, infractions, 1)

	inf := infractions[0]
	assert.Equal(t, models.InfractionWeeklyDriving, inf.Kind)
	assert.Equal(t, 5, inf.Severity)
	assert.Equal(t, 140, inf.ExcessMinutes)
	assert.Equal(t, 0.98, inf.Confidence)
	// Cumulative sum first exceeds 3360 on the last day (3500 at day 7).
	assert.Equal(t, day1.AddDate(0, 0, 6), inf.Timestamp)

	ev, ok := inf.Evidence.(*models.WeeklyDrivingEvidence)
	require.True(t, ok)
	assert.Equal(t, 3500, ev.WeeklyMinutes)
	assert.Equal(t, MaxWeeklyDrivingMinutes, ev.LimitMinutes)
	assert.Equal(t, []int{500, 500, 500, 500, 500, 500, 500}, ev.DailyMinutes)
}

func TestCheckWeek_AnchorIsFirstExceedanceDay(t *testing.T) {
	// Cumulative: 600 1200 1800 2400 3400 3500 3600; crosses 3360 on day 5.
	infractions := NewRuleEngine().CheckWeek(weekOf(600, 600, 600, 600, 1000, 100, 100))
	require.Len(t, infractions, 1)
	assert.Equal(t, day1.AddDate(0, 0, 4), infractions[0].Timestamp)
	assert.Equal(t, 3600-MaxWeeklyDrivingMinutes, infractions[0].ExcessMinutes)
}
