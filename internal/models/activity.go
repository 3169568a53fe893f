package models

import (
	"errors"
	"fmt"
	"time"
)

// ActivityKind is the canonical classification of a driver time period.
// The numeric values match the activity codes of the wire format.
type ActivityKind uint16

const (
	ActivityDriving      ActivityKind = 0x00
	ActivityOtherWork    ActivityKind = 0x01
	ActivityAvailability ActivityKind = 0x02
	ActivityRest         ActivityKind = 0x03
	// ActivityUnknown covers every code outside the four canonical values.
	// It is an explicit variant, never a silent default: unknown codes must
	// survive aggregation and reporting.
	ActivityUnknown ActivityKind = 0xFF
)

// ActivityKindFromCode maps a wire activity code (manual-entry bit already
// masked off) to an ActivityKind. Codes outside 0..3 map to ActivityUnknown.
func ActivityKindFromCode(code uint16) ActivityKind {
	switch code {
	case 0x00, 0x01, 0x02, 0x03:
		return ActivityKind(code)
	default:
		return ActivityUnknown
	}
}

func (k ActivityKind) String() string {
	switch k {
	case ActivityDriving:
		return "driving"
	case ActivityOtherWork:
		return "other_work"
	case ActivityAvailability:
		return "availability"
	case ActivityRest:
		return "rest"
	default:
		return "unknown"
	}
}

func (k ActivityKind) IsValid() bool {
	switch k {
	case ActivityDriving, ActivityOtherWork, ActivityAvailability, ActivityRest, ActivityUnknown:
		return true
	}
	return false
}

func (k ActivityKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

func (k *ActivityKind) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"driving"`:
		*k = ActivityDriving
	case `"other_work"`:
		*k = ActivityOtherWork
	case `"availability"`:
		*k = ActivityAvailability
	case `"rest"`:
		*k = ActivityRest
	case `"unknown"`:
		*k = ActivityUnknown
	default:
		return fmt.Errorf("invalid activity kind %s", data)
	}
	return nil
}

var ErrInvalidPeriod = errors.New("activity period end must be after start")

// ActivityPeriod is one contiguous block of a single activity kind.
// Instances are created by the decoder and immutable afterwards.
type ActivityPeriod struct {
	Start           time.Time    `json:"start"`
	End             time.Time    `json:"end"`
	Kind            ActivityKind `json:"activity_kind"`
	DurationMinutes int          `json:"duration_minutes"`
	ManualEntry     bool         `json:"manual_entry"`
}

// NewActivityPeriod builds a period from decoded timestamps. The duration is
// recomputed from the timestamps instead of trusting the decoded duration
// field, so a corrupted duration cannot drift from the time range. Records
// with end <= start are invalid and discarded by the caller.
func NewActivityPeriod(start, end time.Time, kind ActivityKind, manual bool) (ActivityPeriod, error) {
	if !end.After(start) {
		return ActivityPeriod{}, ErrInvalidPeriod
	}
	return ActivityPeriod{
		Start:           start,
		End:             end,
		Kind:            kind,
		DurationMinutes: int(end.Sub(start).Round(time.Minute).Minutes()),
		ManualEntry:     manual,
	}, nil
}

// DrivingSession is a maximal run of continuous driving. OtherWork and
// Availability periods keep a session alive without adding driving minutes;
// the Rest period that closes the session is retained as its trailing period
// so the mandatory-break rule can inspect it.
type DrivingSession struct {
	Start           time.Time        `json:"start"`
	End             time.Time        `json:"end"`
	DurationMinutes int              `json:"duration_minutes"`
	Periods         []ActivityPeriod `json:"periods"`
}

// HasQualifyingBreak reports whether the session contains a Rest period of
// at least minMinutes.
func (s *DrivingSession) HasQualifyingBreak(minMinutes int) bool {
	for _, p := range s.Periods {
		if p.Kind == ActivityRest && p.DurationMinutes >= minMinutes {
			return true
		}
	}
	return false
}

// SpeedRecord is one decoded speed/distance/odometer sample from a vehicle
// unit container. Speed and distance are fixed-point on the wire (1/256 km/h
// and 1/10 km); the converted values are stored here.
type SpeedRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	SpeedKmh   float64   `json:"speed_kmh"`
	DistanceKm float64   `json:"distance_km"`
	Odometer   uint32    `json:"odometer"`
}
