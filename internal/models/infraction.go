package models

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// InfractionType identifies a regulatory rule by its catalogue code.
type InfractionType string

const (
	InfractionDailyDriving    InfractionType = "TC-001"
	InfractionWeeklyDriving   InfractionType = "TC-002"
	InfractionDailyRest       InfractionType = "TR-001"
	InfractionMissingBreak    InfractionType = "TP-001"
	InfractionCardNotInserted InfractionType = "US-001"
	InfractionManualEntries   InfractionType = "US-002"
	// InfractionEquipmentFault is reserved: events/faults containers are
	// identified but carry no rule in the current catalogue.
	InfractionEquipmentFault InfractionType = "EQ-001"
)

func (t InfractionType) String() string {
	return string(t)
}

func (t InfractionType) IsValid() bool {
	switch t {
	case InfractionDailyDriving, InfractionWeeklyDriving, InfractionDailyRest,
		InfractionMissingBreak, InfractionCardNotInserted, InfractionManualEntries,
		InfractionEquipmentFault:
		return true
	}
	return false
}

// Evidence is the closed set of per-rule evidence records. Each rule attaches
// exactly the numeric inputs of its threshold comparison, statically typed
// per infraction kind instead of an open key/value map.
type Evidence interface {
	evidence()
}

type DailyDrivingEvidence struct {
	DrivingMinutes int `json:"driving_minutes"`
	LimitMinutes   int `json:"limit_minutes"`
	ExcessMinutes  int `json:"excess_minutes"`
}

type WeeklyDrivingEvidence struct {
	WeeklyMinutes int   `json:"weekly_minutes"`
	LimitMinutes  int   `json:"limit_minutes"`
	ExcessMinutes int   `json:"excess_minutes"`
	DailyMinutes  []int `json:"daily_minutes"`
}

type DailyRestEvidence struct {
	RestMinutes    int `json:"rest_minutes"`
	MinimumMinutes int `json:"minimum_minutes"`
	DeficitMinutes int `json:"deficit_minutes"`
}

type MissingBreakEvidence struct {
	ContinuousMinutes int `json:"continuous_minutes"`
	LimitMinutes      int `json:"limit_minutes"`
	MinBreakMinutes   int `json:"min_break_minutes"`
}

type CardNotInsertedEvidence struct {
	MinutesWithoutCard int `json:"minutes_without_card"`
}

type ManualEntriesEvidence struct {
	Entries int `json:"entries"`
	Limit   int `json:"limit"`
}

func (*DailyDrivingEvidence) evidence()    {}
func (*WeeklyDrivingEvidence) evidence()   {}
func (*DailyRestEvidence) evidence()       {}
func (*MissingBreakEvidence) evidence()    {}
func (*CardNotInsertedEvidence) evidence() {}
func (*ManualEntriesEvidence) evidence()   {}

// DetectedInfraction is one evaluated rule violation. Produced once by the
// rule engine and never mutated afterwards.
type DetectedInfraction struct {
	Kind            InfractionType `json:"kind"`
	Severity        int            `json:"severity"` // 1-5
	Description     string         `json:"description"`
	Timestamp       time.Time      `json:"timestamp"`
	ExcessMinutes   int            `json:"duration_excess_minutes"`
	Evidence        Evidence       `json:"evidence"`
	Confidence      float64        `json:"confidence"` // 0.0-1.0
	Recommendations []string       `json:"recommendations"`
}

// UnmarshalJSON routes the evidence payload to the concrete struct of the
// infraction kind, keeping the round trip through the interchange format
// lossless.
func (di *DetectedInfraction) UnmarshalJSON(data []byte) error {
	type Alias DetectedInfraction
	raw := struct {
		*Alias
		Evidence json.RawMessage `json:"evidence"`
	}{Alias: (*Alias)(di)}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Evidence) == 0 || string(raw.Evidence) == "null" {
		di.Evidence = nil
		return nil
	}

	var ev Evidence
	switch di.Kind {
	case InfractionDailyDriving:
		ev = &DailyDrivingEvidence{}
	case InfractionWeeklyDriving:
		ev = &WeeklyDrivingEvidence{}
	case InfractionDailyRest:
		ev = &DailyRestEvidence{}
	case InfractionMissingBreak:
		ev = &MissingBreakEvidence{}
	case InfractionCardNotInserted:
		ev = &CardNotInsertedEvidence{}
	case InfractionManualEntries:
		ev = &ManualEntriesEvidence{}
	default:
		return fmt.Errorf("no evidence type for infraction kind %q", di.Kind)
	}
	if err := json.Unmarshal(raw.Evidence, ev); err != nil {
		return err
	}
	di.Evidence = ev
	return nil
}
