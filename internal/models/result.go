package models

import (
	"time"

	"github.com/google/uuid"
)

// ContainerKind classifies a raw device file by its 4-byte header signature.
type ContainerKind string

const (
	KindDriverCard   ContainerKind = "DDD" // driver card data
	KindVehicleUnit  ContainerKind = "TGD" // vehicle unit data
	KindEventsFaults ContainerKind = "ESM" // events and faults
	KindUnrecognized ContainerKind = "UNKNOWN"
)

func (k ContainerKind) IsValid() bool {
	switch k {
	case KindDriverCard, KindVehicleUnit, KindEventsFaults, KindUnrecognized:
		return true
	}
	return false
}

// CardIdentity holds the identity fields of a driver card container.
type CardIdentity struct {
	CardNumber string `json:"card_number"`
	DriverName string `json:"driver_name"`
}

// VehicleIdentity holds the identity fields of a vehicle unit container.
type VehicleIdentity struct {
	VIN          string `json:"vin"`
	Registration string `json:"registration"`
}

// ParsedData is the raw decoder output for one container, before timeline
// aggregation.
type ParsedData struct {
	Card         *CardIdentity    `json:"card,omitempty"`
	Vehicle      *VehicleIdentity `json:"vehicle,omitempty"`
	Activities   []ActivityPeriod `json:"activities,omitempty"`
	SpeedRecords []SpeedRecord    `json:"speed_records,omitempty"`
}

// FileInfo is the identity of an analyzed file. AnalyzedAt is the only field
// of a result allowed to differ between two runs over the same bytes.
type FileInfo struct {
	Name       string        `json:"name"`
	SizeBytes  int64         `json:"size_bytes"`
	Hash       string        `json:"hash"` // SHA-256, hex
	Kind       ContainerKind `json:"type"`
	AnalyzedAt time.Time     `json:"analysis_time"`
}

// AnalysisResult is the unit handed to the persistence collaborator, keyed
// by content hash with upsert semantics.
type AnalysisResult struct {
	ID              uuid.UUID            `json:"id"`
	File            FileInfo             `json:"file_info"`
	Card            *CardIdentity        `json:"card,omitempty"`
	Vehicle         *VehicleIdentity     `json:"vehicle,omitempty"`
	SpeedRecords    []SpeedRecord        `json:"speed_records,omitempty"`
	DailySummaries  []*DailyData         `json:"daily_summaries"`
	Infractions     []DetectedInfraction `json:"infractions"`
	Recommendations []string             `json:"recommendations"`
	ComplianceScore float64              `json:"compliance_score"`
	Note            string               `json:"note,omitempty"`
	Error           string               `json:"error,omitempty"`
}

// ResultID derives the stable result ID for a file content hash. The same
// content hash always yields the same ID, keeping re-analysis idempotent.
func ResultID(hash string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(hash))
}

// Storage is the persistence envelope for the full result registry.
type Storage struct {
	Version int                        `json:"version"`
	Results map[string]*AnalysisResult `json:"results"` // keyed by file hash
}
