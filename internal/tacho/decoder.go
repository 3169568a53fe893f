package tacho

import (
	"encoding/binary"
	"errors"
	"strings"
	"tad/internal/models"
	"tad/internal/providers"
	"time"
)

// Fixed layout of the container families. Offsets and record sizes are part
// of the wire format.
const (
	cardNumberOffset = 0x20
	cardNumberLen    = 16
	driverNameOffset = 0x40
	driverNameLen    = 72
	activityOffset   = 0x200
	activityRecLen   = 8

	vinOffset          = 0x30
	vinLen             = 17
	registrationOffset = 0x50
	registrationLen    = 15
	speedOffset        = 0x400
	speedRecLen        = 12

	// Record caps guard against malformed streams that never hit the zero
	// sentinel; hitting a cap stops decoding without error.
	maxActivityRecords = 100
	maxSpeedRecords    = 50

	// High bit of the activity code marks a manually entered record. It is
	// masked off before kind classification.
	manualEntryBit = 0x8000

	// Fixed-point divisors of the wire format.
	speedDivisor    = 256.0
	distanceDivisor = 10.0
)

// ErrUnparseableContainer is returned when decoding is refused because the
// container kind is unrecognized. No best-effort decode is attempted.
var ErrUnparseableContainer = errors.New("unparseable container")

type Decoder struct {
	logger providers.Logger
}

func NewDecoder(logger providers.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// Decode extracts identity fields and records from a raw container buffer.
// Truncated trailing data is a normal termination condition, not an error.
func (d *Decoder) Decode(buf []byte, kind models.ContainerKind) (*models.ParsedData, error) {
	switch kind {
	case models.KindDriverCard:
		return d.decodeDriverCard(buf), nil
	case models.KindVehicleUnit:
		return d.decodeVehicleUnit(buf), nil
	case models.KindEventsFaults:
		// Events/faults records carry no activity data; the container is
		// identified but not decoded (EQ-001 reserved).
		return &models.ParsedData{}, nil
	default:
		return nil, ErrUnparseableContainer
	}
}

func (d *Decoder) decodeDriverCard(buf []byte) *models.ParsedData {
	parsed := &models.ParsedData{
		Card: &models.CardIdentity{
			CardNumber: fixedString(buf, cardNumberOffset, cardNumberLen),
			DriverName: fixedString(buf, driverNameOffset, driverNameLen),
		},
	}
	if len(buf) > activityOffset {
		parsed.Activities = d.decodeActivities(buf[activityOffset:])
	}
	return parsed
}

func (d *Decoder) decodeActivities(buf []byte) []models.ActivityPeriod {
	var periods []models.ActivityPeriod

	for i := 0; i < maxActivityRecords; i++ {
		off := i * activityRecLen
		if off+activityRecLen > len(buf) {
			break
		}
		rec := buf[off : off+activityRecLen]

		ts := binary.BigEndian.Uint32(rec[0:4])
		if ts == 0 {
			// Sentinel, end of the sequence.
			break
		}
		code := binary.BigEndian.Uint16(rec[4:6])
		duration := binary.BigEndian.Uint16(rec[6:8])

		manual := code&manualEntryBit != 0
		kind := models.ActivityKindFromCode(code &^ manualEntryBit)

		start := time.Unix(int64(ts), 0)
		end := start.Add(time.Duration(duration) * time.Minute)

		period, err := models.NewActivityPeriod(start, end, kind, manual)
		if err != nil {
			// Invalid record, discarded rather than corrected.
			d.logger.Debugf(providers.TypeScan, "Discarding invalid activity record at index %d: %s", i, err)
			continue
		}
		periods = append(periods, period)
	}
	return periods
}

func (d *Decoder) decodeVehicleUnit(buf []byte) *models.ParsedData {
	parsed := &models.ParsedData{
		Vehicle: &models.VehicleIdentity{
			VIN:          fixedString(buf, vinOffset, vinLen),
			Registration: fixedString(buf, registrationOffset, registrationLen),
		},
	}
	if len(buf) > speedOffset {
		parsed.SpeedRecords = d.decodeSpeedRecords(buf[speedOffset:])
	}
	return parsed
}

func (d *Decoder) decodeSpeedRecords(buf []byte) []models.SpeedRecord {
	var records []models.SpeedRecord

	for i := 0; i < maxSpeedRecords; i++ {
		off := i * speedRecLen
		if off+speedRecLen > len(buf) {
			break
		}
		rec := buf[off : off+speedRecLen]

		ts := binary.BigEndian.Uint32(rec[0:4])
		if ts == 0 {
			break
		}
		speed := binary.BigEndian.Uint16(rec[4:6])
		distance := binary.BigEndian.Uint16(rec[6:8])
		odometer := binary.BigEndian.Uint32(rec[8:12])

		records = append(records, models.SpeedRecord{
			Timestamp:  time.Unix(int64(ts), 0),
			SpeedKmh:   float64(speed) / speedDivisor,
			DistanceKm: float64(distance) / distanceDivisor,
			Odometer:   odometer,
		})
	}
	return records
}

// fixedString reads a fixed-width string field, trimming NUL padding and
// surrounding whitespace. A field beyond the end of the buffer reads as
// empty: truncation is expected, not exceptional.
func fixedString(buf []byte, offset, length int) string {
	if offset >= len(buf) {
		return ""
	}
	end := offset + length
	if end > len(buf) {
		end = len(buf)
	}
	return strings.TrimSpace(strings.Trim(string(buf[offset:end]), "\x00"))
}
