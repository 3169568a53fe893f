package tacho

import "tad/internal/models"

// signatures maps the 4-byte header at offset 0 to a container kind.
var signatures = map[[4]byte]models.ContainerKind{
	{0x00, 0x00, 0x00, 0x10}: models.KindDriverCard,
	{0x00, 0x00, 0x00, 0x20}: models.KindVehicleUnit,
	{0x00, 0x00, 0x00, 0x30}: models.KindEventsFaults,
}

// DetectFormat classifies a raw buffer by its header signature. Buffers
// shorter than the signature are unrecognized. Pure function, never errors.
func DetectFormat(buf []byte) models.ContainerKind {
	if len(buf) < 4 {
		return models.KindUnrecognized
	}
	var sig [4]byte
	copy(sig[:], buf[:4])
	if kind, ok := signatures[sig]; ok {
		return kind
	}
	return models.KindUnrecognized
}
