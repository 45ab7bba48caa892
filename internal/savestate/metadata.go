package savestate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrStateIncompatible is returned when a state's ROM CRC32 doesn't
// match the currently loaded cartridge. The caller's emulator state is
// left untouched; a mismatched state is refused rather than partially
// applied.
var ErrStateIncompatible = errors.New("savestate: ROM CRC32 does not match loaded cartridge")

// Metadata is the save-state sidecar: small, human-relevant fields a
// frontend can read without decoding (or even having) the full dump, and
// the CRC32 gate that makes loading safe against the wrong ROM.
type Metadata struct {
	FormatVersion uint32
	ROMCRC32      uint32
	Region        uint8 // 0=US(NTSC), 1=JP(NTSC), 2=EU(PAL)
	RoomID        int32 // dungeon/overworld room index, -1 if unknown
	Module        uint8 // WRAM $7E0010 game-mode byte at capture time
	Description   string
}

// EncodeMetadata serializes Metadata to its little-endian sidecar
// format: five fixed fields, then a length-prefixed UTF-8 description.
func EncodeMetadata(m Metadata) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, m.FormatVersion)
	binary.Write(buf, binary.LittleEndian, m.ROMCRC32)
	binary.Write(buf, binary.LittleEndian, m.Region)
	binary.Write(buf, binary.LittleEndian, m.RoomID)
	binary.Write(buf, binary.LittleEndian, m.Module)

	desc := []byte(m.Description)
	binary.Write(buf, binary.LittleEndian, uint32(len(desc)))
	buf.Write(desc)

	return buf.Bytes()
}

// DecodeMetadata parses a sidecar buffer produced by EncodeMetadata.
func DecodeMetadata(data []byte) (Metadata, error) {
	var m Metadata
	buf := bytes.NewReader(data)

	fields := []interface{}{&m.FormatVersion, &m.ROMCRC32, &m.Region, &m.RoomID, &m.Module}
	for _, f := range fields {
		if err := binary.Read(buf, binary.LittleEndian, f); err != nil {
			return m, fmt.Errorf("savestate: metadata: %w", err)
		}
	}

	var descLen uint32
	if err := binary.Read(buf, binary.LittleEndian, &descLen); err != nil {
		return m, fmt.Errorf("savestate: metadata description length: %w", err)
	}
	desc := make([]byte, descLen)
	if _, err := io.ReadFull(buf, desc); err != nil {
		return m, fmt.Errorf("savestate: metadata description: %w", err)
	}
	m.Description = string(desc)

	return m, nil
}

// CheckROM returns ErrStateIncompatible if the metadata's ROM CRC32
// doesn't match romCRC32, the CRC of the cartridge currently loaded.
func (m Metadata) CheckROM(romCRC32 uint32) error {
	if m.ROMCRC32 != romCRC32 {
		return ErrStateIncompatible
	}
	return nil
}
