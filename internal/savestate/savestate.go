// Package savestate defines the on-disk capture format for a complete
// emulator snapshot: a fixed dump of every component's internal state,
// little-endian throughout, gated by a trailing CRC32 so a truncated or
// corrupted file is rejected on load rather than crashing the core.
package savestate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

const magic = "NCDX"
const formatVersion = 1

// StateType distinguishes why a dump was taken. It doesn't change the
// format; it lets a caller (the render service's state cache, a future
// UI) key storage and eviction policy per kind.
type StateType uint8

const (
	QuickSave StateType = iota
	Checkpoint
	AutoSave
)

func (t StateType) String() string {
	switch t {
	case QuickSave:
		return "quick-save"
	case Checkpoint:
		return "checkpoint"
	case AutoSave:
		return "auto-save"
	default:
		return fmt.Sprintf("StateType(%d)", uint8(t))
	}
}

// Snapshotter is implemented by every component with save-state-worthy
// internal state (CPU, PPU, APU, the memory bus, the input system), each
// in its own package with direct access to its own private fields.
type Snapshotter interface {
	Snapshot() []byte
}

// Restorer is implemented by the same components, reconstructing state
// from a blob a Snapshotter produced.
type Restorer interface {
	Restore([]byte) error
}

// Dump is a complete, CRC-gated emulator state capture: one length-
// prefixed blob per component plus the emulator's own run flags.
type Dump struct {
	Type    StateType
	CPU     []byte
	PPU     []byte
	APU     []byte
	Bus     []byte
	Input   []byte
	Running bool
	Paused  bool
}

// Encode serializes a Dump into its on-disk layout: magic, format
// version, state type, each component's length-prefixed blob, the run
// flags, and a trailing CRC32 over everything before it.
func Encode(d Dump) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString(magic)
	binary.Write(buf, binary.LittleEndian, uint16(formatVersion))
	binary.Write(buf, binary.LittleEndian, d.Type)
	writeBlob(buf, d.CPU)
	writeBlob(buf, d.PPU)
	writeBlob(buf, d.APU)
	writeBlob(buf, d.Bus)
	writeBlob(buf, d.Input)
	binary.Write(buf, binary.LittleEndian, d.Running)
	binary.Write(buf, binary.LittleEndian, d.Paused)

	sum := crc32.ChecksumIEEE(buf.Bytes())
	binary.Write(buf, binary.LittleEndian, sum)
	return buf.Bytes()
}

// Decode parses and CRC-validates the format Encode produces. A failed
// checksum or a truncated buffer is reported as an error rather than a
// partially-populated Dump.
func Decode(data []byte) (Dump, error) {
	var d Dump
	const headerMin = len(magic) + 2 + 4 // magic + version + trailing CRC
	if len(data) < headerMin {
		return d, fmt.Errorf("savestate: truncated data (%d bytes)", len(data))
	}

	body := data[:len(data)-4]
	wantSum := binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(body) != wantSum {
		return d, fmt.Errorf("savestate: CRC mismatch, file is corrupt")
	}

	buf := bytes.NewReader(body)
	gotMagic := make([]byte, len(magic))
	if _, err := buf.Read(gotMagic); err != nil {
		return d, err
	}
	if string(gotMagic) != magic {
		return d, fmt.Errorf("savestate: bad magic %q", gotMagic)
	}

	var version uint16
	if err := binary.Read(buf, binary.LittleEndian, &version); err != nil {
		return d, err
	}
	if version != formatVersion {
		return d, fmt.Errorf("savestate: unsupported format version %d (want %d)", version, formatVersion)
	}

	if err := binary.Read(buf, binary.LittleEndian, &d.Type); err != nil {
		return d, err
	}

	var err error
	if d.CPU, err = readBlob(buf); err != nil {
		return d, fmt.Errorf("savestate: CPU blob: %w", err)
	}
	if d.PPU, err = readBlob(buf); err != nil {
		return d, fmt.Errorf("savestate: PPU blob: %w", err)
	}
	if d.APU, err = readBlob(buf); err != nil {
		return d, fmt.Errorf("savestate: APU blob: %w", err)
	}
	if d.Bus, err = readBlob(buf); err != nil {
		return d, fmt.Errorf("savestate: bus blob: %w", err)
	}
	if d.Input, err = readBlob(buf); err != nil {
		return d, fmt.Errorf("savestate: input blob: %w", err)
	}
	if err := binary.Read(buf, binary.LittleEndian, &d.Running); err != nil {
		return d, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &d.Paused); err != nil {
		return d, err
	}

	return d, nil
}

func writeBlob(buf *bytes.Buffer, blob []byte) {
	binary.Write(buf, binary.LittleEndian, uint32(len(blob)))
	buf.Write(blob)
}

func readBlob(buf *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(buf, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	blob := make([]byte, n)
	if _, err := buf.Read(blob); err != nil {
		return nil, err
	}
	return blob, nil
}
