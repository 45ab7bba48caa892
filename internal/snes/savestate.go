package snes

import (
	"fmt"
	"os"

	"nitro-core-dx/internal/savestate"
)

// sidecarSuffix is appended to a save-state path to name its metadata
// file: "slot1.state" carries "slot1.state.meta" alongside it.
const sidecarSuffix = ".meta"

// SaveState captures the full emulator state (CPU registers, WRAM,
// VRAM/CGRAM/OAM, the DSP and SPC700, controller latches) as a
// CRC-gated byte dump, plus a separate metadata blob a frontend can
// inspect without decoding the dump itself.
func (e *Emulator) SaveState(kind savestate.StateType, description string) (dump []byte, meta []byte) {
	d := savestate.Dump{
		Type:    kind,
		CPU:     e.CPU.Snapshot(),
		PPU:     e.PPU.Snapshot(),
		APU:     e.APU.Snapshot(),
		Bus:     e.Bus.Snapshot(),
		Input:   e.Input.Snapshot(),
		Running: e.Running,
		Paused:  e.Paused,
	}

	m := savestate.Metadata{
		FormatVersion: 1,
		ROMCRC32:      e.Cartridge.CRC32(),
		Module:        e.Bus.WRAM[0x0010],
		RoomID:        -1,
		Description:   description,
	}

	return savestate.Encode(d), savestate.EncodeMetadata(m)
}

// LoadState restores emulator state from a dump and metadata pair
// produced by SaveState. The metadata's ROM CRC32 is checked against the
// currently loaded cartridge first; a mismatch returns
// savestate.ErrStateIncompatible and leaves the emulator untouched.
func (e *Emulator) LoadState(dump, meta []byte) error {
	m, err := savestate.DecodeMetadata(meta)
	if err != nil {
		return fmt.Errorf("loading save state metadata: %w", err)
	}
	if err := m.CheckROM(e.Cartridge.CRC32()); err != nil {
		return err
	}

	d, err := savestate.Decode(dump)
	if err != nil {
		return fmt.Errorf("loading save state: %w", err)
	}

	if err := e.CPU.Restore(d.CPU); err != nil {
		return fmt.Errorf("restoring CPU: %w", err)
	}
	if err := e.PPU.Restore(d.PPU); err != nil {
		return fmt.Errorf("restoring PPU: %w", err)
	}
	if err := e.APU.Restore(d.APU); err != nil {
		return fmt.Errorf("restoring APU: %w", err)
	}
	if err := e.Bus.Restore(d.Bus); err != nil {
		return fmt.Errorf("restoring bus: %w", err)
	}
	if err := e.Input.Restore(d.Input); err != nil {
		return fmt.Errorf("restoring input: %w", err)
	}
	e.Running = d.Running
	e.Paused = d.Paused

	return nil
}

// SaveStateToFile writes a save state and its metadata sidecar to disk:
// path carries the dump, path+".meta" carries the metadata.
func (e *Emulator) SaveStateToFile(path string, kind savestate.StateType, description string) error {
	dump, meta := e.SaveState(kind, description)
	if err := os.WriteFile(path, dump, 0o644); err != nil {
		return fmt.Errorf("writing save state %q: %w", path, err)
	}
	if err := os.WriteFile(path+sidecarSuffix, meta, 0o644); err != nil {
		return fmt.Errorf("writing save state metadata %q: %w", path+sidecarSuffix, err)
	}
	return nil
}

// LoadStateFromFile reads a save state and its metadata sidecar from
// disk and restores emulator state from them.
func (e *Emulator) LoadStateFromFile(path string) error {
	dump, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading save state %q: %w", path, err)
	}
	meta, err := os.ReadFile(path + sidecarSuffix)
	if err != nil {
		return fmt.Errorf("reading save state metadata %q: %w", path+sidecarSuffix, err)
	}
	return e.LoadState(dump, meta)
}
