package snes

import (
	"testing"

	"nitro-core-dx/internal/savestate"
)

func TestSaveStateRoundTripRestoresCPUAndWRAM(t *testing.T) {
	emu := NewEmulator()
	if err := emu.LoadROM(makeLoROM(0x80000)); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	emu.Start()
	emu.SetFrameLimit(false)
	if err := emu.RunFrame(); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}

	emu.Bus.WRAM[0x10] = 0x07 // pretend module byte
	wantPC := emu.CPU.Reg.PC
	wantCycles := emu.CPU.Cycles

	dump, meta := emu.SaveState(savestate.QuickSave, "unit test capture")

	emu2 := NewEmulator()
	if err := emu2.LoadROM(makeLoROM(0x80000)); err != nil {
		t.Fatalf("LoadROM (emu2): %v", err)
	}

	if err := emu2.LoadState(dump, meta); err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if emu2.CPU.Reg.PC != wantPC {
		t.Errorf("PC after restore = %#x, want %#x", emu2.CPU.Reg.PC, wantPC)
	}
	if emu2.CPU.Cycles != wantCycles {
		t.Errorf("Cycles after restore = %d, want %d", emu2.CPU.Cycles, wantCycles)
	}
	if emu2.Bus.WRAM[0x10] != 0x07 {
		t.Errorf("WRAM[0x10] after restore = %#x, want 0x07", emu2.Bus.WRAM[0x10])
	}
}

func TestLoadStateRejectsMismatchedROM(t *testing.T) {
	emu := NewEmulator()
	if err := emu.LoadROM(makeLoROM(0x80000)); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	dump, meta := emu.SaveState(savestate.QuickSave, "")

	otherROM := makeLoROM(0x80000)
	otherROM[0x7fc0] = 'X' // perturb the title so the CRC differs
	emu2 := NewEmulator()
	if err := emu2.LoadROM(otherROM); err != nil {
		t.Fatalf("LoadROM (emu2): %v", err)
	}

	err := emu2.LoadState(dump, meta)
	if err != savestate.ErrStateIncompatible {
		t.Fatalf("LoadState error = %v, want ErrStateIncompatible", err)
	}
}
