package snes

import "testing"

// makeLoROM builds a minimal LoROM image: an internal header at $7FC0
// identifying the mapping, and a reset vector pointing at $8000 where a
// short WAI/STP-free spin loop lives so RunFrame has something to execute.
func makeLoROM(size int) []byte {
	data := make([]byte, size)
	header := 0x7fc0
	copy(data[header:], []byte("TEST ROM            "))
	data[header+0x15] = 0x20 // LoROM, slow ROM
	data[header+0x3c] = 0x00
	data[header+0x3d] = 0x80 // reset vector -> $8000

	code := 0x8000
	data[code+0] = 0xea // NOP
	data[code+1] = 0xea // NOP
	data[code+2] = 0x80 // BRA -4 (spin in place)
	data[code+3] = 0xfc
	return data
}

func TestLoadROMResetsCPUToResetVector(t *testing.T) {
	emu := NewEmulator()
	if err := emu.LoadROM(makeLoROM(0x80000)); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if emu.CPU.Reg.PC != 0x8000 {
		t.Fatalf("PC after LoadROM = %#x, want 0x8000", emu.CPU.Reg.PC)
	}
}

func TestRunFrameAdvancesCyclesAndProducesAudio(t *testing.T) {
	emu := NewEmulator()
	if err := emu.LoadROM(makeLoROM(0x80000)); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	emu.Start()
	emu.SetFrameLimit(false)

	before := emu.CPU.Cycles
	if err := emu.RunFrame(); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
	if emu.CPU.Cycles <= before {
		t.Fatal("RunFrame should advance CPU cycles")
	}

	samples := emu.GetAudioSamples()
	if len(samples) != samplesPerFrame*2 {
		t.Fatalf("audio sample count = %d, want %d", len(samples), samplesPerFrame*2)
	}
}

func TestGetOutputBufferMatchesScreenDimensions(t *testing.T) {
	emu := NewEmulator()
	buf := emu.GetOutputBuffer()
	if len(buf) != 256*224 {
		t.Fatalf("output buffer length = %d, want %d", len(buf), 256*224)
	}
}

func TestSetInputButtonsReachesInputSystem(t *testing.T) {
	emu := NewEmulator()
	emu.SetInputButtons(0x00ff)
	if emu.Input.Controller1Buttons != 0x00ff {
		t.Fatalf("Controller1Buttons = %#x, want 0xff", emu.Input.Controller1Buttons)
	}
}
