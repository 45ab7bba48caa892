package snes

import (
	"testing"

	"nitro-core-dx/internal/cpu"
	"nitro-core-dx/internal/debug"
)

// TestEmulatorFrameExecution exercises loading a ROM, priming a sprite in
// PPU state, and confirming a full frame renders it into the output
// buffer.
func TestEmulatorFrameExecution(t *testing.T) {
	logger := debug.NewLogger(1000)
	emu := NewEmulatorWithLogger(logger)

	if err := emu.LoadROM(makeLoROM(0x80000)); err != nil {
		t.Fatalf("LoadROM error: %v", err)
	}

	p := emu.PPU
	p.Write8(0x00, 0x0f) // INIDISP: clear forced blank, full brightness
	p.Write8(0x2c, 0x10) // TM: sprites on main screen

	// White at color index 2 of sprite palette 0 (CGRAM index 130), the
	// index the tile data below decodes to.
	p.CGRAM[130] = 0x7fff

	// Fill tile 0's 4bpp plane data so every pixel decodes to a nonzero
	// color index (high byte of each row word sets bitplane 1).
	for i := uint16(0); i < 8; i++ {
		p.VRAM[i] = 0xff00
	}

	// Sprite 0: position (100,100), tile 0, palette 0, priority 0, 8x8.
	p.OAM[0] = uint16(100) | uint16(100)<<8
	p.OAM[1] = 0

	emu.Start()
	emu.CPU.SetFlag(cpu.FlagI, true)

	if err := emu.RunFrame(); err != nil {
		t.Fatalf("RunFrame error: %v", err)
	}

	buffer := emu.GetOutputBuffer()
	if len(buffer) != 256*224 {
		t.Fatalf("output buffer size: %d, expected %d", len(buffer), 256*224)
	}

	nonBlack := 0
	for y := 100; y < 108; y++ {
		for x := 100; x < 108; x++ {
			if buffer[y*256+x] != 0 {
				nonBlack++
			}
		}
	}
	if nonBlack == 0 {
		t.Error("expected sprite pixels rendered at (100,100), output buffer region is all black")
	}
}
