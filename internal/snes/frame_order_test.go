package snes

import "testing"

// TestFrameExecutionOrder verifies clock-driven frame execution: the PPU
// runs one full 341x262 frame, the frame counter advances, VBlank is
// flagged during the post-render scanlines, and it clears again once the
// next frame's visible scanlines begin.
func TestFrameExecutionOrder(t *testing.T) {
	emu := NewEmulator()

	initialFrameCounter := emu.PPU.FrameCounter

	cyclesPerFrame := uint64(341 * 262)
	if err := emu.PPU.StepPPU(cyclesPerFrame); err != nil {
		t.Fatalf("StepPPU error: %v", err)
	}

	if emu.PPU.FrameCounter <= initialFrameCounter {
		t.Errorf("frame counter should increment: got %d, want > %d", emu.PPU.FrameCounter, initialFrameCounter)
	}
	if !emu.PPU.VBlankFlag {
		t.Error("VBlank flag should be set after stepping past the visible scanlines")
	}

	// Step through the remaining pre-VBlank scanlines of the next frame;
	// VBlank clears once scanline 0 of the new frame begins.
	if err := emu.PPU.StepPPU(uint64(341)); err != nil {
		t.Fatalf("StepPPU error: %v", err)
	}
	if emu.PPU.VBlankFlag {
		t.Error("VBlank flag should clear once the next frame's visible scanlines begin")
	}
}
