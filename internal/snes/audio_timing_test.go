package snes

import "testing"

// TestAudioSampleCountStableAcrossFrames confirms the DSP sample ring
// buffer yields exactly samplesPerFrame stereo pairs every frame, with
// no drift accumulating across repeated runs.
func TestAudioSampleCountStableAcrossFrames(t *testing.T) {
	emu := NewEmulator()
	if err := emu.LoadROM(makeLoROM(0x80000)); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	emu.Start()
	emu.SetFrameLimit(false)

	const numFrames = 60
	for i := 0; i < numFrames; i++ {
		if err := emu.RunFrame(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		samples := emu.GetAudioSamples()
		if len(samples) != samplesPerFrame*2 {
			t.Fatalf("frame %d: sample count = %d, want %d", i, len(samples), samplesPerFrame*2)
		}
	}
}

// TestAudioSampleBufferSizeMatchesRate confirms the buffer sizing derives
// from the DSP's fixed 32kHz output rate rather than a hardcoded constant.
func TestAudioSampleBufferSizeMatchesRate(t *testing.T) {
	emu := NewEmulator()
	want := (32000 / 60) * 2
	if len(emu.AudioSampleBuffer) != want {
		t.Fatalf("AudioSampleBuffer length = %d, want %d", len(emu.AudioSampleBuffer), want)
	}
}
