package snes

import (
	"nitro-core-dx/internal/apu"
	"nitro-core-dx/internal/debug"
)

// APUAdapter adapts APU to the debug.APUStateReader interface. The S-DSP
// has 8 voices, not the 4-channel wavetable shape the logger interface
// was written against; channels 0-7 map to the eight voices, and any
// other channel number gets the zero value rather than an out-of-range
// panic.
type APUAdapter struct {
	apu *apu.APU
}

// GetChannelState returns the state of a DSP voice. There's no SNES
// register called "waveform" or "duration": waveform is reported as the
// voice's sample source number (Srcn) and duration as its key-on start
// delay, the closest analogues the S-DSP exposes.
func (a *APUAdapter) GetChannelState(channel int) (enabled bool, frequency uint16, volume uint8, waveform uint8, duration uint16) {
	if a.apu == nil || channel < 0 || channel >= 8 {
		return false, 0, 0, 0, 0
	}
	ch := a.apu.Dsp.GetChannel(channel)
	enabled = ch.KeyOn || (!ch.KeyOff && ch.Gain > 0)
	volume = absInt8(ch.VolumeL)
	return enabled, ch.Pitch, volume, ch.Srcn, uint16(ch.StartDelay)
}

// GetMasterVolume returns the DSP's master volume, averaged across the
// left and right channels into the single byte the logger interface
// expects.
func (a *APUAdapter) GetMasterVolume() uint8 {
	if a.apu == nil {
		return 0
	}
	l := absInt8(a.apu.Dsp.GetMasterVolumeL())
	r := absInt8(a.apu.Dsp.GetMasterVolumeR())
	return uint8((uint16(l) + uint16(r)) / 2)
}

func absInt8(v int8) uint8 {
	if v < 0 {
		return uint8(-int16(v))
	}
	return uint8(v)
}

// NewAPUAdapter creates a new APU adapter.
func NewAPUAdapter(a *apu.APU) debug.APUStateReader {
	return &APUAdapter{apu: a}
}
