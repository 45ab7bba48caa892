package dsp

import (
	"bytes"
	"encoding/binary"
)

// Snapshot serializes the DSP's register file, all eight voice states,
// and the echo/noise/mixer state into a fixed little-endian layout, for
// save-state capture. The shared sound RAM (aram) is not included here;
// the APU owns that image and snapshots it separately.
func (d *Dsp) Snapshot() []byte {
	buf := new(bytes.Buffer)
	w := func(v interface{}) { binary.Write(buf, binary.LittleEndian, v) }

	w(int32(d.Interpolation))
	w(d.reg)
	w(d.channel)
	w(d.counter)
	w(d.dirPage)
	w(d.evenCycle)
	w(d.mute)
	w(d.reset)
	w(d.masterVolumeL)
	w(d.masterVolumeR)
	w(d.sampleOutL)
	w(d.sampleOutR)
	w(d.echoOutL)
	w(d.echoOutR)
	w(d.noiseSample)
	w(d.noiseLFSR)
	w(d.noiseRate)
	w(d.echoWrites)
	w(d.echoVolumeL)
	w(d.echoVolumeR)
	w(d.feedbackVolume)
	w(d.echoBufferAdr)
	w(d.echoDelay)
	w(d.echoLength)
	w(d.echoBufferIndex)
	w(d.firBufferIndex)
	w(d.firValues)
	w(d.firBufferL)
	w(d.firBufferR)
	w(d.lastFrameBoundary)
	w(d.sampleBuffer)
	w(d.sampleOffset)
	w(d.debugMuteChannels)

	return buf.Bytes()
}

// Restore reconstructs DSP state from a buffer produced by Snapshot.
func (d *Dsp) Restore(data []byte) error {
	buf := bytes.NewReader(data)
	var interp int32

	fields := []interface{}{
		&interp, &d.reg, &d.channel, &d.counter, &d.dirPage, &d.evenCycle,
		&d.mute, &d.reset, &d.masterVolumeL, &d.masterVolumeR,
		&d.sampleOutL, &d.sampleOutR, &d.echoOutL, &d.echoOutR,
		&d.noiseSample, &d.noiseLFSR, &d.noiseRate, &d.echoWrites,
		&d.echoVolumeL, &d.echoVolumeR, &d.feedbackVolume, &d.echoBufferAdr,
		&d.echoDelay, &d.echoLength, &d.echoBufferIndex, &d.firBufferIndex,
		&d.firValues, &d.firBufferL, &d.firBufferR, &d.lastFrameBoundary,
		&d.sampleBuffer, &d.sampleOffset, &d.debugMuteChannels,
	}

	for _, f := range fields {
		if err := binary.Read(buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	d.Interpolation = InterpolationType(interp)
	return nil
}
