package apu

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Snapshot serializes the shared sound RAM image, the SPC700 core, the
// DSP, the three hardware timers, and the mailbox ports into a fixed
// little-endian layout, for save-state capture. Each sub-component's own
// Snapshot blob is length-prefixed so Restore can hand the right slice
// back to the right Restore method regardless of that component's
// internal layout changing size.
func (a *APU) Snapshot() []byte {
	buf := new(bytes.Buffer)
	w := func(v interface{}) { binary.Write(buf, binary.LittleEndian, v) }

	w(uint32(len(a.Ram)))
	buf.Write(a.Ram)

	writeBlob(buf, a.Spc.Snapshot())
	writeBlob(buf, a.Dsp.Snapshot())

	w(a.Timers)
	w(a.InPorts)
	w(a.OutPorts)
	w(a.romReadable)
	w(a.dspAddr)

	return buf.Bytes()
}

// Restore reconstructs APU state, including the SPC700 and DSP
// sub-components, from a buffer produced by Snapshot.
func (a *APU) Restore(data []byte) error {
	buf := bytes.NewReader(data)

	var ramLen uint32
	if err := binary.Read(buf, binary.LittleEndian, &ramLen); err != nil {
		return err
	}
	if int(ramLen) != len(a.Ram) {
		return fmt.Errorf("apu: save state RAM size %d does not match %d", ramLen, len(a.Ram))
	}
	if _, err := buf.Read(a.Ram); err != nil {
		return fmt.Errorf("apu: reading RAM image: %w", err)
	}

	spcBlob, err := readBlob(buf)
	if err != nil {
		return fmt.Errorf("apu: reading SPC700 blob: %w", err)
	}
	if err := a.Spc.Restore(spcBlob); err != nil {
		return fmt.Errorf("apu: restoring SPC700: %w", err)
	}

	dspBlob, err := readBlob(buf)
	if err != nil {
		return fmt.Errorf("apu: reading DSP blob: %w", err)
	}
	if err := a.Dsp.Restore(dspBlob); err != nil {
		return fmt.Errorf("apu: restoring DSP: %w", err)
	}

	fields := []interface{}{
		&a.Timers, &a.InPorts, &a.OutPorts, &a.romReadable, &a.dspAddr,
	}
	for _, f := range fields {
		if err := binary.Read(buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

// writeBlob writes a length-prefixed byte slice.
func writeBlob(buf *bytes.Buffer, blob []byte) {
	binary.Write(buf, binary.LittleEndian, uint32(len(blob)))
	buf.Write(blob)
}

// readBlob reads a length-prefixed byte slice written by writeBlob.
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
