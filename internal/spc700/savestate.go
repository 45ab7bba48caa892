package spc700

import (
	"bytes"
	"encoding/binary"
)

// Snapshot serializes the sound CPU's register file and run state into a
// fixed little-endian layout, for save-state capture.
func (s *SPC700) Snapshot() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, s.Reg.A)
	binary.Write(buf, binary.LittleEndian, s.Reg.X)
	binary.Write(buf, binary.LittleEndian, s.Reg.Y)
	binary.Write(buf, binary.LittleEndian, s.Reg.SP)
	binary.Write(buf, binary.LittleEndian, s.Reg.PSW)
	binary.Write(buf, binary.LittleEndian, s.Reg.PC)
	binary.Write(buf, binary.LittleEndian, s.Cycles)
	binary.Write(buf, binary.LittleEndian, s.stopped)
	binary.Write(buf, binary.LittleEndian, s.sleeping)
	return buf.Bytes()
}

// Restore reconstructs register and run state from a buffer produced by
// Snapshot. Mem is left untouched; it's wired at construction time.
func (s *SPC700) Restore(data []byte) error {
	buf := bytes.NewReader(data)
	fields := []interface{}{
		&s.Reg.A, &s.Reg.X, &s.Reg.Y, &s.Reg.SP, &s.Reg.PSW, &s.Reg.PC,
		&s.Cycles, &s.stopped, &s.sleeping,
	}
	for _, f := range fields {
		if err := binary.Read(buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}
