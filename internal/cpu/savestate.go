package cpu

import (
	"bytes"
	"encoding/binary"
)

// Snapshot serializes the register file and interrupt-latch state into a
// fixed little-endian layout, for save-state capture.
func (c *CPU) Snapshot() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, c.Reg.A)
	binary.Write(buf, binary.LittleEndian, c.Reg.X)
	binary.Write(buf, binary.LittleEndian, c.Reg.Y)
	binary.Write(buf, binary.LittleEndian, c.Reg.D)
	binary.Write(buf, binary.LittleEndian, c.Reg.S)
	binary.Write(buf, binary.LittleEndian, c.Reg.P)
	binary.Write(buf, binary.LittleEndian, c.Reg.DBR)
	binary.Write(buf, binary.LittleEndian, c.Reg.PBR)
	binary.Write(buf, binary.LittleEndian, c.Reg.PC)
	binary.Write(buf, binary.LittleEndian, c.Reg.E)
	binary.Write(buf, binary.LittleEndian, c.Cycles)
	binary.Write(buf, binary.LittleEndian, c.nmiPending)
	binary.Write(buf, binary.LittleEndian, c.irqLine)
	binary.Write(buf, binary.LittleEndian, c.stopped)
	binary.Write(buf, binary.LittleEndian, c.waiting)
	binary.Write(buf, binary.LittleEndian, int32(c.intDelay))
	return buf.Bytes()
}

// Restore reconstructs register and interrupt-latch state from a buffer
// produced by Snapshot. Mem and Log are left untouched; they're wired at
// construction time, not part of the dump.
func (c *CPU) Restore(data []byte) error {
	buf := bytes.NewReader(data)
	var delay int32
	fields := []interface{}{
		&c.Reg.A, &c.Reg.X, &c.Reg.Y, &c.Reg.D, &c.Reg.S, &c.Reg.P,
		&c.Reg.DBR, &c.Reg.PBR, &c.Reg.PC, &c.Reg.E, &c.Cycles,
		&c.nmiPending, &c.irqLine, &c.stopped, &c.waiting, &delay,
	}
	for _, f := range fields {
		if err := binary.Read(buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	c.intDelay = int(delay)
	return nil
}
