package cpu

// AddrMode identifies one of the 65C816's addressing modes. Every opcode
// table entry names one; the instruction functions stay addressing-mode
// agnostic by going through operand() to fetch their effective address.
type AddrMode int

const (
	AddrImplied AddrMode = iota
	AddrAccumulator
	AddrImmediateA    // immediate sized to the accumulator (M flag)
	AddrImmediateXY   // immediate sized to X/Y (X flag)
	AddrImmediate8    // always one byte (REP/SEP operand, block move banks)
	AddrDirectPage
	AddrDirectPageX
	AddrDirectPageY
	AddrDirectPageIndirect
	AddrDirectPageIndirectLong
	AddrDirectPageIndirectX
	AddrDirectPageIndirectY
	AddrDirectPageIndirectLongY
	AddrAbsolute
	AddrAbsoluteX
	AddrAbsoluteY
	AddrAbsoluteLong
	AddrAbsoluteLongX
	AddrAbsoluteIndirect
	AddrAbsoluteIndirectLong
	AddrAbsoluteIndexedIndirect
	AddrStackRelative
	AddrStackRelativeIndirectY
	AddrRelative8
	AddrRelative16
	AddrBlockMove
)

// operand resolves the effective (bank, offset) address for a given
// addressing mode, consuming the operand bytes that follow the opcode.
// extraCycles accounts for the page-crossing / direct-page-not-zero
// penalties real hardware charges.
func (c *CPU) operand(mode AddrMode) (bank uint8, addr uint16, extraCycles uint64) {
	switch mode {
	case AddrDirectPage:
		dp := c.fetch8()
		if c.Reg.D&0xFF != 0 {
			extraCycles++
		}
		return 0, c.Reg.D + uint16(dp), extraCycles
	case AddrDirectPageX:
		dp := c.fetch8()
		return 0, c.Reg.D + uint16(dp) + c.GetX(), extraCycles
	case AddrDirectPageY:
		dp := c.fetch8()
		return 0, c.Reg.D + uint16(dp) + c.GetY(), extraCycles
	case AddrDirectPageIndirect:
		dp := c.fetch8()
		ptr := c.Reg.D + uint16(dp)
		lo := c.Mem.Read8(0, ptr)
		hi := c.Mem.Read8(0, ptr+1)
		return c.Reg.DBR, uint16(lo) | uint16(hi)<<8, extraCycles
	case AddrDirectPageIndirectLong:
		dp := c.fetch8()
		ptr := c.Reg.D + uint16(dp)
		lo := c.Mem.Read8(0, ptr)
		hi := c.Mem.Read8(0, ptr+1)
		bk := c.Mem.Read8(0, ptr+2)
		return bk, uint16(lo) | uint16(hi)<<8, extraCycles
	case AddrDirectPageIndirectX:
		dp := c.fetch8()
		ptr := c.Reg.D + uint16(dp) + c.GetX()
		lo := c.Mem.Read8(0, ptr)
		hi := c.Mem.Read8(0, ptr+1)
		return c.Reg.DBR, uint16(lo) | uint16(hi)<<8, extraCycles
	case AddrDirectPageIndirectY:
		dp := c.fetch8()
		ptr := c.Reg.D + uint16(dp)
		lo := c.Mem.Read8(0, ptr)
		hi := c.Mem.Read8(0, ptr+1)
		base := uint16(lo) | uint16(hi)<<8
		result := base + c.GetY()
		if base&0xFF00 != result&0xFF00 {
			extraCycles++
		}
		return c.Reg.DBR, result, extraCycles
	case AddrDirectPageIndirectLongY:
		dp := c.fetch8()
		ptr := c.Reg.D + uint16(dp)
		lo := c.Mem.Read8(0, ptr)
		hi := c.Mem.Read8(0, ptr+1)
		bk := c.Mem.Read8(0, ptr+2)
		base := uint16(lo) | uint16(hi)<<8
		return bk, base + c.GetY(), extraCycles
	case AddrAbsolute:
		return c.Reg.DBR, c.fetch16(), extraCycles
	case AddrAbsoluteX:
		base := c.fetch16()
		result := base + c.GetX()
		if base&0xFF00 != result&0xFF00 {
			extraCycles++
		}
		return c.Reg.DBR, result, extraCycles
	case AddrAbsoluteY:
		base := c.fetch16()
		result := base + c.GetY()
		if base&0xFF00 != result&0xFF00 {
			extraCycles++
		}
		return c.Reg.DBR, result, extraCycles
	case AddrAbsoluteLong:
		lo := c.fetch8()
		hi := c.fetch8()
		bk := c.fetch8()
		return bk, uint16(lo) | uint16(hi)<<8, extraCycles
	case AddrAbsoluteLongX:
		lo := c.fetch8()
		hi := c.fetch8()
		bk := c.fetch8()
		return bk, (uint16(lo) | uint16(hi)<<8) + c.GetX(), extraCycles
	case AddrAbsoluteIndirect:
		ptr := c.fetch16()
		lo := c.Mem.Read8(0, ptr)
		hi := c.Mem.Read8(0, ptr+1)
		return c.Reg.PBR, uint16(lo) | uint16(hi)<<8, extraCycles
	case AddrAbsoluteIndirectLong:
		ptr := c.fetch16()
		lo := c.Mem.Read8(0, ptr)
		hi := c.Mem.Read8(0, ptr+1)
		bk := c.Mem.Read8(0, ptr+2)
		return bk, uint16(lo) | uint16(hi)<<8, extraCycles
	case AddrAbsoluteIndexedIndirect:
		ptr := c.fetch16() + c.GetX()
		lo := c.Mem.Read8(c.Reg.PBR, ptr)
		hi := c.Mem.Read8(c.Reg.PBR, ptr+1)
		return c.Reg.PBR, uint16(lo) | uint16(hi)<<8, extraCycles
	case AddrStackRelative:
		off := c.fetch8()
		return 0, c.Reg.S + uint16(off), extraCycles
	case AddrStackRelativeIndirectY:
		off := c.fetch8()
		ptr := c.Reg.S + uint16(off)
		lo := c.Mem.Read8(0, ptr)
		hi := c.Mem.Read8(0, ptr+1)
		base := uint16(lo) | uint16(hi)<<8
		return c.Reg.DBR, base + c.GetY(), extraCycles
	default:
		return 0, 0, 0
	}
}

// readByMode/writeByMode are small helpers over the operand address,
// sized by the current M width (readIndexSized/writeIndexSized below are
// the X-width counterparts).

func (c *CPU) readByMode(mode AddrMode) (value uint16, is8 bool, extraCycles uint64) {
	if mode == AddrAccumulator {
		return c.GetA(), c.accumulatorIs8Bit(), 0
	}
	bank, addr, extra := c.operand(mode)
	if c.accumulatorIs8Bit() {
		return uint16(c.Mem.Read8(bank, addr)), true, extra
	}
	lo := c.Mem.Read8(bank, addr)
	hi := c.Mem.Read8(bank, addr+1)
	return uint16(lo) | uint16(hi)<<8, false, extra
}

func (c *CPU) writeByMode(mode AddrMode, value uint16) uint64 {
	if mode == AddrAccumulator {
		c.SetA(value)
		return 0
	}
	bank, addr, extra := c.operand(mode)
	if c.accumulatorIs8Bit() {
		c.Mem.Write8(bank, addr, uint8(value))
	} else {
		c.Mem.Write8(bank, addr, uint8(value))
		c.Mem.Write8(bank, addr+1, uint8(value>>8))
	}
	return extra
}

// readIndexSized/writeIndexSized are the X/Y-width equivalents, used by
// LDX/LDY/STX/STY/CPX/CPY.
func (c *CPU) readIndexSized(mode AddrMode) (value uint16, extraCycles uint64) {
	bank, addr, extra := c.operand(mode)
	if c.indexIs8Bit() {
		return uint16(c.Mem.Read8(bank, addr)), extra
	}
	lo := c.Mem.Read8(bank, addr)
	hi := c.Mem.Read8(bank, addr+1)
	return uint16(lo) | uint16(hi)<<8, extra
}

func (c *CPU) writeIndexSized(mode AddrMode, value uint16) uint64 {
	bank, addr, extra := c.operand(mode)
	if c.indexIs8Bit() {
		c.Mem.Write8(bank, addr, uint8(value))
	} else {
		c.Mem.Write8(bank, addr, uint8(value))
		c.Mem.Write8(bank, addr+1, uint8(value>>8))
	}
	return extra
}

// immediateA reads an immediate operand sized by the accumulator (M) flag.
func (c *CPU) immediateA() uint16 {
	if c.accumulatorIs8Bit() {
		return uint16(c.fetch8())
	}
	return c.fetch16()
}

// immediateXY reads an immediate operand sized by the index (X) flag.
func (c *CPU) immediateXY() uint16 {
	if c.indexIs8Bit() {
		return uint16(c.fetch8())
	}
	return c.fetch16()
}
