package cpu

// This file implements the 65C816 instruction set as mnemonic-level
// functions parameterized by addressing mode, mirrored by the 256-entry
// dispatch table in opcode_table.go. Mnemonics that exist in several
// addressing-mode flavors (ADC dp, ADC abs, ADC (dp),Y, ...) all funnel
// through one function here, the same shape the opcode switch uses for
// its shared arithmetic helpers.

func opADC(c *CPU, mode AddrMode) {
	var operand uint16
	var extra uint64
	if mode == AddrImmediateA {
		operand = c.immediateA()
	} else {
		operand, _, extra = c.readByMode(mode)
	}
	a := c.GetA()
	carryIn := uint16(0)
	if c.GetFlag(FlagC) {
		carryIn = 1
	}

	if c.accumulatorIs8Bit() {
		av, ov := uint8(a), uint8(operand)
		var result uint16
		if c.GetFlag(FlagD) {
			result = bcdAdd8(av, ov, carryIn)
		} else {
			result = uint16(av) + uint16(ov) + carryIn
		}
		c.SetFlag(FlagC, result > 0xFF)
		sum8 := uint8(result)
		c.SetFlag(FlagV, (av^sum8)&(ov^sum8)&0x80 != 0)
		c.updateNZ8(sum8)
		c.SetA(uint16(sum8))
	} else {
		var result uint32
		if c.GetFlag(FlagD) {
			result = uint32(bcdAdd16(a, operand, carryIn))
		} else {
			result = uint32(a) + uint32(operand) + uint32(carryIn)
		}
		c.SetFlag(FlagC, result > 0xFFFF)
		sum16 := uint16(result)
		c.SetFlag(FlagV, (a^sum16)&(operand^sum16)&0x8000 != 0)
		c.updateNZ16(sum16)
		c.SetA(sum16)
	}
	c.Cycles += extra
}

func opSBC(c *CPU, mode AddrMode) {
	var operand uint16
	var extra uint64
	if mode == AddrImmediateA {
		operand = c.immediateA()
	} else {
		operand, _, extra = c.readByMode(mode)
	}
	a := c.GetA()
	borrowIn := uint16(0)
	if !c.GetFlag(FlagC) {
		borrowIn = 1
	}

	if c.accumulatorIs8Bit() {
		av, ov := uint8(a), uint8(operand)
		binResult := int16(av) - int16(ov) - int16(borrowIn)
		var result8 uint8
		if c.GetFlag(FlagD) {
			result8 = bcdSub8(av, ov, borrowIn)
		} else {
			result8 = uint8(binResult)
		}
		c.SetFlag(FlagC, binResult >= 0)
		c.SetFlag(FlagV, (av^ov)&(av^result8)&0x80 != 0)
		c.updateNZ8(result8)
		c.SetA(uint16(result8))
	} else {
		binResult := int32(a) - int32(operand) - int32(borrowIn)
		var result16 uint16
		if c.GetFlag(FlagD) {
			result16 = bcdSub16(a, operand, borrowIn)
		} else {
			result16 = uint16(binResult)
		}
		c.SetFlag(FlagC, binResult >= 0)
		c.SetFlag(FlagV, (a^operand)&(a^result16)&0x8000 != 0)
		c.updateNZ16(result16)
		c.SetA(result16)
	}
	c.Cycles += extra
}

// bcdAdd8/16 and bcdSub8/16 implement nibble-corrected BCD arithmetic, the
// standard 6502-family decimal-adjust algorithm: add/subtract binary,
// then correct each nibble that exceeded 9.
func bcdAdd8(a, b uint8, carry uint16) uint16 {
	lo := uint16(a&0x0F) + uint16(b&0x0F) + carry
	hi := uint16(a>>4) + uint16(b>>4)
	if lo > 9 {
		lo += 6
		hi++
	}
	if hi > 9 {
		hi += 6
	}
	return (hi << 4) | (lo & 0x0F)
}

func bcdAdd16(a, b uint16, carry uint16) uint16 {
	var result uint16
	var c uint16 = carry
	for shift := uint(0); shift < 16; shift += 4 {
		da := (a >> shift) & 0xF
		db := (b >> shift) & 0xF
		sum := da + db + c
		c = 0
		if sum > 9 {
			sum += 6
			c = 1
		}
		result |= (sum & 0xF) << shift
	}
	return result
}

func bcdSub8(a, b uint8, borrow uint16) uint8 {
	lo := int16(a&0x0F) - int16(b&0x0F) - int16(borrow)
	hi := int16(a>>4) - int16(b>>4)
	if lo < 0 {
		lo -= 6
		hi--
	}
	if hi < 0 {
		hi -= 6
	}
	return uint8(hi<<4) | uint8(lo&0x0F)
}

func bcdSub16(a, b uint16, borrow uint16) uint16 {
	var result uint16
	br := int16(borrow)
	for shift := uint(0); shift < 16; shift += 4 {
		da := int16((a >> shift) & 0xF)
		db := int16((b >> shift) & 0xF)
		diff := da - db - br
		br = 0
		if diff < 0 {
			diff += 10
			br = 1
		}
		result |= uint16(diff&0xF) << shift
	}
	return result
}

func logicOp(c *CPU, mode AddrMode, fn func(a, b uint16) uint16) {
	var operand uint16
	var extra uint64
	if mode == AddrImmediateA {
		operand = c.immediateA()
	} else {
		operand, _, extra = c.readByMode(mode)
	}
	result := fn(c.GetA(), operand)
	if c.accumulatorIs8Bit() {
		c.updateNZ8(uint8(result))
	} else {
		c.updateNZ16(result)
	}
	c.SetA(result)
	c.Cycles += extra
}

func opAND(c *CPU, mode AddrMode) { logicOp(c, mode, func(a, b uint16) uint16 { return a & b }) }
func opORA(c *CPU, mode AddrMode) { logicOp(c, mode, func(a, b uint16) uint16 { return a | b }) }
func opEOR(c *CPU, mode AddrMode) { logicOp(c, mode, func(a, b uint16) uint16 { return a ^ b }) }

func compare(c *CPU, a, b uint16, is8 bool) {
	result := a - b
	c.SetFlag(FlagC, a >= b)
	if is8 {
		c.updateNZ8(uint8(result))
	} else {
		c.updateNZ16(result)
	}
}

func opCMP(c *CPU, mode AddrMode) {
	var operand uint16
	var extra uint64
	if mode == AddrImmediateA {
		operand = c.immediateA()
	} else {
		operand, _, extra = c.readByMode(mode)
	}
	compare(c, c.GetA(), operand, c.accumulatorIs8Bit())
	c.Cycles += extra
}

func opCPX(c *CPU, mode AddrMode) {
	var operand uint16
	var extra uint64
	if mode == AddrImmediateXY {
		operand = c.immediateXY()
	} else {
		operand, extra = c.readIndexSized(mode)
	}
	compare(c, c.GetX(), operand, c.indexIs8Bit())
	c.Cycles += extra
}

func opCPY(c *CPU, mode AddrMode) {
	var operand uint16
	var extra uint64
	if mode == AddrImmediateXY {
		operand = c.immediateXY()
	} else {
		operand, extra = c.readIndexSized(mode)
	}
	compare(c, c.GetY(), operand, c.indexIs8Bit())
	c.Cycles += extra
}

func opLDA(c *CPU, mode AddrMode) {
	var v uint16
	var extra uint64
	if mode == AddrImmediateA {
		v = c.immediateA()
	} else {
		v, _, extra = c.readByMode(mode)
	}
	c.SetA(v)
	if c.accumulatorIs8Bit() {
		c.updateNZ8(uint8(v))
	} else {
		c.updateNZ16(v)
	}
	c.Cycles += extra
}

func opLDX(c *CPU, mode AddrMode) {
	var v uint16
	var extra uint64
	if mode == AddrImmediateXY {
		v = c.immediateXY()
	} else {
		v, extra = c.readIndexSized(mode)
	}
	c.SetX(v)
	if c.indexIs8Bit() {
		c.updateNZ8(uint8(v))
	} else {
		c.updateNZ16(v)
	}
	c.Cycles += extra
}

func opLDY(c *CPU, mode AddrMode) {
	var v uint16
	var extra uint64
	if mode == AddrImmediateXY {
		v = c.immediateXY()
	} else {
		v, extra = c.readIndexSized(mode)
	}
	c.SetY(v)
	if c.indexIs8Bit() {
		c.updateNZ8(uint8(v))
	} else {
		c.updateNZ16(v)
	}
	c.Cycles += extra
}

func opSTA(c *CPU, mode AddrMode) { c.Cycles += c.writeByMode(mode, c.GetA()) }
func opSTX(c *CPU, mode AddrMode) { c.Cycles += c.writeIndexSized(mode, c.GetX()) }
func opSTY(c *CPU, mode AddrMode) { c.Cycles += c.writeIndexSized(mode, c.GetY()) }
func opSTZ(c *CPU, mode AddrMode) { c.Cycles += c.writeByMode(mode, 0) }

func opINC(c *CPU, mode AddrMode) {
	v, is8, extra := c.readByMode(mode)
	v++
	if is8 {
		v &= 0xFF
		c.updateNZ8(uint8(v))
	} else {
		c.updateNZ16(v)
	}
	c.Cycles += c.writeByMode(mode, v) + extra
}

func opDEC(c *CPU, mode AddrMode) {
	v, is8, extra := c.readByMode(mode)
	v--
	if is8 {
		v &= 0xFF
		c.updateNZ8(uint8(v))
	} else {
		c.updateNZ16(v)
	}
	c.Cycles += c.writeByMode(mode, v) + extra
}

func opINX(c *CPU, _ AddrMode) {
	v := c.GetX() + 1
	c.SetX(v)
	if c.indexIs8Bit() {
		c.updateNZ8(uint8(v))
	} else {
		c.updateNZ16(v)
	}
}
func opINY(c *CPU, _ AddrMode) {
	v := c.GetY() + 1
	c.SetY(v)
	if c.indexIs8Bit() {
		c.updateNZ8(uint8(v))
	} else {
		c.updateNZ16(v)
	}
}
func opDEX(c *CPU, _ AddrMode) {
	v := c.GetX() - 1
	c.SetX(v)
	if c.indexIs8Bit() {
		c.updateNZ8(uint8(v))
	} else {
		c.updateNZ16(v)
	}
}
func opDEY(c *CPU, _ AddrMode) {
	v := c.GetY() - 1
	c.SetY(v)
	if c.indexIs8Bit() {
		c.updateNZ8(uint8(v))
	} else {
		c.updateNZ16(v)
	}
}

func opASL(c *CPU, mode AddrMode) {
	v, is8, extra := c.readByMode(mode)
	if is8 {
		c.SetFlag(FlagC, v&0x80 != 0)
		v = (v << 1) & 0xFF
		c.updateNZ8(uint8(v))
	} else {
		c.SetFlag(FlagC, v&0x8000 != 0)
		v <<= 1
		c.updateNZ16(v)
	}
	c.Cycles += c.writeByMode(mode, v) + extra
}

func opLSR(c *CPU, mode AddrMode) {
	v, is8, extra := c.readByMode(mode)
	c.SetFlag(FlagC, v&1 != 0)
	v >>= 1
	if is8 {
		c.updateNZ8(uint8(v))
	} else {
		c.updateNZ16(v)
	}
	c.Cycles += c.writeByMode(mode, v) + extra
}

func opROL(c *CPU, mode AddrMode) {
	v, is8, extra := c.readByMode(mode)
	oldCarry := uint16(0)
	if c.GetFlag(FlagC) {
		oldCarry = 1
	}
	if is8 {
		c.SetFlag(FlagC, v&0x80 != 0)
		v = ((v << 1) | oldCarry) & 0xFF
		c.updateNZ8(uint8(v))
	} else {
		c.SetFlag(FlagC, v&0x8000 != 0)
		v = (v << 1) | oldCarry
		c.updateNZ16(v)
	}
	c.Cycles += c.writeByMode(mode, v) + extra
}

func opROR(c *CPU, mode AddrMode) {
	v, is8, extra := c.readByMode(mode)
	oldCarry := uint16(0)
	if c.GetFlag(FlagC) {
		oldCarry = 1
	}
	if is8 {
		c.SetFlag(FlagC, v&1 != 0)
		v = (v >> 1) | (oldCarry << 7)
		c.updateNZ8(uint8(v))
	} else {
		c.SetFlag(FlagC, v&1 != 0)
		v = (v >> 1) | (oldCarry << 15)
		c.updateNZ16(v)
	}
	c.Cycles += c.writeByMode(mode, v) + extra
}

func opBIT(c *CPU, mode AddrMode) {
	var v uint16
	var extra uint64
	if mode == AddrImmediateA {
		v = c.immediateA()
	} else {
		v, _, extra = c.readByMode(mode)
	}
	a := c.GetA()
	if c.accumulatorIs8Bit() {
		c.SetFlag(FlagZ, uint8(a)&uint8(v) == 0)
		if mode != AddrImmediateA {
			c.SetFlag(FlagN, v&0x80 != 0)
			c.SetFlag(FlagV, v&0x40 != 0)
		}
	} else {
		c.SetFlag(FlagZ, a&v == 0)
		if mode != AddrImmediateA {
			c.SetFlag(FlagN, v&0x8000 != 0)
			c.SetFlag(FlagV, v&0x4000 != 0)
		}
	}
	c.Cycles += extra
}

func opTRB(c *CPU, mode AddrMode) {
	v, is8, extra := c.readByMode(mode)
	a := c.GetA()
	if is8 {
		c.SetFlag(FlagZ, uint8(a)&uint8(v) == 0)
		v &^= a
	} else {
		c.SetFlag(FlagZ, a&v == 0)
		v &^= a
	}
	c.Cycles += c.writeByMode(mode, v) + extra
}

func opTSB(c *CPU, mode AddrMode) {
	v, is8, extra := c.readByMode(mode)
	a := c.GetA()
	if is8 {
		c.SetFlag(FlagZ, uint8(a)&uint8(v) == 0)
		v |= a
	} else {
		c.SetFlag(FlagZ, a&v == 0)
		v |= a
	}
	c.Cycles += c.writeByMode(mode, v) + extra
}

// Branches: all relative, all taken-or-not on a flag test.

func branch(c *CPU, taken bool) {
	offset := int8(c.fetch8())
	if taken {
		c.Cycles++
		oldPage := c.Reg.PC & 0xFF00
		c.Reg.PC = uint16(int32(c.Reg.PC) + int32(offset))
		if c.Reg.PC&0xFF00 != oldPage {
			c.Cycles++
		}
	}
}

func opBEQ(c *CPU, _ AddrMode) { branch(c, c.GetFlag(FlagZ)) }
func opBNE(c *CPU, _ AddrMode) { branch(c, !c.GetFlag(FlagZ)) }
func opBCC(c *CPU, _ AddrMode) { branch(c, !c.GetFlag(FlagC)) }
func opBCS(c *CPU, _ AddrMode) { branch(c, c.GetFlag(FlagC)) }
func opBMI(c *CPU, _ AddrMode) { branch(c, c.GetFlag(FlagN)) }
func opBPL(c *CPU, _ AddrMode) { branch(c, !c.GetFlag(FlagN)) }
func opBVC(c *CPU, _ AddrMode) { branch(c, !c.GetFlag(FlagV)) }
func opBVS(c *CPU, _ AddrMode) { branch(c, c.GetFlag(FlagV)) }
func opBRA(c *CPU, _ AddrMode) { branch(c, true) }

func opBRL(c *CPU, _ AddrMode) {
	offset := int16(c.fetch16())
	c.Reg.PC = uint16(int32(c.Reg.PC) + int32(offset))
}

// Jumps / calls / returns.

func opJMP(c *CPU, mode AddrMode) {
	switch mode {
	case AddrAbsolute:
		c.Reg.PC = c.fetch16()
	case AddrAbsoluteLong:
		lo, hi, bk := c.fetch8(), c.fetch8(), c.fetch8()
		c.Reg.PC = uint16(lo) | uint16(hi)<<8
		c.Reg.PBR = bk
	case AddrAbsoluteIndirect:
		ptr := c.fetch16()
		lo := c.Mem.Read8(0, ptr)
		hi := c.Mem.Read8(0, ptr+1)
		c.Reg.PC = uint16(lo) | uint16(hi)<<8
	case AddrAbsoluteIndirectLong:
		ptr := c.fetch16()
		lo := c.Mem.Read8(0, ptr)
		hi := c.Mem.Read8(0, ptr+1)
		bk := c.Mem.Read8(0, ptr+2)
		c.Reg.PC = uint16(lo) | uint16(hi)<<8
		c.Reg.PBR = bk
	case AddrAbsoluteIndexedIndirect:
		ptr := c.fetch16() + c.GetX()
		lo := c.Mem.Read8(c.Reg.PBR, ptr)
		hi := c.Mem.Read8(c.Reg.PBR, ptr+1)
		c.Reg.PC = uint16(lo) | uint16(hi)<<8
	}
}

func opJSR(c *CPU, mode AddrMode) {
	switch mode {
	case AddrAbsolute:
		target := c.fetch16()
		c.push16(c.Reg.PC - 1)
		c.Reg.PC = target
	case AddrAbsoluteIndexedIndirect:
		ptrBase := c.fetch16()
		c.push16(c.Reg.PC - 1)
		ptr := ptrBase + c.GetX()
		lo := c.Mem.Read8(c.Reg.PBR, ptr)
		hi := c.Mem.Read8(c.Reg.PBR, ptr+1)
		c.Reg.PC = uint16(lo) | uint16(hi)<<8
	}
}

func opJSL(c *CPU, _ AddrMode) {
	lo, hi, bk := c.fetch8(), c.fetch8(), c.fetch8()
	c.push8(c.Reg.PBR)
	c.push16(c.Reg.PC - 1)
	c.Reg.PC = uint16(lo) | uint16(hi)<<8
	c.Reg.PBR = bk
}

func opRTS(c *CPU, _ AddrMode) { c.Reg.PC = c.pop16() + 1 }

func opRTL(c *CPU, _ AddrMode) {
	c.Reg.PC = c.pop16() + 1
	c.Reg.PBR = c.pop8()
}

func opRTI(c *CPU, _ AddrMode) {
	c.Reg.P = c.pop8()
	c.Reg.PC = c.pop16()
	if !c.Reg.E {
		c.Reg.PBR = c.pop8()
	}
}

func opBRK(c *CPU, _ AddrMode) {
	c.fetch8() // signature byte, conventionally ignored by software
	if !c.Reg.E {
		c.push8(c.Reg.PBR)
	}
	c.push16(c.Reg.PC)
	if c.Reg.E {
		c.push8(c.Reg.P | FlagX) // break flag set in the pushed copy
	} else {
		c.push8(c.Reg.P)
	}
	c.SetFlag(FlagI, true)
	c.SetFlag(FlagD, false)
	c.Reg.PBR = 0
	vector := uint16(VectorBRKNative)
	if c.Reg.E {
		vector = VectorIRQEmulation
	}
	lo := c.Mem.Read8(0, vector)
	hi := c.Mem.Read8(0, vector+1)
	c.Reg.PC = uint16(lo) | uint16(hi)<<8
}

func opCOP(c *CPU, _ AddrMode) {
	c.fetch8()
	if !c.Reg.E {
		c.push8(c.Reg.PBR)
	}
	c.push16(c.Reg.PC)
	c.push8(c.Reg.P)
	c.SetFlag(FlagI, true)
	c.SetFlag(FlagD, false)
	c.Reg.PBR = 0
	vector := uint16(VectorCOPNative)
	if c.Reg.E {
		vector = VectorCOPEmulation
	}
	lo := c.Mem.Read8(0, vector)
	hi := c.Mem.Read8(0, vector+1)
	c.Reg.PC = uint16(lo) | uint16(hi)<<8
}

// Stack ops.

func opPHA(c *CPU, _ AddrMode) {
	if c.accumulatorIs8Bit() {
		c.push8(uint8(c.GetA()))
	} else {
		c.push16(c.GetA())
	}
}
func opPLA(c *CPU, _ AddrMode) {
	if c.accumulatorIs8Bit() {
		v := c.pop8()
		c.SetA(uint16(v))
		c.updateNZ8(v)
	} else {
		v := c.pop16()
		c.SetA(v)
		c.updateNZ16(v)
	}
}
func opPHX(c *CPU, _ AddrMode) {
	if c.indexIs8Bit() {
		c.push8(uint8(c.GetX()))
	} else {
		c.push16(c.GetX())
	}
}
func opPLX(c *CPU, _ AddrMode) {
	if c.indexIs8Bit() {
		v := c.pop8()
		c.SetX(uint16(v))
		c.updateNZ8(v)
	} else {
		v := c.pop16()
		c.SetX(v)
		c.updateNZ16(v)
	}
}
func opPHY(c *CPU, _ AddrMode) {
	if c.indexIs8Bit() {
		c.push8(uint8(c.GetY()))
	} else {
		c.push16(c.GetY())
	}
}
func opPLY(c *CPU, _ AddrMode) {
	if c.indexIs8Bit() {
		v := c.pop8()
		c.SetY(uint16(v))
		c.updateNZ8(v)
	} else {
		v := c.pop16()
		c.SetY(v)
		c.updateNZ16(v)
	}
}
func opPHP(c *CPU, _ AddrMode) { c.push8(c.Reg.P) }
func opPLP(c *CPU, _ AddrMode) {
	c.Reg.P = c.pop8()
	if c.Reg.E {
		c.Reg.P |= FlagM | FlagX
	}
	if c.GetFlag(FlagX) {
		c.Reg.X &= 0xFF
		c.Reg.Y &= 0xFF
	}
	c.intDelay = 1
}
func opPHB(c *CPU, _ AddrMode) { c.push8(c.Reg.DBR) }
func opPLB(c *CPU, _ AddrMode) {
	c.Reg.DBR = c.pop8()
	c.updateNZ8(c.Reg.DBR)
}
func opPHD(c *CPU, _ AddrMode) { c.push16(c.Reg.D) }
func opPLD(c *CPU, _ AddrMode) {
	c.Reg.D = c.pop16()
	c.updateNZ16(c.Reg.D)
}
func opPHK(c *CPU, _ AddrMode) { c.push8(c.Reg.PBR) }

func opPEA(c *CPU, _ AddrMode) { c.push16(c.fetch16()) }
func opPEI(c *CPU, _ AddrMode) {
	dp := c.fetch8()
	ptr := c.Reg.D + uint16(dp)
	lo := c.Mem.Read8(0, ptr)
	hi := c.Mem.Read8(0, ptr+1)
	c.push16(uint16(lo) | uint16(hi)<<8)
}
func opPER(c *CPU, _ AddrMode) {
	offset := int16(c.fetch16())
	c.push16(uint16(int32(c.Reg.PC) + int32(offset)))
}

// Transfers.

func opTAX(c *CPU, _ AddrMode) {
	c.SetX(c.GetA())
	if c.indexIs8Bit() {
		c.updateNZ8(uint8(c.GetX()))
	} else {
		c.updateNZ16(c.GetX())
	}
}
func opTAY(c *CPU, _ AddrMode) {
	c.SetY(c.GetA())
	if c.indexIs8Bit() {
		c.updateNZ8(uint8(c.GetY()))
	} else {
		c.updateNZ16(c.GetY())
	}
}
func opTXA(c *CPU, _ AddrMode) {
	c.SetA(c.GetX())
	if c.accumulatorIs8Bit() {
		c.updateNZ8(uint8(c.GetA()))
	} else {
		c.updateNZ16(c.GetA())
	}
}
func opTYA(c *CPU, _ AddrMode) {
	c.SetA(c.GetY())
	if c.accumulatorIs8Bit() {
		c.updateNZ8(uint8(c.GetA()))
	} else {
		c.updateNZ16(c.GetA())
	}
}
func opTXY(c *CPU, _ AddrMode) {
	c.SetY(c.GetX())
	if c.indexIs8Bit() {
		c.updateNZ8(uint8(c.GetY()))
	} else {
		c.updateNZ16(c.GetY())
	}
}
func opTYX(c *CPU, _ AddrMode) {
	c.SetX(c.GetY())
	if c.indexIs8Bit() {
		c.updateNZ8(uint8(c.GetX()))
	} else {
		c.updateNZ16(c.GetX())
	}
}
func opTSX(c *CPU, _ AddrMode) {
	c.SetX(c.Reg.S)
	if c.indexIs8Bit() {
		c.updateNZ8(uint8(c.GetX()))
	} else {
		c.updateNZ16(c.GetX())
	}
}
func opTXS(c *CPU, _ AddrMode) {
	c.Reg.S = c.GetX()
	if c.Reg.E {
		c.Reg.S = 0x0100 | (c.Reg.S & 0xFF)
	}
}
func opTCD(c *CPU, _ AddrMode) { c.Reg.D = c.Reg.A; c.updateNZ16(c.Reg.D) }
func opTDC(c *CPU, _ AddrMode) { c.Reg.A = c.Reg.D; c.updateNZ16(c.Reg.A) }
func opTCS(c *CPU, _ AddrMode) {
	c.Reg.S = c.Reg.A
	if c.Reg.E {
		c.Reg.S = 0x0100 | (c.Reg.S & 0xFF)
	}
}
func opTSC(c *CPU, _ AddrMode) { c.Reg.A = c.Reg.S; c.updateNZ16(c.Reg.A) }

// Flag operations.

func opCLC(c *CPU, _ AddrMode) { c.SetFlag(FlagC, false) }
func opSEC(c *CPU, _ AddrMode) { c.SetFlag(FlagC, true) }
func opCLI(c *CPU, _ AddrMode) { c.SetFlag(FlagI, false); c.intDelay = 1 }
func opSEI(c *CPU, _ AddrMode) { c.SetFlag(FlagI, true); c.intDelay = 1 }
func opCLD(c *CPU, _ AddrMode) { c.SetFlag(FlagD, false) }
func opSED(c *CPU, _ AddrMode) { c.SetFlag(FlagD, true) }
func opCLV(c *CPU, _ AddrMode) { c.SetFlag(FlagV, false) }

func opREP(c *CPU, _ AddrMode) {
	mask := c.fetch8()
	c.Reg.P &^= mask
	if c.Reg.E {
		c.Reg.P |= FlagM | FlagX
	}
	c.intDelay = 1
}

func opSEP(c *CPU, _ AddrMode) {
	mask := c.fetch8()
	c.Reg.P |= mask
	if mask&FlagX != 0 {
		c.Reg.X &= 0xFF
		c.Reg.Y &= 0xFF
	}
	c.intDelay = 1
}

func opXCE(c *CPU, _ AddrMode) {
	oldE := c.Reg.E
	c.Reg.E = c.GetFlag(FlagC)
	c.SetFlag(FlagC, oldE)
	if c.Reg.E {
		c.Reg.P |= FlagM | FlagX
		c.Reg.X &= 0xFF
		c.Reg.Y &= 0xFF
		c.Reg.S = 0x0100 | (c.Reg.S & 0xFF)
	}
}

func opNOP(c *CPU, _ AddrMode) {}
func opWDM(c *CPU, _ AddrMode) { c.fetch8() }

// opXBA swaps the high and low bytes of the full 16-bit accumulator,
// regardless of the current M width, and sets N/Z from the new low byte.
func opXBA(c *CPU, _ AddrMode) {
	c.Reg.A = (c.Reg.A >> 8) | (c.Reg.A << 8)
	c.updateNZ8(uint8(c.Reg.A))
}

func opWAI(c *CPU, _ AddrMode) { c.waiting = true }
func opSTP(c *CPU, _ AddrMode) { c.stopped = true }

// Block moves: MVN copies forward (ascending addresses, used for moves
// where dest > src), MVP copies backward. Both decrement a 16-bit counter
// in the accumulator and re-execute from the same PC until it underflows,
// which is why the opcode pushes PC back by 3 (its own length) every
// iteration rather than using a separate loop construct.
func opMVN(c *CPU, _ AddrMode) {
	destBank := c.fetch8()
	srcBank := c.fetch8()
	v := c.Mem.Read8(srcBank, c.Reg.X)
	c.Mem.Write8(destBank, c.Reg.Y, v)
	c.Reg.X++
	c.Reg.Y++
	c.Reg.DBR = destBank
	c.Reg.A--
	if c.Reg.A != 0xFFFF {
		c.Reg.PC -= 3
	}
}

func opMVP(c *CPU, _ AddrMode) {
	destBank := c.fetch8()
	srcBank := c.fetch8()
	v := c.Mem.Read8(srcBank, c.Reg.X)
	c.Mem.Write8(destBank, c.Reg.Y, v)
	c.Reg.X--
	c.Reg.Y--
	c.Reg.DBR = destBank
	c.Reg.A--
	if c.Reg.A != 0xFFFF {
		c.Reg.PC -= 3
	}
}
