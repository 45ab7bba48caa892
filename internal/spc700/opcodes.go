package spc700

// opFunc executes one instruction and returns the cycles it took.
type opFunc func(s *SPC700) uint64

type opcodeEntry struct {
	Name string
	Exec opFunc
}

func op(name string, fn opFunc) opcodeEntry { return opcodeEntry{Name: name, Exec: fn} }

// --- addressing helpers -----------------------------------------------

func (s *SPC700) addrDirect() uint16    { return s.dp(s.fetch8()) }
func (s *SPC700) addrDirectX() uint16   { return s.dp(s.fetch8() + s.Reg.X) }
func (s *SPC700) addrDirectY() uint16   { return s.dp(s.fetch8() + s.Reg.Y) }
func (s *SPC700) addrAbsolute() uint16  { return s.fetch16() }
func (s *SPC700) addrAbsoluteX() uint16 { return s.fetch16() + uint16(s.Reg.X) }
func (s *SPC700) addrAbsoluteY() uint16 { return s.fetch16() + uint16(s.Reg.Y) }
func (s *SPC700) addrIndX() uint16      { return s.dp(s.Reg.X) }
func (s *SPC700) addrIndY() uint16      { return s.dp(s.Reg.Y) }

// addrDPIndirectX reads [d+X]: the direct-page word at d+X holds the
// 16-bit target address.
func (s *SPC700) addrDPIndirectX() uint16 {
	ptr := s.dp(s.fetch8() + s.Reg.X)
	lo := s.Mem.Read(ptr)
	hi := s.Mem.Read(ptr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// addrDPIndirectY reads [d]+Y: the direct-page word at d holds a base
// address, to which Y is added.
func (s *SPC700) addrDPIndirectY() uint16 {
	ptr := s.dp(s.fetch8())
	lo := s.Mem.Read(ptr)
	hi := s.Mem.Read(ptr + 1)
	base := uint16(lo) | uint16(hi)<<8
	return base + uint16(s.Reg.Y)
}

// --- flag-setting ALU primitives ---------------------------------------

func (s *SPC700) adc8(a, b uint8) uint8 {
	carry := uint16(0)
	if s.GetFlag(FlagC) {
		carry = 1
	}
	sum := uint16(a) + uint16(b) + carry
	s.SetFlag(FlagH, (a&0xF)+(b&0xF)+uint8(carry) > 0xF)
	s.SetFlag(FlagC, sum > 0xFF)
	result := uint8(sum)
	s.SetFlag(FlagV, (a^result)&(b^result)&0x80 != 0)
	s.updateNZ(result)
	return result
}

func (s *SPC700) sbc8(a, b uint8) uint8 {
	return s.adc8(a, ^b)
}

func (s *SPC700) and8(a, b uint8) uint8 { r := a & b; s.updateNZ(r); return r }
func (s *SPC700) or8(a, b uint8) uint8  { r := a | b; s.updateNZ(r); return r }
func (s *SPC700) eor8(a, b uint8) uint8 { r := a ^ b; s.updateNZ(r); return r }

func (s *SPC700) cmp8(a, b uint8) {
	diff := uint16(a) - uint16(b)
	s.SetFlag(FlagC, a >= b)
	s.updateNZ(uint8(diff))
}

func (s *SPC700) asl8(v uint8) uint8 {
	s.SetFlag(FlagC, v&0x80 != 0)
	r := v << 1
	s.updateNZ(r)
	return r
}

func (s *SPC700) lsr8(v uint8) uint8 {
	s.SetFlag(FlagC, v&0x01 != 0)
	r := v >> 1
	s.updateNZ(r)
	return r
}

func (s *SPC700) rol8(v uint8) uint8 {
	carryIn := uint8(0)
	if s.GetFlag(FlagC) {
		carryIn = 1
	}
	s.SetFlag(FlagC, v&0x80 != 0)
	r := (v << 1) | carryIn
	s.updateNZ(r)
	return r
}

func (s *SPC700) ror8(v uint8) uint8 {
	carryIn := uint8(0)
	if s.GetFlag(FlagC) {
		carryIn = 0x80
	}
	s.SetFlag(FlagC, v&0x01 != 0)
	r := (v >> 1) | carryIn
	s.updateNZ(r)
	return r
}

func (s *SPC700) inc8(v uint8) uint8 { r := v + 1; s.updateNZ(r); return r }
func (s *SPC700) dec8(v uint8) uint8 { r := v - 1; s.updateNZ(r); return r }

// --- generic binary-op addressing shapes -------------------------------
// The eight "binary" ops (OR, AND, EOR, CMP, ADC, SBC and the MOV-like
// load forms) share one consistent family of operand shapes across the
// whole opcode map; these helpers implement each shape once and are
// reused by every op's table entries below.

func (s *SPC700) binA_d(alu func(a, b uint8) uint8) uint64 {
	addr := s.addrDirect()
	s.Reg.A = alu(s.Reg.A, s.Mem.Read(addr))
	return 3
}
func (s *SPC700) binA_abs(alu func(a, b uint8) uint8) uint64 {
	addr := s.addrAbsolute()
	s.Reg.A = alu(s.Reg.A, s.Mem.Read(addr))
	return 4
}
func (s *SPC700) binA_indX(alu func(a, b uint8) uint8) uint64 {
	s.Reg.A = alu(s.Reg.A, s.Mem.Read(s.addrIndX()))
	return 3
}
func (s *SPC700) binA_dpIndX(alu func(a, b uint8) uint8) uint64 {
	addr := s.addrDPIndirectX()
	s.Reg.A = alu(s.Reg.A, s.Mem.Read(addr))
	return 6
}
func (s *SPC700) binA_imm(alu func(a, b uint8) uint8) uint64 {
	s.Reg.A = alu(s.Reg.A, s.fetch8())
	return 2
}
func (s *SPC700) binA_directX(alu func(a, b uint8) uint8) uint64 {
	addr := s.addrDirectX()
	s.Reg.A = alu(s.Reg.A, s.Mem.Read(addr))
	return 4
}
func (s *SPC700) binA_absX(alu func(a, b uint8) uint8) uint64 {
	addr := s.addrAbsoluteX()
	s.Reg.A = alu(s.Reg.A, s.Mem.Read(addr))
	return 5
}
func (s *SPC700) binA_absY(alu func(a, b uint8) uint8) uint64 {
	addr := s.addrAbsoluteY()
	s.Reg.A = alu(s.Reg.A, s.Mem.Read(addr))
	return 5
}
func (s *SPC700) binA_dpIndY(alu func(a, b uint8) uint8) uint64 {
	addr := s.addrDPIndirectY()
	s.Reg.A = alu(s.Reg.A, s.Mem.Read(addr))
	return 6
}
func (s *SPC700) binDPDP(alu func(a, b uint8) uint8) uint64 {
	dst := s.addrDirect()
	src := s.addrDirect()
	s.Mem.Write(dst, alu(s.Mem.Read(dst), s.Mem.Read(src)))
	return 6
}
func (s *SPC700) binImmDP(alu func(a, b uint8) uint8) uint64 {
	imm := s.fetch8()
	addr := s.addrDirect()
	s.Mem.Write(addr, alu(s.Mem.Read(addr), imm))
	return 5
}
func (s *SPC700) binIndXIndY(alu func(a, b uint8) uint8) uint64 {
	dst := s.addrIndX()
	src := s.addrIndY()
	s.Mem.Write(dst, alu(s.Mem.Read(dst), s.Mem.Read(src)))
	return 5
}

// cmp variants don't write back.
func (s *SPC700) cmpA_d() uint64      { s.cmp8(s.Reg.A, s.Mem.Read(s.addrDirect())); return 3 }
func (s *SPC700) cmpA_abs() uint64    { s.cmp8(s.Reg.A, s.Mem.Read(s.addrAbsolute())); return 4 }
func (s *SPC700) cmpA_indX() uint64   { s.cmp8(s.Reg.A, s.Mem.Read(s.addrIndX())); return 3 }
func (s *SPC700) cmpA_dpIndX() uint64 { s.cmp8(s.Reg.A, s.Mem.Read(s.addrDPIndirectX())); return 6 }
func (s *SPC700) cmpA_imm() uint64    { s.cmp8(s.Reg.A, s.fetch8()); return 2 }
func (s *SPC700) cmpA_dX() uint64     { s.cmp8(s.Reg.A, s.Mem.Read(s.addrDirectX())); return 4 }
func (s *SPC700) cmpA_absX() uint64   { s.cmp8(s.Reg.A, s.Mem.Read(s.addrAbsoluteX())); return 5 }
func (s *SPC700) cmpA_absY() uint64   { s.cmp8(s.Reg.A, s.Mem.Read(s.addrAbsoluteY())); return 5 }
func (s *SPC700) cmpA_dpIndY() uint64 { s.cmp8(s.Reg.A, s.Mem.Read(s.addrDPIndirectY())); return 6 }
func (s *SPC700) cmpDPDP() uint64 {
	dst := s.addrDirect()
	src := s.addrDirect()
	s.cmp8(s.Mem.Read(dst), s.Mem.Read(src))
	return 6
}
func (s *SPC700) cmpImmDP() uint64 {
	imm := s.fetch8()
	addr := s.addrDirect()
	s.cmp8(s.Mem.Read(addr), imm)
	return 5
}
func (s *SPC700) cmpIndXIndY() uint64 {
	s.cmp8(s.Mem.Read(s.addrIndX()), s.Mem.Read(s.addrIndY()))
	return 5
}

// --- branches ------------------------------------------------------------

func (s *SPC700) branch(cond bool) uint64 {
	offset := int8(s.fetch8())
	if !cond {
		return 2
	}
	s.Reg.PC = uint16(int32(s.Reg.PC) + int32(offset))
	return 4
}

// --- 16-bit word ops (YA as accumulator, d/d+1 as little-endian pair) ----

func (s *SPC700) getYA() uint16 { return uint16(s.Reg.A) | uint16(s.Reg.Y)<<8 }
func (s *SPC700) setYA(v uint16) {
	s.Reg.A = uint8(v)
	s.Reg.Y = uint8(v >> 8)
}

func (s *SPC700) readWord(addr uint16) uint16 {
	lo := s.Mem.Read(addr)
	hi := s.Mem.Read(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}
func (s *SPC700) writeWord(addr uint16, v uint16) {
	s.Mem.Write(addr, uint8(v))
	s.Mem.Write(addr+1, uint8(v>>8))
}

// --- bit-addressed ops (!a.b encodes a 13-bit address + 3-bit index) ----

func (s *SPC700) fetchBitAddr() (addr uint16, bit uint8) {
	word := s.fetch16()
	return word & 0x1FFF, uint8(word >> 13)
}

// --- the 256-entry dispatch table ---------------------------------------

var opcodeTable [256]opcodeEntry

func init() {
	t := &opcodeTable

	t[0x00] = op("NOP", func(s *SPC700) uint64 { return 2 })
	t[0x01] = op("TCALL 0", tcall(0))
	t[0x11] = op("TCALL 1", tcall(1))
	t[0x21] = op("TCALL 2", tcall(2))
	t[0x31] = op("TCALL 3", tcall(3))
	t[0x41] = op("TCALL 4", tcall(4))
	t[0x51] = op("TCALL 5", tcall(5))
	t[0x61] = op("TCALL 6", tcall(6))
	t[0x71] = op("TCALL 7", tcall(7))
	t[0x81] = op("TCALL 8", tcall(8))
	t[0x91] = op("TCALL 9", tcall(9))
	t[0xA1] = op("TCALL 10", tcall(10))
	t[0xB1] = op("TCALL 11", tcall(11))
	t[0xC1] = op("TCALL 12", tcall(12))
	t[0xD1] = op("TCALL 13", tcall(13))
	t[0xE1] = op("TCALL 14", tcall(14))
	t[0xF1] = op("TCALL 15", tcall(15))

	for bit := uint8(0); bit < 8; bit++ {
		b := bit
		t[0x02+0x20*b] = op("SET1 d.bit", func(s *SPC700) uint64 {
			addr := s.addrDirect()
			s.Mem.Write(addr, s.Mem.Read(addr)|(1<<b))
			return 4
		})
		t[0x12+0x20*b] = op("CLR1 d.bit", func(s *SPC700) uint64 {
			addr := s.addrDirect()
			s.Mem.Write(addr, s.Mem.Read(addr)&^(1<<b))
			return 4
		})
		t[0x03+0x20*b] = op("BBS d.bit,r", func(s *SPC700) uint64 {
			addr := s.addrDirect()
			v := s.Mem.Read(addr)
			return s.branch(v&(1<<b) != 0)
		})
		t[0x13+0x20*b] = op("BBC d.bit,r", func(s *SPC700) uint64 {
			addr := s.addrDirect()
			v := s.Mem.Read(addr)
			return s.branch(v&(1<<b) == 0)
		})
	}

	// OR family (base row 0x0_/0x1_)
	t[0x04] = op("OR A,d", func(s *SPC700) uint64 { return s.binA_d(s.or8) })
	t[0x05] = op("OR A,!a", func(s *SPC700) uint64 { return s.binA_abs(s.or8) })
	t[0x06] = op("OR A,(X)", func(s *SPC700) uint64 { return s.binA_indX(s.or8) })
	t[0x07] = op("OR A,[d+X]", func(s *SPC700) uint64 { return s.binA_dpIndX(s.or8) })
	t[0x08] = op("OR A,#i", func(s *SPC700) uint64 { return s.binA_imm(s.or8) })
	t[0x09] = op("OR d,d", func(s *SPC700) uint64 { return s.binDPDP(s.or8) })
	t[0x14] = op("OR A,d+X", func(s *SPC700) uint64 { return s.binA_directX(s.or8) })
	t[0x15] = op("OR A,!a+X", func(s *SPC700) uint64 { return s.binA_absX(s.or8) })
	t[0x16] = op("OR A,!a+Y", func(s *SPC700) uint64 { return s.binA_absY(s.or8) })
	t[0x17] = op("OR A,[d]+Y", func(s *SPC700) uint64 { return s.binA_dpIndY(s.or8) })
	t[0x18] = op("OR d,#i", func(s *SPC700) uint64 { return s.binImmDP(s.or8) })
	t[0x19] = op("OR (X),(Y)", func(s *SPC700) uint64 { return s.binIndXIndY(s.or8) })

	// AND family (0x2_/0x3_)
	t[0x24] = op("AND A,d", func(s *SPC700) uint64 { return s.binA_d(s.and8) })
	t[0x25] = op("AND A,!a", func(s *SPC700) uint64 { return s.binA_abs(s.and8) })
	t[0x26] = op("AND A,(X)", func(s *SPC700) uint64 { return s.binA_indX(s.and8) })
	t[0x27] = op("AND A,[d+X]", func(s *SPC700) uint64 { return s.binA_dpIndX(s.and8) })
	t[0x28] = op("AND A,#i", func(s *SPC700) uint64 { return s.binA_imm(s.and8) })
	t[0x29] = op("AND d,d", func(s *SPC700) uint64 { return s.binDPDP(s.and8) })
	t[0x34] = op("AND A,d+X", func(s *SPC700) uint64 { return s.binA_directX(s.and8) })
	t[0x35] = op("AND A,!a+X", func(s *SPC700) uint64 { return s.binA_absX(s.and8) })
	t[0x36] = op("AND A,!a+Y", func(s *SPC700) uint64 { return s.binA_absY(s.and8) })
	t[0x37] = op("AND A,[d]+Y", func(s *SPC700) uint64 { return s.binA_dpIndY(s.and8) })
	t[0x38] = op("AND d,#i", func(s *SPC700) uint64 { return s.binImmDP(s.and8) })
	t[0x39] = op("AND (X),(Y)", func(s *SPC700) uint64 { return s.binIndXIndY(s.and8) })

	// EOR family (0x4_/0x5_)
	t[0x44] = op("EOR A,d", func(s *SPC700) uint64 { return s.binA_d(s.eor8) })
	t[0x45] = op("EOR A,!a", func(s *SPC700) uint64 { return s.binA_abs(s.eor8) })
	t[0x46] = op("EOR A,(X)", func(s *SPC700) uint64 { return s.binA_indX(s.eor8) })
	t[0x47] = op("EOR A,[d+X]", func(s *SPC700) uint64 { return s.binA_dpIndX(s.eor8) })
	t[0x48] = op("EOR A,#i", func(s *SPC700) uint64 { return s.binA_imm(s.eor8) })
	t[0x49] = op("EOR d,d", func(s *SPC700) uint64 { return s.binDPDP(s.eor8) })
	t[0x54] = op("EOR A,d+X", func(s *SPC700) uint64 { return s.binA_directX(s.eor8) })
	t[0x55] = op("EOR A,!a+X", func(s *SPC700) uint64 { return s.binA_absX(s.eor8) })
	t[0x56] = op("EOR A,!a+Y", func(s *SPC700) uint64 { return s.binA_absY(s.eor8) })
	t[0x57] = op("EOR A,[d]+Y", func(s *SPC700) uint64 { return s.binA_dpIndY(s.eor8) })
	t[0x58] = op("EOR d,#i", func(s *SPC700) uint64 { return s.binImmDP(s.eor8) })
	t[0x59] = op("EOR (X),(Y)", func(s *SPC700) uint64 { return s.binIndXIndY(s.eor8) })

	// CMP family (0x6_/0x7_)
	t[0x64] = op("CMP A,d", func(s *SPC700) uint64 { return s.cmpA_d() })
	t[0x65] = op("CMP A,!a", func(s *SPC700) uint64 { return s.cmpA_abs() })
	t[0x66] = op("CMP A,(X)", func(s *SPC700) uint64 { return s.cmpA_indX() })
	t[0x67] = op("CMP A,[d+X]", func(s *SPC700) uint64 { return s.cmpA_dpIndX() })
	t[0x68] = op("CMP A,#i", func(s *SPC700) uint64 { return s.cmpA_imm() })
	t[0x69] = op("CMP d,d", func(s *SPC700) uint64 { return s.cmpDPDP() })
	t[0x74] = op("CMP A,d+X", func(s *SPC700) uint64 { return s.cmpA_dX() })
	t[0x75] = op("CMP A,!a+X", func(s *SPC700) uint64 { return s.cmpA_absX() })
	t[0x76] = op("CMP A,!a+Y", func(s *SPC700) uint64 { return s.cmpA_absY() })
	t[0x77] = op("CMP A,[d]+Y", func(s *SPC700) uint64 { return s.cmpA_dpIndY() })
	t[0x78] = op("CMP d,#i", func(s *SPC700) uint64 { return s.cmpImmDP() })
	t[0x79] = op("CMP (X),(Y)", func(s *SPC700) uint64 { return s.cmpIndXIndY() })

	// ADC family (0x8_/0x9_)
	t[0x84] = op("ADC A,d", func(s *SPC700) uint64 { return s.binA_d(s.adc8) })
	t[0x85] = op("ADC A,!a", func(s *SPC700) uint64 { return s.binA_abs(s.adc8) })
	t[0x86] = op("ADC A,(X)", func(s *SPC700) uint64 { return s.binA_indX(s.adc8) })
	t[0x87] = op("ADC A,[d+X]", func(s *SPC700) uint64 { return s.binA_dpIndX(s.adc8) })
	t[0x88] = op("ADC A,#i", func(s *SPC700) uint64 { return s.binA_imm(s.adc8) })
	t[0x89] = op("ADC d,d", func(s *SPC700) uint64 { return s.binDPDP(s.adc8) })
	t[0x94] = op("ADC A,d+X", func(s *SPC700) uint64 { return s.binA_directX(s.adc8) })
	t[0x95] = op("ADC A,!a+X", func(s *SPC700) uint64 { return s.binA_absX(s.adc8) })
	t[0x96] = op("ADC A,!a+Y", func(s *SPC700) uint64 { return s.binA_absY(s.adc8) })
	t[0x97] = op("ADC A,[d]+Y", func(s *SPC700) uint64 { return s.binA_dpIndY(s.adc8) })
	t[0x98] = op("ADC d,#i", func(s *SPC700) uint64 { return s.binImmDP(s.adc8) })
	t[0x99] = op("ADC (X),(Y)", func(s *SPC700) uint64 { return s.binIndXIndY(s.adc8) })

	// SBC family (0xA_/0xB_)
	t[0xA4] = op("SBC A,d", func(s *SPC700) uint64 { return s.binA_d(s.sbc8) })
	t[0xA5] = op("SBC A,!a", func(s *SPC700) uint64 { return s.binA_abs(s.sbc8) })
	t[0xA6] = op("SBC A,(X)", func(s *SPC700) uint64 { return s.binA_indX(s.sbc8) })
	t[0xA7] = op("SBC A,[d+X]", func(s *SPC700) uint64 { return s.binA_dpIndX(s.sbc8) })
	t[0xA8] = op("SBC A,#i", func(s *SPC700) uint64 { return s.binA_imm(s.sbc8) })
	t[0xA9] = op("SBC d,d", func(s *SPC700) uint64 { return s.binDPDP(s.sbc8) })
	t[0xB4] = op("SBC A,d+X", func(s *SPC700) uint64 { return s.binA_directX(s.sbc8) })
	t[0xB5] = op("SBC A,!a+X", func(s *SPC700) uint64 { return s.binA_absX(s.sbc8) })
	t[0xB6] = op("SBC A,!a+Y", func(s *SPC700) uint64 { return s.binA_absY(s.sbc8) })
	t[0xB7] = op("SBC A,[d]+Y", func(s *SPC700) uint64 { return s.binA_dpIndY(s.sbc8) })
	t[0xB8] = op("SBC d,#i", func(s *SPC700) uint64 { return s.binImmDP(s.sbc8) })
	t[0xB9] = op("SBC (X),(Y)", func(s *SPC700) uint64 { return s.binIndXIndY(s.sbc8) })

	// MOV A,<src> (0xE_/0xF_) and MOV <dst>,A (0xC_/0xD_)
	t[0xE4] = op("MOV A,d", func(s *SPC700) uint64 { s.Reg.A = s.Mem.Read(s.addrDirect()); s.updateNZ(s.Reg.A); return 3 })
	t[0xE5] = op("MOV A,!a", func(s *SPC700) uint64 { s.Reg.A = s.Mem.Read(s.addrAbsolute()); s.updateNZ(s.Reg.A); return 4 })
	t[0xE6] = op("MOV A,(X)", func(s *SPC700) uint64 { s.Reg.A = s.Mem.Read(s.addrIndX()); s.updateNZ(s.Reg.A); return 3 })
	t[0xE7] = op("MOV A,[d+X]", func(s *SPC700) uint64 { s.Reg.A = s.Mem.Read(s.addrDPIndirectX()); s.updateNZ(s.Reg.A); return 6 })
	t[0xE8] = op("MOV A,#i", func(s *SPC700) uint64 { s.Reg.A = s.fetch8(); s.updateNZ(s.Reg.A); return 2 })
	t[0xF4] = op("MOV A,d+X", func(s *SPC700) uint64 { s.Reg.A = s.Mem.Read(s.addrDirectX()); s.updateNZ(s.Reg.A); return 4 })
	t[0xF5] = op("MOV A,!a+X", func(s *SPC700) uint64 { s.Reg.A = s.Mem.Read(s.addrAbsoluteX()); s.updateNZ(s.Reg.A); return 5 })
	t[0xF6] = op("MOV A,!a+Y", func(s *SPC700) uint64 { s.Reg.A = s.Mem.Read(s.addrAbsoluteY()); s.updateNZ(s.Reg.A); return 5 })
	t[0xF7] = op("MOV A,[d]+Y", func(s *SPC700) uint64 { s.Reg.A = s.Mem.Read(s.addrDPIndirectY()); s.updateNZ(s.Reg.A); return 6 })
	t[0xBF] = op("MOV A,(X)+", func(s *SPC700) uint64 {
		s.Reg.A = s.Mem.Read(s.dp(s.Reg.X))
		s.Reg.X++
		s.updateNZ(s.Reg.A)
		return 4
	})

	t[0xC4] = op("MOV d,A", func(s *SPC700) uint64 { s.Mem.Write(s.addrDirect(), s.Reg.A); return 4 })
	t[0xC5] = op("MOV !a,A", func(s *SPC700) uint64 { s.Mem.Write(s.addrAbsolute(), s.Reg.A); return 5 })
	t[0xC6] = op("MOV (X),A", func(s *SPC700) uint64 { s.Mem.Write(s.addrIndX(), s.Reg.A); return 4 })
	t[0xC7] = op("MOV [d+X],A", func(s *SPC700) uint64 { s.Mem.Write(s.addrDPIndirectX(), s.Reg.A); return 7 })
	t[0xD4] = op("MOV d+X,A", func(s *SPC700) uint64 { s.Mem.Write(s.addrDirectX(), s.Reg.A); return 5 })
	t[0xD5] = op("MOV !a+X,A", func(s *SPC700) uint64 { s.Mem.Write(s.addrAbsoluteX(), s.Reg.A); return 6 })
	t[0xD6] = op("MOV !a+Y,A", func(s *SPC700) uint64 { s.Mem.Write(s.addrAbsoluteY(), s.Reg.A); return 6 })
	t[0xD7] = op("MOV [d]+Y,A", func(s *SPC700) uint64 { s.Mem.Write(s.addrDPIndirectY(), s.Reg.A); return 7 })
	t[0xAF] = op("MOV (X)+,A", func(s *SPC700) uint64 {
		s.Mem.Write(s.dp(s.Reg.X), s.Reg.A)
		s.Reg.X++
		return 4
	})

	t[0x8F] = op("MOV d,#i", func(s *SPC700) uint64 {
		imm := s.fetch8()
		addr := s.addrDirect()
		s.Mem.Write(addr, imm)
		return 5
	})
	t[0xFA] = op("MOV dd,ds", func(s *SPC700) uint64 {
		dst := s.addrDirect()
		src := s.addrDirect()
		s.Mem.Write(dst, s.Mem.Read(src))
		return 5
	})

	t[0xCD] = op("MOV X,#i", func(s *SPC700) uint64 { s.Reg.X = s.fetch8(); s.updateNZ(s.Reg.X); return 2 })
	t[0xF8] = op("MOV X,d", func(s *SPC700) uint64 { s.Reg.X = s.Mem.Read(s.addrDirect()); s.updateNZ(s.Reg.X); return 3 })
	t[0xF9] = op("MOV X,d+Y", func(s *SPC700) uint64 { s.Reg.X = s.Mem.Read(s.addrDirectY()); s.updateNZ(s.Reg.X); return 4 })
	t[0xE9] = op("MOV X,!a", func(s *SPC700) uint64 { s.Reg.X = s.Mem.Read(s.addrAbsolute()); s.updateNZ(s.Reg.X); return 4 })
	t[0xC9] = op("MOV !a,X", func(s *SPC700) uint64 { s.Mem.Write(s.addrAbsolute(), s.Reg.X); return 5 })
	t[0xD8] = op("MOV d,X", func(s *SPC700) uint64 { s.Mem.Write(s.addrDirect(), s.Reg.X); return 4 })
	t[0xD9] = op("MOV d+Y,X", func(s *SPC700) uint64 { s.Mem.Write(s.addrDirectY(), s.Reg.X); return 5 })

	t[0x8D] = op("MOV Y,#i", func(s *SPC700) uint64 { s.Reg.Y = s.fetch8(); s.updateNZ(s.Reg.Y); return 2 })
	t[0xEB] = op("MOV Y,d", func(s *SPC700) uint64 { s.Reg.Y = s.Mem.Read(s.addrDirect()); s.updateNZ(s.Reg.Y); return 3 })
	t[0xFB] = op("MOV Y,d+X", func(s *SPC700) uint64 { s.Reg.Y = s.Mem.Read(s.addrDirectX()); s.updateNZ(s.Reg.Y); return 4 })
	t[0xEC] = op("MOV Y,!a", func(s *SPC700) uint64 { s.Reg.Y = s.Mem.Read(s.addrAbsolute()); s.updateNZ(s.Reg.Y); return 4 })
	t[0xCB] = op("MOV d,Y", func(s *SPC700) uint64 { s.Mem.Write(s.addrDirect(), s.Reg.Y); return 4 })
	t[0xCC] = op("MOV !a,Y", func(s *SPC700) uint64 { s.Mem.Write(s.addrAbsolute(), s.Reg.Y); return 5 })
	t[0xDB] = op("MOV d+X,Y", func(s *SPC700) uint64 { s.Mem.Write(s.addrDirectX(), s.Reg.Y); return 5 })

	t[0x5D] = op("MOV X,A", func(s *SPC700) uint64 { s.Reg.X = s.Reg.A; s.updateNZ(s.Reg.X); return 2 })
	t[0x7D] = op("MOV A,X", func(s *SPC700) uint64 { s.Reg.A = s.Reg.X; s.updateNZ(s.Reg.A); return 2 })
	t[0xDD] = op("MOV A,Y", func(s *SPC700) uint64 { s.Reg.A = s.Reg.Y; s.updateNZ(s.Reg.A); return 2 })
	t[0xFD] = op("MOV Y,A", func(s *SPC700) uint64 { s.Reg.Y = s.Reg.A; s.updateNZ(s.Reg.Y); return 2 })
	t[0x9D] = op("MOV X,SP", func(s *SPC700) uint64 { s.Reg.X = s.Reg.SP; s.updateNZ(s.Reg.X); return 2 })
	t[0xBD] = op("MOV SP,X", func(s *SPC700) uint64 { s.Reg.SP = s.Reg.X; return 2 })

	// inc/dec of registers
	t[0xBC] = op("INC A", func(s *SPC700) uint64 { s.Reg.A = s.inc8(s.Reg.A); return 2 })
	t[0x9C] = op("DEC A", func(s *SPC700) uint64 { s.Reg.A = s.dec8(s.Reg.A); return 2 })
	t[0x3D] = op("INC X", func(s *SPC700) uint64 { s.Reg.X = s.inc8(s.Reg.X); return 2 })
	t[0x1D] = op("DEC X", func(s *SPC700) uint64 { s.Reg.X = s.dec8(s.Reg.X); return 2 })
	t[0xFC] = op("INC Y", func(s *SPC700) uint64 { s.Reg.Y = s.inc8(s.Reg.Y); return 2 })
	t[0xDC] = op("DEC Y", func(s *SPC700) uint64 { s.Reg.Y = s.dec8(s.Reg.Y); return 2 })
	t[0xAB] = op("INC d", func(s *SPC700) uint64 { a := s.addrDirect(); s.Mem.Write(a, s.inc8(s.Mem.Read(a))); return 4 })
	t[0x8B] = op("DEC d", func(s *SPC700) uint64 { a := s.addrDirect(); s.Mem.Write(a, s.dec8(s.Mem.Read(a))); return 4 })
	t[0xBB] = op("INC d+X", func(s *SPC700) uint64 { a := s.addrDirectX(); s.Mem.Write(a, s.inc8(s.Mem.Read(a))); return 5 })
	t[0x9B] = op("DEC d+X", func(s *SPC700) uint64 { a := s.addrDirectX(); s.Mem.Write(a, s.dec8(s.Mem.Read(a))); return 5 })
	t[0xAC] = op("INC !a", func(s *SPC700) uint64 { a := s.addrAbsolute(); s.Mem.Write(a, s.inc8(s.Mem.Read(a))); return 5 })
	t[0x8C] = op("DEC !a", func(s *SPC700) uint64 { a := s.addrAbsolute(); s.Mem.Write(a, s.dec8(s.Mem.Read(a))); return 5 })

	// shifts/rotates
	t[0x1C] = op("ASL A", func(s *SPC700) uint64 { s.Reg.A = s.asl8(s.Reg.A); return 2 })
	t[0x0B] = op("ASL d", func(s *SPC700) uint64 { a := s.addrDirect(); s.Mem.Write(a, s.asl8(s.Mem.Read(a))); return 4 })
	t[0x1B] = op("ASL d+X", func(s *SPC700) uint64 { a := s.addrDirectX(); s.Mem.Write(a, s.asl8(s.Mem.Read(a))); return 5 })
	t[0x0C] = op("ASL !a", func(s *SPC700) uint64 { a := s.addrAbsolute(); s.Mem.Write(a, s.asl8(s.Mem.Read(a))); return 5 })
	t[0x5C] = op("LSR A", func(s *SPC700) uint64 { s.Reg.A = s.lsr8(s.Reg.A); return 2 })
	t[0x4B] = op("LSR d", func(s *SPC700) uint64 { a := s.addrDirect(); s.Mem.Write(a, s.lsr8(s.Mem.Read(a))); return 4 })
	t[0x5B] = op("LSR d+X", func(s *SPC700) uint64 { a := s.addrDirectX(); s.Mem.Write(a, s.lsr8(s.Mem.Read(a))); return 5 })
	t[0x4C] = op("LSR !a", func(s *SPC700) uint64 { a := s.addrAbsolute(); s.Mem.Write(a, s.lsr8(s.Mem.Read(a))); return 5 })
	t[0x3C] = op("ROL A", func(s *SPC700) uint64 { s.Reg.A = s.rol8(s.Reg.A); return 2 })
	t[0x2B] = op("ROL d", func(s *SPC700) uint64 { a := s.addrDirect(); s.Mem.Write(a, s.rol8(s.Mem.Read(a))); return 4 })
	t[0x3B] = op("ROL d+X", func(s *SPC700) uint64 { a := s.addrDirectX(); s.Mem.Write(a, s.rol8(s.Mem.Read(a))); return 5 })
	t[0x2C] = op("ROL !a", func(s *SPC700) uint64 { a := s.addrAbsolute(); s.Mem.Write(a, s.rol8(s.Mem.Read(a))); return 5 })
	t[0x7C] = op("ROR A", func(s *SPC700) uint64 { s.Reg.A = s.ror8(s.Reg.A); return 2 })
	t[0x6B] = op("ROR d", func(s *SPC700) uint64 { a := s.addrDirect(); s.Mem.Write(a, s.ror8(s.Mem.Read(a))); return 4 })
	t[0x7B] = op("ROR d+X", func(s *SPC700) uint64 { a := s.addrDirectX(); s.Mem.Write(a, s.ror8(s.Mem.Read(a))); return 5 })
	t[0x6C] = op("ROR !a", func(s *SPC700) uint64 { a := s.addrAbsolute(); s.Mem.Write(a, s.ror8(s.Mem.Read(a))); return 5 })

	// branches
	t[0x10] = op("BPL r", func(s *SPC700) uint64 { return s.branch(!s.GetFlag(FlagN)) })
	t[0x30] = op("BMI r", func(s *SPC700) uint64 { return s.branch(s.GetFlag(FlagN)) })
	t[0x50] = op("BVC r", func(s *SPC700) uint64 { return s.branch(!s.GetFlag(FlagV)) })
	t[0x70] = op("BVS r", func(s *SPC700) uint64 { return s.branch(s.GetFlag(FlagV)) })
	t[0x90] = op("BCC r", func(s *SPC700) uint64 { return s.branch(!s.GetFlag(FlagC)) })
	t[0xB0] = op("BCS r", func(s *SPC700) uint64 { return s.branch(s.GetFlag(FlagC)) })
	t[0xD0] = op("BNE r", func(s *SPC700) uint64 { return s.branch(!s.GetFlag(FlagZ)) })
	t[0xF0] = op("BEQ r", func(s *SPC700) uint64 { return s.branch(s.GetFlag(FlagZ)) })
	t[0x2F] = op("BRA r", func(s *SPC700) uint64 { return s.branch(true) })

	t[0x2E] = op("CBNE d,r", func(s *SPC700) uint64 {
		addr := s.addrDirect()
		v := s.Mem.Read(addr)
		return s.branch(s.Reg.A != v)
	})
	t[0xDE] = op("CBNE d+X,r", func(s *SPC700) uint64 {
		addr := s.addrDirectX()
		v := s.Mem.Read(addr)
		return s.branch(s.Reg.A != v)
	})
	t[0x6E] = op("DBNZ d,r", func(s *SPC700) uint64 {
		addr := s.addrDirect()
		v := s.dec8(s.Mem.Read(addr))
		s.Mem.Write(addr, v)
		return s.branch(v != 0)
	})
	t[0xFE] = op("DBNZ Y,r", func(s *SPC700) uint64 {
		s.Reg.Y--
		return s.branch(s.Reg.Y != 0)
	})

	// control flow
	t[0x5F] = op("JMP !a", func(s *SPC700) uint64 { s.Reg.PC = s.addrAbsolute(); return 3 })
	t[0x1F] = op("JMP [!a+X]", func(s *SPC700) uint64 {
		ptr := s.addrAbsolute() + uint16(s.Reg.X)
		s.Reg.PC = s.readWord(ptr)
		return 6
	})
	t[0x3F] = op("CALL !a", func(s *SPC700) uint64 {
		target := s.addrAbsolute()
		s.push16(s.Reg.PC)
		s.Reg.PC = target
		return 8
	})
	t[0x4F] = op("PCALL u", func(s *SPC700) uint64 {
		u := s.fetch8()
		s.push16(s.Reg.PC)
		s.Reg.PC = 0xFF00 | uint16(u)
		return 6
	})
	t[0x6F] = op("RET", func(s *SPC700) uint64 { s.Reg.PC = s.pop16(); return 5 })
	t[0x7F] = op("RETI", func(s *SPC700) uint64 {
		s.Reg.PSW = s.pop8()
		s.Reg.PC = s.pop16()
		return 6
	})
	t[0x0F] = op("BRK", func(s *SPC700) uint64 {
		s.push16(s.Reg.PC)
		s.push8(s.Reg.PSW)
		s.SetFlag(FlagB, true)
		s.SetFlag(FlagI, false)
		s.Reg.PC = s.readWord(0xFFDE)
		return 8
	})

	// stack
	t[0x2D] = op("PUSH A", func(s *SPC700) uint64 { s.push8(s.Reg.A); return 4 })
	t[0x4D] = op("PUSH X", func(s *SPC700) uint64 { s.push8(s.Reg.X); return 4 })
	t[0x6D] = op("PUSH Y", func(s *SPC700) uint64 { s.push8(s.Reg.Y); return 4 })
	t[0x0D] = op("PUSH PSW", func(s *SPC700) uint64 { s.push8(s.Reg.PSW); return 4 })
	t[0xAE] = op("POP A", func(s *SPC700) uint64 { s.Reg.A = s.pop8(); return 4 })
	t[0xCE] = op("POP X", func(s *SPC700) uint64 { s.Reg.X = s.pop8(); return 4 })
	t[0xEE] = op("POP Y", func(s *SPC700) uint64 { s.Reg.Y = s.pop8(); return 4 })
	t[0x8E] = op("POP PSW", func(s *SPC700) uint64 { s.Reg.PSW = s.pop8(); return 4 })

	// flag ops
	t[0x60] = op("CLRC", func(s *SPC700) uint64 { s.SetFlag(FlagC, false); return 2 })
	t[0x80] = op("SETC", func(s *SPC700) uint64 { s.SetFlag(FlagC, true); return 2 })
	t[0xED] = op("NOTC", func(s *SPC700) uint64 { s.SetFlag(FlagC, !s.GetFlag(FlagC)); return 3 })
	t[0x20] = op("CLRP", func(s *SPC700) uint64 { s.SetFlag(FlagP, false); return 2 })
	t[0x40] = op("SETP", func(s *SPC700) uint64 { s.SetFlag(FlagP, true); return 2 })
	t[0xE0] = op("CLRV", func(s *SPC700) uint64 { s.SetFlag(FlagV, false); s.SetFlag(FlagH, false); return 2 })
	t[0xA0] = op("EI", func(s *SPC700) uint64 { s.SetFlag(FlagI, true); return 3 })
	t[0xC0] = op("DI", func(s *SPC700) uint64 { s.SetFlag(FlagI, false); return 3 })

	// bit-addressed ops against arbitrary !a.bit memory locations
	t[0x0A] = op("OR1 C,m.b", func(s *SPC700) uint64 {
		addr, bit := s.fetchBitAddr()
		bitVal := s.Mem.Read(addr)&(1<<bit) != 0
		s.SetFlag(FlagC, s.GetFlag(FlagC) || bitVal)
		return 5
	})
	t[0x2A] = op("OR1 C,/m.b", func(s *SPC700) uint64 {
		addr, bit := s.fetchBitAddr()
		bitVal := s.Mem.Read(addr)&(1<<bit) == 0
		s.SetFlag(FlagC, s.GetFlag(FlagC) || bitVal)
		return 5
	})
	t[0x4A] = op("AND1 C,m.b", func(s *SPC700) uint64 {
		addr, bit := s.fetchBitAddr()
		bitVal := s.Mem.Read(addr)&(1<<bit) != 0
		s.SetFlag(FlagC, s.GetFlag(FlagC) && bitVal)
		return 4
	})
	t[0x6A] = op("AND1 C,/m.b", func(s *SPC700) uint64 {
		addr, bit := s.fetchBitAddr()
		bitVal := s.Mem.Read(addr)&(1<<bit) == 0
		s.SetFlag(FlagC, s.GetFlag(FlagC) && bitVal)
		return 4
	})
	t[0x8A] = op("EOR1 C,m.b", func(s *SPC700) uint64 {
		addr, bit := s.fetchBitAddr()
		bitVal := s.Mem.Read(addr)&(1<<bit) != 0
		s.SetFlag(FlagC, s.GetFlag(FlagC) != bitVal)
		return 5
	})
	t[0xAA] = op("MOV1 C,m.b", func(s *SPC700) uint64 {
		addr, bit := s.fetchBitAddr()
		s.SetFlag(FlagC, s.Mem.Read(addr)&(1<<bit) != 0)
		return 4
	})
	t[0xCA] = op("MOV1 m.b,C", func(s *SPC700) uint64 {
		addr, bit := s.fetchBitAddr()
		v := s.Mem.Read(addr)
		if s.GetFlag(FlagC) {
			v |= 1 << bit
		} else {
			v &^= 1 << bit
		}
		s.Mem.Write(addr, v)
		return 6
	})
	t[0xEA] = op("NOT1 m.b", func(s *SPC700) uint64 {
		addr, bit := s.fetchBitAddr()
		s.Mem.Write(addr, s.Mem.Read(addr)^(1<<bit))
		return 5
	})
	t[0x0E] = op("TSET1 !a", func(s *SPC700) uint64 {
		addr := s.addrAbsolute()
		v := s.Mem.Read(addr)
		s.updateNZ(s.Reg.A - v)
		s.Mem.Write(addr, v|s.Reg.A)
		return 6
	})
	t[0x4E] = op("TCLR1 !a", func(s *SPC700) uint64 {
		addr := s.addrAbsolute()
		v := s.Mem.Read(addr)
		s.updateNZ(s.Reg.A - v)
		s.Mem.Write(addr, v&^s.Reg.A)
		return 6
	})

	// 16-bit (YA) word ops against a direct-page pointer
	t[0xBA] = op("MOVW YA,d", func(s *SPC700) uint64 {
		addr := s.addrDirect()
		s.setYA(s.readWord(addr))
		s.SetFlag(FlagZ, s.getYA() == 0)
		s.SetFlag(FlagN, s.getYA()&0x8000 != 0)
		return 5
	})
	t[0xDA] = op("MOVW d,YA", func(s *SPC700) uint64 {
		addr := s.addrDirect()
		s.writeWord(addr, s.getYA())
		return 5
	})
	t[0x3A] = op("INCW d", func(s *SPC700) uint64 {
		addr := s.addrDirect()
		v := s.readWord(addr) + 1
		s.writeWord(addr, v)
		s.SetFlag(FlagZ, v == 0)
		s.SetFlag(FlagN, v&0x8000 != 0)
		return 6
	})
	t[0x1A] = op("DECW d", func(s *SPC700) uint64 {
		addr := s.addrDirect()
		v := s.readWord(addr) - 1
		s.writeWord(addr, v)
		s.SetFlag(FlagZ, v == 0)
		s.SetFlag(FlagN, v&0x8000 != 0)
		return 6
	})
	t[0x7A] = op("ADDW YA,d", func(s *SPC700) uint64 {
		addr := s.addrDirect()
		a := s.getYA()
		b := s.readWord(addr)
		sum := uint32(a) + uint32(b)
		s.SetFlag(FlagC, sum > 0xFFFF)
		s.SetFlag(FlagV, (a^uint16(sum))&(b^uint16(sum))&0x8000 != 0)
		s.setYA(uint16(sum))
		s.SetFlag(FlagZ, uint16(sum) == 0)
		s.SetFlag(FlagN, uint16(sum)&0x8000 != 0)
		return 5
	})
	t[0x9A] = op("SUBW YA,d", func(s *SPC700) uint64 {
		addr := s.addrDirect()
		a := s.getYA()
		b := s.readWord(addr)
		diff := uint32(a) - uint32(b)
		s.SetFlag(FlagC, a >= b)
		s.SetFlag(FlagV, (a^b)&(a^uint16(diff))&0x8000 != 0)
		s.setYA(uint16(diff))
		s.SetFlag(FlagZ, uint16(diff) == 0)
		s.SetFlag(FlagN, uint16(diff)&0x8000 != 0)
		return 5
	})
	t[0x5A] = op("CMPW YA,d", func(s *SPC700) uint64 {
		addr := s.addrDirect()
		a := s.getYA()
		b := s.readWord(addr)
		diff := a - b
		s.SetFlag(FlagC, a >= b)
		s.SetFlag(FlagZ, diff == 0)
		s.SetFlag(FlagN, diff&0x8000 != 0)
		return 4
	})

	// X/Y compare-immediate and compare-absolute
	t[0xC8] = op("CMP X,#i", func(s *SPC700) uint64 { s.cmp8(s.Reg.X, s.fetch8()); return 2 })
	t[0x3E] = op("CMP X,d", func(s *SPC700) uint64 { s.cmp8(s.Reg.X, s.Mem.Read(s.addrDirect())); return 3 })
	t[0x1E] = op("CMP X,!a", func(s *SPC700) uint64 { s.cmp8(s.Reg.X, s.Mem.Read(s.addrAbsolute())); return 4 })
	t[0xAD] = op("CMP Y,#i", func(s *SPC700) uint64 { s.cmp8(s.Reg.Y, s.fetch8()); return 2 })
	t[0x7E] = op("CMP Y,d", func(s *SPC700) uint64 { s.cmp8(s.Reg.Y, s.Mem.Read(s.addrDirect())); return 3 })
	t[0x5E] = op("CMP Y,!a", func(s *SPC700) uint64 { s.cmp8(s.Reg.Y, s.Mem.Read(s.addrAbsolute())); return 4 })

	// multiply/divide/decimal/misc ALU
	t[0xCF] = op("MUL YA", func(s *SPC700) uint64 {
		product := uint16(s.Reg.Y) * uint16(s.Reg.A)
		s.Reg.A = uint8(product)
		s.Reg.Y = uint8(product >> 8)
		s.updateNZ(s.Reg.Y)
		return 9
	})
	t[0x9E] = op("DIV YA,X", func(s *SPC700) uint64 {
		ya := s.getYA()
		if s.Reg.X == 0 {
			s.Reg.A = 0xFF
			s.Reg.Y = uint8(ya >> 8)
			s.SetFlag(FlagV, true)
			s.SetFlag(FlagH, true)
			s.updateNZ(s.Reg.A)
			return 12
		}
		quotient := ya / uint16(s.Reg.X)
		remainder := ya % uint16(s.Reg.X)
		s.SetFlag(FlagV, quotient > 0xFF)
		s.Reg.A = uint8(quotient)
		s.Reg.Y = uint8(remainder)
		s.updateNZ(s.Reg.A)
		return 12
	})
	t[0xDF] = op("DAA A", func(s *SPC700) uint64 {
		if s.GetFlag(FlagC) || s.Reg.A > 0x99 {
			s.Reg.A += 0x60
			s.SetFlag(FlagC, true)
		}
		if s.GetFlag(FlagH) || s.Reg.A&0x0F > 0x09 {
			s.Reg.A += 0x06
		}
		s.updateNZ(s.Reg.A)
		return 3
	})
	t[0xBE] = op("DAS A", func(s *SPC700) uint64 {
		if !s.GetFlag(FlagC) || s.Reg.A > 0x99 {
			s.Reg.A -= 0x60
			s.SetFlag(FlagC, false)
		}
		if !s.GetFlag(FlagH) || s.Reg.A&0x0F > 0x09 {
			s.Reg.A -= 0x06
		}
		s.updateNZ(s.Reg.A)
		return 3
	})
	t[0x9F] = op("XCN A", func(s *SPC700) uint64 {
		s.Reg.A = s.Reg.A<<4 | s.Reg.A>>4
		s.updateNZ(s.Reg.A)
		return 5
	})

	t[0xEF] = op("SLEEP", func(s *SPC700) uint64 { s.sleeping = true; return 3 })
	t[0xFF] = op("STOP", func(s *SPC700) uint64 { s.stopped = true; return 3 })
}

func tcall(n uint8) opFunc {
	return func(s *SPC700) uint64 {
		vector := uint16(0xFFDE) - uint16(n)*2
		s.push16(s.Reg.PC)
		s.Reg.PC = s.readWord(vector)
		return 8
	}
}
