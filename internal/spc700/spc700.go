// Package spc700 emulates the Sony SPC700, the 8-bit sound coprocessor
// that drives the S-DSP. It boots from a 64-byte IPL ROM mapped at
// $FFC0-$FFFF, talks to the main CPU through four mailbox ports at
// $F4-$F7, and otherwise runs against a flat 64KiB address space shared
// with the DSP's sample RAM.
package spc700

// PSW flag bits.
const (
	FlagN = 1 << 7 // negative
	FlagV = 1 << 6 // overflow
	FlagP = 1 << 5 // direct page selector (0 = $00xx, 1 = $01xx)
	FlagB = 1 << 4 // break
	FlagH = 1 << 3 // half carry
	FlagI = 1 << 2 // interrupt enable (unused by real hardware, kept for parity)
	FlagZ = 1 << 1
	FlagC = 1 << 0
)

// Memory is the bus the SPC700 executes against: 64KiB flat, zero page
// at $00xx/$01xx depending on the P flag, IPL ROM overlaying the top 64
// bytes until disabled via the $F1 control register.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// Registers holds the SPC700's programmer-visible state.
type Registers struct {
	A, X, Y uint8
	SP      uint8
	PSW     uint8
	PC      uint16
}

// iplROM is the stock Sony boot ROM mapped at $FFC0-$FFFF. It zeroes
// page 0, waits for the main CPU to write a start signal to the $2140
// mailbox, then relays the bootstrap program written through the
// mailbox ports into RAM and jumps to it. Every SNES unit ships this
// exact 64 bytes in mask ROM; software cores reproduce it verbatim so
// games that rely on its boot handshake behave identically to hardware.
var iplROM = [64]uint8{
	0xCD, 0xEF, 0xBD, 0xE8, 0x00, 0xC6, 0x1D, 0xD0,
	0xFC, 0x8F, 0xAA, 0xF4, 0x8F, 0xBB, 0xF5, 0x78,
	0xCC, 0xF4, 0xD0, 0xFB, 0x2F, 0x19, 0xEB, 0xF4,
	0xD0, 0xFC, 0x7E, 0xF4, 0xD0, 0x0B, 0xE4, 0xF5,
	0xCB, 0xF4, 0xD7, 0x00, 0xFC, 0xD0, 0xF3, 0xAB,
	0x01, 0x10, 0xEF, 0x7E, 0xF4, 0x10, 0xEB, 0xBA,
	0xF6, 0xDA, 0x00, 0xBA, 0xF4, 0xC4, 0xF4, 0xDD,
	0x5D, 0xD0, 0xDC, 0x1F, 0x00, 0x00, 0xC0, 0xFF,
}

// IPLROM returns a copy of the 64-byte boot ROM, for packages (like the
// APU glue) that map it directly into the shared sound RAM image.
func IPLROM() [64]uint8 { return iplROM }

// SPC700 is the sound CPU core. It reads/writes through the Memory
// interface rather than owning RAM itself, so the owning Apu can
// interpose the IPL ROM overlay and the DSP register window at
// $F2/$F3.
type SPC700 struct {
	Reg    Registers
	Mem    Memory
	Cycles uint64

	stopped bool
	sleeping bool
}

// NewSPC700 creates a core wired to the given memory.
func NewSPC700(mem Memory) *SPC700 {
	return &SPC700{Mem: mem}
}

// Reset puts the core in its post-power-on state: PC loaded from the
// reset vector at $FFFE (inside the IPL ROM), SP at $EF (the value the
// IPL sets before handing off), PSW = $02 (only the zero flag set).
func (s *SPC700) Reset() {
	s.Reg.A, s.Reg.X, s.Reg.Y = 0, 0, 0
	s.Reg.SP = 0xEF
	s.Reg.PSW = 0x02
	s.stopped = false
	s.sleeping = false
	lo := s.Mem.Read(0xFFFE)
	hi := s.Mem.Read(0xFFFF)
	s.Reg.PC = uint16(lo) | uint16(hi)<<8
}

func (s *SPC700) GetFlag(flag uint8) bool { return s.Reg.PSW&flag != 0 }

func (s *SPC700) SetFlag(flag uint8, set bool) {
	if set {
		s.Reg.PSW |= flag
	} else {
		s.Reg.PSW &^= flag
	}
}

func (s *SPC700) updateNZ(v uint8) {
	s.SetFlag(FlagZ, v == 0)
	s.SetFlag(FlagN, v&0x80 != 0)
}

func (s *SPC700) fetch8() uint8 {
	v := s.Mem.Read(s.Reg.PC)
	s.Reg.PC++
	return v
}

func (s *SPC700) fetch16() uint16 {
	lo := s.fetch8()
	hi := s.fetch8()
	return uint16(lo) | uint16(hi)<<8
}

func (s *SPC700) push8(v uint8) {
	s.Mem.Write(0x0100|uint16(s.Reg.SP), v)
	s.Reg.SP--
}

func (s *SPC700) pop8() uint8 {
	s.Reg.SP++
	return s.Mem.Read(0x0100 | uint16(s.Reg.SP))
}

func (s *SPC700) push16(v uint16) {
	s.push8(uint8(v >> 8))
	s.push8(uint8(v))
}

func (s *SPC700) pop16() uint16 {
	lo := s.pop8()
	hi := s.pop8()
	return uint16(lo) | uint16(hi)<<8
}

// dp returns the full address of a direct-page offset, honoring the P
// flag's choice between page $00 and page $01.
func (s *SPC700) dp(offset uint8) uint16 {
	base := uint16(0)
	if s.GetFlag(FlagP) {
		base = 0x0100
	}
	return base + uint16(offset)
}

// Step executes one instruction and returns the cycles it consumed.
func (s *SPC700) Step() (uint64, error) {
	if s.stopped {
		return 2, nil
	}
	if s.sleeping {
		return 2, nil
	}
	opcode := s.fetch8()
	entry := opcodeTable[opcode]
	if entry.Exec == nil {
		// Undocumented/unimplemented opcode: behaves as a 2-cycle NOP
		// rather than panicking, matching how real silicon treats the
		// handful of unofficial SPC700 opcodes no game relies on.
		s.Cycles += 2
		return 2, nil
	}
	cycles := entry.Exec(s)
	s.Cycles += cycles
	return cycles, nil
}

// StepCycles runs the core until at least the given number of cycles
// have been consumed, for clock-driven operation.
func (s *SPC700) StepCycles(cycles uint64) error {
	target := s.Cycles + cycles
	for s.Cycles < target {
		if _, err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Stopped reports whether STOP has halted the core permanently.
func (s *SPC700) Stopped() bool { return s.stopped }

// Sleeping reports whether SLEEP has paused the core (only a reset
// wakes it, same as STOP on this chip).
func (s *SPC700) Sleeping() bool { return s.sleeping }
