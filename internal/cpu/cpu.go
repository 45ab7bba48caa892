// Package cpu implements the 65C816 CPU at the heart of the SNES: the
// 16-bit register file, the processor status flags (including the E
// emulation-mode flag that sits outside the P register itself), all
// addressing modes, and the interrupt/reset sequencing that drives them.
package cpu

import "fmt"

// Processor status flag bits (the P register).
const (
	FlagC = 1 << 0 // Carry
	FlagZ = 1 << 1 // Zero
	FlagI = 1 << 2 // IRQ disable
	FlagD = 1 << 3 // Decimal mode
	FlagX = 1 << 4 // Index register width (native mode) / B break flag (emulation mode)
	FlagM = 1 << 5 // Accumulator/memory width (native mode)
	FlagV = 1 << 6 // Overflow
	FlagN = 1 << 7 // Negative
)

// Interrupt vectors, native mode (bank 0).
const (
	VectorCOPNative   = 0xFFE4
	VectorBRKNative   = 0xFFE6
	VectorABORTNative = 0xFFE8
	VectorNMINative   = 0xFFEA
	VectorIRQNative   = 0xFFEE

	// Emulation-mode vectors reuse the 6502 layout.
	VectorCOPEmulation   = 0xFFF4
	VectorABORTEmulation = 0xFFF8
	VectorNMIEmulation   = 0xFFFA
	VectorRESET          = 0xFFFC
	VectorIRQEmulation   = 0xFFFE
)

// MemoryInterface is the bus contract the CPU drives. internal/memory.Bus
// satisfies it, but tests can supply a lighter fake.
type MemoryInterface interface {
	Read8(bank uint8, offset uint16) uint8
	Write8(bank uint8, offset uint16, value uint8)
}

// LoggerInterface lets the CPU emit structured trace entries without
// importing the debug package's concrete Logger into every test.
type LoggerInterface interface {
	LogCPU(message string, data map[string]interface{})
}

// Registers holds the 65C816 register file. A, X and Y are always stored
// as 16-bit values; the M/X status flags (and the E emulation flag) decide
// how much of each is live at any moment.
type Registers struct {
	A uint16
	X uint16
	Y uint16
	D uint16 // Direct page register
	S uint16 // Stack pointer
	P uint8  // Processor status
	DBR uint8
	PBR uint8
	PC  uint16
	E   bool // Emulation mode (not part of P; set/cleared by XCE)
}

// CPU is one 65C816 core. It owns no state about PPU/APU timing; the
// clock package is responsible for calling Step in cycle-sized slices.
type CPU struct {
	Reg Registers
	Mem MemoryInterface
	Log LoggerInterface

	Cycles uint64

	nmiPending bool
	irqLine    bool // level-sensitive; held by whoever asserts IRQ (PPU HVBJOY etc.)
	stopped    bool // STP executed
	waiting    bool // WAI executed, waiting for interrupt

	// intDelay defers interrupt recognition by one instruction after
	// CLI/SEI/PLP/REP/SEP touch the I flag, matching real 65816 pipeline
	// behavior where the flag change isn't visible to interrupt sampling
	// until the following opcode fetch.
	intDelay int
}

// NewCPU creates a CPU wired to the given bus and optional logger. The
// register file starts zeroed; callers must call Reset to bring up the
// reset vector once a cartridge is mapped.
func NewCPU(mem MemoryInterface, log LoggerInterface) *CPU {
	return &CPU{Mem: mem, Log: log}
}

// Reset performs a hardware reset: emulation mode forced on, interrupts
// masked, decimal mode cleared, stack pointer forced to $01FF, and PC
// loaded from the reset vector at $00:FFFC.
func (c *CPU) Reset() {
	c.Reg.E = true
	c.Reg.P = FlagI | FlagX | FlagM
	c.Reg.D = 0
	c.Reg.DBR = 0
	c.Reg.PBR = 0
	c.Reg.S = 0x01FF
	c.Reg.A, c.Reg.X, c.Reg.Y = 0, 0, 0
	c.Cycles = 0
	c.nmiPending = false
	c.irqLine = false
	c.stopped = false
	c.waiting = false
	c.intDelay = 0

	low := c.Mem.Read8(0, VectorRESET)
	high := c.Mem.Read8(0, VectorRESET+1)
	c.Reg.PC = uint16(low) | uint16(high)<<8
}

// SetEntryPoint overrides PC/PBR directly, used by the render service to
// jump straight into an object handler instead of booting through reset.
func (c *CPU) SetEntryPoint(bank uint8, offset uint16) {
	c.Reg.PBR = bank
	c.Reg.PC = offset
}

// Flag helpers.

func (c *CPU) GetFlag(mask uint8) bool { return c.Reg.P&mask != 0 }

func (c *CPU) SetFlag(mask uint8, set bool) {
	if set {
		c.Reg.P |= mask
	} else {
		c.Reg.P &^= mask
	}
}

// accumulatorIs8Bit reports whether A is currently treated as 8 bits:
// true in emulation mode, or in native mode when the M flag is set.
func (c *CPU) accumulatorIs8Bit() bool { return c.Reg.E || c.GetFlag(FlagM) }

// indexIs8Bit reports whether X/Y are currently treated as 8 bits.
func (c *CPU) indexIs8Bit() bool { return c.Reg.E || c.GetFlag(FlagX) }

// GetA returns the accumulator masked to its current width.
func (c *CPU) GetA() uint16 {
	if c.accumulatorIs8Bit() {
		return c.Reg.A & 0xFF
	}
	return c.Reg.A
}

// SetA stores into the accumulator, preserving the hidden high byte when
// 8-bit (matching the 65816's "B" half of the accumulator).
func (c *CPU) SetA(v uint16) {
	if c.accumulatorIs8Bit() {
		c.Reg.A = (c.Reg.A & 0xFF00) | (v & 0xFF)
	} else {
		c.Reg.A = v
	}
}

// GetX/GetY/SetX/SetY: unlike A, the 65816 clears the high byte of X/Y
// entirely when switching to 8-bit index mode, so there is no hidden
// high byte to preserve.
func (c *CPU) GetX() uint16 {
	if c.indexIs8Bit() {
		return c.Reg.X & 0xFF
	}
	return c.Reg.X
}

func (c *CPU) SetX(v uint16) {
	if c.indexIs8Bit() {
		c.Reg.X = v & 0xFF
	} else {
		c.Reg.X = v
	}
}

func (c *CPU) GetY() uint16 {
	if c.indexIs8Bit() {
		return c.Reg.Y & 0xFF
	}
	return c.Reg.Y
}

func (c *CPU) SetY(v uint16) {
	if c.indexIs8Bit() {
		c.Reg.Y = v & 0xFF
	} else {
		c.Reg.Y = v
	}
}

// updateNZ8/16 set the N and Z flags from an 8- or 16-bit result.
func (c *CPU) updateNZ8(v uint8) {
	c.SetFlag(FlagZ, v == 0)
	c.SetFlag(FlagN, v&0x80 != 0)
}

func (c *CPU) updateNZ16(v uint16) {
	c.SetFlag(FlagZ, v == 0)
	c.SetFlag(FlagN, v&0x8000 != 0)
}

// fetch8/fetch16 read the byte(s) immediately following PC and advance it,
// matching the bank-stays-fixed-within-an-instruction-fetch behavior of
// program bank wraparound (PC wraps within PBR, it does not cross banks).
func (c *CPU) fetch8() uint8 {
	v := c.Mem.Read8(c.Reg.PBR, c.Reg.PC)
	c.Reg.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	low := c.fetch8()
	high := c.fetch8()
	return uint16(low) | uint16(high)<<8
}

// push8/pop8/push16/pop16 implement the 65816 stack. In emulation mode the
// stack pointer's high byte is forced to $01, confining pushes/pops to
// page 1 the way a 6502 would see it.
func (c *CPU) push8(v uint8) {
	c.Mem.Write8(0, c.Reg.S, v)
	c.Reg.S--
	if c.Reg.E {
		c.Reg.S = 0x0100 | (c.Reg.S & 0xFF)
	}
}

func (c *CPU) pop8() uint8 {
	c.Reg.S++
	if c.Reg.E {
		c.Reg.S = 0x0100 | (c.Reg.S & 0xFF)
	}
	return c.Mem.Read8(0, c.Reg.S)
}

func (c *CPU) push16(v uint16) {
	c.push8(uint8(v >> 8))
	c.push8(uint8(v))
}

func (c *CPU) pop16() uint16 {
	low := c.pop8()
	high := c.pop8()
	return uint16(low) | uint16(high)<<8
}

// Step executes exactly one instruction and returns the number of CPU
// cycles it consumed (the opcode table's count plus addressing penalties),
// for the clock scheduler to account against.
func (c *CPU) Step() (uint64, error) {
	if c.stopped {
		return 1, nil
	}
	if c.waiting {
		if c.nmiPending || (c.irqLine && !c.GetFlag(FlagI)) {
			c.waiting = false
		} else {
			return 1, nil
		}
	}

	if c.intDelay > 0 {
		c.intDelay--
	} else {
		if c.nmiPending {
			c.nmiPending = false
			c.doInterrupt(false)
			return 8, nil
		}
		if c.irqLine && !c.GetFlag(FlagI) {
			c.doInterrupt(true)
			return 8, nil
		}
	}

	startCycles := c.Cycles
	opcode := c.fetch8()
	entry := opcodeTable[opcode]
	if entry.Exec == nil {
		return 0, fmt.Errorf("cpu: unimplemented opcode $%02X at %02X:%04X", opcode, c.Reg.PBR, c.Reg.PC-1)
	}
	entry.Exec(c, entry.Mode)
	c.Cycles += uint64(entry.Cycles)
	if c.Log != nil {
		c.Log.LogCPU(entry.Name, map[string]interface{}{"opcode": opcode, "pc": c.Reg.PC})
	}
	return c.Cycles - startCycles, nil
}

// StepCPU runs instructions until at least `cycles` CPU cycles (as counted
// in Cycles) have elapsed, the shape the clock scheduler's callback expects.
func (c *CPU) StepCPU(cycles uint64) error {
	target := c.Cycles + cycles
	for c.Cycles < target {
		if _, err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// AssertNMI latches a non-maskable interrupt, taken at the next
// instruction boundary regardless of the I flag.
func (c *CPU) AssertNMI() { c.nmiPending = true }

// SetIRQLine sets the level-sensitive IRQ line state. SNES IRQ sources
// (HVBJOY H/V-IRQ, APU) assert/deassert this directly rather than posting
// one-shot events.
func (c *CPU) SetIRQLine(asserted bool) { c.irqLine = asserted }

// doInterrupt pushes PC/P (and PBR in native mode) and jumps to the
// appropriate vector. irq selects the IRQ vector (true) or the NMI vector
// (false); BRK and COP are handled by their own opcode functions.
func (c *CPU) doInterrupt(irq bool) {
	if !c.Reg.E {
		c.push8(c.Reg.PBR)
	}
	c.push16(c.Reg.PC)
	c.push8(c.Reg.P)
	c.SetFlag(FlagI, true)
	c.SetFlag(FlagD, false)
	c.Reg.PBR = 0

	var vector uint16
	switch {
	case c.Reg.E && irq:
		vector = VectorIRQEmulation
	case c.Reg.E && !irq:
		vector = VectorNMIEmulation
	case !c.Reg.E && irq:
		vector = VectorIRQNative
	default:
		vector = VectorNMINative
	}
	low := c.Mem.Read8(0, vector)
	high := c.Mem.Read8(0, vector+1)
	c.Reg.PC = uint16(low) | uint16(high)<<8
}
