package memory

import (
	"fmt"

	"nitro-core-dx/internal/debug"
)

// IOHandler is implemented by any chip mapped into CPU address space that
// wants raw 8/16-bit register access: the PPU, the APU's CPU-facing
// mailbox ports, and the controller auto-read latch all satisfy it.
// Offsets are relative to the handler's own register window, not the
// full $00-$FF CPU address.
type IOHandler interface {
	Read8(offset uint16) uint8
	Write8(offset uint16, value uint8)
	Read16(offset uint16) uint16
	Write16(offset uint16, value uint16)
}

// WRAM size: banks $7E-$7F, 64KB each.
const wramSize = 0x20000

// DMAChannel mirrors one of the eight DMA/HDMA channel register sets at
// $43n0-$43nF.
type DMAChannel struct {
	Params     uint8  // $43n0 DMAPn
	DestAddr   uint8  // $43n1 BBADn (PPU register, low byte of $21xx)
	SrcAddrLo  uint16 // $43n2/$43n3 A1TnL/A1TnH
	SrcBank    uint8  // $43n4 A1Bn
	Size       uint16 // $43n5/$43n6 DASnL/DASnH (transfer size, or HDMA indirect bank+size)
	IndirectHi uint8  // $43n7 DASBn (HDMA indirect bank)
	TableAddr  uint16 // $43n8/$43n9 A2AnL/A2AnH (HDMA current table address)
	LineCount  uint8  // $43nA NLTRn (HDMA line counter / repeat flag)
	Unused     uint8  // $43nB/$43nF unused byte, some carts use as scratch
}

// Bus routes every CPU memory access to WRAM, the cartridge, or one of the
// mapped I/O chips, following the real SNES address map rather than a
// flat banked layout: banks $00-$3F/$80-$BF expose low RAM + registers in
// the first 8KB and ROM above $8000, banks $40-$7D/$C0-$FF are pure ROM,
// and banks $7E-$7F are the full 128KB of work RAM.
type Bus struct {
	WRAM [wramSize]uint8

	Cartridge *Cartridge

	PPUHandler   IOHandler
	APUHandler   IOHandler
	InputHandler IOHandler

	// DMA/HDMA channel registers, $4300-$437F.
	DMA [8]DMAChannel

	// CPU-side control registers not owned by any chip.
	NMITIMEN  uint8 // $4200: NMI/IRQ/auto-joypad enable
	MDMAEN    uint8 // $420B: general purpose DMA channel-enable strobe
	HDMAEN    uint8 // $420C: HDMA channel-enable mask
	MemSelect uint8 // $420D: ROM access speed (FastROM/SlowROM)
	RDNMI     uint8 // $4210: NMI flag (bit7) + CPU version (low nibble)
	TIMEUP    uint8 // $4211: IRQ flag (bit7)
	HVBJOY    uint8 // $4212: vblank/hblank/auto-joy-busy status
	WRIO      uint8 // $4201: programmable I/O port
	WRMPYA    uint8 // $4202
	WRMPYB    uint8 // $4203
	WRDIVL    uint8 // $4204
	WRDIVH    uint8 // $4205
	WRDIVB    uint8 // $4206
	RDDIVL    uint8 // $4214 (quotient low)
	RDDIVH    uint8 // $4215 (quotient high)
	RDMPYL    uint8 // $4216 (product/remainder low)
	RDMPYH    uint8 // $4217 (product/remainder high)
	JoypadAuto [4]uint16 // $4218-$421F: auto-joypad read results, controllers 1-4

	// WRAM data port, $2180-$2183.
	wramPort uint32

	openBus uint8

	logger *debug.Logger
}

// NewBus creates a bus wired to the given cartridge. I/O handlers are
// attached separately via SetPPU/SetAPU/SetInput once those chips exist.
func NewBus(cartridge *Cartridge) *Bus {
	return &Bus{Cartridge: cartridge}
}

func (b *Bus) SetLogger(logger *debug.Logger) { b.logger = logger }
func (b *Bus) SetPPU(h IOHandler)             { b.PPUHandler = h }
func (b *Bus) SetAPU(h IOHandler)             { b.APUHandler = h }
func (b *Bus) SetInput(h IOHandler)           { b.InputHandler = h }

// Read8 reads one byte from the full 24-bit (bank, offset) address space.
func (b *Bus) Read8(bank uint8, offset uint16) uint8 {
	if bank == 0x7E || bank == 0x7F {
		return b.WRAM[(uint32(bank-0x7E)<<16)|uint32(offset)]
	}

	lowBank := bank & 0x7F
	if lowBank < 0x40 {
		switch {
		case offset < 0x2000:
			return b.WRAM[offset]
		case offset >= 0x2100 && offset <= 0x213F:
			if b.PPUHandler != nil {
				return b.PPUHandler.Read8(offset - 0x2100)
			}
			return b.openBus
		case offset >= 0x2140 && offset <= 0x217F:
			if b.APUHandler != nil {
				return b.APUHandler.Read8((offset - 0x2140) & 0x3)
			}
			return b.openBus
		case offset >= 0x2180 && offset <= 0x2183:
			return b.readWRAMPort(offset)
		case offset >= 0x4016 && offset <= 0x4017:
			if b.InputHandler != nil {
				return b.InputHandler.Read8(offset - 0x4016)
			}
			return b.openBus
		case offset >= 0x4200 && offset <= 0x421F:
			v := b.readCPURegister(offset)
			b.logCPURead(offset, v)
			return v
		case offset >= 0x4300 && offset <= 0x437F:
			return b.readDMARegister(offset)
		}
	}

	v := b.readROM(bank, offset)
	b.openBus = v
	return v
}

func (b *Bus) readROM(bank uint8, offset uint16) uint8 {
	if b.Cartridge == nil {
		return b.openBus
	}
	return b.Cartridge.Read8(bank, offset)
}

func (b *Bus) logCPURead(offset uint16, value uint8) {
	if b.logger != nil && b.logger.IsComponentEnabled(debug.ComponentMemory) {
		b.logger.Log(debug.ComponentMemory, debug.LogLevelTrace,
			fmt.Sprintf("CPU register read: $%04X -> $%02X", offset, value), nil)
	}
}

// Write8 writes one byte to the full 24-bit address space. Writes into
// ROM banks are silently ignored (read-only cartridge).
func (b *Bus) Write8(bank uint8, offset uint16, value uint8) {
	if bank == 0x7E || bank == 0x7F {
		b.WRAM[(uint32(bank-0x7E)<<16)|uint32(offset)] = value
		return
	}

	lowBank := bank & 0x7F
	if lowBank < 0x40 {
		switch {
		case offset < 0x2000:
			b.WRAM[offset] = value
			return
		case offset >= 0x2100 && offset <= 0x213F:
			if b.PPUHandler != nil {
				b.PPUHandler.Write8(offset-0x2100, value)
			}
			return
		case offset >= 0x2140 && offset <= 0x217F:
			if b.APUHandler != nil {
				b.APUHandler.Write8((offset-0x2140)&0x3, value)
			}
			return
		case offset >= 0x2180 && offset <= 0x2183:
			b.writeWRAMPort(offset, value)
			return
		case offset >= 0x4016 && offset <= 0x4017:
			if b.InputHandler != nil {
				b.InputHandler.Write8(offset-0x4016, value)
			}
			return
		case offset >= 0x4200 && offset <= 0x421F:
			b.writeCPURegister(offset, value)
			return
		case offset >= 0x4300 && offset <= 0x437F:
			b.writeDMARegister(offset, value)
			return
		}
	}
	// ROM: read-only, write ignored.
}

// readWRAMPort implements $2180 (WMDATA) and the $2181-$2183 address
// latch (WMADDL/WMADDM/WMADDH), the CPU's indirect path into the full
// 128KB of work RAM from any bank.
func (b *Bus) readWRAMPort(offset uint16) uint8 {
	switch offset {
	case 0x2180:
		v := b.WRAM[b.wramPort&0x1FFFF]
		b.wramPort = (b.wramPort + 1) & 0x1FFFF
		return v
	default:
		return b.openBus
	}
}

func (b *Bus) writeWRAMPort(offset uint16, value uint8) {
	switch offset {
	case 0x2180:
		b.WRAM[b.wramPort&0x1FFFF] = value
		b.wramPort = (b.wramPort + 1) & 0x1FFFF
	case 0x2181:
		b.wramPort = (b.wramPort & 0x1FF00) | uint32(value)
	case 0x2182:
		b.wramPort = (b.wramPort & 0x100FF) | (uint32(value) << 8)
	case 0x2183:
		b.wramPort = (b.wramPort & 0x0FFFF) | (uint32(value&1) << 16)
	}
}

func (b *Bus) readCPURegister(offset uint16) uint8 {
	switch offset {
	case 0x4200:
		return b.NMITIMEN
	case 0x4201:
		return b.WRIO
	case 0x4202:
		return b.WRMPYA
	case 0x4203:
		return b.WRMPYB
	case 0x4204:
		return b.WRDIVL
	case 0x4205:
		return b.WRDIVH
	case 0x4206:
		return b.WRDIVB
	case 0x4210:
		v := b.RDNMI
		b.RDNMI &^= 0x80 // reading clears the NMI flag
		return v
	case 0x4211:
		v := b.TIMEUP
		b.TIMEUP &^= 0x80
		return v
	case 0x4212:
		return b.HVBJOY
	case 0x4214:
		return b.RDDIVL
	case 0x4215:
		return b.RDDIVH
	case 0x4216:
		return b.RDMPYL
	case 0x4217:
		return b.RDMPYH
	}
	if offset >= 0x4218 && offset <= 0x421F {
		pad := (offset - 0x4218) / 2
		hi := (offset-0x4218)%2 == 1
		v := b.JoypadAuto[pad]
		if hi {
			return uint8(v >> 8)
		}
		return uint8(v)
	}
	return b.openBus
}

func (b *Bus) writeCPURegister(offset uint16, value uint8) {
	switch offset {
	case 0x4200:
		b.NMITIMEN = value
	case 0x4201:
		b.WRIO = value
	case 0x4202:
		b.WRMPYA = value
	case 0x4203:
		b.WRMPYB = value
		product := uint16(b.WRMPYA) * uint16(value)
		b.RDMPYL = uint8(product)
		b.RDMPYH = uint8(product >> 8)
	case 0x4204:
		b.WRDIVL = value
	case 0x4205:
		b.WRDIVH = value
	case 0x4206:
		b.WRDIVB = value
		dividend := uint16(b.WRDIVL) | uint16(b.WRDIVH)<<8
		if value == 0 {
			b.RDDIVL, b.RDDIVH = 0xFF, 0xFF
			b.RDMPYL, b.RDMPYH = uint8(dividend), uint8(dividend>>8)
		} else {
			quotient := dividend / uint16(value)
			remainder := dividend % uint16(value)
			b.RDDIVL, b.RDDIVH = uint8(quotient), uint8(quotient>>8)
			b.RDMPYL, b.RDMPYH = uint8(remainder), uint8(remainder>>8)
		}
	case 0x420B:
		b.MDMAEN = value
		b.runGeneralPurposeDMA(value)
	case 0x420C:
		b.HDMAEN = value
	case 0x420D:
		b.MemSelect = value
	}
}

func (b *Bus) readDMARegister(offset uint16) uint8 {
	ch := (offset - 0x4300) / 0x10
	reg := (offset - 0x4300) % 0x10
	c := &b.DMA[ch]
	switch reg {
	case 0x0:
		return c.Params
	case 0x1:
		return c.DestAddr
	case 0x2:
		return uint8(c.SrcAddrLo)
	case 0x3:
		return uint8(c.SrcAddrLo >> 8)
	case 0x4:
		return c.SrcBank
	case 0x5:
		return uint8(c.Size)
	case 0x6:
		return uint8(c.Size >> 8)
	case 0x7:
		return c.IndirectHi
	case 0x8:
		return uint8(c.TableAddr)
	case 0x9:
		return uint8(c.TableAddr >> 8)
	case 0xA:
		return c.LineCount
	default:
		return c.Unused
	}
}

func (b *Bus) writeDMARegister(offset uint16, value uint8) {
	ch := (offset - 0x4300) / 0x10
	reg := (offset - 0x4300) % 0x10
	c := &b.DMA[ch]
	switch reg {
	case 0x0:
		c.Params = value
	case 0x1:
		c.DestAddr = value
	case 0x2:
		c.SrcAddrLo = (c.SrcAddrLo & 0xFF00) | uint16(value)
	case 0x3:
		c.SrcAddrLo = (c.SrcAddrLo & 0x00FF) | uint16(value)<<8
	case 0x4:
		c.SrcBank = value
	case 0x5:
		c.Size = (c.Size & 0xFF00) | uint16(value)
	case 0x6:
		c.Size = (c.Size & 0x00FF) | uint16(value)<<8
	case 0x7:
		c.IndirectHi = value
	case 0x8:
		c.TableAddr = (c.TableAddr & 0xFF00) | uint16(value)
	case 0x9:
		c.TableAddr = (c.TableAddr & 0x00FF) | uint16(value)<<8
	case 0xA:
		c.LineCount = value
	default:
		c.Unused = value
	}
}

// runGeneralPurposeDMA performs an immediate (non-HDMA) transfer for every
// channel whose bit is set in the $420B strobe. Transfers happen in bus
// units of one byte per cycle in real hardware; here DMA completes
// within a single bus call and its cycles are not charged to the CPU
// or the master clock.
func (b *Bus) runGeneralPurposeDMA(strobe uint8) {
	for i := 0; i < 8; i++ {
		if strobe&(1<<uint(i)) == 0 {
			continue
		}
		c := &b.DMA[i]
		size := uint32(c.Size)
		if size == 0 {
			size = 0x10000
		}
		toPPU := c.Params&0x80 == 0
		mode := c.Params & 0x07
		srcAddr := c.SrcAddrLo
		destReg := uint16(0x2100) + uint16(c.DestAddr)
		pattern := dmaBytePattern(mode)

		for n := uint32(0); n < size; n++ {
			regOffset := pattern[n%uint32(len(pattern))]
			if toPPU {
				v := b.Read8(c.SrcBank, srcAddr)
				b.Write8(0, destReg+uint16(regOffset), v)
			} else {
				v := b.Read8(0, destReg+uint16(regOffset))
				b.Write8(c.SrcBank, srcAddr, v)
			}
			if c.Params&0x08 == 0 {
				srcAddr++
			}
		}
		c.SrcAddrLo = srcAddr
		c.Size = 0
	}
	b.MDMAEN = 0
}

// dmaBytePattern returns the per-byte PPU register offset sequence for a
// DMA transfer mode (0 = 1 reg, 1 byte; 1 = 2 regs, alternating; etc).
func dmaBytePattern(mode uint8) []uint8 {
	switch mode {
	case 0:
		return []uint8{0}
	case 1:
		return []uint8{0, 1}
	case 2:
		return []uint8{0, 0}
	case 3:
		return []uint8{0, 0, 1, 1}
	case 4:
		return []uint8{0, 1, 2, 3}
	case 5:
		return []uint8{0, 1, 0, 1}
	default:
		return []uint8{0}
	}
}

// Read16 reads a little-endian 16-bit value.
func (b *Bus) Read16(bank uint8, offset uint16) uint16 {
	low := b.Read8(bank, offset)
	high := b.Read8(bank, offset+1)
	return uint16(low) | uint16(high)<<8
}

// Write16 writes a little-endian 16-bit value as two consecutive 8-bit
// writes, low byte first, matching how the 65C816 actually drives the
// bus for 16-bit accumulator/index stores.
func (b *Bus) Write16(bank uint8, offset uint16, value uint16) {
	b.Write8(bank, offset, uint8(value))
	b.Write8(bank, offset+1, uint8(value>>8))
}
