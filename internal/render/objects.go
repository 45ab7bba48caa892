package render

import (
	"nitro-core-dx/internal/cpu"
	"nitro-core-dx/internal/snes"
)

// Object table addresses, bank $01. Three ranges of object id share the
// bank but use different table bases: 0x000-0x0FF are "type 1" objects
// (the common subtype/size-byte objects), 0x100-0x1FF are "type 2"
// (diagonal/wall objects), and 0x200+ are "type 3" (large-scale
// objects like floors and ceilings). Each table entry is a 16-bit
// pointer into bank $01.
const (
	type1DataTable    = 0x8000
	type1HandlerTable = 0x8200
	type2DataTable    = 0x8370
	type2HandlerTable = 0x8470
	type3DataTable    = 0x84F0
	type3HandlerTable = 0x85F0

	objectBank = 0x01

	// trapBank/trapAddr is where the handler's return frame points: a
	// single STP opcode planted ahead of time, so execution halts
	// cleanly the instant the handler's RTL/RTS chain unwinds back out.
	// It lives in WRAM rather than ROM because ROM writes are ignored by
	// the bus (cartridge space is read-only), and WRAM scratch far past
	// the tilemap buffers is otherwise unused during a render.
	trapBank = 0x7E
	trapAddr = 0xFFFE
	opSTP    = 0xDB

	maxHandlerOpcodes = 100000
	apuRefreshMask    = 0x3F // refresh the mailbox mock every 64 opcodes
)

// lookupHandlerAddress resolves an object id to its data offset pointer
// and its drawing handler's entry address, both read out of the ROM's
// object tables in bank $01.
func lookupHandlerAddress(e *snes.Emulator, objectID int) (dataOffset, handlerAddr uint16, err error) {
	var dataTable, handlerTable, index int
	switch {
	case objectID < 0x100:
		dataTable, handlerTable, index = type1DataTable, type1HandlerTable, objectID
	case objectID < 0x200:
		dataTable, handlerTable, index = type2DataTable, type2HandlerTable, objectID-0x100
	default:
		dataTable, handlerTable, index = type3DataTable, type3HandlerTable, objectID-0x200
	}

	entry := index * 2
	dataOffset = read16(e, objectBank, uint16(dataTable+entry))
	handlerAddr = read16(e, objectBank, uint16(handlerTable+entry))
	if handlerAddr == 0 {
		return 0, 0, ErrObjectNotFound
	}
	return dataOffset, handlerAddr, nil
}

func read16(e *snes.Emulator, bank uint8, offset uint16) uint16 {
	lo := e.Bus.Read8(bank, offset)
	hi := e.Bus.Read8(bank, offset+1)
	return uint16(lo) | uint16(hi)<<8
}

// injectRoomContext loads caller-supplied tile/palette data into VRAM
// and CGRAM, the way the real game's room decompressor would have
// already done by the time a draw handler runs.
func injectRoomContext(e *snes.Emulator, graphics, palette []uint16) {
	for i, word := range graphics {
		if i >= len(e.PPU.VRAM) {
			break
		}
		e.PPU.VRAM[i] = word
	}
	for i, word := range palette {
		if i >= len(e.PPU.CGRAM) {
			break
		}
		e.PPU.CGRAM[i] = word
	}
}

// Tilemap WRAM buffers the object handlers draw into: layer 1 at
// $7E2000, layer 2 at $7E4000, 0x2000 bytes (a full 64x64 tilemap's
// worth of words) each.
const (
	tilemapBuffer1 = 0x2000
	tilemapBuffer2 = 0x4000
	tilemapSize    = 0x2000

	// Zero-page indirect pointers the handlers use to address those
	// buffers, bank $7E, $BF-$DD.
	tilemapPointerBase = 0x00BF
)

// clearTilemapBuffers zeroes the two WRAM tilemap scratch buffers
// before a handler runs, so stale tiles from a previous render don't
// bleed through gaps the handler doesn't touch.
func clearTilemapBuffers(e *snes.Emulator) {
	for offset := 0; offset < tilemapSize; offset++ {
		e.Bus.Write8(0x7E, uint16(tilemapBuffer1+offset), 0)
		e.Bus.Write8(0x7E, uint16(tilemapBuffer2+offset), 0)
	}
}

// initializeTilemapPointers sets up the eleven indirect zero-page
// pointers ($BF-$DD, three bytes each: address low, high, bank $7E)
// that object handlers dereference
// to find their tilemap buffers, mirroring the fixed layout the real
// ROM's bank-$7E direct page holds during room drawing.
func initializeTilemapPointers(e *snes.Emulator) {
	targets := []uint16{
		tilemapBuffer1, tilemapBuffer1 + 0x40, tilemapBuffer1 + 0x80,
		tilemapBuffer1 + 0xC0, tilemapBuffer1 + 0x100,
		tilemapBuffer2, tilemapBuffer2 + 0x40, tilemapBuffer2 + 0x80,
		tilemapBuffer2 + 0xC0, tilemapBuffer2 + 0x100, tilemapBuffer2 + 0x140,
	}
	ptr := uint16(tilemapPointerBase)
	for _, addr := range targets {
		e.Bus.Write8(0x7E, ptr, uint8(addr))
		e.Bus.Write8(0x7E, ptr+1, uint8(addr>>8))
		e.Bus.Write8(0x7E, ptr+2, 0x7E)
		ptr += 3
	}
}

// mockAPUPorts seeds the CPU-visible APU mailbox with the handshake
// bytes the ROM's sound-effect trigger code polls for at the start of
// most object handlers, so handlers that fire a sound cue don't stall
// waiting on a real SPC700 response.
func mockAPUPorts(e *snes.Emulator) {
	e.APU.OutPorts[0] = 0xAA
	e.APU.OutPorts[1] = 0xBB
	e.APU.OutPorts[2] = 0
	e.APU.OutPorts[3] = 0
}

// pushReturnFrame writes a JSL-shaped return address directly onto the
// stack, so that when the handler eventually executes RTL it lands on
// the STP trap instead of an address nothing put there.
func pushReturnFrame(reg *cpu.Registers, writeByte func(bank uint8, offset uint16, v uint8)) {
	target := uint16(trapAddr) - 1
	writeByte(0, reg.S, trapBank)
	reg.S--
	writeByte(0, reg.S, uint8(target>>8))
	reg.S--
	writeByte(0, reg.S, uint8(target))
	reg.S--
}

// executeHandler configures the CPU to run one object's drawing
// handler in isolation and steps it until the handler returns into the
// STP trap, the opcode budget is exhausted, or the CPU errors.
func executeHandler(e *snes.Emulator, handlerAddr, dataOffset, tilemapPos uint16) (cycles int, err error) {
	e.Bus.Write8(trapBank, trapAddr, opSTP)

	reg := &e.CPU.Reg
	reg.D = 0
	reg.S = 0x01FF
	reg.DBR = 0x7E
	reg.P = cpu.FlagM | cpu.FlagX
	reg.E = false
	reg.X = dataOffset
	reg.Y = tilemapPos

	pushReturnFrame(reg, e.Bus.Write8)

	e.CPU.SetEntryPoint(objectBank, handlerAddr)

	for opcodes := 0; opcodes < maxHandlerOpcodes; opcodes++ {
		next := e.Bus.Read8(reg.PBR, reg.PC)
		if next == opSTP {
			return opcodes, nil
		}
		if _, stepErr := e.CPU.Step(); stepErr != nil {
			return opcodes, stepErr
		}
		if opcodes&apuRefreshMask == 0 {
			mockAPUPorts(e)
		}
	}
	return maxHandlerOpcodes, ErrHandlerTimeout
}

// copyTilemapsToVRAM moves the handler's drawn tilemaps from WRAM scratch
// into the PPU's own VRAM tilemap words so the upcoming PPU frame
// actually renders them, at the fixed word offsets the two BG layers'
// tilemaps live at ($4000/$4800).
func copyTilemapsToVRAM(e *snes.Emulator) {
	const (
		vramTilemap1 = 0x4000
		vramTilemap2 = 0x4800
		words        = 0x800
	)
	for i := 0; i < words; i++ {
		lo1 := e.Bus.Read8(0x7E, uint16(tilemapBuffer1+i*2))
		hi1 := e.Bus.Read8(0x7E, uint16(tilemapBuffer1+i*2+1))
		e.PPU.VRAM[vramTilemap1+i] = uint16(lo1) | uint16(hi1)<<8

		lo2 := e.Bus.Read8(0x7E, uint16(tilemapBuffer2+i*2))
		hi2 := e.Bus.Read8(0x7E, uint16(tilemapBuffer2+i*2+1))
		e.PPU.VRAM[vramTilemap2+i] = uint16(lo2) | uint16(hi2)<<8
	}
}

// renderDungeonObject runs the full object-invocation pipeline for a
// single object id and extracts the resulting frame.
func (s *Service) renderDungeonObject(req Request) (Result, error) {
	injectRoomContext(s.emu, req.Graphics, req.Palette)
	clearTilemapBuffers(s.emu)
	initializeTilemapPointers(s.emu)
	mockAPUPorts(s.emu)

	dataOffset, handlerAddr, err := lookupHandlerAddress(s.emu, req.ObjectID)
	if err != nil {
		return Result{}, err
	}

	tilemapPos := uint16(req.Y*64 + req.X)
	cycles, err := executeHandler(s.emu, handlerAddr, dataOffset, tilemapPos)
	if err != nil {
		return Result{CyclesExecuted: cycles, HandlerAddress: handlerAddr}, err
	}

	copyTilemapsToVRAM(s.emu)
	if err := renderPPUFrame(s.emu); err != nil {
		return Result{}, err
	}

	// The handler draws into the full tilemap, not just the object's own
	// footprint, so the extracted frame is always the full screen;
	// OutputWidth/OutputHeight are a hint for a caller that wants to
	// crop the result itself, not something this pass applies.
	return Result{
		Success:        true,
		RGBA:           extractPixelsFromPPU(s.emu),
		Width:          256,
		Height:         224,
		CyclesExecuted: cycles,
		HandlerAddress: handlerAddr,
	}, nil
}
