package ppu

// Read16/Write16 complete the memory.IOHandler interface as two
// consecutive byte accesses, low byte first.
func (p *PPU) Read16(offset uint16) uint16 {
	lo := p.Read8(offset)
	hi := p.Read8(offset + 1)
	return uint16(lo) | uint16(hi)<<8
}

func (p *PPU) Write16(offset uint16, value uint16) {
	p.Write8(offset, uint8(value))
	p.Write8(offset+1, uint8(value>>8))
}

// Read8/Write8 implement the memory.IOHandler interface, dispatching over
// the $2100-$213F register window by byte offset from $2100. Any register
// access first catches up rendering to the CPU's current horizontal
// position so the framebuffer never lags what the CPU has just told the
// PPU to draw.
func (p *PPU) Write8(offset uint16, val uint8) {
	p.CatchUp(int(p.hCount))
	switch offset {
	case 0x00: // INIDISP
		p.forcedBlank = val&0x80 != 0
		p.brightness = val & 0x0f
	case 0x01: // OBSEL
		p.objSize = (val >> 5) & 0x07
		p.objTileAdr1 = uint16(val&0x03) * 0x2000
		p.objTileAdr2 = p.objTileAdr1 + (uint16((val>>3)&0x03)+1)*0x1000
	case 0x02: // OAMADDL
		p.oamAddrWritten = val
		p.oamAddr = val
	case 0x03: // OAMADDH
		p.oamInHighWritten = val&0x01 != 0
		p.oamInHigh = p.oamInHighWritten
		p.objPriority = val&0x80 != 0
	case 0x04: // OAMDATA
		p.writeOAM(val)
	case 0x05: // BGMODE
		p.mode = val & 0x07
		p.bg3Priority = val&0x08 != 0
		for i := range p.bgLayer {
			p.bgLayer[i].BigTiles = val&(0x10<<uint(i)) != 0
		}
	case 0x06: // MOSAIC
		p.mosaicSize = (val >> 4) & 0x0f
		for i := range p.bgLayer {
			p.bgLayer[i].MosaicEnabled = val&(1<<uint(i)) != 0
		}
	case 0x07, 0x08, 0x09, 0x0a: // BG1SC-BG4SC
		idx := offset - 0x07
		p.bgLayer[idx].TilemapWider = val&0x01 != 0
		p.bgLayer[idx].TilemapHigher = val&0x02 != 0
		p.bgLayer[idx].TilemapAdr = uint16(val&0xfc) << 8
	case 0x0b: // BG12NBA
		p.bgLayer[0].TileAdr = uint16(val&0x0f) << 12
		p.bgLayer[1].TileAdr = uint16(val&0xf0) << 8
	case 0x0c: // BG34NBA
		p.bgLayer[2].TileAdr = uint16(val&0x0f) << 12
		p.bgLayer[3].TileAdr = uint16(val&0xf0) << 8
	case 0x0d: // BG1HOFS / M7HOFS
		p.m7matrix[6] = int16(uint16(val)<<8 | uint16(p.m7prev&^7) | uint16(p.scrollPrev>>5))
		p.m7prev = val
		p.bgLayer[0].HScroll = uint16(val)<<8 | uint16(p.scrollPrev&^7) | uint16(p.scrollPrev2>>3&7)
		p.scrollPrev = val
		p.scrollPrev2 = val
	case 0x0e: // BG1VOFS / M7VOFS
		p.m7matrix[7] = int16(uint16(val)<<8 | uint16(p.m7prev))
		p.m7prev = val
		p.bgLayer[0].VScroll = uint16(val)<<8 | uint16(p.scrollPrev)
		p.scrollPrev = val
	case 0x0f, 0x11, 0x13: // BG2HOFS, BG3HOFS, BG4HOFS
		idx := 1 + (offset-0x0f)/2
		p.bgLayer[idx].HScroll = uint16(val)<<8 | uint16(p.scrollPrev&^7) | uint16(p.scrollPrev2>>3&7)
		p.scrollPrev = val
		p.scrollPrev2 = val
	case 0x10, 0x12, 0x14: // BG2VOFS, BG3VOFS, BG4VOFS
		idx := 1 + (offset-0x10)/2
		p.bgLayer[idx].VScroll = uint16(val)<<8 | uint16(p.scrollPrev)
		p.scrollPrev = val
	case 0x15: // VMAIN
		p.vramIncrementOnHi = val&0x80 != 0
		p.vramRemapMode = (val >> 2) & 0x03
		switch val & 0x03 {
		case 0:
			p.vramIncrement = 1
		case 1:
			p.vramIncrement = 32
		default:
			p.vramIncrement = 128
		}
	case 0x16: // VMADDL
		p.vramPointer = (p.vramPointer & 0xff00) | uint16(val)
		p.vramReadBuffer = p.VRAM[p.getVramRemap()&(vramWords-1)]
	case 0x17: // VMADDH
		p.vramPointer = (p.vramPointer & 0x00ff) | uint16(val)<<8
		p.vramReadBuffer = p.VRAM[p.getVramRemap()&(vramWords-1)]
	case 0x18: // VMDATAL
		p.VRAM[p.getVramRemap()&(vramWords-1)] &^= 0x00ff
		p.VRAM[p.getVramRemap()&(vramWords-1)] |= uint16(val)
		if !p.vramIncrementOnHi {
			p.vramPointer += p.vramIncrement
		}
	case 0x19: // VMDATAH
		p.VRAM[p.getVramRemap()&(vramWords-1)] &^= 0xff00
		p.VRAM[p.getVramRemap()&(vramWords-1)] |= uint16(val) << 8
		if p.vramIncrementOnHi {
			p.vramPointer += p.vramIncrement
		}
	case 0x1a: // M7SEL
		p.m7largeField = val&0x80 != 0
		p.m7charFill = val&0x40 != 0
		p.m7yFlip = val&0x02 != 0
		p.m7xFlip = val&0x01 != 0
	case 0x1b, 0x1c, 0x1d, 0x1e: // M7A-M7D
		idx := offset - 0x1b
		p.m7matrix[idx] = int16(uint16(val)<<8 | uint16(p.m7prev))
		p.m7prev = val
	case 0x1f, 0x20: // M7X, M7Y
		idx := 4 + (offset - 0x1f)
		p.m7matrix[idx] = int16(uint16(val)<<8 | uint16(p.m7prev))
		p.m7prev = val
	case 0x21: // CGADD
		p.cgramPointer = val
		p.cgramSecondWrite = false
	case 0x22: // CGDATA
		if !p.cgramSecondWrite {
			p.cgramBuffer = val
			p.cgramSecondWrite = true
		} else {
			p.CGRAM[p.cgramPointer] = uint16(val&0x7f)<<8 | uint16(p.cgramBuffer)
			p.cgramSecondWrite = false
			p.cgramPointer++
		}
	case 0x23: // W12SEL
		p.setWindowSelect(0, val&0x0f)
		p.setWindowSelect(1, (val>>4)&0x0f)
	case 0x24: // W34SEL
		p.setWindowSelect(2, val&0x0f)
		p.setWindowSelect(3, (val>>4)&0x0f)
	case 0x25: // WOBJSEL
		p.setWindowSelect(4, val&0x0f)
		p.setWindowSelect(5, (val>>4)&0x0f)
	case 0x26: // WH0
		p.window1Left = val
	case 0x27: // WH1
		p.window1Right = val
	case 0x28: // WH2
		p.window2Left = val
	case 0x29: // WH3
		p.window2Right = val
	case 0x2a: // WBGLOG
		for i := 0; i < 4; i++ {
			p.windowLayer[i].MaskLogic = (val >> uint(i*2)) & 0x03
		}
	case 0x2b: // WOBJLOG
		p.windowLayer[4].MaskLogic = val & 0x03
		p.windowLayer[5].MaskLogic = (val >> 2) & 0x03
	case 0x2c: // TM
		for i := 0; i < 5; i++ {
			p.layer[i].MainScreenEnabled = val&(1<<uint(i)) != 0
		}
	case 0x2d: // TS
		for i := 0; i < 5; i++ {
			p.layer[i].SubScreenEnabled = val&(1<<uint(i)) != 0
		}
	case 0x2e: // TMW
		for i := 0; i < 5; i++ {
			p.layer[i].MainScreenWindowed = val&(1<<uint(i)) != 0
		}
	case 0x2f: // TSW
		for i := 0; i < 5; i++ {
			p.layer[i].SubScreenWindowed = val&(1<<uint(i)) != 0
		}
	case 0x30: // CGWSEL
		p.directColor = val&0x01 != 0
		p.addSubscreen = val&0x02 != 0
		p.preventMathMode = (val >> 4) & 0x03
		p.clipMode = (val >> 6) & 0x03
	case 0x31: // CGADSUB
		p.subtractColor = val&0x80 != 0
		p.halfColor = val&0x40 != 0
		for i := 0; i < 6; i++ {
			p.mathEnabledArray[i] = val&(1<<uint(i)) != 0
		}
	case 0x32: // COLDATA
		intensity := val & 0x1f
		if val&0x20 != 0 {
			p.fixedColorR = intensity
		}
		if val&0x40 != 0 {
			p.fixedColorG = intensity
		}
		if val&0x80 != 0 {
			p.fixedColorB = intensity
		}
	case 0x33: // SETINI
		p.frameInterlace = val&0x01 != 0
		p.objInterlace = val&0x02 != 0
		p.frameOverscan = val&0x04 != 0
		p.pseudoHires = val&0x08 != 0
		p.m7extBg = val&0x40 != 0
	}
}

func (p *PPU) writeOAM(val uint8) {
	adr := int(p.oamAddr)
	if p.oamInHigh {
		p.HighOAM[adr&0x1f] = val
	} else if !p.oamSecondWrite {
		p.oamBuffer = val
		p.oamSecondWrite = true
		return
	} else {
		wordAdr := adr & 0xff
		p.OAM[wordAdr] = uint16(val)<<8 | uint16(p.oamBuffer)
		p.oamSecondWrite = false
	}
	p.oamAddr++
	if p.oamAddr >= 0x80 {
		p.oamAddr = 0
		p.oamInHigh = !p.oamInHigh
	}
}

func (p *PPU) setWindowSelect(idx int, bits uint8) {
	p.windowLayer[idx].Window1Enabled = bits&0x02 != 0
	p.windowLayer[idx].Window1Inversed = bits&0x01 != 0
	p.windowLayer[idx].Window2Enabled = bits&0x08 != 0
	p.windowLayer[idx].Window2Inversed = bits&0x04 != 0
}

// Read8 handles the PPU read-side registers: OAM/VRAM/CGRAM data ports,
// H/V counter readback, and the status registers.
func (p *PPU) Read8(offset uint16) uint8 {
	p.CatchUp(int(p.hCount))
	switch offset {
	case 0x38: // OAMDATAREAD
		return p.readOAM()
	case 0x39: // VMDATALREAD
		v := uint8(p.vramReadBuffer)
		if !p.vramIncrementOnHi {
			p.vramReadBuffer = p.VRAM[p.getVramRemap()&(vramWords-1)]
			p.vramPointer += p.vramIncrement
		}
		return v
	case 0x3a: // VMDATAHREAD
		v := uint8(p.vramReadBuffer >> 8)
		if p.vramIncrementOnHi {
			p.vramReadBuffer = p.VRAM[p.getVramRemap()&(vramWords-1)]
			p.vramPointer += p.vramIncrement
		}
		return v
	case 0x3b: // CGDATAREAD
		entry := p.CGRAM[p.cgramPointer]
		var v uint8
		if !p.cgramSecondWrite {
			v = uint8(entry)
		} else {
			v = uint8(entry >> 8)
			p.cgramPointer++
		}
		p.cgramSecondWrite = !p.cgramSecondWrite
		return v
	case 0x3c: // OPHCT
		if !p.hCountSecond {
			p.hCountSecond = true
			return uint8(p.hCount)
		}
		p.hCountSecond = false
		return uint8(p.hCount >> 8)
	case 0x3d: // OPVCT
		if !p.vCountSecond {
			p.vCountSecond = true
			return uint8(p.currentScanline)
		}
		p.vCountSecond = false
		return uint8(p.currentScanline >> 8)
	case 0x3e: // STAT77
		v := uint8(0x01) // ppu1 version
		if p.timeOver {
			v |= 0x40
		}
		if p.rangeOver {
			v |= 0x80
		}
		return v
	case 0x3f: // STAT78
		v := uint8(0x02) // ppu2 version
		if !p.evenFrame {
			v |= 0x80
		}
		p.hCountSecond, p.vCountSecond = false, false
		p.countersLatched = false
		return v
	}
	return 0
}

func (p *PPU) readOAM() uint8 {
	adr := int(p.oamAddr)
	var v uint8
	if p.oamInHigh {
		v = p.HighOAM[adr&0x1f]
	} else if !p.oamSecondWrite {
		v = uint8(p.OAM[adr&0xff])
		p.oamSecondWrite = true
		return v
	} else {
		v = uint8(p.OAM[adr&0xff] >> 8)
		p.oamSecondWrite = false
	}
	p.oamAddr++
	if p.oamAddr >= 0x80 {
		p.oamAddr = 0
		p.oamInHigh = !p.oamInHigh
	}
	return v
}
