package ppu

// evaluateSprites scans all 128 OAM entries for range membership on this
// scanline, keeping the first 32 hits (timeOver/rangeOver flag the
// overflow instead of silently dropping or wrapping), then renders up to
// 34 8-pixel tile slivers into the per-scanline obj pixel/priority
// buffers that getPixelForSprite reads from afterward. Lower OAM index
// wins ties, matching hardware's fixed sprite priority ordering.
func (p *PPU) evaluateSprites(scanline int) {
	for i := range p.objPixelBuffer {
		p.objPixelBuffer[i] = 0
		p.objPriorityBuffer[i] = 0xff
	}
	p.rangeOver, p.timeOver = false, false

	type hit struct {
		x, y, size  int
		tileNum     uint16
		attr        uint8
		largeSprite bool
	}
	var hits []hit

	for i := 0; i < 128; i++ {
		word0 := p.OAM[i*2]
		word1 := p.OAM[i*2+1]
		x := int(int8(word0 & 0xff))
		xHigh := (p.HighOAM[i/4] >> uint((i%4)*2)) & 0x01
		if xHigh != 0 {
			x -= 256
		}
		y := int(uint8(word0 >> 8))
		tileNum := word1 & 0xff
		attr := uint8(word1 >> 8)

		large := (p.HighOAM[i/4]>>uint((i%4)*2+1))&0x01 != 0
		if p.objPriority {
			large = !large
		}
		sizeIdx := p.objSize
		w, h := spriteSizes[sizeIdx][0], spriteSizes[sizeIdx][0]
		if large {
			w, h = spriteSizes[sizeIdx][1], spriteSizes[sizeIdx][1]
		}

		spriteY := y
		if spriteY+h > 256 {
			spriteY -= 256
		}
		if scanline < spriteY || scanline >= spriteY+h {
			continue
		}

		if len(hits) >= 32 {
			p.rangeOver = true
			break
		}
		hits = append(hits, hit{x: x, y: spriteY, size: w, tileNum: tileNum, attr: attr, largeSprite: large})
	}

	tilesUsed := 0
	for _, h := range hits {
		tilesNeeded := h.size / 8
		if tilesUsed+tilesNeeded > 34 {
			p.timeOver = true
			break
		}
		tilesUsed += tilesNeeded
		p.renderSpriteLine(scanline, h.x, h.y, h.size, h.tileNum, h.attr)
	}
}

func (p *PPU) renderSpriteLine(scanline, spriteX, spriteY, size int, tileNum uint16, attr uint8) {
	palette := attr & 0x07
	priority := (attr >> 4) & 0x03
	hFlip := attr&0x40 != 0
	vFlip := attr&0x80 != 0

	row := scanline - spriteY
	if vFlip {
		row = size - 1 - row
	}
	tileRow := row / 8
	pixelY := row % 8

	baseAdr := p.objTileAdr1
	if attr&0x08 != 0 {
		baseAdr = p.objTileAdr2
	}

	tilesPerRow := size / 8
	for tc := 0; tc < tilesPerRow; tc++ {
		col := tc
		if hFlip {
			col = tilesPerRow - 1 - tc
		}
		t := tileNum + uint16(tileRow)*16 + uint16(col)

		for px := 0; px < 8; px++ {
			x := spriteX + tc*8 + px
			if x < 0 || x >= ScreenWidth {
				continue
			}
			sampleX := px
			if hFlip {
				sampleX = 7 - px
			}
			colorIndex := p.fetchTilePixel(baseAdr, t, 4, sampleX, pixelY)
			if colorIndex == 0 {
				continue
			}
			if p.objPriorityBuffer[x] != 0xff {
				continue
			}
			p.objPixelBuffer[x] = uint8(128 + uint16(palette)<<4 + colorIndex)
			p.objPriorityBuffer[x] = priority
		}
	}
}

// getPixelForSprite returns the sprite layer's composited pixel for x on
// the current scanline, filtered to the requested priority level.
func (p *PPU) getPixelForSprite(scanline, x, wantPriority int) (uint32, bool) {
	if x < 0 || x >= ScreenWidth {
		return 0, false
	}
	if p.objPriorityBuffer[x] != uint8(wantPriority) {
		return 0, false
	}
	colorIndex := p.objPixelBuffer[x]
	if colorIndex == 0 {
		return 0, false
	}
	return colorFromCGRAM(p.CGRAM[uint16(colorIndex)&0xff]), true
}
