package ppu

// handlePixel computes one composited, color-math-applied, brightness-
// scaled RGB888 pixel for (scanline, x), following the main/sub screen
// compositing pipeline: forced blank short-circuits to black, otherwise
// the main screen pixel is found by walking the mode's layer/priority
// list front-to-back, color math optionally blends against the sub
// screen or a fixed color, and the result is scaled by the brightness
// register.
func (p *PPU) handlePixel(scanline, x int) uint32 {
	if p.forcedBlank {
		return 0
	}

	mainColor, mainLayer := p.getPixel(scanline, x, false)
	subColor, subLayer := uint32(0), 5
	if p.addSubscreen || p.preventMathMode != 0 {
		subColor, subLayer = p.getPixel(scanline, x, true)
	}

	inColorWindow := p.getWindowState(5, x)
	clipToBlack := false
	switch p.clipMode {
	case 1:
		clipToBlack = inColorWindow
	case 2:
		clipToBlack = !inColorWindow
	case 3:
		clipToBlack = true
	}
	if clipToBlack {
		mainColor = 0
	}

	doMath := mainLayer < 6 && p.mathEnabledArray[mainLayer]
	preventMath := false
	switch p.preventMathMode {
	case 1:
		preventMath = inColorWindow
	case 2:
		preventMath = !inColorWindow
	case 3:
		preventMath = true
	}
	if preventMath {
		doMath = false
	}

	if doMath {
		var blendWith uint32
		if p.addSubscreen && subLayer != 5 {
			blendWith = subColor
		} else {
			blendWith = uint32(p.fixedColorR)<<16 | uint32(p.fixedColorG)<<8 | uint32(p.fixedColorB)
			blendWith = expand5to8(blendWith)
		}
		mainColor = blendColors(mainColor, blendWith, p.subtractColor, p.halfColor)
	}

	return scaleBrightness(mainColor, p.brightness)
}

// expand5to8 treats the low 5 bits of each byte-sized channel in v as a
// 5-bit intensity and expands it to 8 bits, used for the fixed color
// register which is stored in 5-bit-per-channel form like CGRAM.
func expand5to8(v uint32) uint32 {
	scale := func(c uint32) uint32 { c &= 0x1f; return (c << 3) | (c >> 2) }
	r := scale(v >> 16)
	g := scale(v >> 8)
	b := scale(v)
	return r<<16 | g<<8 | b
}

func clamp8(v int32) uint32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint32(v)
}

func blendColors(a, b uint32, subtract, half bool) uint32 {
	ar, ag, ab := int32(a>>16&0xff), int32(a>>8&0xff), int32(a&0xff)
	br, bg, bb := int32(b>>16&0xff), int32(b>>8&0xff), int32(b&0xff)
	var r, g, bch int32
	if subtract {
		r, g, bch = ar-br, ag-bg, ab-bb
	} else {
		r, g, bch = ar+br, ag+bg, ab+bb
	}
	if half {
		r, g, bch = r/2, g/2, bch/2
	}
	return clamp8(r)<<16 | clamp8(g)<<8 | clamp8(bch)
}

func scaleBrightness(color uint32, brightness uint8) uint32 {
	scale := func(c uint32) uint32 { return (c * uint32(brightness)) / 15 }
	r := scale(color >> 16 & 0xff)
	g := scale(color >> 8 & 0xff)
	b := scale(color & 0xff)
	return r<<16 | g<<8 | b
}

// getPixel walks the effective mode's layer-priority list front-to-back
// (lowest numbered priority entry painted last, so the loop runs in
// reverse and the final non-transparent write wins, matching "highest
// priority wins" painter's-algorithm semantics) and returns the winning
// color plus which composable layer (0-3 BG, 4 sprites, 5 backdrop)
// produced it.
func (p *PPU) getPixel(scanline, x int, subScreen bool) (uint32, int) {
	mode := p.effectiveMode()
	count := layerCountPerMode[mode]

	bestLayer := 5
	var bestColor uint32

	for i := count - 1; i >= 0; i-- {
		layerIdx := layersPerMode[mode][i]
		priority := prioritiesPerMode[mode][i]
		if layerIdx > 4 {
			continue
		}

		enabled := p.layer[layerIdx].MainScreenEnabled
		windowed := p.layer[layerIdx].MainScreenWindowed
		if subScreen {
			enabled = p.layer[layerIdx].SubScreenEnabled
			windowed = p.layer[layerIdx].SubScreenWindowed
		}
		if !enabled {
			continue
		}
		if windowed && p.getWindowState(layerIdx, x) {
			continue
		}

		var color uint32
		var opaque bool
		if layerIdx == 4 {
			color, opaque = p.getPixelForSprite(scanline, x, priority)
		} else if mode == 7 || mode == 9 {
			color, opaque = p.getPixelForMode7(scanline, x, layerIdx, priority)
		} else {
			color, opaque = p.getPixelForBgLayer(scanline, x, layerIdx, priority)
		}
		if opaque {
			bestColor = color
			bestLayer = layerIdx
		}
	}

	if bestLayer == 5 {
		bestColor = colorFromCGRAM(p.CGRAM[0])
	}
	return bestColor, bestLayer
}

// getPixelForBgLayer fetches one pixel from a tile-mapped background
// layer: tilemap lookup with wider/higher wraparound, tile-entry
// priority gating, and 2/4/8bpp planar tile data assembly.
func (p *PPU) getPixelForBgLayer(scanline, x, layerIdx, wantPriority int) (uint32, bool) {
	bg := &p.bgLayer[layerIdx]
	bitDepth := bitDepthsPerMode[p.effectiveMode()][layerOrder(layerIdx)]
	if bitDepth > 4 && layerIdx >= 2 {
		return 0, false
	}

	tileSizeX, tileSizeY := 8, 8
	if bg.BigTiles {
		tileSizeX, tileSizeY = 16, 16
	}

	worldX := x + int(bg.HScroll)
	worldY := scanline + int(bg.VScroll)

	tileMapW, tileMapH := 32, 32
	if bg.TilemapWider {
		tileMapW = 64
	}
	if bg.TilemapHigher {
		tileMapH = 64
	}
	pixelW := tileMapW * tileSizeX
	pixelH := tileMapH * tileSizeY
	worldX = ((worldX % pixelW) + pixelW) % pixelW
	worldY = ((worldY % pixelH) + pixelH) % pixelH

	tileX := worldX / tileSizeX
	tileY := worldY / tileSizeY
	pixelXInTile := worldX % tileSizeX
	pixelYInTile := worldY % tileSizeY

	mapW, mapH := 32, 32
	quadX, quadY := tileX/mapW, tileY/mapH
	localX, localY := tileX%mapW, tileY%mapH
	mapBase := bg.TilemapAdr
	if quadX == 1 && quadY == 0 {
		mapBase += 0x400
	} else if quadX == 0 && quadY == 1 {
		mapBase += 0x400
		if bg.TilemapWider {
			mapBase += 0x400
		}
	} else if quadX == 1 && quadY == 1 {
		mapBase += 0x800
	}

	entryAdr := mapBase + uint16(localY*mapW+localX)
	entry := p.VRAM[entryAdr&(vramWords-1)]

	tileNum := entry & 0x3ff
	tilePriority := (entry >> 13) & 0x01
	flipX := entry&0x4000 != 0
	flipY := entry&0x8000 != 0
	paletteNum := (entry >> 10) & 0x07

	if int(tilePriority) != wantPriority {
		return 0, false
	}

	if bg.BigTiles {
		subX, subY := 0, 0
		if (pixelXInTile >= 8) != flipX {
			subX = 1
		}
		if (pixelYInTile >= 8) != flipY {
			subY = 1
		}
		tileNum += uint16(subY*16 + subX)
		pixelXInTile %= 8
		pixelYInTile %= 8
	}
	if flipX {
		pixelXInTile = 7 - pixelXInTile
	}
	if flipY {
		pixelYInTile = 7 - pixelYInTile
	}

	colorIndex := p.fetchTilePixel(bg.TileAdr, tileNum, bitDepth, pixelXInTile, pixelYInTile)
	if colorIndex == 0 {
		return 0, false
	}

	palette := colorIndex
	if bitDepth < 8 {
		palette += uint16(paletteNum) << uint(bitDepth)
	}
	return colorFromCGRAM(p.CGRAM[palette&0xff]), true
}

// fetchTilePixel reads one pixel's color index from planar tile data:
// bitDepth bitplanes, each pair packed in successive 16-bit words 8
// words apart, matching the real hardware's 2bpp/4bpp/8bpp tile formats.
func (p *PPU) fetchTilePixel(baseAdr uint16, tileNum uint16, bitDepth, px, py int) uint16 {
	tileAdr := baseAdr + tileNum*uint16(4*bitDepth) + uint16(py)
	var colorIndex uint16
	for plane := 0; plane < bitDepth; plane += 2 {
		word := p.VRAM[(tileAdr+uint16(plane)*4)&(vramWords-1)]
		bit := uint(7 - px)
		if word&(1<<bit) != 0 {
			colorIndex |= 1 << uint(plane)
		}
		if word&(0x100<<bit) != 0 {
			colorIndex |= 1 << uint(plane+1)
		}
	}
	return colorIndex
}

func layerOrder(layerIdx int) int {
	if layerIdx > 3 {
		return 3
	}
	return layerIdx
}

// getPixelForMode7 computes one pixel via the Mode 7 affine transform:
// the dedicated 128x128 tilemap holds tile numbers in the low byte and,
// for direct-color tile data, pixel data in the high byte of the same
// VRAM word.
func (p *PPU) getPixelForMode7(scanline, x, layerIdx, wantPriority int) (uint32, bool) {
	screenX := x
	if p.m7xFlip {
		screenX = 255 - x
	}
	screenY := scanline
	if p.m7yFlip {
		screenY = 255 - screenY
	}

	a, b, c, d := int32(p.m7matrix[0]), int32(p.m7matrix[1]), int32(p.m7matrix[2]), int32(p.m7matrix[3])
	realX := (p.m7startX + a*int32(screenX)) >> 8
	realY := (p.m7startY + c*int32(screenX)) >> 8
	_, _ = b, d

	var tileX, tileY int32
	if p.m7largeField {
		tileX = (realX >> 3) & 0x7f
		tileY = (realY >> 3) & 0x7f
		if (realX < 0 || realX >= 1024) && !p.m7charFill {
			return 0, false
		}
	} else {
		tileX = (realX >> 3) & 0x7f
		tileY = (realY >> 3) & 0x7f
	}

	tileEntry := p.VRAM[uint16(tileY*128+tileX)&(vramWords-1)]
	tileNum := tileEntry & 0xff

	pixelX := uint32(realX) & 7
	pixelY := uint32(realY) & 7
	pixelWord := p.VRAM[(tileNum*64+uint16(pixelY*8+pixelX))&(vramWords-1)]
	colorIndex := uint16(pixelWord >> 8)

	if layerIdx == 1 {
		// BG2 (extbg) uses bit 7 of the color index as its own priority bit.
		priority := 0
		if colorIndex&0x80 != 0 {
			priority = 1
		}
		if priority != wantPriority {
			return 0, false
		}
		colorIndex &= 0x7f
	}

	if colorIndex == 0 {
		return 0, false
	}
	return colorFromCGRAM(p.CGRAM[colorIndex&0xff]), true
}

// calculateMode7Starts precomputes the per-scanline Mode 7 origin used by
// getPixelForMode7, folding in the scroll registers and the rotation
// center so the affine walk above only needs a per-pixel multiply-add.
func (p *PPU) calculateMode7Starts(scanline int) {
	clip := func(v int16) int32 {
		x := int32(v)
		if x&0x2000 != 0 {
			x -= 0x4000
		}
		return x
	}
	hOfs := clip(p.m7matrix[6])
	vOfs := clip(p.m7matrix[7])
	cx := clip(int16(p.m7matrix[4] & 0x1fff << 3 >> 3))
	cy := clip(int16(p.m7matrix[5] & 0x1fff << 3 >> 3))
	a, b, c, d := int32(p.m7matrix[0]), int32(p.m7matrix[1]), int32(p.m7matrix[2]), int32(p.m7matrix[3])

	y := int32(scanline)
	p.m7startX = ((a*clampM7(hOfs-cx))&^0x3f + (b*clampM7(y+vOfs-cy))&^0x3f + b*y) + cx<<8
	p.m7startY = ((c*clampM7(hOfs-cx))&^0x3f + (d*clampM7(y+vOfs-cy))&^0x3f + d*y) + cy<<8
}

func clampM7(v int32) int32 {
	if v&0x2000 != 0 {
		return v | ^int32(0x3fff)
	}
	return v & 0x3fff
}

// getWindowState evaluates the two-window mask for one of the six
// maskable layers (BG1-4, sprites, color window). The SNES has only
// horizontal windows; there is no vertical window clipping.
func (p *PPU) getWindowState(layerIdx int, x int) bool {
	w := &p.windowLayer[layerIdx]
	if !w.Window1Enabled && !w.Window2Enabled {
		return false
	}

	in1 := w.Window1Enabled && int(p.window1Left) <= x && x <= int(p.window1Right)
	if w.Window1Inversed {
		in1 = !in1
	}
	in2 := w.Window2Enabled && int(p.window2Left) <= x && x <= int(p.window2Right)
	if w.Window2Inversed {
		in2 = !in2
	}

	if w.Window1Enabled && !w.Window2Enabled {
		return in1
	}
	if w.Window2Enabled && !w.Window1Enabled {
		return in2
	}

	switch w.MaskLogic {
	case 0:
		return in1 || in2
	case 1:
		return in1 && in2
	case 2:
		return in1 != in2
	default:
		return !(in1 != in2)
	}
}
