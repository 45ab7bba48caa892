package ppu

import (
	"bytes"
	"encoding/binary"
)

// Snapshot serializes the full PPU state — VRAM/CGRAM/OAM storage, every
// register latch, and the per-scanline renderer cursor — into a fixed
// little-endian layout, for save-state capture. OutputBuffer is excluded:
// it's a render product, not authoritative state, and catch-up rendering
// refills it as the following frame is drawn.
func (p *PPU) Snapshot() []byte {
	buf := new(bytes.Buffer)
	w := func(v interface{}) { binary.Write(buf, binary.LittleEndian, v) }

	w(p.VRAM)
	w(p.CGRAM)
	w(p.OAM)
	w(p.HighOAM)

	w(p.vramPointer)
	w(p.vramIncrementOnHi)
	w(p.vramIncrement)
	w(p.vramRemapMode)
	w(p.vramReadBuffer)

	w(p.cgramPointer)
	w(p.cgramSecondWrite)
	w(p.cgramBuffer)

	w(p.oamAddr)
	w(p.oamAddrWritten)
	w(p.oamInHigh)
	w(p.oamInHighWritten)
	w(p.oamSecondWrite)
	w(p.oamBuffer)
	w(p.objPriority)
	w(p.objTileAdr1)
	w(p.objTileAdr2)
	w(p.objSize)
	w(p.objPixelBuffer)
	w(p.objPriorityBuffer)
	w(p.objInterlace)
	w(p.rangeOver)
	w(p.timeOver)

	w(p.bgLayer)
	w(p.layer)

	w(p.scrollPrev)
	w(p.scrollPrev2)
	w(p.mosaicSize)
	w(int32(p.mosaicStartline))

	w(p.m7matrix)
	w(p.m7prev)
	w(p.m7largeField)
	w(p.m7charFill)
	w(p.m7xFlip)
	w(p.m7yFlip)
	w(p.m7extBg)
	w(p.m7startX)
	w(p.m7startY)

	w(p.windowLayer)
	w(p.window1Left)
	w(p.window1Right)
	w(p.window2Left)
	w(p.window2Right)

	w(p.clipMode)
	w(p.preventMathMode)
	w(p.addSubscreen)
	w(p.subtractColor)
	w(p.halfColor)
	w(p.mathEnabledArray)
	w(p.fixedColorR)
	w(p.fixedColorG)
	w(p.fixedColorB)

	w(p.forcedBlank)
	w(p.brightness)
	w(p.mode)
	w(p.bg3Priority)
	w(p.evenFrame)
	w(p.pseudoHires)
	w(p.interlace)
	w(p.frameInterlace)
	w(p.overscan)
	w(p.frameOverscan)
	w(p.directColor)

	w(p.hCount)
	w(p.hCountSecond)
	w(p.vCountSecond)
	w(p.countersLatched)

	w(int32(p.currentScanline))
	w(int32(p.lastRenderedX))

	w(p.FrameCounter)
	w(p.VBlankFlag)
	w(p.FrameComplete)
	w(p.frameStarted)

	return buf.Bytes()
}

// Restore reconstructs PPU state from a buffer produced by Snapshot.
func (p *PPU) Restore(data []byte) error {
	buf := bytes.NewReader(data)
	var mosaicStartline, currentScanline, lastRenderedX int32

	fields := []interface{}{
		&p.VRAM, &p.CGRAM, &p.OAM, &p.HighOAM,

		&p.vramPointer, &p.vramIncrementOnHi, &p.vramIncrement, &p.vramRemapMode, &p.vramReadBuffer,

		&p.cgramPointer, &p.cgramSecondWrite, &p.cgramBuffer,

		&p.oamAddr, &p.oamAddrWritten, &p.oamInHigh, &p.oamInHighWritten,
		&p.oamSecondWrite, &p.oamBuffer, &p.objPriority, &p.objTileAdr1,
		&p.objTileAdr2, &p.objSize, &p.objPixelBuffer, &p.objPriorityBuffer,
		&p.objInterlace, &p.rangeOver, &p.timeOver,

		&p.bgLayer, &p.layer,

		&p.scrollPrev, &p.scrollPrev2, &p.mosaicSize, &mosaicStartline,

		&p.m7matrix, &p.m7prev, &p.m7largeField, &p.m7charFill, &p.m7xFlip,
		&p.m7yFlip, &p.m7extBg, &p.m7startX, &p.m7startY,

		&p.windowLayer, &p.window1Left, &p.window1Right, &p.window2Left, &p.window2Right,

		&p.clipMode, &p.preventMathMode, &p.addSubscreen, &p.subtractColor,
		&p.halfColor, &p.mathEnabledArray, &p.fixedColorR, &p.fixedColorG, &p.fixedColorB,

		&p.forcedBlank, &p.brightness, &p.mode, &p.bg3Priority, &p.evenFrame,
		&p.pseudoHires, &p.interlace, &p.frameInterlace, &p.overscan,
		&p.frameOverscan, &p.directColor,

		&p.hCount, &p.hCountSecond, &p.vCountSecond, &p.countersLatched,

		&currentScanline, &lastRenderedX,

		&p.FrameCounter, &p.VBlankFlag, &p.FrameComplete, &p.frameStarted,
	}

	for _, f := range fields {
		if err := binary.Read(buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}

	p.mosaicStartline = int(mosaicStartline)
	p.currentScanline = int(currentScanline)
	p.lastRenderedX = int(lastRenderedX)
	return nil
}
