// Package ppu implements the S-PPU: the pair of video chips that compose
// backgrounds, sprites, Mode 7, windows, and color math into a framebuffer
// one pixel at a time, kept in lockstep with the main CPU through the
// catch-up discipline in scanline.go.
package ppu

import "nitro-core-dx/internal/debug"

// Real hardware sizing: 0x8000 16-bit VRAM words, 0x100 16-bit CGRAM
// entries, a 0x100-word OAM low table plus a 0x20-byte OAM high table.
const (
	vramWords  = 0x8000
	cgramWords = 0x100
	oamWords   = 0x100
	oamHighLen = 0x20
)

// layer/priority tables indexed by an "effective mode" (0-7 plus two
// synthetic modes: 8 for mode 1 with BG3 given top priority, 9 for mode 7
// with the extra background layer enabled). Layer 4 is sprites, 5 is
// nonexistent (never matches, so falls through to backdrop).
var layersPerMode = [10][12]int{
	{4, 0, 1, 4, 0, 1, 4, 2, 3, 4, 2, 3},
	{4, 0, 1, 4, 0, 1, 4, 2, 4, 2, 5, 5},
	{4, 0, 4, 1, 4, 0, 4, 1, 5, 5, 5, 5},
	{4, 0, 4, 1, 4, 0, 4, 1, 5, 5, 5, 5},
	{4, 0, 4, 1, 4, 0, 4, 1, 5, 5, 5, 5},
	{4, 0, 4, 1, 4, 0, 4, 1, 5, 5, 5, 5},
	{4, 0, 4, 4, 0, 4, 5, 5, 5, 5, 5, 5},
	{4, 4, 4, 0, 4, 5, 5, 5, 5, 5, 5, 5},
	{2, 4, 0, 1, 4, 0, 1, 4, 4, 2, 5, 5},
	{4, 4, 1, 4, 0, 4, 1, 5, 5, 5, 5, 5},
}

var prioritiesPerMode = [10][12]int{
	{3, 1, 1, 2, 0, 0, 1, 1, 1, 0, 0, 0},
	{3, 1, 1, 2, 0, 0, 1, 1, 0, 0, 5, 5},
	{3, 1, 2, 1, 1, 0, 0, 0, 5, 5, 5, 5},
	{3, 1, 2, 1, 1, 0, 0, 0, 5, 5, 5, 5},
	{3, 1, 2, 1, 1, 0, 0, 0, 5, 5, 5, 5},
	{3, 1, 2, 1, 1, 0, 0, 0, 5, 5, 5, 5},
	{3, 1, 2, 1, 0, 0, 5, 5, 5, 5, 5, 5},
	{3, 2, 1, 0, 0, 5, 5, 5, 5, 5, 5, 5},
	{1, 3, 1, 1, 2, 0, 0, 1, 0, 0, 5, 5},
	{3, 2, 1, 1, 0, 0, 0, 5, 5, 5, 5, 5},
}

var layerCountPerMode = [10]int{12, 10, 8, 8, 8, 8, 6, 5, 10, 7}

var bitDepthsPerMode = [10][4]int{
	{2, 2, 2, 2}, {4, 4, 2, 5}, {4, 4, 5, 5}, {8, 4, 5, 5}, {8, 2, 5, 5},
	{4, 2, 5, 5}, {4, 5, 5, 5}, {8, 5, 5, 5}, {4, 4, 2, 5}, {8, 7, 5, 5},
}

var spriteSizes = [8][2]int{{8, 16}, {8, 32}, {8, 64}, {16, 32}, {16, 64}, {32, 64}, {16, 32}, {16, 32}}

// BgLayer holds one background layer's scroll and tilemap/character-data
// configuration, grounded on the original's BgLayer struct field set.
type BgLayer struct {
	HScroll, VScroll               uint16
	TilemapWider, TilemapHigher    bool
	TilemapAdr                     uint16
	TileAdr                        uint16
	BigTiles                       bool
	MosaicEnabled                  bool
}

// Layer tracks whether a composable layer (BG0-3 or sprites) participates
// in the main/sub screen and whether its participation is windowed.
type Layer struct {
	MainScreenEnabled, SubScreenEnabled   bool
	MainScreenWindowed, SubScreenWindowed bool
}

// WindowLayer is one of the six window-maskable targets (BG1-4, sprites,
// the color window) and its two-window enable/invert/logic configuration.
type WindowLayer struct {
	Window1Enabled, Window2Enabled   bool
	Window1Inversed, Window2Inversed bool
	MaskLogic                        uint8
}

// PPU is the S-PPU: VRAM/CGRAM/OAM storage, the BG/sprite/Mode 7/window/
// color-math register file, and the per-pixel compositor driven by the
// master clock through StepPPU.
type PPU struct {
	VRAM  [vramWords]uint16
	CGRAM [cgramWords]uint16
	OAM   [oamWords]uint16
	HighOAM [oamHighLen]uint8

	vramPointer        uint16
	vramIncrementOnHi  bool
	vramIncrement      uint16
	vramRemapMode      uint8
	vramReadBuffer     uint16

	cgramPointer    uint8
	cgramSecondWrite bool
	cgramBuffer     uint8

	oamAddr, oamAddrWritten   uint8
	oamInHigh, oamInHighWritten bool
	oamSecondWrite            bool
	oamBuffer                 uint8
	objPriority               bool
	objTileAdr1, objTileAdr2  uint16
	objSize                   uint8
	objPixelBuffer            [256]uint8
	objPriorityBuffer         [256]uint8
	objInterlace              bool
	rangeOver, timeOver       bool

	bgLayer [4]BgLayer
	layer   [5]Layer

	scrollPrev, scrollPrev2 uint8
	mosaicSize              uint8
	mosaicStartline         int

	m7matrix                     [8]int16
	m7prev                       uint8
	m7largeField, m7charFill     bool
	m7xFlip, m7yFlip, m7extBg    bool
	m7startX, m7startY           int32

	windowLayer                      [6]WindowLayer
	window1Left, window1Right        uint8
	window2Left, window2Right        uint8

	clipMode, preventMathMode uint8
	addSubscreen              bool
	subtractColor, halfColor  bool
	mathEnabledArray          [6]bool
	fixedColorR, fixedColorG, fixedColorB uint8

	forcedBlank bool
	brightness  uint8
	mode        uint8
	bg3Priority bool
	evenFrame   bool
	pseudoHires bool
	interlace, frameInterlace bool
	overscan, frameOverscan   bool
	directColor               bool

	hCount                     uint16
	hCountSecond, vCountSecond bool
	countersLatched            bool

	currentScanline int
	lastRenderedX   int

	// OutputBuffer is the composed RGB888 framebuffer, 256x224, one entry
	// per visible pixel (interlace field doubling is not modeled).
	OutputBuffer [ScreenWidth * ScreenHeight]uint32

	FrameCounter uint16
	VBlankFlag   bool
	FrameComplete bool

	frameStarted bool

	logger *debug.Logger
}

// NewPPU creates a PPU in its post-reset state.
func NewPPU(logger *debug.Logger) *PPU {
	p := &PPU{logger: logger}
	p.Reset()
	return p
}

// Reset restores power-on defaults: forced blank engaged, full brightness,
// mode 0, and all VRAM/CGRAM/OAM storage cleared.
func (p *PPU) Reset() {
	p.VRAM = [vramWords]uint16{}
	p.vramPointer = 0
	p.vramIncrementOnHi = false
	p.vramIncrement = 1
	p.vramRemapMode = 0
	p.vramReadBuffer = 0

	p.CGRAM = [cgramWords]uint16{}
	p.cgramPointer = 0
	p.cgramSecondWrite = false

	p.OAM = [oamWords]uint16{}
	p.HighOAM = [oamHighLen]uint8{}
	p.oamAddr, p.oamAddrWritten = 0, 0
	p.oamInHigh, p.oamInHighWritten = false, false
	p.oamSecondWrite = false
	p.objPriority = false
	p.objTileAdr1, p.objTileAdr2 = 0, 0
	p.objSize = 0
	p.objPixelBuffer = [256]uint8{}
	p.objPriorityBuffer = [256]uint8{}
	p.timeOver, p.rangeOver = false, false
	p.objInterlace = false

	p.bgLayer = [4]BgLayer{}
	p.scrollPrev, p.scrollPrev2 = 0, 0
	p.mosaicSize = 1
	p.mosaicStartline = 1

	p.layer = [5]Layer{}

	p.m7matrix = [8]int16{}
	p.m7prev = 0
	p.m7largeField, p.m7charFill, p.m7xFlip, p.m7yFlip, p.m7extBg = false, false, false, false, false
	p.m7startX, p.m7startY = 0, 0

	p.windowLayer = [6]WindowLayer{}
	p.window1Left, p.window1Right, p.window2Left, p.window2Right = 0, 0, 0, 0

	p.clipMode, p.preventMathMode = 0, 0
	p.addSubscreen, p.subtractColor, p.halfColor = false, false, false
	p.mathEnabledArray = [6]bool{}
	p.fixedColorR, p.fixedColorG, p.fixedColorB = 0, 0, 0

	p.forcedBlank = true
	p.brightness = 15
	p.mode = 0
	p.bg3Priority = false
	p.evenFrame = false
	p.pseudoHires = false
	p.overscan, p.frameOverscan = false, false
	p.interlace, p.frameInterlace = false, false
	p.directColor = false

	p.hCount = 0
	p.hCountSecond, p.vCountSecond = false, false
	p.countersLatched = false

	p.lastRenderedX = 0
	p.OutputBuffer = [ScreenWidth * ScreenHeight]uint32{}
}

// effectiveMode folds the BG3-priority and Mode 7 extbg variants into the
// synthetic mode indices the layer/priority tables expect.
func (p *PPU) effectiveMode() int {
	m := int(p.mode)
	if m == 1 && p.bg3Priority {
		return 8
	}
	if m == 7 && p.m7extBg {
		return 9
	}
	return m
}

// getVramRemap applies the configured VRAM address-scrambling mode to the
// current VRAM pointer, used by the CPU-facing $2118/$2119/$2139/$213A
// data ports (tile data fetches during rendering read VRAM directly and
// are unaffected by this remap).
func (p *PPU) getVramRemap() uint16 {
	adr := p.vramPointer
	switch p.vramRemapMode {
	case 1:
		return (adr & 0xff00) | ((adr & 0xe0) >> 5) | ((adr & 0x1f) << 3)
	case 2:
		return (adr & 0xfe00) | ((adr & 0x1c0) >> 6) | ((adr & 0x3f) << 3)
	case 3:
		return (adr & 0xfc00) | ((adr & 0x380) >> 7) | ((adr & 0x7f) << 3)
	default:
		return adr
	}
}

// GetScanline returns the scanline currently being rendered, for cycle
// logging and debug tooling.
func (p *PPU) GetScanline() int { return p.currentScanline }

// GetDot returns the current horizontal dot position.
func (p *PPU) GetDot() int { return int(p.hCount) }

// GetOAMByteIndex returns the current OAM write cursor as a byte offset
// (word index doubled, plus one if the low byte of a pending pair has
// already been latched), mirroring how debug tooling inspects mid-write
// OAM state.
func (p *PPU) GetOAMByteIndex() uint8 {
	idx := uint16(p.oamAddr) * 2
	if p.oamSecondWrite {
		idx++
	}
	return uint8(idx)
}

// colorFromCGRAM converts a BGR555 CGRAM entry to RGB888, scaling each
// 5-bit component into the 8-bit range with the 3/2-bit replication real
// DACs use rather than a naive *255/31 (matches the original's (v<<3)|(v>>2)).
func colorFromCGRAM(entry uint16) uint32 {
	r := uint32(entry & 0x1f)
	g := uint32((entry >> 5) & 0x1f)
	b := uint32((entry >> 10) & 0x1f)
	scale := func(v uint32) uint32 { return (v << 3) | (v >> 2) }
	return scale(r)<<16 | scale(g)<<8 | scale(b)
}
