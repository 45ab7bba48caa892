package ppu

// Real SNES NTSC timing: 341 dots per scanline, 262 scanlines per frame,
// 224 of which are visible.
const (
	ScreenWidth       = 256
	ScreenHeight      = 224
	DotsPerScanline   = 341
	ScanlinesPerFrame = 262
	VisibleScanlines  = 224
)

// StepPPU advances the PPU by the given number of master-clock-derived
// dot cycles, driving frame/scanline boundaries. Per-pixel rendering does
// not happen here: it happens lazily in CatchUp, invoked from register
// reads/writes and from endScanline, matching real hardware's h_pos-gated
// rendering rather than a naive render-every-dot loop.
func (p *PPU) StepPPU(cycles uint64) error {
	for i := uint64(0); i < cycles; i++ {
		p.stepDot()
	}
	return nil
}

func (p *PPU) stepDot() {
	if !p.frameStarted {
		p.startFrame()
	}

	p.hCount++
	if int(p.hCount) >= DotsPerScanline {
		p.hCount = 0
		p.endScanline()
	}
}

func (p *PPU) startFrame() {
	p.frameStarted = true
	p.currentScanline = 0
	p.hCount = 0
	p.lastRenderedX = 0
	p.VBlankFlag = false
	p.FrameComplete = false
	p.evenFrame = !p.evenFrame
}

// endScanline finishes rendering whatever pixels remain on the current
// line, then advances to the next scanline or wraps to a new frame.
func (p *PPU) endScanline() {
	if p.currentScanline < VisibleScanlines {
		p.CatchUp(DotsPerScanline)
	}

	p.currentScanline++
	p.lastRenderedX = 0

	if p.currentScanline == VisibleScanlines {
		p.VBlankFlag = true
		p.handleVblank()
	}

	if p.currentScanline >= ScanlinesPerFrame {
		p.currentScanline = 0
		p.FrameComplete = true
		p.FrameCounter++
		p.frameStarted = false
	}
}

// handleVblank latches OAM address reload and recomputes per-frame state
// that only changes once per vblank (overscan/interlace latching).
func (p *PPU) handleVblank() {
	p.oamAddr = p.oamAddrWritten
	p.oamInHigh = p.oamInHighWritten
	p.overscan = p.frameOverscan
	p.interlace = p.frameInterlace
}

// CatchUp renders every pixel from the last-rendered x coordinate on the
// current scanline up to the pixel position implied by hPos. Called
// whenever the CPU touches a PPU register mid-scanline so reads/writes
// observe a framebuffer that is rendered exactly up to "now", instead of
// deferring all rendering to end-of-scanline/frame.
func (p *PPU) CatchUp(hPos int) {
	if p.currentScanline >= VisibleScanlines {
		return
	}
	targetX := hPos
	if targetX > ScreenWidth {
		targetX = ScreenWidth
	}
	if p.lastRenderedX == 0 {
		p.calculateMode7Starts(p.currentScanline)
		p.evaluateSprites(p.currentScanline)
	}
	for x := p.lastRenderedX; x < targetX; x++ {
		p.renderPixel(p.currentScanline, x)
	}
	p.lastRenderedX = targetX
}

// renderPixel computes one composited pixel and stores it in OutputBuffer.
func (p *PPU) renderPixel(scanline, x int) {
	if scanline < 0 || scanline >= ScreenHeight || x < 0 || x >= ScreenWidth {
		return
	}
	color := p.handlePixel(scanline, x)
	p.OutputBuffer[scanline*ScreenWidth+x] = color
}

// LatchHV handles an external latch pulse: it sets the latched flag and
// resets the $213C/$213D low/high read toggles. It does not copy the
// counters; reads of those registers return the live H/V counters.
func (p *PPU) LatchHV() {
	p.countersLatched = true
	p.hCountSecond, p.vCountSecond = false, false
}
