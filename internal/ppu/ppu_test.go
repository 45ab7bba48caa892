package ppu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetEngagesForcedBlankAtFullBrightness(t *testing.T) {
	p := NewPPU(nil)
	require.True(t, p.forcedBlank, "forced blank should be engaged after reset")
	require.EqualValues(t, 15, p.brightness)
}

func TestForcedBlankProducesBlackPixels(t *testing.T) {
	p := NewPPU(nil)
	p.Write8(0x00, 0x80) // INIDISP forced blank
	require.Zero(t, p.handlePixel(0, 0))
}

func TestVMDATAWriteAutoIncrementsLowByteMode(t *testing.T) {
	p := NewPPU(nil)
	p.Write8(0x15, 0x00) // VMAIN: increment by 1 on low byte write
	p.Write8(0x16, 0x10) // VMADDL
	p.Write8(0x17, 0x00) // VMADDH
	p.Write8(0x19, 0x12) // VMDATAH
	p.Write8(0x18, 0x34) // VMDATAL
	require.EqualValues(t, 0x1234, p.VRAM[0x10])
	require.EqualValues(t, 0x11, p.vramPointer)
}

func TestCGRAMWriteIsTwoByteLatched(t *testing.T) {
	p := NewPPU(nil)
	p.Write8(0x21, 0x05) // CGADD = palette entry 5
	p.Write8(0x22, 0xff) // low byte buffered
	require.Zero(t, p.CGRAM[5], "CGRAM entry should not commit until the second byte write")
	p.Write8(0x22, 0x7f) // high byte commits
	require.EqualValues(t, 0x7fff, p.CGRAM[5])
}

func TestCGRAMReadRoundTrips(t *testing.T) {
	p := NewPPU(nil)
	p.CGRAM[3] = 0x1234
	p.Write8(0x21, 0x03)
	lo := p.Read8(0x3b)
	hi := p.Read8(0x3b)
	require.EqualValues(t, 0x34, lo)
	require.EqualValues(t, 0x12, hi)
}

func TestOAMDataWritePairsIntoWord(t *testing.T) {
	p := NewPPU(nil)
	p.Write8(0x02, 0x00) // OAMADDL
	p.Write8(0x03, 0x00) // OAMADDH
	p.Write8(0x04, 0xcd)
	p.Write8(0x04, 0xab)
	require.EqualValues(t, 0xabcd, p.OAM[0])
}

func TestBG1ScrollRegistersCombineTwoWrites(t *testing.T) {
	p := NewPPU(nil)
	p.Write8(0x0d, 0x7f) // BG1HOFS low
	p.Write8(0x0d, 0x01) // BG1HOFS high (completes a 13-bit value)
	require.EqualValues(t, 0x17f, p.bgLayer[0].HScroll&0x3ff)
}

func TestTMEnablesMainScreenLayers(t *testing.T) {
	p := NewPPU(nil)
	p.Write8(0x2c, 0x01) // TM: BG1 only
	require.True(t, p.layer[0].MainScreenEnabled, "BG1 should be enabled on the main screen")
	require.False(t, p.layer[1].MainScreenEnabled, "BG2 should not be enabled on the main screen")
}

func TestCatchUpRendersOnlyUpToRequestedDot(t *testing.T) {
	p := NewPPU(nil)
	p.Write8(0x00, 0x0f) // clear forced blank, full brightness
	p.CatchUp(10)
	require.EqualValues(t, 10, p.lastRenderedX)
	p.CatchUp(20)
	require.EqualValues(t, 20, p.lastRenderedX)
}

func TestStepPPUAdvancesScanlinesAndFrames(t *testing.T) {
	p := NewPPU(nil)
	require.NoError(t, p.StepPPU(uint64(DotsPerScanline)*ScanlinesPerFrame))
	require.True(t, p.FrameComplete, "expected FrameComplete after stepping a full frame's worth of dots")
	require.Zero(t, p.currentScanline)
}

func TestVBlankFlagSetsAtVisibleScanlineBoundary(t *testing.T) {
	p := NewPPU(nil)
	require.NoError(t, p.StepPPU(uint64(DotsPerScanline)*VisibleScanlines))
	require.True(t, p.VBlankFlag, "VBlankFlag should be set once the visible scanlines have elapsed")
}
