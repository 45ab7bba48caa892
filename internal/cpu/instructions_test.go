package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetEntersEmulationMode(t *testing.T) {
	mem := &fakeMem{}
	load(mem, 0, VectorRESET, 0x00, 0x80)
	c := NewCPU(mem, nil)
	c.Reset()
	require.True(t, c.Reg.E, "reset should enter emulation mode")
	require.EqualValues(t, 0x01FF, c.Reg.S)
	require.EqualValues(t, 0x8000, c.Reg.PC, "should load from reset vector")
}

func TestLDAImmediate8Bit(t *testing.T) {
	c, mem := newTestCPU()
	load(mem, 1, 0x8000, 0xA9, 0x42) // LDA #$42
	_, err := c.Step()
	require.NoError(t, err)
	require.EqualValues(t, 0x42, c.GetA())
	require.False(t, c.GetFlag(FlagZ), "Z should be clear for a positive nonzero load")
	require.False(t, c.GetFlag(FlagN), "N should be clear for a positive nonzero load")
}

func TestLDAImmediate16Bit(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.E = false
	c.SetFlag(FlagM, false)
	load(mem, 1, 0x8000, 0xA9, 0x34, 0x12) // LDA #$1234
	_, err := c.Step()
	require.NoError(t, err)
	require.EqualValues(t, 0x1234, c.GetA())
}

func TestADCBinaryCarryAndOverflow(t *testing.T) {
	c, mem := newTestCPU()
	c.SetA(0x7F)
	c.SetFlag(FlagC, false)
	load(mem, 1, 0x8000, 0x69, 0x01) // ADC #$01
	_, err := c.Step()
	require.NoError(t, err)
	require.EqualValues(t, 0x80, c.GetA())
	require.True(t, c.GetFlag(FlagV), "signed overflow 0x7F+1 should set V")
	require.True(t, c.GetFlag(FlagN), "result 0x80 should set N")
}

func TestADCDecimalMode(t *testing.T) {
	c, mem := newTestCPU()
	c.SetA(0x09)
	c.SetFlag(FlagD, true)
	c.SetFlag(FlagC, false)
	load(mem, 1, 0x8000, 0x69, 0x01) // ADC #$01, decimal: 09 + 01 = 10 (BCD)
	_, err := c.Step()
	require.NoError(t, err)
	require.EqualValues(t, 0x10, c.GetA())
}

func TestSBCBinaryBorrow(t *testing.T) {
	c, mem := newTestCPU()
	c.SetA(0x05)
	c.SetFlag(FlagC, true)          // no borrow going in
	load(mem, 1, 0x8000, 0xE9, 0x06) // SBC #$06
	_, err := c.Step()
	require.NoError(t, err)
	require.EqualValues(t, 0xFF, c.GetA())
	require.False(t, c.GetFlag(FlagC), "borrow should clear carry")
}

func TestStackPushPop8Bit(t *testing.T) {
	c, mem := newTestCPU()
	c.SetA(0xAB)
	load(mem, 1, 0x8000, 0x48, 0x68) // PHA, PLA
	_, err := c.Step()
	require.NoError(t, err)
	c.SetA(0)
	_, err = c.Step()
	require.NoError(t, err)
	require.EqualValues(t, 0xAB, c.GetA(), "PHA/PLA round trip")
}

func TestEmulationModeStackWrapsToPage1(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.S = 0x0100
	load(mem, 1, 0x8000, 0x48) // PHA
	_, err := c.Step()
	require.NoError(t, err)
	require.EqualValues(t, 0x0100, c.Reg.S&0xFF00, "stack pointer high byte must stay 0x01 in emulation mode")
}

func TestBranchTaken(t *testing.T) {
	c, mem := newTestCPU()
	c.SetFlag(FlagZ, true)
	load(mem, 1, 0x8000, 0xF0, 0x05) // BEQ +5
	_, err := c.Step()
	require.NoError(t, err)
	require.EqualValues(t, 0x8007, c.Reg.PC)
}

func TestJSRRTS(t *testing.T) {
	c, mem := newTestCPU()
	load(mem, 1, 0x8000, 0x20, 0x00, 0x90) // JSR $9000
	load(mem, 1, 0x9000, 0x60)             // RTS
	_, err := c.Step()
	require.NoError(t, err)
	require.EqualValues(t, 0x9000, c.Reg.PC, "PC after JSR")
	_, err = c.Step()
	require.NoError(t, err)
	require.EqualValues(t, 0x8003, c.Reg.PC, "PC after RTS (return address + 1)")
}

func TestXCESwitchesToNativeMode(t *testing.T) {
	c, mem := newTestCPU()
	c.SetFlag(FlagC, false)    // will become E after XCE
	load(mem, 1, 0x8000, 0xFB) // XCE
	_, err := c.Step()
	require.NoError(t, err)
	require.False(t, c.Reg.E, "XCE with C clear should leave emulation mode")
}

func TestREPClearsMXForNativeWideMode(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.E = false
	c.Reg.P = FlagM | FlagX
	load(mem, 1, 0x8000, 0xC2, FlagM|FlagX) // REP #$30
	_, err := c.Step()
	require.NoError(t, err)
	require.False(t, c.GetFlag(FlagM), "REP should clear M")
	require.False(t, c.GetFlag(FlagX), "REP should clear X")
}

func TestMVNCopiesBlock(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.E = false
	c.SetFlag(FlagX, false)
	c.Reg.X = 0x1000
	c.Reg.Y = 0x2000
	c.Reg.A = 2 // move 3 bytes
	load(mem, 0x7E, 0x1000, 0xAA, 0xBB, 0xCC)
	load(mem, 1, 0x8000, 0x54, 0x7E, 0x7E) // MVN destBank=$7E srcBank=$7E
	for i := 0; i < 3; i++ {
		_, err := c.Step()
		require.NoError(t, err)
	}
	require.EqualValues(t, 0xAA, mem.Read8(0x7E, 0x2000))
	require.EqualValues(t, 0xBB, mem.Read8(0x7E, 0x2001))
	require.EqualValues(t, 0xCC, mem.Read8(0x7E, 0x2002))
}

func TestInterruptPushesAndDisablesFurtherIRQ(t *testing.T) {
	c, mem := newTestCPU()
	load(mem, 0, VectorIRQEmulation, 0x00, 0x90)
	load(mem, 1, 0x8000, 0xEA) // NOP
	c.SetFlag(FlagI, false)
	c.SetIRQLine(true)
	_, err := c.Step()
	require.NoError(t, err)
	require.EqualValues(t, 0x9000, c.Reg.PC, "PC should jump to IRQ vector")
	require.True(t, c.GetFlag(FlagI), "IRQ entry should set the I flag")
}

func TestWAIWakesOnNMI(t *testing.T) {
	c, mem := newTestCPU()
	load(mem, 0, VectorNMIEmulation, 0x00, 0xA0)
	load(mem, 1, 0x8000, 0xCB) // WAI
	_, err := c.Step()
	require.NoError(t, err)
	require.True(t, c.waiting, "WAI should set waiting state")
	c.AssertNMI()
	_, err = c.Step()
	require.NoError(t, err)
	require.EqualValues(t, 0xA000, c.Reg.PC, "NMI should wake WAI and jump to vector")
}

func TestSTPHaltsExecution(t *testing.T) {
	c, mem := newTestCPU()
	load(mem, 1, 0x8000, 0xDB) // STP
	_, err := c.Step()
	require.NoError(t, err)
	pcBefore := c.Reg.PC
	_, err = c.Step()
	require.NoError(t, err)
	require.Equal(t, pcBefore, c.Reg.PC, "STP should halt the CPU, PC must not advance")
}
