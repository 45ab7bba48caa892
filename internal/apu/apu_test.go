package apu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetMapsIPLROMAtResetVector(t *testing.T) {
	a := NewAPU(nil)
	a.Reset()
	require.EqualValues(t, 0xFFC0, a.Spc.Reg.PC)
}

func TestMailboxWriteIsVisibleToSPC(t *testing.T) {
	a := NewAPU(nil)
	a.Reset()
	a.Write8(0x00, 0x42) // main CPU writes $2140
	require.EqualValues(t, 0x42, a.Read(0xF4), "SPC700 should see the main CPU's mailbox write at $F4")
}

func TestMailboxMirrorsEvery4Bytes(t *testing.T) {
	a := NewAPU(nil)
	a.Reset()
	a.Write8(0x00, 0x11)
	require.EqualValues(t, 0x11, a.Read8(0x04), "offset 0x04 should mirror offset 0x00 (mod 4)")
}

func TestSPCWriteIsVisibleToMainCPU(t *testing.T) {
	a := NewAPU(nil)
	a.Reset()
	a.Write(0xF5, 0x99) // SPC700 writes port 1
	require.EqualValues(t, 0x99, a.Read8(0x01), "main CPU should see the SPC700's mailbox write at $2141")
}

func TestControlRegisterTogglesROMVisibility(t *testing.T) {
	a := NewAPU(nil)
	a.Reset()
	if a.Read(0xFFC0) == 0 && a.Read(0xFFC1) == 0 {
		t.Skip("IPL ROM bytes happen to be zero at this offset")
	}
	a.Write(0xF1, 0x00) // clear ROM-enable bit
	a.Ram[0xFFC0] = 0xAB
	require.EqualValues(t, 0xAB, a.Read(0xFFC0), "clearing the ROM-enable bit should expose underlying RAM")
}

func TestTimerCountsUpAtConfiguredPeriod(t *testing.T) {
	a := NewAPU(nil)
	a.Reset()
	a.Write(0xFA, 1)    // timer 0 target = 1
	a.Write(0xF1, 0x01) // enable timer 0
	a.tickTimers(timerPeriod01 * 2)
	require.NotZero(t, a.Timers[0].Counter, "timer 0 should have counted at least one tick")
}

func TestTimerCounterClearsOnRead(t *testing.T) {
	a := NewAPU(nil)
	a.Reset()
	a.Write(0xFA, 1)
	a.Write(0xF1, 0x01)
	a.tickTimers(timerPeriod01 * 2)
	first := a.Read(0xFD)
	require.NotZero(t, first, "expected a nonzero timer reading before clearing")
	require.Zero(t, a.Read(0xFD), "reading the timer counter register should clear it")
}

func TestStepAPUAdvancesSPCAndDSP(t *testing.T) {
	a := NewAPU(nil)
	a.Reset()
	before := a.Spc.Cycles
	require.NoError(t, a.StepAPU(1))
	require.Greater(t, a.Spc.Cycles, before, "StepAPU should advance the SPC700's cycle counter")
}
