// Package apu wires the SPC700 sound CPU and S-DSP into the Apu unit
// the main CPU talks to through four mailbox ports at $2140-$2143
// (mirrored through $217F) and the memory bus's DMA engine.
package apu

import (
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/dsp"
	"nitro-core-dx/internal/spc700"
)

// Timer models one of the SPC700's three hardware timers: a divider
// ticking at a fixed rate produces an 8-bit stage-1 counter compared
// against Target; on match it resets and increments the 4-bit
// stage-2 counter the sound program reads back.
type Timer struct {
	Divider  uint16
	Stage1   uint8
	Target   uint8
	Counter  uint8
	Enabled  bool
	Period   uint16
}

func (t *Timer) tick(cycles uint64) {
	t.Divider += uint16(cycles)
	target := uint16(t.Target)
	if target == 0 {
		target = 256
	}
	for uint64(t.Divider) >= uint64(t.Period) {
		t.Divider -= t.Period
		if !t.Enabled {
			continue
		}
		t.Stage1++
		if uint16(t.Stage1) >= target {
			t.Stage1 = 0
			t.Counter = (t.Counter + 1) & 0x0F
		}
	}
}

// APU is the Audio Processing Unit: the SPC700 core, the S-DSP, a 64KiB
// shared RAM image (the IPL ROM is overlaid on top of it, not stored
// separately), and the mailbox/timer glue the two CPUs communicate
// through.
//
//	$0000-00EF  zero page RAM
//	$00F0-00FF  sound CPU registers (TEST, CONTROL, DSP addr/data,
//	            mailbox ports, timer targets/counters)
//	$0100-01FF  stack page RAM
//	$0200-FFBF  RAM
//	$FFC0-FFFF  IPL ROM, or RAM once CONTROL's ROM-enable bit is cleared
type APU struct {
	Ram []uint8

	Spc *spc700.SPC700
	Dsp *dsp.Dsp

	Timers [3]Timer

	// InPorts is written by the main CPU (at $2140-2143) and read by
	// the SPC700 at $F4-$F7. OutPorts is the other direction.
	InPorts  [4]uint8
	OutPorts [4]uint8

	romReadable bool
	dspAddr     uint8

	Logger *debug.Logger
}

const (
	timerPeriod01 = 128 // SPC cycles per 8kHz tick
	timerPeriod2  = 16  // SPC cycles per 64kHz tick
)

// NewAPU allocates the shared sound RAM and wires the SPC700 core to
// this Apu as its memory, and the DSP to the same RAM slice.
func NewAPU(logger *debug.Logger) *APU {
	a := &APU{
		Ram:    make([]uint8, 0x10000),
		Logger: logger,
	}
	a.Timers[0].Period = timerPeriod01
	a.Timers[1].Period = timerPeriod01
	a.Timers[2].Period = timerPeriod2
	a.Dsp = dsp.NewDsp(a.Ram)
	a.Spc = spc700.NewSPC700(a)
	return a
}

// Init performs one-time setup; for this core that's just confirming
// the components are wired, kept as a named step to match the
// Init/Reset split real SNES cores use.
func (a *APU) Init() {}

// Reset puts the APU back in its post-power-on state: IPL ROM mapped
// in, SPC700 PC loaded from the ROM's reset vector, DSP silenced.
func (a *APU) Reset() {
	a.romReadable = true
	a.dspAddr = 0
	a.InPorts = [4]uint8{}
	a.OutPorts = [4]uint8{}
	a.Timers = [3]Timer{{Period: timerPeriod01}, {Period: timerPeriod01}, {Period: timerPeriod2}}
	a.Dsp.Reset()
	a.Spc.Reset()
}

// RunCycles advances the SPC700 and its timers by roughly the given
// number of SPC cycles (it runs whole instructions, so it may overrun
// slightly — the same granularity real cooperative SNES cores accept).
func (a *APU) RunCycles(cycles uint64) error {
	target := a.Spc.Cycles + cycles
	for a.Spc.Cycles < target {
		consumed, err := a.Spc.Step()
		if err != nil {
			return err
		}
		a.tickTimers(consumed)
	}
	return nil
}

func (a *APU) tickTimers(cycles uint64) {
	for i := range a.Timers {
		a.Timers[i].tick(cycles)
	}
}

// Cycle runs the DSP forward by exactly one sample tick. The caller
// (the master clock, via StepAPU) decides the SPC-cycles-per-sample
// ratio and calls RunCycles then Cycle in lockstep.
func (a *APU) Cycle() {
	a.Dsp.Cycle()
}

// Read implements spc700.Memory: the SPC700's view of its own address
// space, including the $F0-$FF register window and the IPL ROM
// overlay.
func (a *APU) Read(addr uint16) uint8 {
	switch {
	case addr == 0xF0:
		return 0
	case addr == 0xF1:
		return a.controlRegister()
	case addr == 0xF2:
		return a.dspAddr
	case addr == 0xF3:
		return a.Dsp.Read(a.dspAddr)
	case addr >= 0xF4 && addr <= 0xF7:
		return a.InPorts[addr-0xF4]
	case addr >= 0xFA && addr <= 0xFC:
		return 0 // timer targets are write-only
	case addr >= 0xFD && addr <= 0xFF:
		idx := addr - 0xFD
		v := a.Timers[idx].Counter
		a.Timers[idx].Counter = 0
		return v
	case addr >= 0xFFC0 && a.romReadable:
		rom := spc700.IPLROM()
		return rom[addr-0xFFC0]
	default:
		return a.Ram[addr]
	}
}

func (a *APU) controlRegister() uint8 {
	v := uint8(0)
	if a.romReadable {
		v |= 0x80
	}
	for i := 0; i < 3; i++ {
		if a.Timers[i].Enabled {
			v |= 1 << i
		}
	}
	return v
}

// Write implements spc700.Memory.
func (a *APU) Write(addr uint16, value uint8) {
	switch {
	case addr == 0xF1:
		a.romReadable = value&0x80 != 0
		for i := 0; i < 3; i++ {
			wasEnabled := a.Timers[i].Enabled
			a.Timers[i].Enabled = value&(1<<i) != 0
			if !wasEnabled && a.Timers[i].Enabled {
				a.Timers[i].Stage1 = 0
				a.Timers[i].Counter = 0
			}
		}
		if value&0x10 != 0 {
			a.InPorts[0], a.InPorts[1] = 0, 0
		}
		if value&0x20 != 0 {
			a.InPorts[2], a.InPorts[3] = 0, 0
		}
		a.Ram[addr] = value
	case addr == 0xF2:
		a.dspAddr = value & 0x7F
	case addr == 0xF3:
		a.Dsp.Write(a.dspAddr, value)
	case addr >= 0xF4 && addr <= 0xF7:
		a.OutPorts[addr-0xF4] = value
	case addr >= 0xFA && addr <= 0xFC:
		a.Timers[addr-0xFA].Target = value
	case addr >= 0xFD && addr <= 0xFF:
		// read-only
	default:
		a.Ram[addr] = value
	}
}

// --- main-CPU-visible side: memory.IOHandler ($2140-217F window) -------

// Read8 is called by the memory bus for offsets within the Apu's
// register window (relative to $2140); the four mailbox ports mirror
// every 4 bytes across the full $2140-217F span.
func (a *APU) Read8(offset uint16) uint8 {
	return a.OutPorts[offset&0x03]
}

// Write8 latches a byte the main CPU sent to the SPC700's mailbox.
func (a *APU) Write8(offset uint16, value uint8) {
	a.InPorts[offset&0x03] = value
	if a.Logger != nil {
		a.Logger.LogAPUf(debug.LogLevelDebug, "mailbox write port=%d value=%#02x", offset&0x03, value)
	}
}

func (a *APU) Read16(offset uint16) uint16 {
	lo := a.Read8(offset)
	hi := a.Read8(offset + 1)
	return uint16(lo) | uint16(hi)<<8
}

func (a *APU) Write16(offset uint16, value uint16) {
	a.Write8(offset, uint8(value))
	a.Write8(offset+1, uint8(value>>8))
}

// StepAPU advances the SPC700 by the number of SPC cycles that
// correspond to one master-clock tick at the scheduler's APU rate,
// then ticks the DSP once. The clock scheduler's APUSpeed is set to
// the 32kHz sample rate, so a "cycle" here is one sample period.
func (a *APU) StepAPU(cycles uint64) error {
	const spcCyclesPerSample = 32 // ~1.024MHz SPC clock / 32kHz sample rate
	if err := a.RunCycles(cycles * spcCyclesPerSample); err != nil {
		return err
	}
	a.Cycle()
	return nil
}
