// Package clock drives the CPU, PPU and APU from a single master
// oscillator, the same cooperative-scheduling shape a software SNES core
// needs since none of the three chips has its own independent clock
// source in hardware: they all divide down from one crystal.
package clock

import "fmt"

// Master clock rates, in Hz. The SNES CPU clock is itself a divided-down
// fraction of the master clock (roughly /6 for most access, /8 in
// FastROM-fast banks); PPU dot timing and APU/DSP sample generation are
// both more naturally expressed against the same master rate.
const (
	MasterClockNTSC = 21477272
	MasterClockPAL  = 21281370

	// CPU clock approximations used for bulk cycle accounting; real
	// hardware varies this per-access (SlowROM/FastROM, WRAM vs I/O).
	// Neither that variation nor time spent in DMA is modeled; the
	// scheduler uses this average throughout.
	CPUClockNTSC = MasterClockNTSC / 6
	CPUClockPAL  = MasterClockPAL / 6

	// The S-DSP produces samples at the classic 32000 Hz output rate
	// regardless of region; the scheduler runs one APU tick every
	// MasterClock/32000 master cycles (671 NTSC, 665 PAL).
	APUSampleRate = 32000
)

// MasterClock coordinates CPU, PPU and APU stepping by cycle counters:
// each component names the master-clock cycle it should next run at, and
// Step() advances whichever component is due, then advances the master
// counter by one tick.
type MasterClock struct {
	Cycle uint64

	CPUSpeed uint32
	PPUSpeed uint32
	APUSpeed uint32

	CPUNextCycle uint64
	PPUNextCycle uint64
	APUNextCycle uint64

	CPUStep func(cycles uint64) error
	PPUStep func(cycles uint64) error
	APUStep func(cycles uint64) error
}

// NewMasterClock creates a scheduler ticking at the given component
// rates (all expressed in Hz against the same master clock).
func NewMasterClock(cpuSpeed, ppuSpeed, apuSpeed uint32) *MasterClock {
	return &MasterClock{CPUSpeed: cpuSpeed, PPUSpeed: ppuSpeed, APUSpeed: apuSpeed}
}

// NewNTSCClock wires up a scheduler at NTSC master/CPU/APU rates; the PPU
// runs at the master clock rate for per-dot accounting.
func NewNTSCClock() *MasterClock {
	return NewMasterClock(CPUClockNTSC, MasterClockNTSC, APUSampleRate)
}

// NewPALClock is the PAL equivalent of NewNTSCClock.
func NewPALClock() *MasterClock {
	return NewMasterClock(CPUClockPAL, MasterClockPAL, APUSampleRate)
}

// Step advances whichever component is due to run and ticks the master
// counter by one cycle, returning the number of master cycles advanced.
func (c *MasterClock) Step() (uint64, error) {
	if c.CPUStep != nil && c.Cycle >= c.CPUNextCycle {
		cyclesToRun := c.Cycle - c.CPUNextCycle + 1
		if err := c.CPUStep(cyclesToRun); err != nil {
			return 0, fmt.Errorf("cpu step: %w", err)
		}
		c.CPUNextCycle = c.Cycle + masterCyclesPerTick(c.PPUSpeed, c.CPUSpeed)
	}

	if c.PPUStep != nil && c.Cycle >= c.PPUNextCycle {
		cyclesToRun := c.Cycle - c.PPUNextCycle + 1
		if err := c.PPUStep(cyclesToRun); err != nil {
			return 0, fmt.Errorf("ppu step: %w", err)
		}
		c.PPUNextCycle = c.Cycle + 1
	}

	if c.APUStep != nil && c.Cycle >= c.APUNextCycle {
		cyclesToRun := c.Cycle - c.APUNextCycle + 1
		if err := c.APUStep(cyclesToRun); err != nil {
			return 0, fmt.Errorf("apu step: %w", err)
		}
		c.APUNextCycle = c.Cycle + masterCyclesPerTick(c.PPUSpeed, c.APUSpeed)
	}

	c.Cycle++
	return 1, nil
}

// masterCyclesPerTick converts a component's own clock rate into a count
// of master-clock ticks per component cycle, given the master rate
// (passed as PPUSpeed, since the PPU is defined to run at master rate).
func masterCyclesPerTick(masterRate, componentRate uint32) uint64 {
	if componentRate == 0 {
		return 1
	}
	ratio := uint64(masterRate) / uint64(componentRate)
	if ratio == 0 {
		return 1
	}
	return ratio
}

// StepCycles advances the clock by a specific number of master cycles.
func (c *MasterClock) StepCycles(cycles uint64) error {
	for i := uint64(0); i < cycles; i++ {
		if _, err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (c *MasterClock) GetCycle() uint64 { return c.Cycle }

func (c *MasterClock) Reset() {
	c.Cycle = 0
	c.CPUNextCycle = 0
	c.PPUNextCycle = 0
	c.APUNextCycle = 0
}
