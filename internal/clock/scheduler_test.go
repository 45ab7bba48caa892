package clock

import "testing"

func TestStepRunsCPUWhenDue(t *testing.T) {
	c := NewMasterClock(CPUClockNTSC, MasterClockNTSC, APUSampleRate)
	cpuRuns := 0
	c.CPUStep = func(cycles uint64) error { cpuRuns++; return nil }
	for i := 0; i < 10; i++ {
		if _, err := c.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if cpuRuns == 0 {
		t.Fatal("CPU callback should have run at least once")
	}
}

func TestPPURunsEveryMasterCycle(t *testing.T) {
	c := NewMasterClock(CPUClockNTSC, MasterClockNTSC, APUSampleRate)
	ppuRuns := 0
	c.PPUStep = func(cycles uint64) error { ppuRuns++; return nil }
	for i := 0; i < 100; i++ {
		if _, err := c.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if ppuRuns != 100 {
		t.Fatalf("PPU should tick once per master cycle: got %d want 100", ppuRuns)
	}
}

func TestAPUTicksSlowerThanMaster(t *testing.T) {
	c := NewMasterClock(CPUClockNTSC, MasterClockNTSC, APUSampleRate)
	apuRuns := 0
	c.APUStep = func(cycles uint64) error { apuRuns++; return nil }
	ratio := MasterClockNTSC / APUSampleRate
	for i := 0; i < ratio*3; i++ {
		if _, err := c.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if apuRuns < 2 || apuRuns > 4 {
		t.Fatalf("APU should tick roughly once per %d master cycles: got %d runs over %d cycles", ratio, apuRuns, ratio*3)
	}
}

func TestCPURunsLessOftenThanPPU(t *testing.T) {
	c := NewMasterClock(CPUClockNTSC, MasterClockNTSC, APUSampleRate)
	cpuRuns, ppuRuns := 0, 0
	c.CPUStep = func(cycles uint64) error { cpuRuns++; return nil }
	c.PPUStep = func(cycles uint64) error { ppuRuns++; return nil }
	for i := 0; i < 1000; i++ {
		if _, err := c.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if cpuRuns >= ppuRuns {
		t.Fatalf("CPU divides down from master clock, should run less often than PPU: cpu=%d ppu=%d", cpuRuns, ppuRuns)
	}
}

func TestStepCyclesAdvancesCounter(t *testing.T) {
	c := NewNTSCClock()
	if err := c.StepCycles(500); err != nil {
		t.Fatal(err)
	}
	if c.GetCycle() != 500 {
		t.Fatalf("cycle count: got %d want 500", c.GetCycle())
	}
}

func TestResetZeroesCounters(t *testing.T) {
	c := NewNTSCClock()
	c.StepCycles(200)
	c.Reset()
	if c.GetCycle() != 0 || c.CPUNextCycle != 0 || c.PPUNextCycle != 0 || c.APUNextCycle != 0 {
		t.Fatal("Reset should zero all cycle counters")
	}
}

func TestPALClockHasLowerRate(t *testing.T) {
	if MasterClockPAL >= MasterClockNTSC {
		t.Fatal("PAL master clock should be slightly slower than NTSC")
	}
}

func TestStepPropagatesComponentError(t *testing.T) {
	c := NewNTSCClock()
	wantErr := errBoom
	c.CPUStep = func(cycles uint64) error { return wantErr }
	if _, err := c.Step(); err == nil {
		t.Fatal("expected error from failing CPU step to propagate")
	}
}

var errBoom = &boomErr{}

type boomErr struct{}

func (*boomErr) Error() string { return "boom" }
