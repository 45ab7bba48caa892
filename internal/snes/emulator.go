package snes

import (
	"fmt"
	"time"

	"nitro-core-dx/internal/apu"
	"nitro-core-dx/internal/clock"
	"nitro-core-dx/internal/cpu"
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/input"
	"nitro-core-dx/internal/memory"
	"nitro-core-dx/internal/ppu"
)

// Emulator represents the clock-driven emulator
// This is the FPGA-ready implementation using cycle-accurate clock scheduling
type Emulator struct {
	// Components
	CPU       *cpu.CPU
	Bus       *memory.Bus
	Cartridge *memory.Cartridge
	PPU       *ppu.PPU
	APU       *apu.APU
	Input     *input.InputSystem
	Logger    *debug.Logger

	// Clock scheduler (core of FPGA-ready design)
	Clock *clock.MasterClock

	// Frame timing (for compatibility with host systems)
	FrameLimitEnabled bool
	TargetFPS         float64
	FrameTime         time.Duration
	LastFrameTime     time.Time

	// Performance tracking
	FPS                float64
	FrameCount         uint64
	FPSUpdateTime      time.Time
	CPUCyclesPerFrame  uint32
	LastCPUCycles      uint32
	CyclesPerFrame     uint64 // 89,342 PPU dots per frame (262 scanlines × 341 dots)

	// State
	Running bool
	Paused  bool

	// Audio samples buffer (for host adapter)
	AudioSampleBuffer []int16
	AudioSampleIndex  int

	// Cycle logger (for debugging)
	CycleLogger *debug.CycleLogger
}

// samplesPerFrame is the number of stereo sample pairs the DSP produces
// per video frame at its fixed 32kHz output rate and ~60fps.
const samplesPerFrame = clock.APUSampleRate / 60

// NewEmulator creates a new clock-driven emulator instance
func NewEmulator() *Emulator {
	logger := debug.NewLogger(10000)
	return NewEmulatorWithLogger(logger)
}

// NewEmulatorWithLogger creates a new clock-driven emulator with a logger
func NewEmulatorWithLogger(logger *debug.Logger) *Emulator {
	// Create cartridge
	cartridge := memory.NewCartridge()

	// Create bus
	bus := memory.NewBus(cartridge)

	// Create components
	ppu := ppu.NewPPU(logger)
	apu := apu.NewAPU(logger)
	input := input.NewInputSystem()

	// Connect I/O handlers to bus
	bus.PPUHandler = ppu
	bus.APUHandler = apu
	bus.InputHandler = input

	// Create CPU logger adapter
	cpuLogger := cpu.NewCPULoggerAdapter(logger, cpu.CPULogNone)

	// Create CPU with bus (not MemorySystem)
	cpu := cpu.NewCPU(bus, cpuLogger)

	// Create clock scheduler. One tick is one PPU dot: the PPU rate is the
	// NTSC dot clock (master/4), so 341 x 262 ticks span one ~60fps frame.
	// The 10 MHz CPU rate is above it, so the CPU is stepped every tick.
	// The APU/DSP runs at the 32,000 Hz sample rate (one sample every 167
	// ticks) — the one SNES rate that's fixed regardless of region.
	masterClock := clock.NewMasterClock(10000000, clock.MasterClockNTSC/4, clock.APUSampleRate)

	// Register component step functions
	masterClock.CPUStep = func(cycles uint64) error {
		return cpu.StepCPU(cycles)
	}
	masterClock.PPUStep = func(cycles uint64) error {
		return ppu.StepPPU(cycles)
	}
	masterClock.APUStep = func(cycles uint64) error {
		return apu.StepAPU(cycles)
	}

	emu := &Emulator{
		CPU:                cpu,
		Bus:                bus,
		Cartridge:          cartridge,
		PPU:                ppu,
		APU:                apu,
		Input:              input,
		Logger:             logger,
		Clock:              masterClock,
		FrameLimitEnabled:  true,
		TargetFPS:          60.0,
		FrameTime:          time.Duration(1000000000 / 60),
		LastFrameTime:      time.Now(),
		FPS:                0.0,
		FrameCount:         0,
		FPSUpdateTime:      time.Now(),
		CPUCyclesPerFrame:  0,
		LastCPUCycles:      0,
		CyclesPerFrame:     89342, // 341 dots x 262 scanlines
		Running:            false,
		Paused:              false,
		AudioSampleBuffer:   make([]int16, samplesPerFrame*2), // stereo pairs at 32kHz/60fps
		AudioSampleIndex:   0,
	}

	return emu
}

// LoadROM loads a ROM file and resets the CPU to the cartridge's reset
// vector, the same path a real SNES takes on power-up.
func (e *Emulator) LoadROM(data []uint8) error {
	if err := e.Cartridge.LoadROM(data); err != nil {
		return fmt.Errorf("failed to load ROM: %w", err)
	}

	bank, offset, err := e.Cartridge.ResetVector()
	if err != nil {
		return fmt.Errorf("failed to read reset vector: %w", err)
	}

	e.CPU.Reset()
	e.CPU.SetEntryPoint(bank, offset)

	return nil
}

// RunFrame runs a single frame using clock-driven execution
// This is cycle-accurate and FPGA-ready
func (e *Emulator) RunFrame() error {
	if !e.Running || e.Paused {
		return nil
	}

	// Track CPU cycles before frame
	cyclesBefore := e.CPU.Cycles

	// Step clock for one frame (89,342 cycles = 262 scanlines × 341 dots per scanline)
	// The clock scheduler coordinates CPU, PPU, and APU at cycle boundaries
	// This is the core of FPGA-ready design - all components run cycle-accurately
	// PPU renders dot-by-dot, scanline-by-scanline, matching hardware timing exactly
	
	// Step clock cycle by cycle; the clock scheduler invokes APUStep at
	// the 32kHz DSP sample rate on its own master-cycle cadence, so
	// audio samples accumulate in the DSP's own ring buffer as a side
	// effect of stepping the clock.
	for cyclesStepped := uint64(0); cyclesStepped < e.CyclesPerFrame; cyclesStepped++ {
		_, err := e.Clock.Step()
		if err != nil {
			return fmt.Errorf("clock step error: %w", err)
		}
		
		// Log cycle state if cycle logger is enabled
		if e.CycleLogger != nil && e.CycleLogger.IsEnabled() {
			// Convert CPU state to snapshot (to avoid import cycles). The
			// snapshot's R0-R7 slots are a holdover from the logger's
			// generic-register shape; the 65C816 has one accumulator and
			// two index registers, so only R0-R2 carry real values here.
			snapshot := &debug.CPUStateSnapshot{
				R0:       e.CPU.Reg.A,
				R1:       e.CPU.Reg.X,
				R2:       e.CPU.Reg.Y,
				PCBank:   e.CPU.Reg.PBR,
				PCOffset: e.CPU.Reg.PC,
				PBR:      e.CPU.Reg.PBR,
				DBR:      e.CPU.Reg.DBR,
				SP:       e.CPU.Reg.S,
				Flags:    e.CPU.Reg.P,
				Cycles:   uint32(e.CPU.Cycles),
			}
			e.CycleLogger.LogCycle(snapshot)
		}
	}

	e.collectAudioSamples()

	// Auto-joypad read: real hardware latches both controllers into
	// $4218-$421B once per frame during vblank. Modeled here as a
	// once-per-RunFrame snapshot rather than timed to the actual vblank
	// window, since nothing in this core reads mid-frame.
	e.Bus.JoypadAuto[0] = input.AutoReadWord(e.Input.Controller1Buttons)
	e.Bus.JoypadAuto[1] = input.AutoReadWord(e.Input.Controller2Buttons)

	// Calculate CPU cycles used this frame
	cyclesAfter := e.CPU.Cycles
	e.CPUCyclesPerFrame = uint32(cyclesAfter - cyclesBefore)

	// Update FPS counter
	e.FrameCount++
	now := time.Now()
	if now.Sub(e.FPSUpdateTime) >= time.Second {
		e.FPS = float64(e.FrameCount) / now.Sub(e.FPSUpdateTime).Seconds()
		e.FrameCount = 0
		e.FPSUpdateTime = now
	}

	// Frame limiting
	if e.FrameLimitEnabled {
		elapsed := now.Sub(e.LastFrameTime)
		if elapsed < e.FrameTime {
			time.Sleep(e.FrameTime - elapsed)
		}
		e.LastFrameTime = time.Now()
	} else {
		e.LastFrameTime = time.Now()
	}

	return nil
}

// collectAudioSamples copies the most recently produced stereo pairs out
// of the DSP's internal sample ring buffer into AudioSampleBuffer.
func (e *Emulator) collectAudioSamples() {
	ring := e.APU.Dsp.GetSampleBuffer()
	offset := int(e.APU.Dsp.GetSampleOffset())
	n := len(e.AudioSampleBuffer)
	for i := 0; i < n; i++ {
		idx := ((offset-n+i)%len(ring) + len(ring)) % len(ring)
		e.AudioSampleBuffer[i] = ring[idx]
	}
}

// Start starts the emulator
func (e *Emulator) Start() {
	e.Running = true
	e.Paused = false
}

// Stop stops the emulator
func (e *Emulator) Stop() {
	e.Running = false
}

// Pause pauses the emulator
func (e *Emulator) Pause() {
	e.Paused = true
}

// Resume resumes the emulator
func (e *Emulator) Resume() {
	e.Paused = false
}

// Reset resets the emulator
func (e *Emulator) Reset() {
	e.CPU.Reset()
	e.PPU.Reset()
	e.Clock.Reset()
	if e.Cartridge.HasROM() {
		bank, offset, err := e.Cartridge.ResetVector()
		if err != nil {
			if e.Logger != nil {
				e.Logger.LogSystem(debug.LogLevelError, fmt.Sprintf("Failed to read reset vector: %v", err), nil)
			}
			return
		}
		e.CPU.SetEntryPoint(bank, offset)
	}
}

// SetFrameLimit sets the frame limit mode
func (e *Emulator) SetFrameLimit(enabled bool) {
	e.FrameLimitEnabled = enabled
}

// GetFPS returns the current FPS
func (e *Emulator) GetFPS() float64 {
	return e.FPS
}

// GetCPUCyclesPerFrame returns CPU cycles used in the last frame
func (e *Emulator) GetCPUCyclesPerFrame() uint32 {
	return e.CPUCyclesPerFrame
}

// GetOutputBuffer returns the PPU output buffer
func (e *Emulator) GetOutputBuffer() []uint32 {
	return e.PPU.OutputBuffer[:]
}

// SetInputButtons sets the controller button state
func (e *Emulator) SetInputButtons(buttons uint16) {
	e.Input.Controller1Buttons = buttons
}

// GetAudioSamples returns the audio samples from the last frame,
// converted from the DSP's 16-bit PCM output to normalized float32.
func (e *Emulator) GetAudioSamples() []float32 {
	samples := make([]float32, len(e.AudioSampleBuffer))
	for i, s := range e.AudioSampleBuffer {
		samples[i] = float32(s) / 32768.0
	}
	return samples
}
