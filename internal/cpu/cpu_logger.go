package cpu

import "nitro-core-dx/internal/debug"

// CPULogLevel selects how much detail the adapter forwards to the shared
// debug logger; CPU tracing at full instruction granularity is expensive
// enough that most runs want it off.
type CPULogLevel int

const (
	CPULogNone CPULogLevel = iota
	CPULogInstructions
	CPULogTrace
)

// CPULoggerAdapter adapts the shared debug.Logger to cpu.LoggerInterface,
// so the CPU package never imports debug's concrete types directly.
type CPULoggerAdapter struct {
	logger  *debug.Logger
	level   CPULogLevel
	enabled bool
}

// NewCPULoggerAdapter wires a debug.Logger in at the given verbosity.
func NewCPULoggerAdapter(logger *debug.Logger, level CPULogLevel) *CPULoggerAdapter {
	return &CPULoggerAdapter{logger: logger, level: level, enabled: true}
}

func (a *CPULoggerAdapter) SetLevel(level CPULogLevel) { a.level = level }
func (a *CPULoggerAdapter) SetEnabled(enabled bool)    { a.enabled = enabled }

// LogCPU implements cpu.LoggerInterface.
func (a *CPULoggerAdapter) LogCPU(message string, data map[string]interface{}) {
	if !a.enabled || a.logger == nil || a.level == CPULogNone {
		return
	}
	level := debug.LogLevelDebug
	if a.level == CPULogTrace {
		level = debug.LogLevelTrace
	}
	a.logger.LogCPU(level, message, data)
}
