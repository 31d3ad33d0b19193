// Package optimize validates and forwards controller snapshots and tunes
// the processing configuration from the running statistics.
package optimize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Alia5/padrelay/clock"
	"github.com/Alia5/padrelay/device/dualsense"
	"github.com/Alia5/padrelay/hal"
	"github.com/Alia5/padrelay/internal/log"
)

// Forwarder is the device side the engine hands validated snapshots to.
type Forwarder interface {
	SendInput(dualsense.ControllerState) bool
	WriteOutput(dualsense.ControllerOutput) bool
}

// Engine owns the processing configuration and statistics. It is not safe
// for concurrent use; the relay loop is its only caller.
type Engine struct {
	fwd    Forwarder
	hw     hal.Hardware
	clk    clock.Clock
	logger *slog.Logger

	cfg   Config
	stats Stats

	prevInput dualsense.ControllerState
	staging   dualsense.ControllerOutput

	dmaTransfers uint32
	started      bool
	startUs      uint32
}

func New(fwd Forwarder, hw hal.Hardware, clk clock.Clock, logger *slog.Logger) *Engine {
	if hw == nil {
		hw = hal.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		fwd:    fwd,
		hw:     hw,
		clk:    clk,
		logger: logger,
		cfg:    DefaultConfig(),
	}
}

// Init (re)initializes the engine: pushes the CPU target to the hardware,
// forgets the smoothing history and clears the interval counters. The
// configuration and lifetime statistics are kept.
func (e *Engine) Init() error {
	if !e.started {
		e.startUs = e.clk.NowMicros()
		e.started = true
	}
	e.prevInput = dualsense.ControllerState{}
	e.stats.resetInterval()
	if err := e.hw.SetCPUFrequency(e.cfg.CPUFreq); err != nil {
		e.logger.Debug("cpu frequency control unavailable", "error", err)
	}
	e.logger.Debug("processing engine initialized",
		"mode", e.cfg.Mode,
		"features", fmt.Sprintf("%#x", uint32(e.cfg.Features)),
		"cpuFreq", e.cfg.CPUFreq)
	return nil
}

// Config returns a copy of the current configuration.
func (e *Engine) Config() Config { return e.cfg }

// SetMode switches the processing mode and applies its preset.
func (e *Engine) SetMode(mode Mode) {
	prev := e.cfg.Mode
	e.cfg.applyPreset(mode)
	e.applyFrequency()
	if prev != mode {
		e.logger.Info("processing mode changed", "from", prev, "to", mode)
	}
}

func (e *Engine) VerifyMode(mode Mode) bool { return e.cfg.Mode == mode }

func (e *Engine) EnableFeatures(f Feature)  { e.cfg.Features |= f }
func (e *Engine) DisableFeatures(f Feature) { e.cfg.Features &^= f }

// VerifyFeatures reports whether every feature in f is enabled.
func (e *Engine) VerifyFeatures(f Feature) bool { return e.cfg.Features&f == f }

func (e *Engine) applyFrequency() {
	if err := e.hw.SetCPUFrequency(e.cfg.CPUFreq); err != nil {
		e.logger.Debug("set cpu frequency", "hz", e.cfg.CPUFreq, "error", err)
	}
}

// ProcessInput validates state and forwards it according to the current
// mode. In Accurate mode with SIMD enabled the forwarded state is the
// saturating blend with the previous frame, and state is updated to it.
func (e *Engine) ProcessInput(state *dualsense.ControllerState) bool {
	start := e.clk.NowMicros()

	if err := state.Validate(); err != nil {
		e.stats.InputErrors++
		e.stats.FramesDropped++
		e.stats.ErrorCount++
		e.stats.InputLatencyUs = clock.Since(e.clk.NowMicros(), start)
		e.logger.Log(context.Background(), log.LevelTrace, "input rejected", "error", err)
		return false
	}

	var ok bool
	switch e.cfg.Mode {
	case ModeSafe:
		if state.Validate() == nil {
			ok = e.fwd.SendInput(*state)
		}
	case ModeFast:
		ok = e.fwd.SendInput(*state)
	case ModeAccurate:
		if e.cfg.Features&FeatureSIMD != 0 {
			raw := *state
			*state = dualsense.SaturatingBlend(raw, e.prevInput)
			e.prevInput = raw
		}
		ok = e.fwd.SendInput(*state)
	default:
		ok = e.fwd.SendInput(*state)
	}

	e.stats.InputLatencyUs = clock.Since(e.clk.NowMicros(), start)
	if ok {
		e.stats.FramesProcessed++
	} else {
		e.stats.FramesDropped++
	}
	return ok
}

// ProcessOutput validates out and forwards it according to the current
// mode. Fast mode with DMA enabled stages the report through a separate
// buffer before sending.
func (e *Engine) ProcessOutput(out *dualsense.ControllerOutput) bool {
	start := e.clk.NowMicros()

	if err := out.Validate(); err != nil {
		e.stats.OutputErrors++
		e.stats.FramesDropped++
		e.stats.ErrorCount++
		e.stats.OutputLatencyUs = clock.Since(e.clk.NowMicros(), start)
		e.logger.Log(context.Background(), log.LevelTrace, "output rejected", "error", err)
		return false
	}

	var ok bool
	switch e.cfg.Mode {
	case ModeSafe:
		if out.Validate() == nil {
			ok = e.fwd.WriteOutput(*out)
		}
	case ModeFast:
		if e.cfg.Features&FeatureDMA != 0 {
			e.staging = *out
			e.dmaTransfers++
			ok = e.fwd.WriteOutput(e.staging)
		} else {
			ok = e.fwd.WriteOutput(*out)
		}
	default:
		ok = e.fwd.WriteOutput(*out)
	}

	e.stats.OutputLatencyUs = clock.Since(e.clk.NowMicros(), start)
	if !ok {
		e.stats.FramesDropped++
	}
	return ok
}

// DMATransfers counts outputs staged through the DMA path.
func (e *Engine) DMATransfers() uint32 { return e.dmaTransfers }

// ReportOverrun and ReportUnderrun feed the buffer counters from the link.
func (e *Engine) ReportOverrun()  { e.stats.BufferOverruns++ }
func (e *Engine) ReportUnderrun() { e.stats.BufferUnderruns++ }

// NoteRecovery records a subsystem reinitialization at now.
func (e *Engine) NoteRecovery(now uint32) {
	e.stats.RecoveryAttempts++
	e.stats.ErrorCount++
	e.stats.LastErrorTime = now
}

// Stats refreshes the derived latency, telemetry, buffer usage and uptime
// figures and returns a copy. Calling it repeatedly without processing a
// frame in between yields the same latency fields.
func (e *Engine) Stats() Stats {
	s := &e.stats
	s.TotalLatencyUs = s.InputLatencyUs + s.OutputLatencyUs
	if s.MinLatencyUs == 0 || s.TotalLatencyUs < s.MinLatencyUs {
		s.MinLatencyUs = s.TotalLatencyUs
	}
	if s.TotalLatencyUs > s.MaxLatencyUs {
		s.MaxLatencyUs = s.TotalLatencyUs
	}

	e.refreshTelemetry()
	s.BufferUsage = (e.cfg.InputBufferMs + e.cfg.OutputBufferMs) * 100 / (2 * MaxBufferMs)

	if e.started {
		s.UptimeMs = clock.Since(e.clk.NowMicros(), e.startUs) / 1000
	}
	return *s
}

func (e *Engine) refreshTelemetry() {
	s := &e.stats
	if v, err := e.hw.Temperature(); err == nil {
		s.Temperature = v
	}
	if v, err := e.hw.CPUUsage(); err == nil {
		s.CPUUsage = v
	}
	if v, err := e.hw.MemoryUsage(); err == nil {
		s.MemoryUsage = v
	}
	if v, err := e.hw.VoltageMillivolts(); err == nil {
		s.VoltageMv = v
	}
}

// VerifyStability reads fresh telemetry and reports false when the
// platform is too hot, too many frames are being dropped, the buffers keep
// over- or under-running, or the CPU is saturated.
func (e *Engine) VerifyStability() bool {
	e.refreshTelemetry()
	s := &e.stats
	switch {
	case s.Temperature > CriticalTemp:
		return false
	case s.FramesDropped > s.FramesProcessed/10:
		return false
	case s.BufferOverruns > MaxBufferFaults || s.BufferUnderruns > MaxBufferFaults:
		return false
	case s.CPUUsage > HighCPUUsage:
		return false
	}
	return true
}
