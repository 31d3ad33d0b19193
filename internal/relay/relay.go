// Package relay runs the connection state machine that discovers the
// display, console and controller, relays reports between them and
// recovers from instability.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alia5/padrelay/clock"
	"github.com/Alia5/padrelay/device/dualsense"
	"github.com/Alia5/padrelay/internal/link"
	"github.com/Alia5/padrelay/internal/optimize"
	"github.com/Alia5/padrelay/internal/script"
	"github.com/Alia5/padrelay/internal/status"
)

var (
	ErrModeNotApplied     = errors.New("performance mode not applied")
	ErrFeaturesNotEnabled = errors.New("processing features not enabled")
)

// State is a snapshot of the relay for diagnostics.
type State struct {
	Phase      status.Phase
	Display    bool
	Console    bool
	Controller bool

	ErrorCount     uint32
	Recoveries     uint32
	LastRecoveryUs uint32
	LED            dualsense.Color
}

// Relay owns the loop state. All methods must be called from the loop
// goroutine.
type Relay struct {
	cfg     Config
	clk     clock.Clock
	link    link.Link
	engine  *optimize.Engine
	scripts *script.Engine
	ind     status.Indicator
	logger  *slog.Logger
	wd      *Watchdog

	phase      status.Phase
	display    bool
	console    bool
	controller bool

	output dualsense.ControllerOutput
	led    dualsense.Color

	errorCount   uint32
	recoveries   uint32
	lastRecovery uint32
	hasRecovered bool

	lastHealth uint32
	lastPerf   uint32
}

func New(
	cfg Config,
	clk clock.Clock,
	lnk link.Link,
	engine *optimize.Engine,
	scripts *script.Engine,
	ind status.Indicator,
	logger *slog.Logger,
) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	if ind == nil {
		ind = status.NewLogIndicator(logger)
	}
	return &Relay{
		cfg:     cfg,
		clk:     clk,
		link:    lnk,
		engine:  engine,
		scripts: scripts,
		ind:     ind,
		logger:  logger,
		wd:      NewWatchdog(clk, cfg.WatchdogTimeoutUs),
		output:  dualsense.DefaultOutput(),
	}
}

// Init brings up the subsystems, retrying up to InitAttempts times with
// InitRetryDelayUs between attempts.
func (r *Relay) Init() error {
	attempts := max(r.cfg.InitAttempts, 1)
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = r.initOnce(); err == nil {
			return nil
		}
		r.logger.Warn("relay init failed", "attempt", attempt, "of", attempts, "error", err)
		if attempt < attempts {
			r.clk.Delay(r.cfg.InitRetryDelayUs)
		}
	}
	r.setPhase(status.PhaseError)
	return fmt.Errorf("relay init failed after %d attempts: %w", attempts, err)
}

func (r *Relay) initOnce() error {
	if err := r.engine.Init(); err != nil {
		return fmt.Errorf("processing engine: %w", err)
	}
	r.engine.SetMode(optimize.ModeFast)
	if !r.engine.VerifyMode(optimize.ModeFast) {
		return ErrModeNotApplied
	}
	r.engine.EnableFeatures(optimize.AllFeatures)
	if !r.engine.VerifyFeatures(optimize.AllFeatures) {
		return ErrFeaturesNotEnabled
	}
	if err := r.scripts.Init(); err != nil {
		return fmt.Errorf("script engine: %w", err)
	}
	if err := r.link.Reset(); err != nil {
		return fmt.Errorf("reset link: %w", err)
	}

	r.wd.Kick()
	r.setPhase(status.PhaseInit)
	now := r.clk.NowMicros()
	r.lastHealth = now
	r.lastPerf = now
	r.logger.Info("relay initialized", "mode", r.engine.Config().Mode)
	return nil
}

// Run initializes the relay and steps it until ctx is cancelled. An init
// failure is the only error it returns.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.Init(); err != nil {
		return err
	}
	for ctx.Err() == nil {
		r.Step()
		if r.cfg.PollDelayUs > 0 {
			r.clk.Delay(r.cfg.PollDelayUs)
		}
	}
	r.logger.Info("relay stopped", "recoveries", r.recoveries, "errors", r.errorCount)
	return nil
}

// Step runs one loop iteration and kicks the watchdog when it returns. A
// stalled iteration is detected by the health check of the next one.
func (r *Relay) Step() {
	defer r.wd.Kick()

	now := r.clk.NowMicros()
	if clock.Since(now, r.lastHealth) >= r.cfg.HealthIntervalUs {
		if !r.engine.VerifyStability() {
			r.Recover("system instability detected")
			return
		}
		if r.CheckWatchdog() {
			return
		}
		if r.errorCount > r.cfg.ErrorThreshold {
			r.logger.Warn("error threshold exceeded, forcing safe mode", "errors", r.errorCount)
			r.setPhase(status.PhaseError)
			r.engine.SetMode(optimize.ModeSafe)
			r.errorCount = 0
		}
		r.lastHealth = now
	}

	if !r.display {
		r.setPhase(status.PhaseDisplayWait)
		if r.link.Present(link.Display) {
			r.display = true
			r.logger.Info("display connected")
		}
		return
	}

	if !r.console {
		r.setPhase(status.PhaseConsoleWait)
		if r.link.Present(link.Console) {
			r.console = true
			r.logger.Info("console connected")
			r.link.EnableLowLatency()
		}
		return
	}

	if !r.controller {
		r.setPhase(status.PhaseControllerWait)
		if r.link.Present(link.Controller) {
			r.controller = true
			r.logger.Info("controller connected")
			if !r.link.Calibrate() {
				r.logger.Warn("controller calibration failed")
			}
			r.setPhase(status.PhaseReady)
		}
		return
	}

	r.setPhase(status.PhaseActive)
	r.relayFrame()

	if !r.link.Present(link.Console) {
		r.console = false
		r.setPhase(status.PhaseConsoleWait)
		r.logger.Info("console disconnected")
	}
	if !r.link.Present(link.Controller) {
		r.controller = false
		r.setPhase(status.PhaseControllerWait)
		r.logger.Info("controller disconnected")
	}

	if clock.Since(now, r.lastPerf) >= r.cfg.PerfIntervalUs {
		r.tune()
		r.lastPerf = now
	}
}

func (r *Relay) relayFrame() {
	in, ok := r.link.ReadInput()
	if !ok {
		return
	}
	st := r.scripts.Process(in)
	if !r.engine.ProcessInput(&st) {
		return
	}

	out := r.output
	if o, ok := r.link.ReadOutput(); ok {
		out = o
	}
	if !r.engine.ProcessOutput(&out) {
		return
	}
	r.output = out

	r.led = dualsense.BatteryColor(in.BatteryLevel)
	r.output.SetLED(r.led)
	r.link.WriteOutput(r.output)
}

// tune runs the adaptive tuner and then the coarse thermal override.
func (r *Relay) tune() {
	stats := r.engine.Stats()
	r.engine.Tune()
	switch {
	case stats.Temperature > r.cfg.HotTemp:
		r.engine.SetMode(optimize.ModeNormal)
	case stats.Temperature < r.cfg.CoolTemp:
		r.engine.SetMode(optimize.ModeFast)
	}
}

// CheckWatchdog triggers a recovery and reports true if the watchdog has
// expired.
func (r *Relay) CheckWatchdog() bool {
	if !r.wd.Expired() {
		return false
	}
	r.Recover("watchdog timeout")
	return true
}

// Recover reinitializes the engine and the link and drops both device
// connections. Within RecoveryCooldownUs of the previous recovery it only
// counts the error. It reports whether a reinitialization happened.
func (r *Relay) Recover(cause string) bool {
	now := r.clk.NowMicros()
	r.errorCount++
	if r.hasRecovered && clock.Since(now, r.lastRecovery) < r.cfg.RecoveryCooldownUs {
		r.logger.Debug("recovery suppressed", "cause", cause, "errors", r.errorCount)
		return false
	}

	r.recoveries++
	r.lastRecovery = now
	r.hasRecovered = true
	r.engine.NoteRecovery(now)
	r.logger.Error("recovering",
		"cause", cause,
		"errors", r.errorCount,
		"attempts", r.recoveries)

	r.setPhase(status.PhaseError)
	if err := r.engine.Init(); err != nil {
		r.logger.Warn("reinit processing engine", "error", err)
	}
	if err := r.link.Reset(); err != nil {
		r.logger.Warn("reset link", "error", err)
	}
	r.console = false
	r.controller = false
	return true
}

func (r *Relay) State() State {
	return State{
		Phase:          r.phase,
		Display:        r.display,
		Console:        r.console,
		Controller:     r.controller,
		ErrorCount:     r.errorCount,
		Recoveries:     r.recoveries,
		LastRecoveryUs: r.lastRecovery,
		LED:            r.led,
	}
}

func (r *Relay) setPhase(p status.Phase) {
	r.phase = p
	r.ind.Set(p)
}
