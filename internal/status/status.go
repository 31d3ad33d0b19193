// Package status drives the relay status indicator.
package status

import (
	"fmt"
	"log/slog"
)

type Phase uint8

const (
	PhaseInit Phase = iota
	PhaseDisplayWait
	PhaseConsoleWait
	PhaseControllerWait
	PhaseReady
	PhaseError
	PhaseActive
)

var phaseNames = [...]string{
	"init",
	"display-wait",
	"console-wait",
	"controller-wait",
	"ready",
	"error",
	"active",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", p)
}

// Indicator shows the current phase. Set is called every loop iteration
// and must not block.
type Indicator interface {
	Set(phase Phase)
}

// Tee forwards every phase to all of its indicators.
type Tee []Indicator

func (t Tee) Set(phase Phase) {
	for _, i := range t {
		i.Set(phase)
	}
}

// LogIndicator logs phase changes.
type LogIndicator struct {
	logger *slog.Logger
	last   Phase
	seen   bool
}

func NewLogIndicator(logger *slog.Logger) *LogIndicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogIndicator{logger: logger}
}

func (l *LogIndicator) Set(phase Phase) {
	if l.seen && phase == l.last {
		return
	}
	l.last, l.seen = phase, true
	if phase == PhaseError {
		l.logger.Warn("status", "phase", phase)
		return
	}
	l.logger.Info("status", "phase", phase)
}
