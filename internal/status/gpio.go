package status

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/Alia5/padrelay/clock"
)

// Pattern timings in microseconds.
const (
	blinkOnUs   = 100_000
	blinkOffUs  = 100_000
	patternGap  = 500_000
	errorBlink  = 50_000
	pulseMinUs  = 50_000
	pulseMaxUs  = 200_000
	pulseStepUs = 10_000
)

type step struct {
	on bool
	us uint32 // 0 holds the step forever
}

func blinks(n int) []step {
	s := make([]step, 0, 2*n+1)
	for i := 0; i < n; i++ {
		s = append(s, step{true, blinkOnUs}, step{false, blinkOffUs})
	}
	return append(s, step{false, patternGap})
}

func pulse() []step {
	var s []step
	for on := uint32(pulseMinUs); on < pulseMaxUs; on += pulseStepUs {
		s = append(s, step{true, on}, step{false, pulseMinUs})
	}
	for on := uint32(pulseMaxUs); on > pulseMinUs; on -= pulseStepUs {
		s = append(s, step{true, on}, step{false, pulseMinUs})
	}
	return s
}

var patterns = map[Phase][]step{
	PhaseInit:           blinks(1),
	PhaseDisplayWait:    blinks(2),
	PhaseConsoleWait:    blinks(3),
	PhaseControllerWait: blinks(4),
	PhaseReady:          {{true, 0}},
	PhaseError:          {{true, errorBlink}, {false, errorBlink}},
	PhaseActive:         pulse(),
}

func patternLength(steps []step) uint32 {
	var total uint32
	for _, s := range steps {
		total += s.us
	}
	return total
}

// GPIOIndicator blinks an LED on a GPIO pin. Each Set advances the blink
// pattern by the time elapsed since the previous call instead of sleeping.
type GPIOIndicator struct {
	pin    gpio.PinOut
	clk    clock.Clock
	logger *slog.Logger

	phase     Phase
	started   bool
	steps     []step
	cycleUs   uint32
	idx       int
	stepStart uint32

	level  gpio.Level
	driven bool
	failed bool
}

func NewGPIOIndicator(pin gpio.PinOut, clk clock.Clock, logger *slog.Logger) *GPIOIndicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &GPIOIndicator{pin: pin, clk: clk, logger: logger}
}

// OpenGPIO initializes the host drivers and opens the named pin.
func OpenGPIO(name string, clk clock.Clock, logger *slog.Logger) (*GPIOIndicator, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init gpio host drivers: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	return NewGPIOIndicator(p, clk, logger), nil
}

func (g *GPIOIndicator) Set(phase Phase) {
	now := g.clk.NowMicros()
	if !g.started || phase != g.phase {
		g.phase, g.started = phase, true
		g.steps = patterns[phase]
		g.cycleUs = patternLength(g.steps)
		g.idx = 0
		g.stepStart = now
	} else {
		g.advance(now)
	}
	if len(g.steps) > 0 {
		g.drive(gpio.Level(g.steps[g.idx].on))
	}
}

// Step reports the current pattern position, for tests and diagnostics.
func (g *GPIOIndicator) Step() int { return g.idx }

func (g *GPIOIndicator) advance(now uint32) {
	if len(g.steps) == 0 || g.cycleUs == 0 {
		return
	}
	if elapsed := clock.Since(now, g.stepStart); elapsed >= g.cycleUs {
		g.stepStart += elapsed / g.cycleUs * g.cycleUs
	}
	for {
		st := g.steps[g.idx]
		if st.us == 0 || clock.Since(now, g.stepStart) < st.us {
			return
		}
		g.stepStart += st.us
		g.idx = (g.idx + 1) % len(g.steps)
	}
}

func (g *GPIOIndicator) drive(l gpio.Level) {
	if g.driven && l == g.level {
		return
	}
	if err := g.pin.Out(l); err != nil {
		if !g.failed {
			g.logger.Warn("status led", "pin", g.pin.Name(), "error", err)
			g.failed = true
		}
		return
	}
	g.level, g.driven, g.failed = l, true, false
}
