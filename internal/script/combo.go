package script

import (
	"context"

	"github.com/Alia5/padrelay/clock"
	"github.com/Alia5/padrelay/device/dualsense"
	"github.com/Alia5/padrelay/internal/log"
)

type combo struct {
	buttons []uint16
	gapsUs  []uint32 // maximum gap before each step
	result  dualsense.ControllerState
}

type observation struct {
	buttons uint16
	gapUs   uint32
}

// matchWindow holds the most recent distinct button values, oldest first.
type matchWindow struct {
	entries []observation
	last    uint16
	lastUs  uint32
}

func (w *matchWindow) push(o observation) {
	if len(w.entries) == MaxComboLength {
		copy(w.entries, w.entries[1:])
		w.entries = w.entries[:MaxComboLength-1]
	}
	w.entries = append(w.entries, o)
}

// matches reports whether the newest len(c.buttons) observations equal the
// combo step for step, each after the first within its maximum gap.
func (w *matchWindow) matches(c *combo) bool {
	n := len(c.buttons)
	if len(w.entries) < n {
		return false
	}
	tail := w.entries[len(w.entries)-n:]
	for k, o := range tail {
		if o.buttons != c.buttons[k] || (k > 0 && o.gapUs > c.gapsUs[k]) {
			return false
		}
	}
	return true
}

// AddCombo registers a button sequence. timings[i] is the largest allowed
// gap in microseconds between step i-1 and step i; timings[0] is not
// checked since the first step has no predecessor.
func (e *Engine) AddCombo(buttons []uint16, timings []uint32, result dualsense.ControllerState) error {
	switch {
	case len(e.combos) >= MaxCombos:
		return ErrComboTableFull
	case len(buttons) == 0:
		return ErrEmptyCombo
	case len(buttons) > MaxComboLength:
		return ErrComboTooLong
	case len(timings) != len(buttons):
		return ErrComboMismatch
	}
	e.combos = append(e.combos, combo{
		buttons: append([]uint16(nil), buttons...),
		gapsUs:  append([]uint32(nil), timings...),
		result:  result,
	})
	e.logger.Debug("combo registered", "steps", len(buttons), "result", dualsense.FormatButtonMask(result.Buttons))
	return nil
}

func (e *Engine) runCombo(state dualsense.ControllerState, now uint32) dualsense.ControllerState {
	w := &e.window
	if state.Buttons == w.last {
		return state
	}
	w.push(observation{buttons: state.Buttons, gapUs: clock.Since(now, w.lastUs)})
	w.last = state.Buttons
	w.lastUs = now

	for i := range e.combos {
		c := &e.combos[i]
		if w.matches(c) {
			e.stats.SuccessfulCombos++
			e.logger.Log(context.Background(), log.LevelTrace, "combo matched", "index", i)
			return c.result
		}
	}
	return state
}
