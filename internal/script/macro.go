package script

import (
	"github.com/Alia5/padrelay/clock"
	"github.com/Alia5/padrelay/device/dualsense"
)

type macroEntry struct {
	state   dualsense.ControllerState
	delayUs uint32 // time since the previous entry was recorded
}

type macro struct {
	name      string
	entries   []macroEntry
	cursor    int
	recording bool
	lastUs    uint32
}

// MacroInfo describes the current macro buffer.
type MacroInfo struct {
	Name      string
	Length    int
	Cursor    int
	Recording bool
}

func (e *Engine) Macro() MacroInfo {
	return MacroInfo{
		Name:      e.macro.name,
		Length:    len(e.macro.entries),
		Cursor:    e.macro.cursor,
		Recording: e.macro.recording,
	}
}

// RecordMacro clears the macro buffer and starts recording into it.
func (e *Engine) RecordMacro(name string) error {
	if e.macro.recording {
		return ErrAlreadyRecording
	}
	e.macro = macro{
		name:      truncateName(name),
		entries:   make([]macroEntry, 0, 64),
		recording: true,
		lastUs:    e.clk.NowMicros(),
	}
	e.logger.Info("macro recording started", "name", e.macro.name)
	return nil
}

// StopRecording ends recording. Playback starts from the first entry and
// its delay is measured from now.
func (e *Engine) StopRecording() error {
	if !e.macro.recording {
		return ErrNotRecording
	}
	e.macro.recording = false
	e.macro.cursor = 0
	e.macro.lastUs = e.clk.NowMicros()
	e.logger.Info("macro recording stopped", "name", e.macro.name, "entries", len(e.macro.entries))
	return nil
}

func (e *Engine) runMacro(state dualsense.ControllerState, now uint32) dualsense.ControllerState {
	m := &e.macro
	switch {
	case m.recording:
		if len(m.entries) < MaxMacroLength {
			m.entries = append(m.entries, macroEntry{state: state, delayUs: clock.Since(now, m.lastUs)})
			m.lastUs = now
		}
	case len(m.entries) > 0:
		entry := m.entries[m.cursor]
		state = entry.state
		if clock.Since(now, m.lastUs) >= entry.delayUs {
			m.cursor++
			if m.cursor >= len(m.entries) {
				m.cursor = 0
			}
			m.lastUs = now
		}
	}
	return state
}
