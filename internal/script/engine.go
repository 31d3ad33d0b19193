// Package script rewrites controller snapshots with recorded macros and
// button combos under a fixed per-pass time budget.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Alia5/padrelay/clock"
	"github.com/Alia5/padrelay/device/dualsense"
	"github.com/Alia5/padrelay/internal/log"
)

const (
	MaxScripts     = 32
	MaxMacroLength = 1024
	MaxComboLength = 16
	MaxCombos      = 32
	MaxNameLength  = 63

	// BudgetUs bounds one pass over all scripts.
	BudgetUs uint32 = 500
)

var (
	ErrScriptTableFull   = errors.New("script table full")
	ErrUnsupportedScript = errors.New("unsupported script kind")
	ErrAlreadyRecording  = errors.New("macro recording already in progress")
	ErrNotRecording      = errors.New("no macro recording in progress")
	ErrComboTableFull    = errors.New("combo table full")
	ErrComboTooLong      = errors.New("combo too long")
	ErrComboMismatch     = errors.New("combo buttons and timings differ in length")
	ErrEmptyCombo        = errors.New("combo has no steps")
)

type Kind uint8

const (
	KindLua Kind = iota
	KindMacro
	KindCombo
)

var kindNames = [...]string{"lua", "macro", "combo"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(s, n) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown script kind %q", s)
}

// Context is a registered script and its execution counters.
type Context struct {
	Kind     Kind
	Name     string
	Priority uint8

	ExecCount  uint32
	LastExecUs uint32
	ExecTimeUs uint32
}

type Stats struct {
	TotalExecTimeUs  uint32 // duration of the last pass
	Overruns         uint32
	SuccessfulCombos uint32
}

// Engine runs the registered scripts in registration order. Priority is
// stored but does not reorder execution. Not safe for concurrent use.
type Engine struct {
	clk    clock.Clock
	logger *slog.Logger

	scripts []Context
	combos  []combo
	window  matchWindow
	macro   macro
	stats   Stats
}

func New(clk clock.Clock, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{clk: clk, logger: logger}
}

// Init anchors the macro and combo timers at the current time.
func (e *Engine) Init() error {
	now := e.clk.NowMicros()
	e.macro.lastUs = now
	e.window.lastUs = now
	return nil
}

// AddScript registers a script. Lua scripts are declared but not runnable.
func (e *Engine) AddScript(kind Kind, name string, priority uint8) error {
	switch kind {
	case KindMacro, KindCombo:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedScript, kind)
	}
	if len(e.scripts) >= MaxScripts {
		return ErrScriptTableFull
	}
	e.scripts = append(e.scripts, Context{Kind: kind, Name: truncateName(name), Priority: priority})
	e.logger.Debug("script registered", "kind", kind, "name", name, "priority", priority)
	return nil
}

// Process runs one pass over the registered scripts and returns the
// possibly rewritten state. Once the pass exceeds BudgetUs the remaining
// scripts are skipped and an overrun is counted; changes already made by
// earlier scripts are kept.
func (e *Engine) Process(state dualsense.ControllerState) dualsense.ControllerState {
	start := e.clk.NowMicros()

	for i := range e.scripts {
		ctx := &e.scripts[i]
		scriptStart := e.clk.NowMicros()
		if clock.Since(scriptStart, start) > BudgetUs {
			e.stats.Overruns++
			e.logger.Log(context.Background(), log.LevelTrace, "script pass over budget", "skipped", ctx.Name)
			break
		}

		switch ctx.Kind {
		case KindMacro:
			state = e.runMacro(state, scriptStart)
		case KindCombo:
			state = e.runCombo(state, scriptStart)
		}

		end := e.clk.NowMicros()
		ctx.LastExecUs = end
		ctx.ExecTimeUs = clock.Since(end, scriptStart)
		ctx.ExecCount++
	}

	e.stats.TotalExecTimeUs = clock.Since(e.clk.NowMicros(), start)
	return state
}

func (e *Engine) Stats() Stats { return e.stats }

// Scripts returns a copy of the registered scripts with their counters.
func (e *Engine) Scripts() []Context {
	out := make([]Context, len(e.scripts))
	copy(out, e.scripts)
	return out
}

// Cleanup drops every script, combo and recorded macro.
func (e *Engine) Cleanup() {
	e.scripts = nil
	e.combos = nil
	e.macro = macro{lastUs: e.clk.NowMicros()}
	e.window = matchWindow{lastUs: e.macro.lastUs}
	e.stats = Stats{}
}

func truncateName(name string) string {
	if len(name) <= MaxNameLength {
		return name
	}
	n := MaxNameLength
	for n > 0 && !utf8.RuneStart(name[n]) {
		n--
	}
	return name[:n]
}
