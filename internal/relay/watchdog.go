package relay

import "github.com/Alia5/padrelay/clock"

// Watchdog expires when it has not been kicked for longer than its timeout.
type Watchdog struct {
	clk       clock.Clock
	timeoutUs uint32
	lastKick  uint32
}

func NewWatchdog(clk clock.Clock, timeoutUs uint32) *Watchdog {
	return &Watchdog{clk: clk, timeoutUs: timeoutUs, lastKick: clk.NowMicros()}
}

func (w *Watchdog) Kick() { w.lastKick = w.clk.NowMicros() }

func (w *Watchdog) Expired() bool {
	return clock.Since(w.clk.NowMicros(), w.lastKick) > w.timeoutUs
}
