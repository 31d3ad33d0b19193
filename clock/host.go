package clock

import "time"

// Host is a Clock backed by the operating system's monotonic clock.
type Host struct {
	base uint64
}

// NewHost returns a host clock whose counter starts near zero.
func NewHost() *Host {
	h := &Host{}
	h.base = monotonicMicros()
	return h
}

func (h *Host) NowMicros() uint32 {
	return uint32(monotonicMicros() - h.base)
}

// Delay blocks for at least us microseconds. Delays shorter than a
// scheduler tick spin instead of sleeping.
func (h *Host) Delay(us uint32) {
	if us == 0 {
		return
	}
	start := h.NowMicros()
	if us > 2*Millisecond {
		time.Sleep(time.Duration(us-Millisecond) * time.Microsecond)
	}
	for Since(h.NowMicros(), start) < us {
	}
}
