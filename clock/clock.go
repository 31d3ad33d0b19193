// Package clock provides the microsecond time source used by the relay loop.
//
// Timestamps are 32-bit microsecond counters that wrap roughly every 71
// minutes. Durations must always be computed with Since, which relies on
// unsigned wrapping subtraction and stays correct across a single wrap.
package clock

// Clock is a monotonic microsecond counter with a blocking delay primitive.
type Clock interface {
	NowMicros() uint32
	Delay(us uint32)
}

// Since returns the microseconds elapsed from then to now.
func Since(now, then uint32) uint32 {
	return now - then
}

const (
	Millisecond uint32 = 1000
	Second      uint32 = 1000 * Millisecond
)
