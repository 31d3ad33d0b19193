//go:build linux

package clock

import "golang.org/x/sys/unix"

func monotonicMicros() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return fallbackMicros()
	}
	return uint64(ts.Sec)*1_000_000 + uint64(ts.Nsec)/1_000
}
