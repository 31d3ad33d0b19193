package clock

import "time"

var processStart = time.Now()

func fallbackMicros() uint64 {
	return uint64(time.Since(processStart).Microseconds())
}
