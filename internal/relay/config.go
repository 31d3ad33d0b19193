package relay

import "github.com/Alia5/padrelay/clock"

// Config holds the loop timing and thresholds. Durations are in
// microseconds.
type Config struct {
	WatchdogTimeoutUs  uint32
	RecoveryCooldownUs uint32
	HealthIntervalUs   uint32
	PerfIntervalUs     uint32
	// ErrorThreshold is the error count above which the health check
	// forces Safe mode.
	ErrorThreshold uint32

	InitAttempts     int
	InitRetryDelayUs uint32

	// PollDelayUs is slept between iterations by Run.
	PollDelayUs uint32

	// Coarse thermal override applied after each tuning step.
	HotTemp  uint32
	CoolTemp uint32
}

func DefaultConfig() Config {
	return Config{
		WatchdogTimeoutUs:  5 * clock.Second,
		RecoveryCooldownUs: 5 * clock.Second,
		HealthIntervalUs:   500 * clock.Millisecond,
		PerfIntervalUs:     1 * clock.Second,
		ErrorThreshold:     10,
		InitAttempts:       3,
		InitRetryDelayUs:   1 * clock.Second,
		PollDelayUs:        1 * clock.Millisecond,
		HotTemp:            80,
		CoolTemp:           70,
	}
}
