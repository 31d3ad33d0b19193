package cmd

import (
	"math"

	"github.com/Alia5/padrelay/clock"
	"github.com/Alia5/padrelay/device/dualsense"
)

const simPeriodUs = 2 * clock.Second

// simulatedInput returns a generator that sweeps the left stick around a
// circle every two seconds and drains the battery by one percent every
// ten seconds.
func simulatedInput(clk clock.Clock) func() (dualsense.ControllerState, bool) {
	start := clk.NowMicros()
	return func() (dualsense.ControllerState, bool) {
		return simulatedState(clock.Since(clk.NowMicros(), start)), true
	}
}

func simulatedState(elapsedUs uint32) dualsense.ControllerState {
	phase := 2 * math.Pi * float64(elapsedUs%simPeriodUs) / float64(simPeriodUs)
	drained := elapsedUs / (10 * clock.Second)
	battery := uint8(dualsense.MaxBatteryLevel)
	if drained < uint32(battery) {
		battery -= uint8(drained)
	} else {
		battery = 0
	}
	return dualsense.ControllerState{
		LX:           uint8(128 + 127*math.Cos(phase)),
		LY:           uint8(128 + 127*math.Sin(phase)),
		RX:           128,
		RY:           128,
		AccelZ:       8192,
		BatteryLevel: battery,
	}
}
