package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padrelay/device/dualsense"
	"github.com/Alia5/padrelay/internal/optimize"
)

func TestTuneCriticalTemperatureForcesSafe(t *testing.T) {
	e, _, hw, _ := newEngine(t)
	e.SetMode(optimize.ModeFast)
	hw.Temp = 85
	hw.CPU = 99
	e.ReportOverrun()

	e.Stats()
	e.Tune()

	c := e.Config()
	assert.Equal(t, optimize.ModeSafe, c.Mode)
	assert.Equal(t, uint32(optimize.MaxBufferMs), c.InputBufferMs)
	assert.Equal(t, optimize.CPUFreqMin, c.CPUFreq)
	assert.Equal(t, optimize.CPUFreqMin, hw.Frequency)
}

func TestTuneUnderrunGrowsInputBuffer(t *testing.T) {
	e, _, _, _ := newEngine(t)
	require.Equal(t, uint32(4), e.Config().InputBufferMs)

	e.ReportUnderrun()
	e.Stats()
	e.Tune()
	assert.Equal(t, uint32(5), e.Config().InputBufferMs)

	for i := 0; i < 100; i++ {
		e.ReportUnderrun()
		e.Stats()
		e.Tune()
		require.LessOrEqual(t, e.Config().InputBufferMs, uint32(optimize.MaxBufferMs))
	}
	assert.Equal(t, uint32(optimize.MaxBufferMs), e.Config().InputBufferMs)
}

func TestTuneIdleScalesDown(t *testing.T) {
	e, _, hw, _ := newEngine(t)

	e.Stats()
	e.Tune()

	c := e.Config()
	assert.Equal(t, optimize.CPUFreqMax-optimize.FreqStep, c.CPUFreq)
	assert.Equal(t, c.CPUFreq, hw.Frequency)
	assert.Equal(t, uint32(3), c.InputBufferMs)

	for i := 0; i < 20; i++ {
		e.Stats()
		e.Tune()
	}
	c = e.Config()
	assert.Equal(t, optimize.CPUFreqMin, c.CPUFreq)
	assert.Equal(t, uint32(optimize.MinBufferMs), c.InputBufferMs)
}

func TestTuneNeedMoreRaisesFrequencyWhenCool(t *testing.T) {
	e, _, hw, _ := newEngine(t)
	hw.Temp = 50
	e.ReportOverrun()

	e.Stats()
	e.Tune()

	c := e.Config()
	assert.Equal(t, optimize.CPUFreqMax+optimize.FreqStep, c.CPUFreq)
	assert.Equal(t, uint32(4), c.InputBufferMs, "no reduction while more performance is needed")

	e.ReportOverrun()
	e.Stats()
	e.Tune()
	e.ReportOverrun()
	e.Stats()
	e.Tune()
	assert.Equal(t, optimize.CPUFreqTurbo, e.Config().CPUFreq, "capped at turbo")
}

func TestTuneHighLatencyNeedsMore(t *testing.T) {
	e, _, _, clk := newEngine(t)
	clk.SetAutoStep(1500)

	st := validState()
	out := dualsense.DefaultOutput()
	require.True(t, e.ProcessInput(&st))
	require.True(t, e.ProcessOutput(&out))
	clk.SetAutoStep(0)

	require.Equal(t, uint32(3000), e.Stats().TotalLatencyUs)
	e.Tune()
	assert.Equal(t, optimize.CPUFreqMax+optimize.FreqStep, e.Config().CPUFreq)
}

func TestTuneErrorRateNeedsMore(t *testing.T) {
	e, _, _, _ := newEngine(t)
	for i := 0; i < 10; i++ {
		st := validState()
		e.ProcessInput(&st)
	}
	for i := 0; i < 2; i++ {
		st := dualsense.ControllerState{Temperature: 150}
		e.ProcessInput(&st)
	}

	s := e.Stats()
	require.InDelta(t, 0.2, s.ErrorRate(), 0.0001)
	e.Tune()
	assert.Equal(t, optimize.CPUFreqMax+optimize.FreqStep, e.Config().CPUFreq)
}

func TestTuneHighTemperatureStepsDown(t *testing.T) {
	e, _, hw, _ := newEngine(t)
	hw.Temp = 80
	e.ReportOverrun()

	e.Stats()
	e.Tune()

	c := e.Config()
	assert.Equal(t, optimize.CPUFreqMax-optimize.FreqStep, c.CPUFreq)
	assert.Equal(t, uint32(4), c.InputBufferMs)
}

func TestTuneFrequencyFloor(t *testing.T) {
	e, _, hw, _ := newEngine(t)
	e.SetMode(optimize.ModeSafe)
	hw.Temp = 80

	e.Stats()
	e.Tune()
	assert.Equal(t, optimize.CPUFreqMin, e.Config().CPUFreq)
}

func TestTuneHighCPUGrowsBuffer(t *testing.T) {
	e, _, hw, _ := newEngine(t)
	hw.CPU = 95

	e.Stats()
	e.Tune()

	c := e.Config()
	assert.Equal(t, uint32(5), c.InputBufferMs)
	assert.Equal(t, optimize.CPUFreqMax, c.CPUFreq)
}

func TestTuneResetsIntervalCounters(t *testing.T) {
	e, _, _, _ := newEngine(t)
	st := validState()
	e.ProcessInput(&st)
	e.ReportOverrun()
	e.ReportUnderrun()

	e.Stats()
	e.Tune()

	s := e.Stats()
	assert.Zero(t, s.FramesProcessed)
	assert.Zero(t, s.FramesDropped)
	assert.Zero(t, s.BufferOverruns)
	assert.Zero(t, s.BufferUnderruns)
}
