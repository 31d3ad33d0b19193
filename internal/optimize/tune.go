package optimize

// Tuning thresholds.
const (
	CriticalTemp   = 85
	HighTemp       = 75
	NormalTemp     = 65
	HighCPUUsage   = 90.0
	NormalCPUUsage = 70.0

	MaxErrorRate    = 0.10
	TargetLatencyUs = 2000
	MaxBufferFaults = 5
)

// Tune runs one adaptive tuning step against the statistics gathered over
// the last interval, then resets the interval counters.
//
// The checks run in a fixed order: critical temperature forces Safe mode
// and ends the step; otherwise the temperature band, the CPU usage band and
// the buffer band each may move the CPU target or the input buffer depth.
// Nothing is scaled down while more performance is needed.
func (e *Engine) Tune() {
	s := &e.stats
	c := &e.cfg

	if s.Temperature >= CriticalTemp {
		e.logger.Warn("critical temperature, forcing safe mode", "temp", s.Temperature)
		e.SetMode(ModeSafe)
		return
	}

	needMore := s.ErrorRate() > MaxErrorRate ||
		s.TotalLatencyUs > TargetLatencyUs ||
		s.BufferOverruns > 0
	canReduce := !needMore

	freqBefore, bufBefore := c.CPUFreq, c.InputBufferMs

	switch {
	case s.Temperature >= HighTemp:
		canReduce = false
		c.stepFreqDown()
	case s.Temperature < NormalTemp && needMore:
		c.stepFreqUp()
	}

	switch {
	case s.CPUUsage >= HighCPUUsage:
		canReduce = false
		c.growInputBuffer()
	case s.CPUUsage < NormalCPUUsage && canReduce && s.TotalLatencyUs < TargetLatencyUs/2:
		c.stepFreqDown()
	}

	switch {
	case s.BufferUnderruns > 0:
		c.growInputBuffer()
	case s.TotalLatencyUs < TargetLatencyUs/2 && canReduce:
		c.shrinkInputBuffer()
	}

	if c.CPUFreq != freqBefore {
		e.applyFrequency()
	}
	if c.CPUFreq != freqBefore || c.InputBufferMs != bufBefore {
		e.logger.Debug("tuned",
			"errorRate", s.ErrorRate(),
			"latencyUs", s.TotalLatencyUs,
			"temp", s.Temperature,
			"cpu", s.CPUUsage,
			"cpuFreq", c.CPUFreq,
			"inputBufferMs", c.InputBufferMs)
	}

	s.resetInterval()
}
