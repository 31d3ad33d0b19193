package optimize

// Stats are the running performance statistics. Frame and buffer counters
// cover one tuning interval; latency extrema and recovery counters live for
// the whole process.
type Stats struct {
	InputLatencyUs  uint32
	OutputLatencyUs uint32
	TotalLatencyUs  uint32
	MinLatencyUs    uint32
	MaxLatencyUs    uint32

	FramesProcessed uint32
	FramesDropped   uint32
	InputErrors     uint32
	OutputErrors    uint32

	BufferOverruns  uint32
	BufferUnderruns uint32
	BufferUsage     uint32 // percent

	CPUUsage    float64 // percent
	MemoryUsage float64 // percent
	Temperature uint32  // degrees Celsius
	VoltageMv   uint32

	ErrorCount       uint32
	RecoveryAttempts uint32
	LastErrorTime    uint32 // clock micros
	UptimeMs         uint32
}

// ErrorRate is dropped/processed frames for the current interval, or 0
// before any frame has been processed.
func (s *Stats) ErrorRate() float64 {
	if s.FramesProcessed == 0 {
		return 0
	}
	return float64(s.FramesDropped) / float64(s.FramesProcessed)
}

func (s *Stats) resetInterval() {
	s.FramesDropped = 0
	s.FramesProcessed = 0
	s.BufferOverruns = 0
	s.BufferUnderruns = 0
}
