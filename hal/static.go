package hal

// Static reports fixed telemetry and remembers the last requested CPU
// frequency. Fields may be changed between calls.
type Static struct {
	Temp      uint32
	VoltageMv uint32
	CPU       float64
	Memory    float64

	Frequency    uint32
	FrequencySet int
}

func (s *Static) SetCPUFrequency(hz uint32) error {
	s.Frequency = hz
	s.FrequencySet++
	return nil
}

func (s *Static) Temperature() (uint32, error)       { return s.Temp, nil }
func (s *Static) VoltageMillivolts() (uint32, error) { return s.VoltageMv, nil }
func (s *Static) CPUUsage() (float64, error)         { return s.CPU, nil }
func (s *Static) MemoryUsage() (float64, error)      { return s.Memory, nil }
