// Package hal abstracts the platform controls the relay tunes: CPU clock,
// temperature, supply voltage and load. Every implementation must be safe
// to call when the underlying control is absent.
package hal

// Hardware is the platform control surface.
type Hardware interface {
	SetCPUFrequency(hz uint32) error
	Temperature() (uint32, error)
	VoltageMillivolts() (uint32, error)
	CPUUsage() (float64, error)
	MemoryUsage() (float64, error)
}

// Nop is a Hardware that accepts every request and reports a cool, idle
// platform.
type Nop struct{}

const (
	NopTemperature = 45
	NopVoltageMv   = 5000
)

func (Nop) SetCPUFrequency(uint32) error       { return nil }
func (Nop) Temperature() (uint32, error)       { return NopTemperature, nil }
func (Nop) VoltageMillivolts() (uint32, error) { return NopVoltageMv, nil }
func (Nop) CPUUsage() (float64, error)         { return 0, nil }
func (Nop) MemoryUsage() (float64, error)      { return 0, nil }
