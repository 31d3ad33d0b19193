package hal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/common"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/sensors"
)

// Sysfs drives a Linux host. Load and temperature come from gopsutil; the
// CPU clock and the optional supply voltage are plain sysfs files. Missing
// sources are reported as errors; callers treat those as "control absent".
type Sysfs struct {
	Root        string // filesystem root, "/" when empty
	Sensor      string // temperature sensor key prefix; hottest sensor when empty
	CPU         string // e.g. "cpu0"
	VoltageFile string // optional hwmon input in millivolts

	prevBusy, prevTotal float64
}

var (
	ErrNoControl = errors.New("hal: control not available")
	ErrNoSensor  = errors.New("hal: no temperature sensor")
)

func (s *Sysfs) path(p ...string) string {
	root := s.Root
	if root == "" {
		root = "/"
	}
	return filepath.Join(append([]string{root}, p...)...)
}

// ctx points gopsutil at Root instead of the live /proc and /sys.
func (s *Sysfs) ctx() context.Context {
	ctx := context.Background()
	if s.Root == "" || s.Root == "/" {
		return ctx
	}
	return context.WithValue(ctx, common.EnvKey, common.EnvMap{
		common.HostProcEnvKey: s.path("proc"),
		common.HostSysEnvKey:  s.path("sys"),
	})
}

func readUint(path string) (uint64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
}

// SetCPUFrequency writes the userspace governor target in kHz.
func (s *Sysfs) SetCPUFrequency(hz uint32) error {
	p := s.path("sys/devices/system/cpu", s.cpu(), "cpufreq/scaling_setspeed")
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("%w: %s", ErrNoControl, p)
	}
	return os.WriteFile(p, []byte(strconv.FormatUint(uint64(hz/1000), 10)), 0o644)
}

// Temperature returns whole degrees Celsius of the sensor whose key starts
// with Sensor, or of the hottest sensor.
func (s *Sysfs) Temperature() (uint32, error) {
	// gopsutil returns partial results together with a warnings error.
	temps, err := sensors.TemperaturesWithContext(s.ctx())
	found := false
	var hottest float64
	for _, t := range temps {
		if s.Sensor != "" && !strings.HasPrefix(t.SensorKey, s.Sensor) {
			continue
		}
		if !found || t.Temperature > hottest {
			hottest = t.Temperature
		}
		found = true
	}
	switch {
	case found:
		return uint32(max(hottest, 0)), nil
	case err != nil:
		return 0, fmt.Errorf("%w: %w", ErrNoSensor, err)
	}
	return 0, ErrNoSensor
}

func (s *Sysfs) VoltageMillivolts() (uint32, error) {
	if s.VoltageFile == "" {
		return 0, ErrNoControl
	}
	v, err := readUint(s.path(s.VoltageFile))
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// CPUUsage returns the busy percentage since the previous call from the
// aggregate CPU times. The first call reports usage since boot.
func (s *Sysfs) CPUUsage() (float64, error) {
	times, err := cpu.TimesWithContext(s.ctx(), false)
	if err != nil {
		return 0, fmt.Errorf("hal: cpu times: %w", err)
	}
	if len(times) == 0 {
		return 0, fmt.Errorf("hal: no cpu times")
	}
	t := times[0]
	idle := t.Idle + t.Iowait
	total := t.User + t.Nice + t.System + idle + t.Irq + t.Softirq + t.Steal
	busy := total - idle

	dTotal := total - s.prevTotal
	dBusy := busy - s.prevBusy
	s.prevTotal, s.prevBusy = total, busy
	if dTotal <= 0 {
		return 0, nil
	}
	return min(max(dBusy*100/dTotal, 0), 100), nil
}

// MemoryUsage returns the share of memory that is not available.
func (s *Sysfs) MemoryUsage() (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(s.ctx())
	if err != nil {
		return 0, fmt.Errorf("hal: memory: %w", err)
	}
	if vm.Total == 0 {
		return 0, fmt.Errorf("hal: MemTotal missing")
	}
	return float64(vm.Total-vm.Available) * 100 / float64(vm.Total), nil
}

func (s *Sysfs) cpu() string {
	if s.CPU == "" {
		return "cpu0"
	}
	return s.CPU
}
