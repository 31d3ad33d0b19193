package hal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padrelay/hal"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestSysfsTelemetry(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sys/class/hwmon/hwmon0/name", "cpu_thermal\n")
	writeFile(t, root, "sys/class/hwmon/hwmon0/temp1_input", "61500\n")
	writeFile(t, root, "sys/class/hwmon/hwmon1/name", "rp1_adc\n")
	writeFile(t, root, "sys/class/hwmon/hwmon1/temp1_input", "48000\n")
	writeFile(t, root, "sys/devices/system/cpu/cpu0/cpufreq/scaling_setspeed", "0")
	writeFile(t, root, "proc/stat", "cpu  100 0 100 700 100 0 0 0 0 0\ncpu0 1 2 3\n")
	writeFile(t, root, "proc/meminfo", "MemTotal:       1000 kB\nMemFree:  100 kB\nMemAvailable:    250 kB\n")
	writeFile(t, root, "hwmon/in0", "5100\n")

	s := &hal.Sysfs{Root: root, VoltageFile: "hwmon/in0"}

	temp, err := s.Temperature()
	require.NoError(t, err)
	assert.Equal(t, uint32(61), temp, "hottest sensor")

	adc := &hal.Sysfs{Root: root, Sensor: "rp1"}
	temp, err = adc.Temperature()
	require.NoError(t, err)
	assert.Equal(t, uint32(48), temp)

	v, err := s.VoltageMillivolts()
	require.NoError(t, err)
	assert.Equal(t, uint32(5100), v)

	usage, err := s.CPUUsage()
	require.NoError(t, err)
	assert.InDelta(t, 20.0, usage, 0.001)

	writeFile(t, root, "proc/stat", "cpu  150 0 150 750 150 0 0 0 0 0\n")
	usage, err = s.CPUUsage()
	require.NoError(t, err)
	assert.InDelta(t, 50.0, usage, 0.001)

	mem, err := s.MemoryUsage()
	require.NoError(t, err)
	assert.InDelta(t, 75.0, mem, 0.001)

	require.NoError(t, s.SetCPUFrequency(1_200_000_000))
	b, err := os.ReadFile(filepath.Join(root, "sys/devices/system/cpu/cpu0/cpufreq/scaling_setspeed"))
	require.NoError(t, err)
	assert.Equal(t, "1200000", string(b))
}

func TestSysfsMissingControls(t *testing.T) {
	s := &hal.Sysfs{Root: t.TempDir()}

	_, err := s.Temperature()
	assert.ErrorIs(t, err, hal.ErrNoSensor)
	_, err = s.CPUUsage()
	assert.Error(t, err)
	assert.ErrorIs(t, s.SetCPUFrequency(600_000_000), hal.ErrNoControl)
	_, err = s.VoltageMillivolts()
	assert.ErrorIs(t, err, hal.ErrNoControl)
}
