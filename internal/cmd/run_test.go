package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padrelay/clock"
	"github.com/Alia5/padrelay/device/dualsense"
	"github.com/Alia5/padrelay/internal/log"
	"github.com/Alia5/padrelay/internal/relay"
)

func TestSimulatedState(t *testing.T) {
	tests := []struct {
		name      string
		elapsedUs uint32
		lx, ly    uint8
		battery   uint8
	}{
		{"start", 0, 255, 128, 100},
		{"half turn", clock.Second, 1, 128, 100},
		{"drained", 26 * clock.Second, 255, 128, 98},
		{"empty", 2000 * clock.Second, 255, 128, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := simulatedState(tt.elapsedUs)
			assert.Equal(t, tt.lx, st.LX)
			assert.Equal(t, tt.ly, st.LY)
			assert.Equal(t, tt.battery, st.BatteryLevel)
			assert.NoError(t, st.Validate())
		})
	}
}

func TestSimulatedInputFollowsClock(t *testing.T) {
	clk := clock.NewManual(1000)
	gen := simulatedInput(clk)

	st, ok := gen()
	require.True(t, ok)
	assert.Equal(t, uint8(dualsense.MaxBatteryLevel), st.BatteryLevel)

	clk.Set(1000 + 30*clock.Second)
	st, ok = gen()
	require.True(t, ok)
	assert.Equal(t, uint8(97), st.BatteryLevel)
}

func TestRelayConfig(t *testing.T) {
	r := Run{
		Watchdog:         2 * time.Second,
		RecoveryCooldown: 0,
		ErrorThreshold:   4,
		PollInterval:     500 * time.Microsecond,
	}
	cfg := r.relayConfig()
	def := relay.DefaultConfig()

	assert.Equal(t, 2*clock.Second, cfg.WatchdogTimeoutUs)
	assert.Equal(t, def.RecoveryCooldownUs, cfg.RecoveryCooldownUs)
	assert.Equal(t, uint32(4), cfg.ErrorThreshold)
	assert.Equal(t, uint32(500), cfg.PollDelayUs)
	assert.Equal(t, def.HealthIntervalUs, cfg.HealthIntervalUs)
}

func TestMicrosClamps(t *testing.T) {
	assert.Equal(t, uint32(0), micros(-time.Second))
	assert.Equal(t, uint32(1500), micros(1500*time.Microsecond))
	assert.Equal(t, ^uint32(0), micros(24*time.Hour))
}

func TestStartRelaySimulated(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := Run{Simulate: true, PollInterval: time.Millisecond}
	assert.NoError(t, r.StartRelay(ctx, logger, log.NewRaw(nil)))
}

func TestStartRelayBadProfile(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scripts:\n  - name: x\n    kind: lua\n"), 0o644))

	r := Run{Simulate: true, Profile: path}
	err := r.StartRelay(context.Background(), logger, log.NewRaw(nil))
	assert.Error(t, err)
}

func TestServiceUnit(t *testing.T) {
	unit := serviceUnit("/opt/padrelay/padrelay", "")
	assert.Contains(t, unit, `ExecStart="/opt/padrelay/padrelay" run`+"\n")
	assert.Contains(t, unit, "WorkingDirectory=/opt/padrelay\n")

	unit = serviceUnit("/usr/bin/padrelay", "/etc/padrelay/relay.yaml")
	assert.Contains(t, unit, `ExecStart="/usr/bin/padrelay" run --config="/etc/padrelay/relay.yaml"`)
}
