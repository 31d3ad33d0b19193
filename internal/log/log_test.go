package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("trace"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNewLoggerSplitsStreams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewLogger(slog.LevelDebug, &stdout, &stderr, nil)

	l.Info("relay active")
	l.Error("recovery failed")
	l.Log(context.Background(), LevelTrace, "frame")

	assert.Contains(t, stdout.String(), "relay active")
	assert.NotContains(t, stdout.String(), "recovery failed")
	assert.NotContains(t, stdout.String(), "frame")
	assert.Contains(t, stderr.String(), "recovery failed")
	assert.NotContains(t, stderr.String(), "relay active")
}

func TestNewLoggerWithFile(t *testing.T) {
	var stdout, stderr, file bytes.Buffer
	l := NewLogger(slog.LevelInfo, &stdout, &stderr, &file).With("component", "relay")

	l.Warn("thermal override", "temp", 82)

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "thermal override")
	assert.Contains(t, file.String(), "component=relay")
	assert.Contains(t, file.String(), "temp=82")
}

func TestRawLogger(t *testing.T) {
	var buf bytes.Buffer
	r := NewRaw(&buf).(*rawLogger)
	r.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }

	r.Log("controller", true, []byte{0xa5, 0x01, 0x0f})
	r.Log("console", false, nil)

	line := strings.TrimSpace(buf.String())
	assert.Equal(t, "12:00:00.000000 controller RX   3 bytes: a5 01 0f", line)

	NewRaw(nil).Log("console", false, []byte{1})
}
