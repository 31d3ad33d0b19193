package relay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/padrelay/clock"
	"github.com/Alia5/padrelay/internal/relay"
)

func TestWatchdog(t *testing.T) {
	clk := clock.NewManual(0xFFFF_0000)
	wd := relay.NewWatchdog(clk, 5*clock.Second)

	clk.Advance(5 * clock.Second)
	assert.False(t, wd.Expired(), "clock wrapped, still within timeout")
	clk.Advance(1)
	assert.True(t, wd.Expired())

	wd.Kick()
	assert.False(t, wd.Expired())
}
