package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger dumps link frames as hex.
type RawLogger interface {
	// Log records one frame. leg names the link ("console", "controller");
	// rx is true for bytes received by the relay.
	Log(leg string, rx bool, data []byte)
}

type rawLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewRaw creates a RawLogger. A nil writer yields a logger that drops
// everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, now: time.Now}
}

func (r *rawLogger) Log(leg string, rx bool, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}

	dir := "TX"
	if rx {
		dir = "RX"
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %-10s %s %3d bytes: %s\n",
		r.now().Format("15:04:05.000000"),
		leg,
		dir,
		len(data),
		hexbuf.String())

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}
