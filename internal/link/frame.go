package link

import (
	"bytes"
	"errors"
	"io"
)

// Wire framing: sync byte, report id, payload length, payload, and an XOR
// of id, length and payload.
const (
	SyncByte   byte = 0xA5
	MaxPayload      = 255
	frameExtra      = 4
)

var (
	ErrPayloadTooLarge = errors.New("frame payload too large")
	ErrBadChecksum     = errors.New("frame checksum mismatch")
)

type Frame struct {
	ID      byte
	Payload []byte
}

func (f Frame) MarshalBinary() ([]byte, error) {
	if len(f.Payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	b := make([]byte, 0, len(f.Payload)+frameExtra)
	b = append(b, SyncByte, f.ID, byte(len(f.Payload)))
	b = append(b, f.Payload...)
	return append(b, checksum(b[1:])), nil
}

func (f *Frame) UnmarshalBinary(b []byte) error {
	if len(b) < frameExtra || b[0] != SyncByte {
		return io.ErrUnexpectedEOF
	}
	n := int(b[2])
	if len(b) < n+frameExtra {
		return io.ErrUnexpectedEOF
	}
	if checksum(b[1:3+n]) != b[3+n] {
		return ErrBadChecksum
	}
	f.ID = b[1]
	f.Payload = append(f.Payload[:0], b[3:3+n]...)
	return nil
}

func checksum(b []byte) byte {
	var x byte
	for _, c := range b {
		x ^= c
	}
	return x
}

// Decoder reassembles frames from a byte stream. Garbage before a sync
// byte and frames with a bad checksum are skipped and counted in Dropped.
type Decoder struct {
	buf     []byte
	Dropped int
}

func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next returns the next complete frame, or false if more bytes are needed.
func (d *Decoder) Next() (Frame, bool) {
	for {
		i := bytes.IndexByte(d.buf, SyncByte)
		if i < 0 {
			d.Dropped += len(d.buf)
			d.buf = d.buf[:0]
			return Frame{}, false
		}
		if i > 0 {
			d.Dropped += i
			d.consume(i)
		}
		if len(d.buf) < 3 {
			return Frame{}, false
		}
		total := int(d.buf[2]) + frameExtra
		if len(d.buf) < total {
			return Frame{}, false
		}

		var f Frame
		if err := f.UnmarshalBinary(d.buf[:total]); err != nil {
			d.Dropped++
			d.consume(1)
			continue
		}
		d.consume(total)
		return f, true
	}
}

// Pending is the number of buffered bytes not yet returned as a frame.
func (d *Decoder) Pending() int { return len(d.buf) }

func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
}

func (d *Decoder) consume(n int) {
	d.buf = append(d.buf[:0], d.buf[n:]...)
}
