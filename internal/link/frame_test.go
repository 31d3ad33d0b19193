package link_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padrelay/internal/link"
)

func TestFrameMarshal(t *testing.T) {
	b, err := link.Frame{ID: 0x03, Payload: []byte{0x10, 0x01}}.MarshalBinary()
	require.NoError(t, err)
	// 0x03 ^ 0x02 ^ 0x10 ^ 0x01 = 0x10
	assert.Equal(t, []byte{0xA5, 0x03, 0x02, 0x10, 0x01, 0x10}, b)

	var f link.Frame
	require.NoError(t, f.UnmarshalBinary(b))
	assert.Equal(t, byte(0x03), f.ID)
	assert.Equal(t, []byte{0x10, 0x01}, f.Payload)

	b[5] ^= 0xFF
	assert.ErrorIs(t, f.UnmarshalBinary(b), link.ErrBadChecksum)
	assert.Error(t, f.UnmarshalBinary(b[:3]))

	_, err = link.Frame{Payload: make([]byte, 256)}.MarshalBinary()
	assert.ErrorIs(t, err, link.ErrPayloadTooLarge)
}

func TestDecoderReassembly(t *testing.T) {
	one, _ := link.Frame{ID: 1, Payload: []byte{1, 2, 3}}.MarshalBinary()
	two, _ := link.Frame{ID: 2, Payload: nil}.MarshalBinary()

	var stream []byte
	stream = append(stream, 0x00, 0x11) // noise
	stream = append(stream, one...)
	stream = append(stream, two...)

	var d link.Decoder
	d.Feed(stream[:5])
	_, ok := d.Next()
	assert.False(t, ok, "partial frame")
	assert.Equal(t, 3, d.Pending())

	d.Feed(stream[5:])
	f, ok := d.Next()
	require.True(t, ok)
	assert.Equal(t, byte(1), f.ID)
	assert.Equal(t, []byte{1, 2, 3}, f.Payload)

	f, ok = d.Next()
	require.True(t, ok)
	assert.Equal(t, byte(2), f.ID)
	assert.Empty(t, f.Payload)

	_, ok = d.Next()
	assert.False(t, ok)
	assert.Zero(t, d.Pending())
	assert.Equal(t, 2, d.Dropped)
}

func TestDecoderSkipsCorruptFrame(t *testing.T) {
	bad, _ := link.Frame{ID: 1, Payload: []byte{9, 9}}.MarshalBinary()
	bad[len(bad)-1] ^= 0x01
	good, _ := link.Frame{ID: 1, Payload: []byte{7}}.MarshalBinary()

	var d link.Decoder
	d.Feed(append(bad, good...))

	f, ok := d.Next()
	require.True(t, ok)
	assert.Equal(t, []byte{7}, f.Payload)
	assert.Positive(t, d.Dropped)
}
