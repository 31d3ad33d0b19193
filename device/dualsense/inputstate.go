package dualsense

import (
	"encoding/binary"
	"io"
)

// TouchPoint is a single touchpad contact.
type TouchPoint struct {
	Active bool
	ID     uint8
	X, Y   uint16
}

// ControllerState is one controller input snapshot.
//
// Raw image layout (StateSize bytes, little endian):
//
//	0-1   buttons
//	2-5   LX LY RX RY
//	6-7   L2 R2
//	8-19  accel X/Y/Z, gyro X/Y/Z (int16)
//	20-24 touch 0: flags (active bit 7, id bits 0-6), X, Y
//	25-29 touch 1
//	30    battery level
//	31    connection type
//	32    temperature
type ControllerState struct {
	Buttons uint16

	LX, LY uint8
	RX, RY uint8
	L2, R2 uint8

	AccelX, AccelY, AccelZ int16
	GyroX, GyroY, GyroZ    int16

	Touch [2]TouchPoint

	BatteryLevel   uint8
	ConnectionType uint8
	Temperature    uint8
}

func (s *ControllerState) MarshalBinary() ([]byte, error) {
	b := make([]byte, StateSize)
	s.put(b)
	return b, nil
}

func (s *ControllerState) put(b []byte) {
	binary.LittleEndian.PutUint16(b[0:2], s.Buttons)
	b[2] = s.LX
	b[3] = s.LY
	b[4] = s.RX
	b[5] = s.RY
	b[6] = s.L2
	b[7] = s.R2
	binary.LittleEndian.PutUint16(b[8:10], uint16(s.AccelX))
	binary.LittleEndian.PutUint16(b[10:12], uint16(s.AccelY))
	binary.LittleEndian.PutUint16(b[12:14], uint16(s.AccelZ))
	binary.LittleEndian.PutUint16(b[14:16], uint16(s.GyroX))
	binary.LittleEndian.PutUint16(b[16:18], uint16(s.GyroY))
	binary.LittleEndian.PutUint16(b[18:20], uint16(s.GyroZ))
	for i, tp := range s.Touch {
		off := 20 + i*5
		flags := tp.ID & TouchMaxID
		if tp.Active {
			flags |= TouchActiveFlag
		}
		b[off] = flags
		binary.LittleEndian.PutUint16(b[off+1:off+3], tp.X)
		binary.LittleEndian.PutUint16(b[off+3:off+5], tp.Y)
	}
	b[30] = s.BatteryLevel
	b[31] = s.ConnectionType
	b[32] = s.Temperature
}

func (s *ControllerState) UnmarshalBinary(data []byte) error {
	if len(data) < StateSize {
		return io.ErrUnexpectedEOF
	}
	s.Buttons = binary.LittleEndian.Uint16(data[0:2])
	s.LX = data[2]
	s.LY = data[3]
	s.RX = data[4]
	s.RY = data[5]
	s.L2 = data[6]
	s.R2 = data[7]
	s.AccelX = int16(binary.LittleEndian.Uint16(data[8:10]))
	s.AccelY = int16(binary.LittleEndian.Uint16(data[10:12]))
	s.AccelZ = int16(binary.LittleEndian.Uint16(data[12:14]))
	s.GyroX = int16(binary.LittleEndian.Uint16(data[14:16]))
	s.GyroY = int16(binary.LittleEndian.Uint16(data[16:18]))
	s.GyroZ = int16(binary.LittleEndian.Uint16(data[18:20]))
	for i := range s.Touch {
		off := 20 + i*5
		s.Touch[i] = TouchPoint{
			Active: data[off]&TouchActiveFlag != 0,
			ID:     data[off] & TouchMaxID,
			X:      binary.LittleEndian.Uint16(data[off+1 : off+3]),
			Y:      binary.LittleEndian.Uint16(data[off+3 : off+5]),
		}
	}
	s.BatteryLevel = data[30]
	s.ConnectionType = data[31]
	s.Temperature = data[32]
	return nil
}

// Pressed reports whether every button in mask is held.
func (s *ControllerState) Pressed(mask uint16) bool {
	return mask != 0 && s.Buttons&mask == mask
}

// SaturatingBlend combines the raw images of cur and prev with a per-byte
// saturating add and decodes the result. Multi-byte fields are not treated
// as numbers; each byte clamps at 0xFF independently.
func SaturatingBlend(cur, prev ControllerState) ControllerState {
	var a, b [StateSize]byte
	cur.put(a[:])
	prev.put(b[:])
	for i := range a {
		sum := uint16(a[i]) + uint16(b[i])
		if sum > 0xFF {
			sum = 0xFF
		}
		a[i] = byte(sum)
	}
	var out ControllerState
	_ = out.UnmarshalBinary(a[:])
	return out
}
