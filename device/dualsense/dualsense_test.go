package dualsense_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padrelay/device/dualsense"
)

func TestStateValidate(t *testing.T) {
	cases := []struct {
		name    string
		state   dualsense.ControllerState
		wantErr string
	}{
		{
			name:  "neutral",
			state: dualsense.ControllerState{LX: 128, LY: 128, RX: 128, RY: 128, BatteryLevel: 80, Temperature: 30},
		},
		{
			name: "touch at limits",
			state: dualsense.ControllerState{
				Touch: [2]dualsense.TouchPoint{{Active: true, X: 1920, Y: 1080}},
			},
		},
		{
			name: "inactive touch out of range ignored",
			state: dualsense.ControllerState{
				Touch: [2]dualsense.TouchPoint{{}, {Active: false, X: 4000, Y: 4000}},
			},
		},
		{
			name: "touch x too large",
			state: dualsense.ControllerState{
				Touch: [2]dualsense.TouchPoint{{Active: true, X: 1921, Y: 10}},
			},
			wantErr: "touch[0].x",
		},
		{
			name: "second touch y too large",
			state: dualsense.ControllerState{
				Touch: [2]dualsense.TouchPoint{{}, {Active: true, X: 10, Y: 1081}},
			},
			wantErr: "touch[1].y",
		},
		{
			name:    "battery over 100",
			state:   dualsense.ControllerState{BatteryLevel: 101},
			wantErr: "batteryLevel",
		},
		{
			name:    "temperature over 100",
			state:   dualsense.ControllerState{Temperature: 200},
			wantErr: "temperature",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.state.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *dualsense.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantErr, verr.Field)
		})
	}
}

func TestOutputValidate(t *testing.T) {
	out := dualsense.DefaultOutput()
	assert.NoError(t, out.Validate())

	out.SpeakerVolume = 101
	assert.Error(t, out.Validate())

	out = dualsense.DefaultOutput()
	out.MicVolume = 255
	assert.Error(t, out.Validate())
}

func TestStateRawImage(t *testing.T) {
	st := dualsense.ControllerState{
		Buttons: dualsense.ButtonCross | dualsense.ButtonR1,
		LX:      0x10, LY: 0x20, RX: 0x30, RY: 0x40,
		L2: 0xFE, R2: 0x01,
		AccelZ: -5023,
		GyroX:  300,
		Touch: [2]dualsense.TouchPoint{
			{Active: true, ID: 5, X: 123, Y: 456},
		},
		BatteryLevel:   77,
		ConnectionType: 1,
		Temperature:    40,
	}

	b, err := st.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, dualsense.StateSize)

	assert.Equal(t, []byte{0x21, 0x00}, b[0:2])
	assert.Equal(t, []byte{0x10, 0x20, 0x30, 0x40, 0xFE, 0x01}, b[2:8])
	assert.Equal(t, []byte{0x61, 0xEC}, b[12:14])
	assert.Equal(t, byte(0x85), b[20])
	assert.Equal(t, []byte{0x7B, 0x00, 0xC8, 0x01}, b[21:25])
	assert.Equal(t, byte(0x00), b[25])
	assert.Equal(t, []byte{77, 1, 40}, b[30:33])

	var back dualsense.ControllerState
	require.NoError(t, back.UnmarshalBinary(b))
	assert.Equal(t, st, back)

	assert.Error(t, back.UnmarshalBinary(b[:10]))
}

func TestSaturatingBlend(t *testing.T) {
	cur := dualsense.ControllerState{LX: 200, LY: 10, Buttons: 0x00F0, BatteryLevel: 60}
	prev := dualsense.ControllerState{LX: 100, LY: 20, Buttons: 0x0020, BatteryLevel: 60}

	got := dualsense.SaturatingBlend(cur, prev)

	assert.Equal(t, uint8(255), got.LX, "clamps at 255")
	assert.Equal(t, uint8(30), got.LY)
	// 0xF0 + 0x20 saturates in the low byte, no carry into the high byte.
	assert.Equal(t, uint16(0x00FF), got.Buttons)
	assert.Equal(t, uint8(120), got.BatteryLevel)
}

func TestSaturatingBlendMotionBytes(t *testing.T) {
	// -1 is 0xFFFF; adding 1 byte-wise leaves it 0xFFFF rather than wrapping to 0.
	cur := dualsense.ControllerState{GyroX: -1}
	prev := dualsense.ControllerState{GyroX: 1}
	got := dualsense.SaturatingBlend(cur, prev)
	assert.Equal(t, int16(-1), got.GyroX)
}

func TestOutputRawImage(t *testing.T) {
	out := dualsense.ControllerOutput{
		LedRed: 1, LedGreen: 2, LedBlue: 3,
		HapticLeftEnable:    true,
		HapticLeftIntensity: 200,
		TriggerRightMode:    2,
		TriggerRightForce:   90,
		SpeakerVolume:       50,
		MicVolume:           20,
		AudioEnable:         true,
	}
	b, err := out.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, dualsense.OutputSize)
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 1, 0, 200, 2, 0, 90, 0, 50, 20, 1}, b)

	var back dualsense.ControllerOutput
	require.NoError(t, back.UnmarshalBinary(b))
	assert.Equal(t, out, back)
}

func TestParseButtonMask(t *testing.T) {
	m, err := dualsense.ParseButtonMask("Cross+l1, R2")
	require.NoError(t, err)
	assert.Equal(t, dualsense.ButtonCross|dualsense.ButtonL1|dualsense.ButtonR2, m)

	m, err = dualsense.ParseButtonMask("none")
	require.NoError(t, err)
	assert.Zero(t, m)

	_, err = dualsense.ParseButtonMask("Cross+Start")
	assert.ErrorContains(t, err, "Start")

	assert.Equal(t, "Cross+L1+R2", dualsense.FormatButtonMask(dualsense.ButtonCross|dualsense.ButtonL1|dualsense.ButtonR2))
	assert.Equal(t, "None", dualsense.FormatButtonMask(0))
}

func TestBatteryColor(t *testing.T) {
	assert.Equal(t, dualsense.ColorRed, dualsense.BatteryColor(0))
	assert.Equal(t, dualsense.ColorRed, dualsense.BatteryColor(19))
	assert.Equal(t, dualsense.ColorAmber, dualsense.BatteryColor(20))
	assert.Equal(t, dualsense.ColorAmber, dualsense.BatteryColor(49))
	assert.Equal(t, dualsense.ColorGreen, dualsense.BatteryColor(50))
	assert.Equal(t, dualsense.ColorGreen, dualsense.BatteryColor(100))
}
