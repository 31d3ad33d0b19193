package dualsense

import "io"

// ControllerOutput is the feedback sent from the console to the controller.
type ControllerOutput struct {
	LedRed, LedGreen, LedBlue uint8
	LedPulseOptions           uint8

	HapticRightEnable    bool
	HapticLeftEnable     bool
	HapticRightIntensity uint8 // (0-255)
	HapticLeftIntensity  uint8 // (0-255)

	TriggerRightMode  uint8
	TriggerLeftMode   uint8
	TriggerRightForce uint8 // (0-255)
	TriggerLeftForce  uint8 // (0-255)

	SpeakerVolume uint8 // (0-100)
	MicVolume     uint8 // (0-100)
	AudioEnable   bool
}

// DefaultOutput returns the power-on feedback state: dim blue lightbar and
// mid volume.
func DefaultOutput() ControllerOutput {
	return ControllerOutput{
		LedRed:        DefaultLedRed,
		LedGreen:      DefaultLedGreen,
		LedBlue:       DefaultLedBlue,
		SpeakerVolume: DefaultSpeakerVolume,
		MicVolume:     DefaultMicVolume,
	}
}

func (o *ControllerOutput) MarshalBinary() ([]byte, error) {
	return []byte{
		o.LedRed,
		o.LedGreen,
		o.LedBlue,
		o.LedPulseOptions,
		boolByte(o.HapticRightEnable),
		boolByte(o.HapticLeftEnable),
		o.HapticRightIntensity,
		o.HapticLeftIntensity,
		o.TriggerRightMode,
		o.TriggerLeftMode,
		o.TriggerRightForce,
		o.TriggerLeftForce,
		o.SpeakerVolume,
		o.MicVolume,
		boolByte(o.AudioEnable),
	}, nil
}

func (o *ControllerOutput) UnmarshalBinary(data []byte) error {
	if len(data) < OutputSize {
		return io.ErrUnexpectedEOF
	}
	o.LedRed = data[0]
	o.LedGreen = data[1]
	o.LedBlue = data[2]
	o.LedPulseOptions = data[3]
	o.HapticRightEnable = data[4] != 0
	o.HapticLeftEnable = data[5] != 0
	o.HapticRightIntensity = data[6]
	o.HapticLeftIntensity = data[7]
	o.TriggerRightMode = data[8]
	o.TriggerLeftMode = data[9]
	o.TriggerRightForce = data[10]
	o.TriggerLeftForce = data[11]
	o.SpeakerVolume = data[12]
	o.MicVolume = data[13]
	o.AudioEnable = data[14] != 0
	return nil
}

// SetLED sets the lightbar color.
func (o *ControllerOutput) SetLED(c Color) {
	o.LedRed, o.LedGreen, o.LedBlue = c.R, c.G, c.B
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
