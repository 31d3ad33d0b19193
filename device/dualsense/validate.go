package dualsense

import "fmt"

// ValidationError names the first field of a snapshot that is out of range.
// A snapshot carrying any out-of-range field is rejected as a whole.
type ValidationError struct {
	Field string
	Value int
	Max   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dualsense: %s=%d out of range [0, %d]", e.Field, e.Value, e.Max)
}

func checkMax(field string, v, max int) error {
	if v < 0 || v > max {
		return &ValidationError{Field: field, Value: v, Max: max}
	}
	return nil
}

// Validate checks every bounded field of the state. Sticks, triggers and
// motion axes span the full width of their types and are always in range.
func (s *ControllerState) Validate() error {
	for i, tp := range s.Touch {
		if !tp.Active {
			continue
		}
		if err := checkMax(fmt.Sprintf("touch[%d].x", i), int(tp.X), int(TouchpadMaxX)); err != nil {
			return err
		}
		if err := checkMax(fmt.Sprintf("touch[%d].y", i), int(tp.Y), int(TouchpadMaxY)); err != nil {
			return err
		}
		if err := checkMax(fmt.Sprintf("touch[%d].id", i), int(tp.ID), int(TouchMaxID)); err != nil {
			return err
		}
	}
	if err := checkMax("batteryLevel", int(s.BatteryLevel), MaxBatteryLevel); err != nil {
		return err
	}
	return checkMax("temperature", int(s.Temperature), MaxTemperature)
}

// Validate checks the output volumes. LED, haptic and trigger fields are
// full-range bytes.
func (o *ControllerOutput) Validate() error {
	if err := checkMax("speakerVolume", int(o.SpeakerVolume), MaxVolume); err != nil {
		return err
	}
	return checkMax("micVolume", int(o.MicVolume), MaxVolume)
}
