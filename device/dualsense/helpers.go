package dualsense

import (
	"fmt"
	"strings"
)

// Color is an RGB lightbar color.
type Color struct {
	R, G, B uint8
}

var (
	ColorRed   = Color{R: 255}
	ColorAmber = Color{R: 255, G: 165}
	ColorGreen = Color{G: 255}
)

// BatteryColor maps a battery level to the lightbar color band.
func BatteryColor(level uint8) Color {
	switch {
	case level < BatteryLow:
		return ColorRed
	case level < BatteryMedium:
		return ColorAmber
	default:
		return ColorGreen
	}
}

var buttonNames = []struct {
	name string
	mask uint16
}{
	{"Cross", ButtonCross},
	{"Circle", ButtonCircle},
	{"Triangle", ButtonTriangle},
	{"Square", ButtonSquare},
	{"L1", ButtonL1},
	{"R1", ButtonR1},
	{"L2", ButtonL2},
	{"R2", ButtonR2},
	{"Share", ButtonShare},
	{"Options", ButtonOptions},
	{"L3", ButtonL3},
	{"R3", ButtonR3},
	{"PS", ButtonPS},
	{"Touchpad", ButtonTouchpad},
	{"Mute", ButtonMute},
}

// ParseButtonMask parses a "+" or "," separated list of button names
// (case insensitive) into a mask. "None" or an empty string is 0.
func ParseButtonMask(s string) (uint16, error) {
	var m uint16
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '+' })
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || strings.EqualFold(f, "none") {
			continue
		}
		found := false
		for _, n := range buttonNames {
			if strings.EqualFold(f, n.name) {
				m |= n.mask
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("invalid button name: %q", f)
		}
	}
	return m, nil
}

// FormatButtonMask renders a mask as a "+" separated list of button names.
func FormatButtonMask(m uint16) string {
	if m == 0 {
		return "None"
	}
	var parts []string
	for _, n := range buttonNames {
		if m&n.mask != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "+")
}
