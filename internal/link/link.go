// Package link moves DualSense reports between the relay, the console and
// the controller.
package link

import (
	"fmt"

	"github.com/Alia5/padrelay/device/dualsense"
)

type DeviceKind uint8

const (
	Display DeviceKind = iota
	Console
	Controller

	numKinds
)

func (k DeviceKind) String() string {
	switch k {
	case Display:
		return "display"
	case Console:
		return "console"
	case Controller:
		return "controller"
	default:
		return fmt.Sprintf("device(%d)", k)
	}
}

// Link is the device side of the relay. Input flows from the controller to
// the console, output from the console to the controller. None of the
// methods block longer than a single read timeout.
type Link interface {
	Present(kind DeviceKind) bool

	// ReadInput returns the newest input report from the controller.
	ReadInput() (dualsense.ControllerState, bool)
	// SendInput forwards an input report to the console.
	SendInput(dualsense.ControllerState) bool
	// ReadOutput returns the newest output report from the console.
	ReadOutput() (dualsense.ControllerOutput, bool)
	// WriteOutput sends an output report to the controller.
	WriteOutput(dualsense.ControllerOutput) bool

	EnableLowLatency()
	Calibrate() bool
	Reset() error
	Close() error
}

// BufferObserver is told about frames that were superseded before they
// could be processed (overrun) and reads that ended inside a frame
// (underrun).
type BufferObserver interface {
	ReportOverrun()
	ReportUnderrun()
}

type nopObserver struct{}

func (nopObserver) ReportOverrun()  {}
func (nopObserver) ReportUnderrun() {}
