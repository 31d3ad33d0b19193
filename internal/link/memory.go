package link

import "github.com/Alia5/padrelay/device/dualsense"

// Memory is an in-process Link. Reports are queued by the caller and
// everything the relay sends is recorded.
type Memory struct {
	present [numKinds]bool

	inputs  []dualsense.ControllerState
	outputs []dualsense.ControllerOutput

	// Generate, if set, supplies input when the queue is empty.
	Generate func() (dualsense.ControllerState, bool)

	Sent    []dualsense.ControllerState
	Written []dualsense.ControllerOutput

	FailSend  bool
	FailWrite bool
	ResetErr  error

	LowLatency   int
	Calibrations int
	Resets       int
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) SetPresent(kind DeviceKind, present bool) {
	if kind < numKinds {
		m.present[kind] = present
	}
}

func (m *Memory) QueueInput(states ...dualsense.ControllerState) {
	m.inputs = append(m.inputs, states...)
}

func (m *Memory) QueueOutput(outs ...dualsense.ControllerOutput) {
	m.outputs = append(m.outputs, outs...)
}

func (m *Memory) Present(kind DeviceKind) bool {
	return kind < numKinds && m.present[kind]
}

func (m *Memory) ReadInput() (dualsense.ControllerState, bool) {
	if len(m.inputs) == 0 {
		if m.Generate != nil {
			return m.Generate()
		}
		return dualsense.ControllerState{}, false
	}
	st := m.inputs[0]
	m.inputs = m.inputs[1:]
	return st, true
}

func (m *Memory) SendInput(st dualsense.ControllerState) bool {
	if m.FailSend {
		return false
	}
	m.Sent = append(m.Sent, st)
	return true
}

func (m *Memory) ReadOutput() (dualsense.ControllerOutput, bool) {
	if len(m.outputs) == 0 {
		return dualsense.ControllerOutput{}, false
	}
	out := m.outputs[0]
	m.outputs = m.outputs[1:]
	return out, true
}

func (m *Memory) WriteOutput(out dualsense.ControllerOutput) bool {
	if m.FailWrite {
		return false
	}
	m.Written = append(m.Written, out)
	return true
}

func (m *Memory) EnableLowLatency() { m.LowLatency++ }

func (m *Memory) Calibrate() bool {
	m.Calibrations++
	return true
}

func (m *Memory) Reset() error {
	m.Resets++
	return m.ResetErr
}

func (m *Memory) Close() error { return nil }
