package clock

// Manual is a Clock that only moves when told to. Delay advances it.
type Manual struct {
	now  uint32
	step uint32
}

// NewManual returns a manual clock starting at start.
func NewManual(start uint32) *Manual {
	return &Manual{now: start}
}

// NowMicros returns the current time, then advances it by the configured
// auto step.
func (m *Manual) NowMicros() uint32 {
	now := m.now
	m.now += m.step
	return now
}

func (m *Manual) Delay(us uint32) { m.now += us }

// Advance moves the clock forward by us microseconds.
func (m *Manual) Advance(us uint32) { m.now += us }

// Set jumps the clock to an absolute value.
func (m *Manual) Set(us uint32) { m.now = us }

// SetAutoStep makes every NowMicros call advance the clock by us, which
// simulates work taking time between reads.
func (m *Manual) SetAutoStep(us uint32) { m.step = us }
