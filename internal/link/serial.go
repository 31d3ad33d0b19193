package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"go.bug.st/serial"

	"github.com/Alia5/padrelay/device/dualsense"
	"github.com/Alia5/padrelay/internal/log"
)

// DisplayAlways makes the display leg always present.
const DisplayAlways = "always"

const (
	DefaultBaudRate    = 921600
	DefaultReadTimeout = time.Millisecond
	presenceTTL        = 250 * time.Millisecond
)

type SerialConfig struct {
	ConsolePort    string
	ControllerPort string
	// Display is DisplayAlways or the name of a port whose presence
	// stands in for the display.
	Display     string
	BaudRate    int
	ReadTimeout time.Duration
}

type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

func openSerial(name string, baud int) (port, error) {
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return p, nil
}

type leg struct {
	name string
	path string
	p    port
	dec  Decoder
	rbuf [512]byte
}

// Serial talks to the console and controller bridges over two serial
// ports. Ports are opened on first use and closed again after an I/O
// error so the next call reopens them.
type Serial struct {
	cfg    SerialConfig
	logger *slog.Logger
	raw    log.RawLogger
	obs    BufferObserver

	console    leg
	controller leg
	output     dualsense.ControllerOutput

	ports   []string
	portsAt time.Time

	listPorts func() ([]string, error)
	open      func(name string, baud int) (port, error)
	now       func() time.Time
}

func NewSerial(cfg SerialConfig, logger *slog.Logger, raw log.RawLogger) *Serial {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Display == "" {
		cfg.Display = DisplayAlways
	}
	if logger == nil {
		logger = slog.Default()
	}
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	return &Serial{
		cfg:        cfg,
		logger:     logger,
		raw:        raw,
		obs:        nopObserver{},
		console:    leg{name: "console", path: cfg.ConsolePort},
		controller: leg{name: "controller", path: cfg.ControllerPort},
		output:     dualsense.DefaultOutput(),
		listPorts:  serial.GetPortsList,
		open:       openSerial,
		now:        time.Now,
	}
}

// SetObserver routes buffer overrun and underrun reports to obs.
func (s *Serial) SetObserver(obs BufferObserver) {
	if obs == nil {
		obs = nopObserver{}
	}
	s.obs = obs
}

func (s *Serial) Present(kind DeviceKind) bool {
	switch kind {
	case Display:
		if s.cfg.Display == DisplayAlways {
			return true
		}
		return s.portListed(s.cfg.Display)
	case Console:
		return s.portListed(s.cfg.ConsolePort)
	case Controller:
		return s.portListed(s.cfg.ControllerPort)
	default:
		return false
	}
}

func (s *Serial) portListed(name string) bool {
	if name == "" {
		return false
	}
	if now := s.now(); s.ports == nil || now.Sub(s.portsAt) >= presenceTTL {
		ports, err := s.listPorts()
		if err != nil {
			s.logger.Debug("list serial ports", "error", err)
			ports = []string{}
		}
		s.ports = ports
		s.portsAt = now
	}
	return slices.Contains(s.ports, name)
}

func (s *Serial) ReadInput() (dualsense.ControllerState, bool) {
	var st dualsense.ControllerState
	payload, ok := s.readLatest(&s.controller, dualsense.ReportIDInput)
	if !ok {
		return st, false
	}
	if err := st.UnmarshalBinary(payload); err != nil {
		s.logger.Log(context.Background(), log.LevelTrace, "bad input report", "error", err)
		return st, false
	}
	return st, true
}

func (s *Serial) ReadOutput() (dualsense.ControllerOutput, bool) {
	var out dualsense.ControllerOutput
	payload, ok := s.readLatest(&s.console, dualsense.ReportIDOutput)
	if !ok {
		return out, false
	}
	if err := out.UnmarshalBinary(payload); err != nil {
		s.logger.Log(context.Background(), log.LevelTrace, "bad output report", "error", err)
		return out, false
	}
	return out, true
}

func (s *Serial) SendInput(st dualsense.ControllerState) bool {
	b, err := st.MarshalBinary()
	if err != nil {
		return false
	}
	return s.send(&s.console, dualsense.ReportIDInput, b)
}

func (s *Serial) WriteOutput(out dualsense.ControllerOutput) bool {
	b, err := out.MarshalBinary()
	if err != nil {
		return false
	}
	if !s.send(&s.controller, dualsense.ReportIDOutput, b) {
		return false
	}
	s.output = out
	return true
}

// EnableLowLatency drops the controller polling interval to 1 ms and turns
// off haptics on the last output report.
func (s *Serial) EnableLowLatency() {
	s.send(&s.controller, dualsense.ReportIDFeature,
		[]byte{dualsense.FeaturePollInterval, dualsense.LowLatencyPollIntervalMs})
	out := s.output
	out.HapticLeftEnable = false
	out.HapticRightEnable = false
	if s.WriteOutput(out) {
		s.logger.Info("low latency mode enabled")
	}
}

func (s *Serial) Calibrate() bool {
	ok := s.send(&s.controller, dualsense.ReportIDFeature, []byte{dualsense.FeatureCalibrate})
	if ok {
		s.logger.Info("controller calibration requested")
	}
	return ok
}

// Reset closes both legs and forgets buffered bytes and cached presence.
func (s *Serial) Reset() error {
	err := s.Close()
	s.ports = nil
	s.output = dualsense.DefaultOutput()
	return err
}

func (s *Serial) Close() error {
	return errors.Join(s.closeLeg(&s.console), s.closeLeg(&s.controller))
}

func (s *Serial) closeLeg(l *leg) error {
	l.dec.Reset()
	if l.p == nil {
		return nil
	}
	err := l.p.Close()
	l.p = nil
	if err != nil {
		return fmt.Errorf("close %s port: %w", l.name, err)
	}
	return nil
}

func (s *Serial) ensureOpen(l *leg) bool {
	if l.p != nil {
		return true
	}
	if l.path == "" {
		return false
	}
	p, err := s.open(l.path, s.cfg.BaudRate)
	if err != nil {
		s.logger.Debug("open serial port", "leg", l.name, "port", l.path, "error", err)
		return false
	}
	if err := p.SetReadTimeout(s.cfg.ReadTimeout); err != nil {
		s.logger.Warn("set read timeout", "leg", l.name, "error", err)
	}
	if err := p.ResetInputBuffer(); err != nil {
		s.logger.Debug("reset input buffer", "leg", l.name, "error", err)
	}
	l.p = p
	s.logger.Info("serial port opened", "leg", l.name, "port", l.path, "baud", s.cfg.BaudRate)
	return true
}

func (s *Serial) send(l *leg, id byte, payload []byte) bool {
	if !s.ensureOpen(l) {
		return false
	}
	b, err := Frame{ID: id, Payload: payload}.MarshalBinary()
	if err != nil {
		return false
	}
	s.raw.Log(l.name, false, b)
	if _, err := l.p.Write(b); err != nil {
		s.logger.Warn("serial write failed", "leg", l.name, "error", err)
		_ = s.closeLeg(l)
		return false
	}
	return true
}

// readLatest performs one read on l and returns the newest frame with the
// wanted id. Older frames of that id are counted as overruns.
func (s *Serial) readLatest(l *leg, id byte) ([]byte, bool) {
	if !s.ensureOpen(l) {
		return nil, false
	}
	n, err := l.p.Read(l.rbuf[:])
	if err != nil {
		s.logger.Warn("serial read failed", "leg", l.name, "error", err)
		_ = s.closeLeg(l)
		return nil, false
	}
	if n == 0 {
		return nil, false
	}
	s.raw.Log(l.name, true, l.rbuf[:n])
	l.dec.Feed(l.rbuf[:n])

	var latest []byte
	found := 0
	for {
		f, ok := l.dec.Next()
		if !ok {
			break
		}
		if f.ID != id {
			s.logger.Log(context.Background(), log.LevelTrace, "ignoring frame", "leg", l.name, "id", f.ID)
			continue
		}
		latest = f.Payload
		found++
	}

	for i := 1; i < found; i++ {
		s.obs.ReportOverrun()
	}
	if found == 0 {
		if l.dec.Pending() > 0 {
			s.obs.ReportUnderrun()
		}
		return nil, false
	}
	return latest, true
}
