package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/padrelay/clock"
	"github.com/Alia5/padrelay/hal"
	"github.com/Alia5/padrelay/internal/link"
	"github.com/Alia5/padrelay/internal/log"
	"github.com/Alia5/padrelay/internal/optimize"
	"github.com/Alia5/padrelay/internal/relay"
	"github.com/Alia5/padrelay/internal/script"
	"github.com/Alia5/padrelay/internal/status"
)

type SerialConfig struct {
	Console     string        `help:"Serial port of the console bridge" env:"PADRELAY_SERIAL_CONSOLE"`
	Controller  string        `help:"Serial port of the controller bridge" env:"PADRELAY_SERIAL_CONTROLLER"`
	Display     string        `help:"Display presence: 'always' or a serial port name" default:"always" env:"PADRELAY_SERIAL_DISPLAY"`
	Baud        int           `help:"Baud rate of both bridges" default:"921600" env:"PADRELAY_SERIAL_BAUD"`
	ReadTimeout time.Duration `help:"Read timeout per poll" default:"1ms" env:"PADRELAY_SERIAL_READ_TIMEOUT"`
}

type HostConfig struct {
	Root        string `help:"Filesystem root holding /sys and /proc" default:"/" env:"PADRELAY_HOST_ROOT"`
	Sensor      string `help:"Temperature sensor key prefix, e.g. cpu_thermal; hottest sensor when empty" env:"PADRELAY_HOST_SENSOR"`
	CPU         string `help:"CPU whose frequency is governed" default:"cpu0" env:"PADRELAY_HOST_CPU"`
	VoltageFile string `help:"hwmon input reporting the supply voltage in millivolts" env:"PADRELAY_HOST_VOLTAGE_FILE"`
}

type Run struct {
	Serial SerialConfig `embed:"" prefix:"serial."`
	Host   HostConfig   `embed:"" prefix:"host."`

	StatusPin        string        `help:"GPIO pin driving the status LED, e.g. GPIO47" env:"PADRELAY_STATUS_PIN"`
	Profile          string        `help:"Script profile (YAML or TOML)" type:"path" env:"PADRELAY_PROFILE"`
	Watchdog         time.Duration `help:"Loop stall tolerated before recovery" default:"5s" env:"PADRELAY_WATCHDOG"`
	RecoveryCooldown time.Duration `help:"Minimum time between recoveries" default:"5s" env:"PADRELAY_RECOVERY_COOLDOWN"`
	ErrorThreshold   uint32        `help:"Errors tolerated before safe mode is forced" default:"10" env:"PADRELAY_ERROR_THRESHOLD"`
	PollInterval     time.Duration `help:"Delay between loop iterations" default:"1ms" env:"PADRELAY_POLL_INTERVAL"`
	Simulate         bool          `help:"Relay synthetic input over an in-memory link with fixed telemetry" env:"PADRELAY_SIMULATE"`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.StartRelay(ctx, logger, rawLogger)
}

func (r *Run) StartRelay(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	clk := clock.NewHost()

	var (
		lnk    link.Link
		hw     hal.Hardware
		serial *link.Serial
	)
	if r.Simulate {
		mem := link.NewMemory()
		for _, k := range []link.DeviceKind{link.Display, link.Console, link.Controller} {
			mem.SetPresent(k, true)
		}
		mem.Generate = simulatedInput(clk)
		lnk = mem
		hw = &hal.Static{Temp: 55, VoltageMv: 5000, CPU: 20, Memory: 30}
		logger.Info("Starting padrelay in simulation mode")
	} else {
		serial = link.NewSerial(link.SerialConfig{
			ConsolePort:    r.Serial.Console,
			ControllerPort: r.Serial.Controller,
			Display:        r.Serial.Display,
			BaudRate:       r.Serial.Baud,
			ReadTimeout:    r.Serial.ReadTimeout,
		}, logger, rawLogger)
		lnk = serial
		hw = &hal.Sysfs{
			Root:        r.Host.Root,
			Sensor:      r.Host.Sensor,
			CPU:         r.Host.CPU,
			VoltageFile: r.Host.VoltageFile,
		}
		logger.Info("Starting padrelay",
			"console", r.Serial.Console,
			"controller", r.Serial.Controller,
			"baud", r.Serial.Baud)
	}
	defer func() {
		if err := lnk.Close(); err != nil {
			logger.Warn("close link", "error", err)
		}
	}()

	engine := optimize.New(lnk, hw, clk, logger)
	if serial != nil {
		serial.SetObserver(engine)
	}

	scripts := script.New(clk, logger)
	defer scripts.Cleanup()
	if r.Profile != "" {
		p, err := script.LoadProfile(r.Profile)
		if err != nil {
			return err
		}
		if err := p.Apply(scripts); err != nil {
			return fmt.Errorf("apply profile %s: %w", r.Profile, err)
		}
		logger.Info("Loaded script profile", "path", r.Profile, "scripts", len(scripts.Scripts()))
	}

	ind := status.Tee{status.NewLogIndicator(logger)}
	if r.StatusPin != "" {
		led, err := status.OpenGPIO(r.StatusPin, clk, logger)
		if err != nil {
			logger.Warn("status LED unavailable", "pin", r.StatusPin, "error", err)
		} else {
			ind = append(ind, led)
		}
	}

	return relay.New(r.relayConfig(), clk, lnk, engine, scripts, ind, logger).Run(ctx)
}

func (r *Run) relayConfig() relay.Config {
	cfg := relay.DefaultConfig()
	if r.Watchdog > 0 {
		cfg.WatchdogTimeoutUs = micros(r.Watchdog)
	}
	if r.RecoveryCooldown > 0 {
		cfg.RecoveryCooldownUs = micros(r.RecoveryCooldown)
	}
	if r.ErrorThreshold > 0 {
		cfg.ErrorThreshold = r.ErrorThreshold
	}
	cfg.PollDelayUs = micros(r.PollInterval)
	return cfg
}

func micros(d time.Duration) uint32 {
	us := d.Microseconds()
	switch {
	case us <= 0:
		return 0
	case us > int64(^uint32(0)):
		return ^uint32(0)
	}
	return uint32(us)
}
