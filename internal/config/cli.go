// Package config holds the command-line surface of padrelay.
package config

import "github.com/Alia5/padrelay/internal/cmd"

type CLI struct {
	ConfigFile string `name:"config" help:"Path to a JSON, YAML or TOML config file" type:"path" env:"PADRELAY_CONFIG"`

	Log struct {
		Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"PADRELAY_LOG_LEVEL"`
		File    string `help:"Also write logs to this file" type:"path" env:"PADRELAY_LOG_FILE"`
		RawFile string `help:"Write raw serial frames to this file" type:"path" env:"PADRELAY_LOG_RAW_FILE"`
	} `embed:"" prefix:"log."`

	Run       cmd.Run           `cmd:"" help:"Relay a controller to a console" default:"withargs"`
	Config    cmd.ConfigCommand `cmd:"" help:"Manage configuration files"`
	Install   cmd.Install       `cmd:"" help:"Install padrelay as a systemd service"`
	Uninstall cmd.Uninstall     `cmd:"" help:"Remove the padrelay systemd service"`
}
