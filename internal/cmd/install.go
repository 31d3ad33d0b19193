package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Install registers padrelay as a boot-time service.
type Install struct {
	Config string `help:"Config file the service runs with" type:"path"`
}

// Uninstall stops and removes the service.
type Uninstall struct{}

func (i *Install) Run(logger *slog.Logger) error {
	exePath, err := currentExecutable()
	if err != nil {
		return err
	}
	return install(logger, serviceUnit(exePath, i.Config))
}

func (u *Uninstall) Run(logger *slog.Logger) error {
	return uninstall(logger)
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}

func serviceUnit(exePath, configPath string) string {
	execStart := []string{fmt.Sprintf("%q", exePath), "run"}
	if configPath != "" {
		execStart = append(execStart, fmt.Sprintf("--config=%q", configPath))
	}
	return fmt.Sprintf(`[Unit]
Description=padrelay controller relay
After=local-fs.target

[Service]
Type=simple
ExecStart=%s
WorkingDirectory=%s
Restart=always
RestartSec=1

[Install]
WantedBy=multi-user.target
`, strings.Join(execStart, " "), filepath.Dir(exePath))
}
