//go:build linux

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

const (
	serviceName = "padrelay.service"
	servicePath = "/etc/systemd/system/padrelay.service"
)

func install(logger *slog.Logger, unit string) error {
	if err := os.WriteFile(servicePath, []byte(unit), 0o644); err != nil {
		return err
	}

	for _, args := range [][]string{
		{"daemon-reload"},
		{"enable", serviceName},
		{"restart", serviceName},
	} {
		if err := runSystemctl(args...); err != nil {
			return err
		}
	}

	logger.Info("padrelay service installed", "path", servicePath)
	return nil
}

func uninstall(logger *slog.Logger) error {
	var errs []error
	for _, args := range [][]string{{"stop", serviceName}, {"disable", serviceName}} {
		if err := runSystemctl(args...); err != nil {
			errs = append(errs, err)
		}
	}
	if err := os.Remove(servicePath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	if err := runSystemctl("daemon-reload"); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	logger.Info("padrelay service removed", "path", servicePath)
	return nil
}

func runSystemctl(args ...string) error {
	cmd := exec.Command("systemctl", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}
