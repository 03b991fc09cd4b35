//go:build !linux

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
)

var errNoSystemd = errors.New("service management requires systemd (linux only)")

func (s *ServiceInstall) Run(logger *slog.Logger) error {
	if s.Print {
		exePath, err := currentExecutable()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(s.out(), systemdUnitContent(exePath, s.ServeArgs))
		return err
	}
	return errNoSystemd
}

func (s *ServiceUninstall) Run(logger *slog.Logger) error {
	return errNoSystemd
}
