package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const serviceName = "dosmouse.service"

// ServiceCommand manages the systemd unit that runs "dosmouse serve".
type ServiceCommand struct {
	Install   ServiceInstall   `cmd:"" help:"Install and start the dosmouse systemd service"`
	Uninstall ServiceUninstall `cmd:"" help:"Stop and remove the dosmouse systemd service"`
}

type ServiceInstall struct {
	UnitPath  string   `help:"Unit file location" default:"/etc/systemd/system/dosmouse.service" type:"path"`
	ServeArgs []string `help:"Extra arguments passed to serve" name:"serve-arg"`
	Print     bool     `help:"Write the unit file to stdout instead of installing it"`

	Out io.Writer `kong:"-"`
}

type ServiceUninstall struct {
	UnitPath string `help:"Unit file location" default:"/etc/systemd/system/dosmouse.service" type:"path"`
}

func (s *ServiceInstall) out() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}

func systemdUnitContent(exePath string, serveArgs []string) string {
	workingDir := filepath.Dir(exePath)
	execStart := fmt.Sprintf("%q serve", exePath)
	if len(serveArgs) > 0 {
		execStart += " " + strings.Join(serveArgs, " ")
	}
	return fmt.Sprintf(`[Unit]
Description=DOS mouse driver host
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
ExecStart=%s
WorkingDirectory=%s
Restart=on-failure

[Install]
WantedBy=multi-user.target
`, execStart, workingDir)
}
