package install

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"smcp/internal/global"
	"strings"
)

const unitTemplate string = `[Unit]
Description=Secure multicast chat transcript listener
After=network-online.target
Wants=network-online.target

[Service]
Type=notify
NotifyAccess=main
ExecStart=$executableFilePath listen --config $configFilePath
ExecReload=/bin/kill -HUP $MAINPID
EnvironmentFile=-/etc/default/smcp
Restart=on-failure
RestartSec=5s
NoNewPrivileges=yes
ProtectSystem=strict
ProtectHome=yes
StateDirectory=smcp
LogsDirectory=smcp
ReadWritePaths=$stateDirPath

[Install]
WantedBy=multi-user.target
`

// Systemd unit text with install paths substituted
func RenderUnit(binaryPath, configPath, stateDir string) (unit string) {
	unit = strings.Replace(unitTemplate, "$executableFilePath", binaryPath, 1)
	unit = strings.Replace(unit, "$configFilePath", configPath, 1)
	unit = strings.Replace(unit, "$stateDirPath", stateDir, 1)
	return
}

func systemctl(args ...string) (output string, err error) {
	command := exec.Command("systemctl", args...)
	raw, err := command.CombinedOutput()
	output = strings.TrimSpace(string(raw))
	return
}

func installService() (err error) {
	unitName := filepath.Base(global.DefaultServiceUnit)
	unit := RenderUnit(global.DefaultBinaryPath, global.DefaultConfigPath, filepath.Dir(global.DefaultStateFile))

	err = os.WriteFile(global.DefaultServiceUnit, []byte(unit), 0644)
	if err != nil {
		return
	}

	output, err := systemctl("daemon-reload")
	if err != nil {
		err = fmt.Errorf("failed to reload systemd units: %w: %s", err, output)
		return
	}

	// Disabled status is exit code 1
	output, err = systemctl("is-enabled", unitName)
	if err != nil && !strings.Contains(output, "disabled") {
		err = fmt.Errorf("failed to check systemd service enablement status: %w: %s", err, output)
		return
	}
	err = nil

	if strings.ToLower(output) != "enabled" {
		output, err = systemctl("enable", unitName)
		if err != nil {
			err = fmt.Errorf("failed to enable systemd service: %w: %s", err, output)
			return
		}
	}

	fmt.Printf("Successfully installed Systemd service\n")
	fmt.Printf("  IMPORTANT: modify the configuration to your needs and start the service with 'systemctl start %s'\n", unitName)
	return
}

func uninstallService() (err error) {
	unitName := filepath.Base(global.DefaultServiceUnit)

	output, err := systemctl("is-enabled", unitName)
	if err != nil {
		if !strings.Contains(output, "not-found") && !strings.Contains(output, "disabled") && !strings.Contains(output, "enabled") {
			err = fmt.Errorf("failed to check systemd service enablement status: %w: %s", err, output)
			return
		}
		// Disabled/not-found status is exit code != 0
		err = nil
	}

	if strings.ToLower(output) == "enabled" {
		output, err = systemctl("disable", "--now", unitName)
		if err != nil {
			err = fmt.Errorf("failed to disable systemd service: %w: %s", err, output)
			return
		}
	}

	err = os.Remove(global.DefaultServiceUnit)
	if err != nil && !os.IsNotExist(err) {
		return
	}

	output, err = systemctl("daemon-reload")
	if err != nil {
		err = fmt.Errorf("failed to reload systemd units: %w: %s", err, output)
		return
	}

	fmt.Printf("Successfully uninstalled systemd service\n")
	return
}
