// Handles host installation of the listen service and template generation
package install

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"smcp/internal/global"
	"strings"

	"golang.org/x/term"
)

// Full installation of the listen-mode service (idempotent)
func Run() (err error) {
	if os.Geteuid() != 0 {
		err = fmt.Errorf("installation must be run as root")
		return
	}

	err = installBinary()
	if err != nil {
		err = fmt.Errorf("error installing binary: %w", err)
		return
	}

	err = installConfig(global.DefaultConfigPath)
	if err != nil {
		err = fmt.Errorf("error with template config: %w", err)
		return
	}

	err = installService()
	if err != nil {
		err = fmt.Errorf("error with systemd service: %w", err)
		return
	}

	fmt.Printf("Installation completed successfully\n")
	return
}

// Full uninstall. Keystore and session files are left in place.
func Remove() (err error) {
	if !confirm("Are you SURE you want to uninstall? (this will remove the configuration file) (yes/no): ") {
		fmt.Printf("Aborting uninstall\n")
		return
	}

	if os.Geteuid() != 0 {
		err = fmt.Errorf("uninstall must be run as root")
		return
	}

	var errs []error

	err = uninstallService()
	if err != nil {
		errs = append(errs, fmt.Errorf("systemd service: %w", err))
	}

	err = uninstallBinary()
	if err != nil {
		errs = append(errs, fmt.Errorf("binary: %w", err))
	}

	err = os.Remove(global.DefaultConfigPath)
	if err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("template config: %w", err))
	}

	// Cleanup state dir - best effort
	stateDir := filepath.Dir(global.DefaultStateFile)
	os.Remove(global.DefaultStateFile)
	os.Remove(stateDir)

	err = nil
	if len(errs) > 0 {
		err = fmt.Errorf("uninstall incomplete: %v", errs)
	}
	return
}

// Prompts for a yes/no answer when attached to a terminal. Without a terminal the answer is yes.
func confirm(question string) (yes bool) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		yes = true
		return
	}

	fmt.Print(question)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	yes = strings.ToLower(input) == "yes"
	return
}
