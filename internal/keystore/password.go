package keystore

import (
	"fmt"
	"io"
	"os"
	"smcp/internal/global"
	"smcp/pkg/protocol"

	"golang.org/x/term"
)

// Reads the keystore password from the terminal, or from the environment when stdin is not a terminal
func ReadPassword(prompt string, confirm bool) (password []byte, err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		password = []byte(os.Getenv(global.EnvKeystorePassword))
		if len(password) == 0 {
			err = fmt.Errorf("%w: no terminal for password prompt and %s is unset", protocol.ErrConfiguration, global.EnvKeystorePassword)
		}
		return
	}

	password, err = promptHidden(os.Stderr, fd, prompt)
	if err != nil {
		return
	}
	if !confirm {
		return
	}

	again, err := promptHidden(os.Stderr, fd, "Confirm password: ")
	if err != nil {
		return
	}
	if string(again) != string(password) {
		err = fmt.Errorf("%w: passwords do not match", protocol.ErrConfiguration)
		password = nil
	}
	return
}

func promptHidden(out io.Writer, fd int, prompt string) (password []byte, err error) {
	fmt.Fprint(out, prompt)
	password, err = term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		err = fmt.Errorf("failed reading password: %w", err)
		return
	}
	if len(password) == 0 {
		err = fmt.Errorf("%w: password cannot be empty", protocol.ErrConfiguration)
	}
	return
}
