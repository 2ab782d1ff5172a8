package main

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/term"
)

// passwordSource reads the password from file when given, and otherwise
// prompts on the terminal. It is only called for encrypted keys.
func passwordSource(file, prompt string) func() ([]byte, error) {
	return func() ([]byte, error) {
		if file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("read password file: %w", err)
			}
			return bytes.TrimRight(data, "\r\n"), nil
		}
		return readPassword(prompt)
	}
}

// newPassword asks twice for a password that will encrypt a new key.
func newPassword(file string) ([]byte, error) {
	if file != "" {
		return passwordSource(file, "")()
	}
	pw, err := readPassword("New key password: ")
	if err != nil {
		return nil, err
	}
	confirm, err := readPassword("Repeat password: ")
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(pw, confirm) {
		return nil, fmt.Errorf("passwords do not match")
	}
	return pw, nil
}

func readPassword(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal; use --password-file")
	}
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}
