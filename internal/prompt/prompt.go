// Package prompt reads the store passphrase interactively, standing in
// for the platform's user-presence dialog.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/term"
)

// ReadPassphrase reads a passphrase from the terminal without echoing,
// printing reason first. An EOF (user abort) is reported as io.EOF for
// callers to translate into a cancellation.
func ReadPassphrase(reason string) ([]byte, error) {
	fmt.Fprintf(os.Stderr, "[%s] Passphrase: ", reason)

	passphrase, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)

	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return passphrase, nil
}

// FromEnv reads the passphrase from KEYGUARD_PASSPHRASE, or nil when
// unset. The returned slice is a copy safe to clear.
func FromEnv() []byte {
	passphrase := os.Getenv("KEYGUARD_PASSPHRASE")
	if passphrase == "" {
		return nil
	}
	result := make([]byte, len(passphrase))
	copy(result, passphrase)
	return result
}
