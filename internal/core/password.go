package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/doorlock/internal/crypto"
	"golang.org/x/term"
)

var (
	ErrPINMismatch = errors.New("PINs do not match")
)

// ReadPIN reads a PIN from the terminal without echoing
func ReadPIN(prompt string) ([]byte, error) {
	fmt.Print(prompt)

	pin, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // New line after PIN

	if err != nil {
		return nil, fmt.Errorf("failed to read PIN: %w", err)
	}

	return pin, nil
}

// ReadPINConfirm reads a PIN twice and ensures they match
func ReadPINConfirm() ([]byte, error) {
	pin1, err := ReadPIN("Enter new PIN: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(pin1)

	pin2, err := ReadPIN("Confirm PIN: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(pin2)

	if !crypto.ConstantTimeCompare(pin1, pin2) {
		return nil, ErrPINMismatch
	}

	// Return a copy of the PIN
	result := make([]byte, len(pin1))
	copy(result, pin1)
	return result, nil
}
