package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "doorlock"

// ErrNotFound is returned when no PIN is stored for a door
var ErrNotFound = keyring.ErrNotFound

// SavePIN stores a door's PIN in the OS keyring
func SavePIN(doorID string, pin string) error {
	return keyring.Set(serviceName, doorID, pin)
}

// GetPIN retrieves a door's PIN from the OS keyring
func GetPIN(doorID string) (string, error) {
	return keyring.Get(serviceName, doorID)
}

// LookupPIN returns the stored PIN and whether one exists.
// An unavailable keyring is reported the same as an empty one.
func LookupPIN(doorID string) (string, bool) {
	pin, err := keyring.Get(serviceName, doorID)
	if err != nil {
		return "", false
	}
	return pin, true
}

// DeletePIN removes a door's PIN from the OS keyring
func DeletePIN(doorID string) error {
	err := keyring.Delete(serviceName, doorID)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// HasPIN checks if a PIN is stored for the door
func HasPIN(doorID string) bool {
	_, ok := LookupPIN(doorID)
	return ok
}
