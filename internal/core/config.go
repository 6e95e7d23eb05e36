package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/illarion/doorlock/internal/crypto"
)

const (
	DefaultPIN             = "8765"
	DefaultPINLength       = 4
	DefaultMaxAttempts     = 5
	DefaultLockoutDuration = 30 * time.Second
	DefaultErrorFlash      = 600 * time.Millisecond
	DefaultSubmitDelay     = 100 * time.Millisecond

	// UnlockedMarker is the persisted value of the unlock flag
	UnlockedMarker = "true"
)

var (
	ErrInvalidConfig = errors.New("invalid lock configuration")
)

// StorageKeys names the persisted keys
type StorageKeys struct {
	UnlockState  string
	LockoutUntil string
	AttemptCount string
}

// DefaultStorageKeys returns the standard key names
func DefaultStorageKeys() StorageKeys {
	return StorageKeys{
		UnlockState:  "doorLock_unlockState",
		LockoutUntil: "doorLock_lockoutUntil",
		AttemptCount: "doorLock_attemptCount",
	}
}

// Config holds the immutable controller settings
type Config struct {
	// PIN is the correct PIN. Ignored when PINHash is set.
	PIN string
	// PINHash is an encoded PBKDF2 hash of the correct PIN
	PINHash string

	PINLength       int
	MaxAttempts     int
	LockoutDuration time.Duration
	ErrorFlash      time.Duration
	SubmitDelay     time.Duration
	Keys            StorageKeys
}

// DefaultConfig returns the stock door configuration
func DefaultConfig() Config {
	return Config{
		PIN:             DefaultPIN,
		PINLength:       DefaultPINLength,
		MaxAttempts:     DefaultMaxAttempts,
		LockoutDuration: DefaultLockoutDuration,
		ErrorFlash:      DefaultErrorFlash,
		SubmitDelay:     DefaultSubmitDelay,
		Keys:            DefaultStorageKeys(),
	}
}

// Validate checks that the settings can drive a controller
func (c Config) Validate() error {
	if c.PIN == "" && c.PINHash == "" {
		return fmt.Errorf("%w: no PIN configured", ErrInvalidConfig)
	}
	if c.PINHash != "" {
		if _, _, err := crypto.ParseHash(c.PINHash); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if c.PINLength <= 0 {
		return fmt.Errorf("%w: PIN length must be positive", ErrInvalidConfig)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max attempts must be positive", ErrInvalidConfig)
	}
	if c.LockoutDuration < time.Second {
		return fmt.Errorf("%w: lockout must last at least one second", ErrInvalidConfig)
	}
	if c.ErrorFlash < 0 || c.SubmitDelay < 0 {
		return fmt.Errorf("%w: negative delay", ErrInvalidConfig)
	}
	if c.Keys.UnlockState == "" || c.Keys.LockoutUntil == "" || c.Keys.AttemptCount == "" {
		return fmt.Errorf("%w: empty storage key", ErrInvalidConfig)
	}
	return nil
}

// matches compares a candidate against the configured PIN
func (c Config) matches(candidate string) bool {
	if c.PINHash != "" {
		ok, err := crypto.MatchPIN(c.PINHash, candidate)
		return err == nil && ok
	}
	return crypto.EqualPIN(candidate, c.PIN)
}

// lockoutSeconds is the lockout duration in whole seconds, rounded up
func (c Config) lockoutSeconds() int {
	return ceilSeconds(c.LockoutDuration)
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
