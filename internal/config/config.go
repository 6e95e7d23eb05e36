package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/illarion/doorlock/internal/core"
)

const (
	DefaultFile      = "doorlock.toml"
	DefaultStatePath = ".doorlock"
	DefaultDoorID    = "front-door"

	EnvConfig      = "DOORLOCK_CONFIG"
	EnvPIN         = "DOORLOCK_PIN"
	EnvStatePath   = "DOORLOCK_STATE_PATH"
	EnvMaxAttempts = "DOORLOCK_MAX_ATTEMPTS"
	EnvLockoutSecs = "DOORLOCK_LOCKOUT_SECS"
	EnvDoorID      = "DOORLOCK_DOOR_ID"
)

var (
	ErrInvalidPIN    = errors.New("invalid PIN")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the on-disk doorlock configuration
type Config struct {
	PIN                 string      `toml:"pin"`
	PINHash             string      `toml:"pin_hash"`
	PINLength           int         `toml:"pin_length"`
	MaxAttempts         int         `toml:"max_attempts"`
	LockoutDurationSecs int         `toml:"lockout_duration_secs"`
	ErrorFlashMillis    int         `toml:"error_flash_ms"`
	SubmitDelayMillis   int         `toml:"submit_delay_ms"`
	StatePath           string      `toml:"state_path"`
	DoorID              string      `toml:"door_id"`
	StorageKeys         StorageKeys `toml:"storage_keys"`

	// Source is the file the config was read from, empty for defaults
	Source string `toml:"-"`
	// PINFromEnv is set when DOORLOCK_PIN overrode the PIN
	PINFromEnv bool `toml:"-"`
}

// StorageKeys names the persisted lock keys
type StorageKeys struct {
	UnlockState  string `toml:"unlock_state"`
	LockoutUntil string `toml:"lockout_until"`
	AttemptCount string `toml:"attempt_count"`
}

// Default returns the built-in configuration
func Default() *Config {
	keys := core.DefaultStorageKeys()
	return &Config{
		PIN:                 core.DefaultPIN,
		PINLength:           core.DefaultPINLength,
		MaxAttempts:         core.DefaultMaxAttempts,
		LockoutDurationSecs: int(core.DefaultLockoutDuration / time.Second),
		ErrorFlashMillis:    int(core.DefaultErrorFlash / time.Millisecond),
		SubmitDelayMillis:   int(core.DefaultSubmitDelay / time.Millisecond),
		StatePath:           DefaultStatePath,
		DoorID:              DefaultDoorID,
		StorageKeys: StorageKeys{
			UnlockState:  keys.UnlockState,
			LockoutUntil: keys.LockoutUntil,
			AttemptCount: keys.AttemptCount,
		},
	}
}

// Path resolves which config file to read: explicit path, then
// $DOORLOCK_CONFIG, then ./doorlock.toml if it exists. Empty means defaults.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// Load reads the config at path (defaults when empty), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep their values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		fmt.Fprintf(os.Stderr, "warning: unknown config key %s in %s\n", undecoded[0], path)
	}
	// A hash in the file takes precedence over the built-in plain PIN
	if md.IsDefined("pin_hash") && !md.IsDefined("pin") {
		cfg.PIN = ""
	}
	cfg.Source = path
	return nil
}

// ApplyEnvOverrides applies DOORLOCK_* environment variables
func (c *Config) ApplyEnvOverrides() error {
	if pin := os.Getenv(EnvPIN); pin != "" {
		c.PIN = pin
		c.PINHash = ""
		c.PINFromEnv = true
	}
	if path := os.Getenv(EnvStatePath); path != "" {
		c.StatePath = path
	}
	if id := os.Getenv(EnvDoorID); id != "" {
		c.DoorID = id
	}
	if v := os.Getenv(EnvMaxAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvMaxAttempts, v)
		}
		c.MaxAttempts = n
	}
	if v := os.Getenv(EnvLockoutSecs); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvLockoutSecs, v)
		}
		c.LockoutDurationSecs = n
	}
	return nil
}

// SetPIN replaces the configured PIN with a plain one (keyring override)
func (c *Config) SetPIN(pin string) {
	c.PIN = pin
	c.PINHash = ""
}

// ValidatePIN checks that pin is exactly length decimal digits
func ValidatePIN(pin string, length int) error {
	if len(pin) != length {
		return fmt.Errorf("%w: must be %d digits", ErrInvalidPIN, length)
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return fmt.Errorf("%w: must contain only digits", ErrInvalidPIN)
		}
	}
	return nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.PINLength <= 0 {
		return fmt.Errorf("%w: pin_length must be positive", ErrInvalidConfig)
	}
	if c.PINHash == "" {
		if err := ValidatePIN(c.PIN, c.PINLength); err != nil {
			return err
		}
	}
	if c.StatePath == "" {
		return fmt.Errorf("%w: state_path is empty", ErrInvalidConfig)
	}
	if c.DoorID == "" {
		return fmt.Errorf("%w: door_id is empty", ErrInvalidConfig)
	}
	if c.ErrorFlashMillis < 0 || c.SubmitDelayMillis < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	}
	if err := c.Lock().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Lock converts the configuration into controller settings
func (c *Config) Lock() core.Config {
	return core.Config{
		PIN:             c.PIN,
		PINHash:         c.PINHash,
		PINLength:       c.PINLength,
		MaxAttempts:     c.MaxAttempts,
		LockoutDuration: time.Duration(c.LockoutDurationSecs) * time.Second,
		ErrorFlash:      time.Duration(c.ErrorFlashMillis) * time.Millisecond,
		SubmitDelay:     time.Duration(c.SubmitDelayMillis) * time.Millisecond,
		Keys: core.StorageKeys{
			UnlockState:  c.StorageKeys.UnlockState,
			LockoutUntil: c.StorageKeys.LockoutUntil,
			AttemptCount: c.StorageKeys.AttemptCount,
		},
	}
}
