package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/illarion/doorlock/internal/clock"
	"github.com/illarion/doorlock/internal/config"
	"github.com/illarion/doorlock/internal/core"
	"github.com/illarion/doorlock/internal/keyring"
	"github.com/illarion/doorlock/internal/storage"
)

// Session bundles an opened state database and the controller reading it
type Session struct {
	Config *config.Config
	DB     *storage.Storage
	Lock   *core.Controller
}

// LoadConfig loads configuration and applies the keyring PIN override.
// DOORLOCK_PIN beats the keyring, which beats the config file.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(config.Path(path))
	if err != nil {
		return nil, err
	}
	if cfg.PINFromEnv {
		return cfg, nil
	}

	pin, ok := keyring.LookupPIN(cfg.DoorID)
	if !ok {
		return cfg, nil
	}
	if err := config.ValidatePIN(pin, cfg.PINLength); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring keyring PIN for %s: %v\n", cfg.DoorID, err)
		return cfg, nil
	}
	cfg.SetPIN(pin)
	return cfg, nil
}

// OpenDB loads configuration and opens the state database without a controller
func OpenDB(configPath string) (*config.Config, *storage.Storage, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(cfg.StatePath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

// Open loads configuration, opens the state database and restores the lock
func Open(configPath string) (*Session, error) {
	cfg, db, err := OpenDB(configPath)
	if err != nil {
		return nil, err
	}

	ctrl, err := core.New(cfg.Lock(), db, clock.Real{})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Session{Config: cfg, DB: db, Lock: ctrl}, nil
}

// OpenOrExit is like Open but exits on error
func OpenOrExit(configPath string) *Session {
	s, err := Open(configPath)
	if err != nil {
		HandleError(err)
	}
	return s
}

// Close stops the controller and closes the database
func (s *Session) Close() {
	s.Lock.Close()
	s.DB.Close()
}

// Confirm asks a yes/no question, defaulting to no
func Confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)

	var response string
	fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// HandleError handles common errors consistently
func HandleError(err error) {
	switch {
	case errors.Is(err, config.ErrInvalidPIN):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, core.ErrInvalidConfig):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Check %s or the DOORLOCK_* environment variables\n", config.DefaultFile)
	case errors.Is(err, storage.ErrLocked):
		fmt.Fprintf(os.Stderr, "Error: state file is in use by another doorlock process\n")
	case errors.Is(err, core.ErrPINMismatch):
		fmt.Fprintf(os.Stderr, "Error: PINs do not match\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}
