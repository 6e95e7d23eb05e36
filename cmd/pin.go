package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/doorlock/internal/config"
	"github.com/illarion/doorlock/internal/core"
	"github.com/illarion/doorlock/internal/crypto"
	"github.com/illarion/doorlock/internal/keyring"
)

// PINSet saves a new door PIN to the OS keyring
func PINSet(configPath string) {
	cfg := loadConfigOrExit(configPath)

	pin, err := core.ReadPINConfirm()
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(pin)

	if err := config.ValidatePIN(string(pin), cfg.PINLength); err != nil {
		HandleError(err)
	}

	if err := keyring.SavePIN(cfg.DoorID, string(pin)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("PIN for %s saved to keyring\n", cfg.DoorID)
	if cfg.PINFromEnv {
		fmt.Printf("warning: %s is set and still takes precedence\n", config.EnvPIN)
	}
}

// PINDelete removes the door PIN from the OS keyring
func PINDelete(configPath string) {
	cfg := loadConfigOrExit(configPath)

	if err := keyring.DeletePIN(cfg.DoorID); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("No PIN stored in keyring")
			return
		}
		fmt.Fprintf(os.Stderr, "Error: failed to delete from keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("PIN for %s removed from keyring\n", cfg.DoorID)
}

// PINStatus reports where the active PIN comes from
func PINStatus(configPath string) {
	cfg := loadConfigOrExit(configPath)
	fmt.Printf("Door: %s\n", cfg.DoorID)
	fmt.Printf("PIN source: %s\n", pinSource(cfg, keyring.HasPIN(cfg.DoorID)))
}

// PINHash prompts for a PIN and prints a pin_hash line for the config file
func PINHash(configPath string) {
	cfg := loadConfigOrExit(configPath)

	pin, err := core.ReadPINConfirm()
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(pin)

	if err := config.ValidatePIN(string(pin), cfg.PINLength); err != nil {
		HandleError(err)
	}

	hash, err := crypto.HashPIN(string(pin), crypto.DefaultIters)
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("pin_hash = %q\n", hash)
}

// pinSource describes which setting provides the PIN, highest precedence first
func pinSource(cfg *config.Config, inKeyring bool) string {
	switch {
	case cfg.PINFromEnv:
		return "environment (" + config.EnvPIN + ")"
	case inKeyring:
		return "keyring"
	case cfg.PINHash != "":
		return "config file (hashed)"
	case cfg.Source != "" && cfg.PIN != core.DefaultPIN:
		return "config file"
	default:
		return "built-in default"
	}
}

func loadConfigOrExit(configPath string) *config.Config {
	cfg, err := config.Load(config.Path(configPath))
	if err != nil {
		HandleError(err)
	}
	return cfg
}
