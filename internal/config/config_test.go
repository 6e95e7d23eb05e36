package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/illarion/doorlock/internal/crypto"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfig, EnvPIN, EnvStatePath, EnvMaxAttempts, EnvLockoutSecs, EnvDoorID} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doorlock.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PIN != "8765" || cfg.PINLength != 4 || cfg.MaxAttempts != 5 || cfg.LockoutDurationSecs != 30 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}

	lock := cfg.Lock()
	if lock.LockoutDuration != 30*time.Second || lock.ErrorFlash != 600*time.Millisecond || lock.SubmitDelay != 100*time.Millisecond {
		t.Errorf("Unexpected durations: %+v", lock)
	}
	if lock.Keys.UnlockState != "doorLock_unlockState" {
		t.Errorf("Unexpected key: %s", lock.Keys.UnlockState)
	}
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
pin = "8766"
max_attempts = 3
lockout_duration_secs = 60
state_path = "/tmp/door.db"

[storage_keys]
attempt_count = "attempts"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PIN != "8766" || cfg.MaxAttempts != 3 || cfg.LockoutDurationSecs != 60 {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.PINLength != 4 {
		t.Errorf("Missing keys should keep defaults, pin_length=%d", cfg.PINLength)
	}
	if cfg.StorageKeys.AttemptCount != "attempts" || cfg.StorageKeys.UnlockState != "doorLock_unlockState" {
		t.Errorf("Storage keys mismatch: %+v", cfg.StorageKeys)
	}
	if cfg.Source != path {
		t.Errorf("Source mismatch: %s", cfg.Source)
	}
}

func TestLoadPINHash(t *testing.T) {
	clearEnv(t)
	hash, err := crypto.HashPIN("2468", 1000)
	if err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, "pin_hash = \""+hash+"\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PIN != "" || cfg.PINHash != hash {
		t.Errorf("Hash should replace the default PIN: %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `pin = "1111"`)
	t.Setenv(EnvPIN, "2222")
	t.Setenv(EnvMaxAttempts, "7")
	t.Setenv(EnvLockoutSecs, "5")
	t.Setenv(EnvStatePath, "/var/lib/door")
	t.Setenv(EnvDoorID, "garage")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PIN != "2222" || !cfg.PINFromEnv {
		t.Errorf("PIN override not applied: %+v", cfg)
	}
	if cfg.MaxAttempts != 7 || cfg.LockoutDurationSecs != 5 {
		t.Errorf("Numeric overrides not applied: %+v", cfg)
	}
	if cfg.StatePath != "/var/lib/door" || cfg.DoorID != "garage" {
		t.Errorf("Path overrides not applied: %+v", cfg)
	}
}

func TestEnvOverrideNotNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMaxAttempts, "many")

	if _, err := Load(""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"short pin", `pin = "123"`, ErrInvalidPIN},
		{"letters", `pin = "12a4"`, ErrInvalidPIN},
		{"zero attempts", `max_attempts = 0`, ErrInvalidConfig},
		{"zero lockout", `lockout_duration_secs = 0`, ErrInvalidConfig},
		{"bad hash", `pin_hash = "plain"`, ErrInvalidConfig},
		{"empty state path", `state_path = ""`, ErrInvalidConfig},
		{"negative delay", `submit_delay_ms = -1`, ErrInvalidConfig},
		{"six digit pin", "pin = \"123456\"\npin_length = 6", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if tt.want == nil {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	clearEnv(t)
	if _, err := Load(writeConfig(t, `pin = `)); err == nil {
		t.Error("Expected decode error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestPath(t *testing.T) {
	clearEnv(t)
	if got := Path("explicit.toml"); got != "explicit.toml" {
		t.Errorf("Explicit path ignored: %s", got)
	}
	t.Setenv(EnvConfig, "/etc/doorlock.toml")
	if got := Path(""); got != "/etc/doorlock.toml" {
		t.Errorf("Env path ignored: %s", got)
	}
}

func TestSetPIN(t *testing.T) {
	cfg := Default()
	cfg.PINHash = "something"
	cfg.SetPIN("4321")
	if cfg.PIN != "4321" || cfg.PINHash != "" {
		t.Errorf("SetPIN mismatch: %+v", cfg)
	}
}
