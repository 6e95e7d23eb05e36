// Package config loads doorlock settings.
//
// Settings come from, in increasing precedence:
//   - Built-in defaults (PIN 8765, 4 digits, 5 attempts, 30 second lockout)
//   - A TOML file: -config flag, $DOORLOCK_CONFIG, or ./doorlock.toml
//   - DOORLOCK_* environment variables
//
// The configuration is read once at start-up and never changes while the
// lock is running.
package config
