// Package keyring keeps per-door PIN overrides in the OS keyring.
//
// A PIN saved here replaces the PIN from the config file but is itself
// overridden by DOORLOCK_PIN.
package keyring
