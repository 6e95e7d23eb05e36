// Package core provides the door lock state machine.
//
// Controller owns the lock state and exposes the keypad operations:
//   - UpdateInput/PressDigit/Backspace/ClearInput: edit the pending PIN
//   - Verify/VerifyPIN: check a PIN, counting failures
//   - Lock: return an unlocked door to the locked state
//   - HandleControlKey: Enter, Escape and Backspace handling
//
// Reaching the maximum number of consecutive failures starts a lockout.
// While locked out, input and verification are ignored and a one-second
// countdown runs until the deadline passes, after which the attempt
// counter resets.
//
// The unlock flag, lockout deadline and attempt count are written to a
// Store immediately after each change and restored by New. Timing goes
// through a clock.Clock so tests can drive it deterministically.
package core
