package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/doorlock/internal/config"
)

// Enter submits a PIN once, as if typed on the keypad and confirmed with Enter
func Enter(_ context.Context, configPath string, pin string, trace bool) {
	s := OpenOrExit(configPath)
	defer s.Close()

	before := s.Lock.State()
	switch {
	case before.LockedOut:
		fmt.Fprintf(os.Stderr, "Error: too many failed attempts, try again in %s\n", formatCountdown(before.LockoutRemaining))
		s.Close()
		os.Exit(1)
	case before.Unlocked:
		fmt.Println("Door is already unlocked")
		return
	}

	if err := config.ValidatePIN(pin, before.PINLength); err != nil {
		s.Close()
		HandleError(err)
	}

	s.Lock.UpdateInput(pin)
	s.Lock.Verify()
	after := s.Lock.State()

	if trace {
		fmt.Print(stateDiff(before, after))
	}

	switch {
	case after.Unlocked:
		fmt.Println("✓ Unlocked")
	case after.LockedOut:
		fmt.Fprintf(os.Stderr, "Wrong PIN. Locked out for %s\n", formatCountdown(after.LockoutRemaining))
		s.Close()
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Wrong PIN. %d attempts left\n", after.RemainingAttempts)
		s.Close()
		os.Exit(1)
	}
}
