package cmd

import (
	"context"
	"fmt"
)

// Lock returns the door to the locked state
func Lock(_ context.Context, configPath string) {
	s := OpenOrExit(configPath)
	defer s.Close()

	wasUnlocked := s.Lock.State().Unlocked
	s.Lock.Lock()

	if wasUnlocked {
		fmt.Println("✓ Locked")
	} else {
		fmt.Println("Door was already locked")
	}
}
