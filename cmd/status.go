package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/illarion/doorlock/internal/core"
)

// Status shows the lock state without changing it
func Status(_ context.Context, configPath string) {
	s := OpenOrExit(configPath)
	defer s.Close()

	st := s.Lock.State()
	fmt.Print(formatStatus(st))

	info, err := s.DB.Info()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot read state file info: %v\n", err)
		return
	}
	fmt.Printf("\nState file: %s (%d keys", info.Path, info.Keys)
	if !info.Modified.IsZero() {
		fmt.Printf(", last change %s", info.Modified.Format(time.RFC3339))
	}
	fmt.Println(")")
	if s.Config.Source != "" {
		fmt.Printf("Config: %s\n", s.Config.Source)
	}
}

func formatStatus(st core.State) string {
	var door string
	switch {
	case st.Unlocked:
		door = "unlocked"
	case st.LockedOut:
		door = "locked out"
	default:
		door = "locked"
	}

	out := fmt.Sprintf("Door: %s\n", door)
	out += fmt.Sprintf("Failed attempts: %d (%d left)\n", st.AttemptCount, st.RemainingAttempts)
	if st.LockedOut {
		out += fmt.Sprintf("Lockout ends: %s (%s left)\n", st.LockoutUntil.Format(time.RFC3339), formatCountdown(st.LockoutRemaining))
	}
	return out
}
