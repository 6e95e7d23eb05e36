package cmd

import (
	"fmt"
	"strings"

	"github.com/illarion/doorlock/internal/core"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// formatCountdown renders seconds as M:SS
func formatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// maskInput shows entered digits as dots and free slots as underscores
func maskInput(s core.State) string {
	filled := min(len(s.Input), s.PINLength)
	return strings.Repeat("•", filled) + strings.Repeat("_", s.PINLength-filled)
}

// renderState renders the one-line keypad display
func renderState(s core.State) string {
	switch {
	case s.Unlocked:
		return "UNLOCKED  [l] lock  [q] quit"
	case s.LockedOut:
		return fmt.Sprintf("BLOCKED  too many failed attempts  %s", formatCountdown(s.LockoutRemaining))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "PIN [%s]", maskInput(s))
	if s.ShowError {
		b.WriteString("  wrong PIN")
	}
	if s.AttemptCount > 0 {
		fmt.Fprintf(&b, "  %d attempts left", s.RemainingAttempts)
	}
	return b.String()
}

// describeState renders a snapshot one field per line, for tracing
func describeState(s core.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "unlocked: %t\n", s.Unlocked)
	fmt.Fprintf(&b, "input: %s\n", maskInput(s))
	fmt.Fprintf(&b, "attempts: %d\n", s.AttemptCount)
	fmt.Fprintf(&b, "remaining attempts: %d\n", s.RemainingAttempts)
	fmt.Fprintf(&b, "locked out: %t\n", s.LockedOut)
	if s.LockedOut {
		fmt.Fprintf(&b, "lockout ends: %s (%s left)\n", s.LockoutUntil.Format("15:04:05"), formatCountdown(s.LockoutRemaining))
	}
	fmt.Fprintf(&b, "error shown: %t\n", s.ShowError)
	return b.String()
}

// stateDiff returns a line diff of two snapshots
func stateDiff(before, after core.State) string {
	dmp := diffmatchpatch.New()

	a, b, lineArray := dmp.DiffLinesToChars(describeState(before), describeState(after))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix + line)
		}
	}
	return out.String()
}
