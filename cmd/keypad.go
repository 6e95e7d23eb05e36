package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/illarion/doorlock/internal/core"
	"golang.org/x/term"
)

// Raw terminal bytes the keypad understands
const (
	keyCtrlC     = 3
	keyCtrlD     = 4
	keyBackspace = 8
	keyEscape    = 27
	keyDelete    = 127
)

// Keypad runs the interactive terminal keypad until the user quits
func Keypad(ctx context.Context, configPath string) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Fprintf(os.Stderr, "Error: keypad needs an interactive terminal\n")
		fmt.Fprintf(os.Stderr, "Use 'doorlock enter <pin>' for scripts\n")
		os.Exit(1)
	}

	s := OpenOrExit(configPath)
	defer s.Close()

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		HandleError(fmt.Errorf("failed to enter raw mode: %w", err))
	}
	defer term.Restore(fd, oldState)

	fmt.Print("doorlock keypad: digits, Enter, Backspace, Esc clears, l locks, q quits\r\n")

	var mu sync.Mutex
	draw := func(st core.State) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Print("\r\x1b[2K" + renderState(st))
	}
	cancel := s.Lock.Subscribe(draw)
	defer cancel()
	draw(s.Lock.State())

	keys := make(chan byte)
	go readKeys(os.Stdin, keys)

	for {
		select {
		case <-ctx.Done():
			fmt.Print("\r\n")
			return
		case k, ok := <-keys:
			if !ok || !handleKey(s.Lock, k) {
				fmt.Print("\r\n")
				return
			}
		}
	}
}

// readKeys forwards single bytes from r until it fails
func readKeys(r io.Reader, keys chan<- byte) {
	defer close(keys)
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 1 {
			keys <- buf[0]
		}
	}
}

// handleKey applies one raw key press. Returns false when the user quits.
func handleKey(c *core.Controller, k byte) bool {
	switch {
	case k >= '0' && k <= '9':
		c.PressDigit(rune(k))
	case k == '\r' || k == '\n':
		c.HandleControlKey(core.KeyEnter)
	case k == keyBackspace || k == keyDelete:
		c.HandleControlKey(core.KeyBackspace)
	case k == keyEscape:
		c.HandleControlKey(core.KeyEscape)
	case k == 'l' || k == 'L':
		c.Lock()
	case k == 'q' || k == 'Q' || k == keyCtrlC || k == keyCtrlD:
		return false
	}
	return true
}
