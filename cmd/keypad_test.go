package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/illarion/doorlock/internal/clock"
	"github.com/illarion/doorlock/internal/core"
	"github.com/illarion/doorlock/internal/storage"
)

func newKeypadController(t *testing.T) (*core.Controller, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.UnixMilli(1_700_000_000_000))
	c, err := core.New(core.DefaultConfig(), storage.NewMemory(), clk)
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	t.Cleanup(c.Close)
	return c, clk
}

func typeKeys(c *core.Controller, keys string) {
	for i := 0; i < len(keys); i++ {
		handleKey(c, keys[i])
	}
}

func TestHandleKeyUnlocksAfterSubmitDelay(t *testing.T) {
	c, clk := newKeypadController(t)

	typeKeys(c, core.DefaultPIN)

	st := c.State()
	if st.Input != core.DefaultPIN {
		t.Fatalf("Expected full input before submit, got %q", st.Input)
	}
	if st.Unlocked {
		t.Fatal("Unlocked before the submit delay elapsed")
	}

	clk.Advance(core.DefaultSubmitDelay)

	if !c.State().Unlocked {
		t.Fatal("Expected unlocked after submit delay")
	}

	if !handleKey(c, 'l') {
		t.Fatal("Lock key should not quit")
	}
	if c.State().Unlocked {
		t.Error("Expected locked after 'l'")
	}
}

func TestHandleKeyWrongPIN(t *testing.T) {
	c, clk := newKeypadController(t)

	typeKeys(c, "1111")
	clk.Advance(core.DefaultSubmitDelay)

	st := c.State()
	if st.Unlocked {
		t.Fatal("Wrong PIN unlocked the door")
	}
	if st.AttemptCount != 1 || !st.ShowError {
		t.Errorf("Expected one failed attempt with error shown, got %+v", st)
	}
	if st.Input != "" {
		t.Errorf("Expected input cleared after failure, got %q", st.Input)
	}

	clk.Advance(core.DefaultErrorFlash)
	if c.State().ShowError {
		t.Error("Error flash should clear")
	}
}

func TestHandleKeyEditing(t *testing.T) {
	c, _ := newKeypadController(t)

	typeKeys(c, "12")
	handleKey(c, keyDelete)
	if got := c.State().Input; got != "1" {
		t.Errorf("Expected %q after delete, got %q", "1", got)
	}

	handleKey(c, keyBackspace)
	if got := c.State().Input; got != "" {
		t.Errorf("Expected empty input after backspace, got %q", got)
	}

	typeKeys(c, "98")
	handleKey(c, keyEscape)
	if got := c.State().Input; got != "" {
		t.Errorf("Expected Escape to clear input, got %q", got)
	}

	typeKeys(c, "x#")
	if got := c.State().Input; got != "" {
		t.Errorf("Non-digit keys changed input to %q", got)
	}
}

func TestHandleKeyEnterNeedsFullPIN(t *testing.T) {
	c, clk := newKeypadController(t)

	typeKeys(c, "87")
	handleKey(c, '\r')
	clk.Advance(time.Second)

	st := c.State()
	if st.AttemptCount != 0 {
		t.Errorf("Enter on partial input counted an attempt: %d", st.AttemptCount)
	}
	if st.Input != "87" {
		t.Errorf("Enter on partial input changed it to %q", st.Input)
	}
}

func TestHandleKeyQuit(t *testing.T) {
	c, _ := newKeypadController(t)

	for _, k := range []byte{'q', 'Q', keyCtrlC, keyCtrlD} {
		if handleKey(c, k) {
			t.Errorf("Key %d should quit", k)
		}
	}
	for _, k := range []byte{'5', 'l', '\n', keyEscape} {
		if !handleKey(c, k) {
			t.Errorf("Key %d should not quit", k)
		}
	}
}

func TestReadKeys(t *testing.T) {
	keys := make(chan byte)
	go readKeys(bytes.NewReader([]byte("87\r")), keys)

	var got []byte
	for k := range keys {
		got = append(got, k)
	}
	if string(got) != "87\r" {
		t.Errorf("readKeys() = %q, want %q", got, "87\r")
	}
}
