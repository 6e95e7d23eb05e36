package keyring

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestPINLifecycle(t *testing.T) {
	keyring.MockInit()

	if HasPIN("front-door") {
		t.Fatal("Fresh keyring should be empty")
	}
	if _, ok := LookupPIN("front-door"); ok {
		t.Error("LookupPIN should report absence")
	}

	if err := SavePIN("front-door", "8766"); err != nil {
		t.Fatalf("SavePIN failed: %v", err)
	}
	pin, err := GetPIN("front-door")
	if err != nil {
		t.Fatalf("GetPIN failed: %v", err)
	}
	if pin != "8766" {
		t.Errorf("PIN mismatch: got %q", pin)
	}
	if HasPIN("garage") {
		t.Error("PINs are stored per door")
	}

	if err := DeletePIN("front-door"); err != nil {
		t.Fatalf("DeletePIN failed: %v", err)
	}
	if err := DeletePIN("front-door"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
