package crypto

import (
	"errors"
	"strings"
	"testing"
)

// low iteration count keeps the tests fast
const testIters = 1000

func TestHashAndMatchPIN(t *testing.T) {
	encoded, err := HashPIN("8766", testIters)
	if err != nil {
		t.Fatalf("HashPIN failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "pbkdf2-sha256$1000$") {
		t.Errorf("Unexpected encoding: %s", encoded)
	}

	ok, err := MatchPIN(encoded, "8766")
	if err != nil {
		t.Fatalf("MatchPIN failed: %v", err)
	}
	if !ok {
		t.Error("Correct PIN should match")
	}

	for _, wrong := range []string{"8765", "876", "87660", ""} {
		ok, err := MatchPIN(encoded, wrong)
		if err != nil {
			t.Fatalf("MatchPIN(%q) failed: %v", wrong, err)
		}
		if ok {
			t.Errorf("PIN %q should not match", wrong)
		}
	}
}

func TestHashPINUsesFreshSalt(t *testing.T) {
	a, err := HashPIN("1234", testIters)
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPIN("1234", testIters)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("Two hashes of the same PIN should differ by salt")
	}
}

func TestHashPINDefaultIterations(t *testing.T) {
	kdf, err := NewKDF(0)
	if err != nil {
		t.Fatal(err)
	}
	if kdf.Iterations != DefaultIters {
		t.Errorf("Expected %d iterations, got %d", DefaultIters, kdf.Iterations)
	}
	if len(kdf.Salt) != SaltSize {
		t.Errorf("Expected %d byte salt, got %d", SaltSize, len(kdf.Salt))
	}
}

func TestParseHashRejectsGarbage(t *testing.T) {
	tests := []string{
		"",
		"8765",
		"bcrypt$10$aa$bb",
		"pbkdf2-sha256$x$aa$bb",
		"pbkdf2-sha256$1000$zz$bb",
		"pbkdf2-sha256$1000$aabb$cc",
		"pbkdf2-sha256$-5$aabb$" + strings.Repeat("00", KeySize),
	}
	for _, encoded := range tests {
		if _, _, err := ParseHash(encoded); !errors.Is(err, ErrInvalidHash) {
			t.Errorf("ParseHash(%q): expected ErrInvalidHash, got %v", encoded, err)
		}
	}
}

func TestEqualPIN(t *testing.T) {
	if !EqualPIN("8765", "8765") {
		t.Error("Equal PINs should compare equal")
	}
	if EqualPIN("8765", "8766") || EqualPIN("8765", "876") {
		t.Error("Different PINs should not compare equal")
	}
}

func TestClearBytes(t *testing.T) {
	b := []byte("secret")
	ClearBytes(b)
	for i, c := range b {
		if c != 0 {
			t.Errorf("Byte %d not cleared", i)
		}
	}
}
