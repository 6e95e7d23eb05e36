package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize     = 16     // Salt size in bytes
	KeySize      = 32     // Derived key size
	DefaultIters = 210000 // Default PBKDF2 iterations (OWASP minimum)
	hashScheme   = "pbkdf2-sha256"
)

var (
	ErrInvalidHash = errors.New("invalid PIN hash")
)

// KDF handles key derivation from PINs
type KDF struct {
	Salt       []byte
	Iterations int
}

// NewKDF creates a new KDF with a random salt
func NewKDF(iterations int) (*KDF, error) {
	if iterations <= 0 {
		iterations = DefaultIters
	}
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return &KDF{
		Salt:       salt,
		Iterations: iterations,
	}, nil
}

// DeriveKey derives a key from a PIN
func (k *KDF) DeriveKey(pin []byte) []byte {
	return pbkdf2.Key(pin, k.Salt, k.Iterations, KeySize, sha256.New)
}

// HashPIN returns an encoded hash suitable for the pin_hash setting.
// Format: pbkdf2-sha256$<iterations>$<salt hex>$<key hex>
func HashPIN(pin string, iterations int) (string, error) {
	kdf, err := NewKDF(iterations)
	if err != nil {
		return "", err
	}
	pinBytes := []byte(pin)
	defer ClearBytes(pinBytes)

	key := kdf.DeriveKey(pinBytes)
	defer ClearBytes(key)

	return strings.Join([]string{
		hashScheme,
		strconv.Itoa(kdf.Iterations),
		hex.EncodeToString(kdf.Salt),
		hex.EncodeToString(key),
	}, "$"), nil
}

// ParseHash splits an encoded PIN hash into its KDF and expected key
func ParseHash(encoded string) (*KDF, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != hashScheme {
		return nil, nil, ErrInvalidHash
	}
	iters, err := strconv.Atoi(parts[1])
	if err != nil || iters <= 0 {
		return nil, nil, fmt.Errorf("%w: bad iteration count", ErrInvalidHash)
	}
	salt, err := hex.DecodeString(parts[2])
	if err != nil || len(salt) == 0 {
		return nil, nil, fmt.Errorf("%w: bad salt", ErrInvalidHash)
	}
	key, err := hex.DecodeString(parts[3])
	if err != nil || len(key) != KeySize {
		return nil, nil, fmt.Errorf("%w: bad key", ErrInvalidHash)
	}
	return &KDF{Salt: salt, Iterations: iters}, key, nil
}

// MatchPIN reports whether pin derives the key stored in encoded
func MatchPIN(encoded, pin string) (bool, error) {
	kdf, want, err := ParseHash(encoded)
	if err != nil {
		return false, err
	}
	pinBytes := []byte(pin)
	defer ClearBytes(pinBytes)

	got := kdf.DeriveKey(pinBytes)
	defer ClearBytes(got)

	return ConstantTimeCompare(got, want), nil
}

// EqualPIN compares two PINs in constant time
func EqualPIN(a, b string) bool {
	return ConstantTimeCompare([]byte(a), []byte(b))
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
