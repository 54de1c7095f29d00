package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrUnseal is returned when a sealed token cannot be opened with the current key.
var ErrUnseal = errors.New("sealed token could not be opened")

// Sealer encrypts backend tokens at rest and hashes cookie tokens into lookup keys.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the encryption key from secret with HKDF-SHA256.
// PRE: len(secret) >= 16
// POST: Returns a Sealer; the same secret always yields the same key
func NewSealer(secret string) (*Sealer, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("session secret must be at least 16 bytes, got %d", len(secret))
	}
	s := &Sealer{}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("gymdesk session token v1"))
	if _, err := io.ReadFull(r, s.key[:]); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return s, nil
}

// Seal encrypts plaintext with a random nonce prepended.
func (s *Sealer) Seal(plaintext string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("session nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed []byte) (string, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", ErrUnseal
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	out, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrUnseal
	}
	return string(out), nil
}

// Key hashes a cookie token into the value stored in the database.
// INVARIANT: a leaked database does not reveal usable cookie values
func (s *Sealer) Key(cookieToken string) string {
	h := blake3.New()
	h.Write(s.key[:])
	h.Write([]byte(cookieToken))
	return hex.EncodeToString(h.Sum(nil))
}

// NewCookieToken returns a random 256-bit token, hex encoded.
func NewCookieToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
