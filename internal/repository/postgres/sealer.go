package postgres

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealedPrefix = "sealed:v1:"
	nonceSize    = 24
	sealerInfo   = "reputation review source secrets"
)

var (
	// ErrSealedValue is returned when a sealed column cannot be opened.
	ErrSealedValue = errors.New("cannot open sealed value")
	// ErrReservedPrefix is returned when a plain value already carries the
	// sealed prefix and would be mistaken for ciphertext on read.
	ErrReservedPrefix = errors.New("value must not start with " + sealedPrefix)
)

// Sealer encrypts review source secrets (API keys and credential values)
// before they are written. A nil *Sealer stores them as plain text.
//
// Values without the sealed prefix are returned unchanged by Open, so rows
// written before a key was configured stay readable.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the secretbox key from secret.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("sealer secret must not be empty")
	}
	s := &Sealer{}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(sealerInfo))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("derive sealer key: %w", err)
	}
	return s, nil
}

// Seal encrypts plain. Empty strings are left empty. Plain values that
// start with the sealed prefix are rejected with or without a key.
func (s *Sealer) Seal(plain string) (string, error) {
	if strings.HasPrefix(plain, sealedPrefix) {
		return "", ErrReservedPrefix
	}
	if s == nil || plain == "" {
		return plain, nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(value string) (string, error) {
	encoded, ok := strings.CutPrefix(value, sealedPrefix)
	if !ok {
		return value, nil
	}
	if s == nil {
		return "", fmt.Errorf("%w: no key configured", ErrSealedValue)
	}
	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedValue, err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", fmt.Errorf("%w: truncated", ErrSealedValue)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", fmt.Errorf("%w: authentication failed", ErrSealedValue)
	}
	return string(plain), nil
}

func (s *Sealer) sealMap(m map[string]string) (map[string]string, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		sealed, err := s.Seal(v)
		if err != nil {
			return nil, fmt.Errorf("credential %q: %w", k, err)
		}
		out[k] = sealed
	}
	return out, nil
}

func (s *Sealer) openMap(m map[string]string) error {
	for k, v := range m {
		plain, err := s.Open(v)
		if err != nil {
			return fmt.Errorf("credential %q: %w", k, err)
		}
		m[k] = plain
	}
	return nil
}
