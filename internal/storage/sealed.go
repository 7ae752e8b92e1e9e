// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// ENCRYPTION AT REST
// =============================================================================

// Parameters for passphrase encryption. Stored values have the form
// "ENC:" + base64(salt || nonce || ciphertext || tag).
const (
	sealedPrefix    = "ENC:"
	sealedSaltSize  = 32
	sealedNonceSize = 12
	sealedKeySize   = 32
)

// pbkdf2Iterations is the key derivation work factor.
var pbkdf2Iterations = 600000

var (
	// ErrWrongPassphrase is returned when a stored value fails to decrypt.
	ErrWrongPassphrase = errors.New("cannot decrypt history: wrong storage passphrase")

	// ErrPassphraseRequired is returned when encrypted values are read
	// without a passphrase.
	ErrPassphraseRequired = errors.New("history is encrypted: set storage.passphrase or CISCOCLI_STORE_PASSPHRASE")
)

// sealedKV encrypts values of the wrapped backend with AES-256-GCM under a
// PBKDF2-SHA-256 key. Plain values still read, so enabling a passphrase
// encrypts existing history on the next save.
type sealedKV struct {
	inner      kv
	passphrase string

	mu   sync.Mutex
	salt []byte
	keys map[string]cipher.AEAD
}

func newSealed(inner kv, passphrase string) *sealedKV {
	return &sealedKV{inner: inner, passphrase: passphrase, keys: make(map[string]cipher.AEAD)}
}

func (s *sealedKV) get(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := s.inner.get(ctx, key)
	if err != nil || !ok || !strings.HasPrefix(raw, sealedPrefix) {
		return raw, ok, err
	}
	plain, err := s.open(raw)
	if err != nil {
		return "", false, err
	}
	return plain, true, nil
}

func (s *sealedKV) setAll(ctx context.Context, values map[string]string) error {
	sealed := make(map[string]string, len(values))
	for k, v := range values {
		enc, err := s.seal(v)
		if err != nil {
			return err
		}
		sealed[k] = enc
	}
	return s.inner.setAll(ctx, sealed)
}

func (s *sealedKV) close() error {
	return s.inner.close()
}

// aead returns the cipher for salt, deriving the key once per salt.
// PERFORMANCE: PBKDF2 is deliberately slow, so keys are cached.
func (s *sealedKV) aead(salt []byte) (cipher.AEAD, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.keys[string(salt)]; ok {
		return a, nil
	}
	key := pbkdf2.Key([]byte(s.passphrase), salt, pbkdf2Iterations, sealedKeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	s.keys[string(salt)] = gcm
	if s.salt == nil {
		s.salt = append([]byte(nil), salt...)
	}
	return gcm, nil
}

// writeSalt returns the salt used for new values: the first salt seen,
// or a fresh random one.
func (s *sealedKV) writeSalt() ([]byte, error) {
	s.mu.Lock()
	salt := s.salt
	s.mu.Unlock()
	if salt != nil {
		return salt, nil
	}
	salt = make([]byte, sealedSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

func (s *sealedKV) seal(plain string) (string, error) {
	salt, err := s.writeSalt()
	if err != nil {
		return "", err
	}
	gcm, err := s.aead(salt)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, sealedNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, len(salt)+len(nonce)+len(plain)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, []byte(plain), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

func (s *sealedKV) open(raw string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(raw, sealedPrefix))
	if err != nil || len(data) < sealedSaltSize+sealedNonceSize {
		return "", ErrWrongPassphrase
	}
	salt := data[:sealedSaltSize]
	nonce := data[sealedSaltSize : sealedSaltSize+sealedNonceSize]

	gcm, err := s.aead(salt)
	if err != nil {
		return "", err
	}
	plain, err := gcm.Open(nil, nonce, data[sealedSaltSize+sealedNonceSize:], nil)
	if err != nil {
		return "", ErrWrongPassphrase
	}
	return string(plain), nil
}

// lockedKV refuses to read encrypted values when no passphrase is set.
type lockedKV struct {
	kv
}

func (l lockedKV) get(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := l.kv.get(ctx, key)
	if err == nil && strings.HasPrefix(raw, sealedPrefix) {
		return "", false, ErrPassphraseRequired
	}
	return raw, ok, err
}
