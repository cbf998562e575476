// Package cryptox holds the password stretching and sealing primitives used
// for local accounts and encrypted backups.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	KeySize  = 32
)

var ErrSealedTooShort = errors.New("sealed payload too short")

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKey stretches password with argon2id into a KeySize key.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// MakeVerifier hashes a derived key so the key itself is never stored.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// VerifyPassword reports whether password, stretched with salt, matches verifier.
func VerifyPassword(password, salt, verifier []byte) bool {
	return subtle.ConstantTimeCompare(MakeVerifier(DeriveKey(password, salt)), verifier) == 1
}

// Seal serializes v to JSON and encrypts it with AES-GCM under key.
// The result is the random nonce followed by the ciphertext.
//
// Example:
//
//	key := cryptox.DeriveKey([]byte("passphrase"), salt)
//	blob, err := cryptox.Seal(snapshot, key)
func Seal(v any, key []byte) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal and unmarshals the plaintext into v.
func Open(sealed, key []byte, v any) error {
	aesgcm, err := newGCM(key)
	if err != nil {
		return err
	}

	ns := aesgcm.NonceSize()
	if len(sealed) < ns {
		return ErrSealedTooShort
	}

	plaintext, err := aesgcm.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
