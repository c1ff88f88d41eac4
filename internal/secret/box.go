package secret

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// SealedPrefix marks a value produced by Box.Seal.
const SealedPrefix = "enc:"

// KeySize is the length of a Box key in bytes.
const KeySize = chacha20poly1305.KeySize

var ErrNoKey = errors.New("sealed value found but no secret key configured")

// Box seals and opens credential values with XChaCha20-Poly1305 so they can
// sit in .env files without being readable.
type Box struct{ aead cipher.AEAD }

func NewBox(key []byte) (*Box, error) {
	a, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("secret key: %w", err)
	}
	return &Box{aead: a}, nil
}

// NewKey returns a random key suitable for NewBox.
func NewKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

func (b *Box) Seal(plaintext string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize(), b.aead.NonceSize()+len(plaintext)+b.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	out := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

func (b *Box) Open(sealed string) (Secret, error) {
	buf, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(sealed, SealedPrefix))
	if err != nil {
		return Secret{}, fmt.Errorf("sealed value: %w", err)
	}
	ns := b.aead.NonceSize()
	if len(buf) < ns {
		return Secret{}, errors.New("sealed value too short")
	}
	pt, err := b.aead.Open(nil, buf[:ns], buf[ns:], nil)
	if err != nil {
		return Secret{}, fmt.Errorf("sealed value: %w", err)
	}
	return New(string(pt)), nil
}

// IsSealed reports whether v was produced by Seal.
func IsSealed(v string) bool { return strings.HasPrefix(v, SealedPrefix) }

// Resolve turns a configuration value into a Secret, opening it with b when
// it is sealed. b may be nil when no key is configured.
func Resolve(b *Box, v string) (Secret, error) {
	if !IsSealed(v) {
		return New(v), nil
	}
	if b == nil {
		return Secret{}, ErrNoKey
	}
	return b.Open(v)
}
