// Package security seals the re-login material kept in session records.
package security

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"mediabot/internal/structures"
)

// Argon2id parameters for turning the configured secret into a sealing key.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 19 * 1024
	argonThreads uint8  = 1
)

var (
	keySalt = []byte("mediabot/session-reauth/v1")

	ErrSealedTooShort = errors.New("sealed value too short")
)

type SealerInterface interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// Sealer encrypts with XChaCha20-Poly1305 under a key derived from the
// bot secret. Output layout: nonce || ciphertext.
type Sealer struct {
	key []byte
}

func NewSealer(conf *structures.Config) (SealerInterface, error) {
	if conf.Security.Secret == "" {
		return nil, errors.New("security.secret is empty")
	}
	key := argon2.IDKey([]byte(conf.Security.Secret), keySalt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	return &Sealer{key: key}, nil
}

func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plain)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plain, nil), nil
}

func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, ErrSealedTooShort
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce, ct := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	return aead.Open(nil, nonce, ct, nil)
}
