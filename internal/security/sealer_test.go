package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediabot/internal/structures"
)

func newSealer(t *testing.T, secret string) SealerInterface {
	t.Helper()
	s, err := NewSealer(&structures.Config{Security: structures.SecurityConfig{Secret: secret}})
	require.NoError(t, err)
	return s
}

func TestSealer_RoundTrip(t *testing.T) {
	s := newSealer(t, "0123456789abcdef")
	sealed, err := s.Seal([]byte("hunter2"))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "hunter2")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(plain))
}

func TestSealer_NonceIsRandom(t *testing.T) {
	s := newSealer(t, "0123456789abcdef")
	a, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSealer_WrongSecret(t *testing.T) {
	sealed, err := newSealer(t, "0123456789abcdef").Seal([]byte("pw"))
	require.NoError(t, err)
	_, err = newSealer(t, "fedcba9876543210").Open(sealed)
	assert.Error(t, err)
}

func TestSealer_Tampered(t *testing.T) {
	s := newSealer(t, "0123456789abcdef")
	sealed, err := s.Seal([]byte("pw"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff
	_, err = s.Open(sealed)
	assert.Error(t, err)
}

func TestSealer_TooShort(t *testing.T) {
	_, err := newSealer(t, "0123456789abcdef").Open([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrSealedTooShort)
}

func TestNewSealer_EmptySecret(t *testing.T) {
	_, err := NewSealer(&structures.Config{})
	assert.Error(t, err)
}
