package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewCodec("super-secret", 30*time.Minute)

	signed, expiresAt, err := codec.Mint("alice")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := codec.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt, time.Second)
}

func TestVerify_TamperedToken(t *testing.T) {
	t.Parallel()

	codec := NewCodec("super-secret", 30*time.Minute)

	signed, _, err := codec.Mint("alice")
	require.NoError(t, err)

	// Flip one character in every position; verification must always fail,
	// with either a malformed or a signature error. The last character of a
	// base64url segment is skipped: its unused trailing bits can decode to
	// the same bytes.
	for i := 0; i < len(signed); i++ {
		if signed[i] == '.' {
			continue
		}
		if i == len(signed)-1 || signed[i+1] == '.' {
			continue
		}
		flip := byte('x')
		if signed[i] == 'x' {
			flip = 'y'
		}
		tampered := signed[:i] + string(flip) + signed[i+1:]
		if tampered == signed {
			continue
		}

		_, err := codec.Verify(tampered)
		require.Error(t, err, "position %d", i)
		assert.True(t, err == ErrMalformed || err == ErrSignatureInvalid || err == ErrExpired,
			"position %d: unexpected error %v", i, err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	signed, _, err := NewCodec("right-secret", time.Hour).Mint("alice")
	require.NoError(t, err)

	_, err = NewCodec("wrong-secret", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	codec := NewCodec("super-secret", 30*time.Minute)

	// Mint with a clock shifted back past the TTL, verify with the real one.
	past := time.Now().Add(-(30*time.Minute + time.Second))
	signed, _, err := codec.WithClock(func() time.Time { return past }).Mint("alice")
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec("super-secret", time.Hour)

	for _, tok := range []string{"", "garbage", "not.a.jwt", strings.Repeat("a", 64)} {
		_, err := codec.Verify(tok)
		assert.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestVerify_NoneAlgorithmRejected(t *testing.T) {
	t.Parallel()

	codec := NewCodec("super-secret", time.Hour)

	// Unsigned token with alg "none": header {"alg":"none","typ":"JWT"},
	// payload {"sub":"alice"}.
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJhbGljZSJ9."
	_, err := codec.Verify(unsigned)
	assert.Error(t, err)
}
