package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCodec(t *testing.T, secret string, now time.Time) *Codec {
	t.Helper()
	c, err := NewCodec(secret)
	require.NoError(t, err)
	c.now = func() time.Time { return now }
	return c
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestCodec_IssueAndParse(t *testing.T) {
	now := time.Now()
	c := fixedCodec(t, "test-secret", now)

	tok, err := c.Issue("user@example.com", 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := c.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Subject)
	assert.Empty(t, claims.UserID)
	assert.WithinDuration(t, now.Add(1800*time.Second), claims.ExpiresAt.Time, time.Second)
}

func TestCodec_DefaultTTL(t *testing.T) {
	now := time.Now()
	c := fixedCodec(t, "test-secret", now)

	tok, exp, err := c.IssueFor("a@b.c", "42", 0)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(DefaultTokenTTL), exp, time.Second)

	claims, err := c.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
}

func TestCodec_Deterministic(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := fixedCodec(t, "test-secret", now)

	a, err := c.Issue("user@example.com", time.Minute)
	require.NoError(t, err)
	b, err := c.Issue("user@example.com", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCodec_ParseErrors(t *testing.T) {
	now := time.Now()
	c := fixedCodec(t, "right-secret", now)
	other := fixedCodec(t, "wrong-secret", now)
	past := fixedCodec(t, "right-secret", now.Add(-2*time.Hour))

	good, err := c.Issue("u@example.com", time.Hour)
	require.NoError(t, err)
	expired, err := past.Issue("u@example.com", time.Hour)
	require.NoError(t, err)

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u@example.com",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u@example.com"},
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		codec   *Codec
		token   string
		wantErr error
	}{
		{name: "expired", codec: c, token: expired, wantErr: ErrTokenExpired},
		{name: "wrong secret", codec: other, token: good, wantErr: ErrInvalidToken},
		{name: "unexpected algorithm", codec: c, token: hs384, wantErr: ErrInvalidToken},
		{name: "missing subject", codec: c, token: noSubject, wantErr: ErrInvalidToken},
		{name: "missing expiry", codec: c, token: noExpiry, wantErr: ErrInvalidToken},
		{name: "malformed", codec: c, token: "not.a.jwt", wantErr: ErrInvalidToken},
		{name: "empty", codec: c, token: "", wantErr: ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.codec.Parse(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
