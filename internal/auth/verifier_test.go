package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horlas08/awals-backend/internal/core"
	"github.com/horlas08/awals-backend/internal/domain"
)

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.Issue("u1", time.Hour)
	require.NoError(t, err)

	uid, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u1"), uid)
}

func TestJWTVerifier_SubjectFallback(t *testing.T) {
	// Tokens from older platform services carry only the registered subject.
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u2",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := raw.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	v := NewJWTVerifier("test-secret")
	uid, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u2"), uid)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	good, err := v.Issue("u1", time.Hour)
	require.NoError(t, err)

	other := NewJWTVerifier("other-secret")
	foreign, err := other.Issue("u1", time.Hour)
	require.NoError(t, err)

	expiredIssuer := NewJWTVerifier("test-secret")
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.Issue("u1", time.Hour)
	require.NoError(t, err)

	noIdentity := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	anonymous, err := noIdentity.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "wrong secret", token: foreign},
		{name: "expired", token: expired},
		{name: "tampered", token: good + "x"},
		{name: "no identity claim", token: anonymous},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvalidToken), "got %v", err)
		})
	}
}

func TestJWTVerifier_CanceledContext(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	token, err := v.Issue("u1", time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = v.Verify(ctx, token)
	assert.ErrorIs(t, err, context.Canceled)
}
