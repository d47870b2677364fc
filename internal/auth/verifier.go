// Package auth verifies the platform's signed access tokens.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/horlas08/awals-backend/internal/core"
	"github.com/horlas08/awals-backend/internal/domain"
)

// claims mirrors the platform token service: identity is carried in the
// custom "id" claim, with the registered subject as fallback.
type claims struct {
	jwt.RegisteredClaims
	ID string `json:"id"`
}

// JWTVerifier validates HS256 tokens against the shared platform secret.
type JWTVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), now: time.Now}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (domain.UserID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if token == "" {
		return "", core.ErrInvalidToken
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(t *jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrInvalidToken, err)
	}

	id := c.ID
	if id == "" {
		id = c.Subject
	}
	if id == "" {
		return "", fmt.Errorf("%w: no identity claim", core.ErrInvalidToken)
	}
	return domain.UserID(id), nil
}

// Issue signs a token for the given user. Used by the demo seeder and tests;
// production tokens come from the platform's auth service.
func (v *JWTVerifier) Issue(uid domain.UserID, ttl time.Duration) (string, error) {
	now := v.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		ID: string(uid),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(uid),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return t.SignedString(v.secret)
}

var _ core.TokenVerifier = (*JWTVerifier)(nil)
