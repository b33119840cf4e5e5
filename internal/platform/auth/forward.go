package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned when the forwarded credential has already
// expired; sending it would only earn a 401 from the backend.
var ErrTokenExpired = errors.New("session token expired")

// Forwarded is a TokenSource for remote stores: it returns the bearer token
// of the request being served, or Fallback when the request carried none.
type Forwarded struct {
	Fallback string
	now      func() time.Time
}

// Token implements store.TokenSource. JWTs are checked for expiry without
// verifying their signature; opaque tokens are passed through.
func (f Forwarded) Token(ctx context.Context) (string, error) {
	tok := TokenFromContext(ctx)
	if tok == "" {
		tok = f.Fallback
	}
	if tok == "" {
		return "", nil
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return tok, nil
	}
	now := time.Now
	if f.now != nil {
		now = f.now
	}
	if claims.ExpiresAt != nil && !now().Before(claims.ExpiresAt.Time) {
		return "", fmt.Errorf("%w at %s", ErrTokenExpired, claims.ExpiresAt.Time.Format(time.RFC3339))
	}
	return tok, nil
}
