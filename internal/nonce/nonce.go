// Package nonce mints the anti-forgery tokens attached to authorize redirects
// and consent forms. Tokens are short-lived HMAC-signed JWTs; the authorize
// endpoint verifies them before acting on a submission.
package nonce

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Param is the query/form parameter name carrying the anti-forgery token.
const Param = "_nonce"

// Service mints and verifies anti-forgery tokens.
type Service struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewService(signingKey string, ttl time.Duration) *Service {
	return &Service{key: []byte(signingKey), ttl: ttl, now: time.Now}
}

// Mint issues a fresh token. Each call produces a distinct token (random jti).
func (s *Service) Mint() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign anti-forgery token: %w", err)
	}
	return token, nil
}

// Verify checks a token's signature and expiry.
func (s *Service) Verify(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.key, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return fmt.Errorf("verify anti-forgery token: %w", err)
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid anti-forgery token")
	}
	return nil
}
