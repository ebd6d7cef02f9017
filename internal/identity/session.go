package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"openid-gateway/pkg/platform/sentinel"
)

// SessionCookie is the cookie under which the identity host stores its
// session token.
const SessionCookie = "gateway_session"

// SessionClaims is the subset of the identity host's session token the
// gateway reads.
type SessionClaims struct {
	Login string `json:"login"`
	jwt.RegisteredClaims
}

// SessionValidator verifies session tokens minted by the identity host and
// resolves them to a Principal. The host signs sessions with a shared HMAC
// key; anything else about its authentication flow stays opaque.
type SessionValidator struct {
	key   []byte
	users UserStore
}

func NewSessionValidator(signingKey string, users UserStore) *SessionValidator {
	return &SessionValidator{key: []byte(signingKey), users: users}
}

// Validate parses and verifies a session token, then resolves the principal
// it names. Returns sentinel.ErrNotFound when the session subject no longer
// exists in the user directory.
func (v *SessionValidator) Validate(ctx context.Context, token string) (*Principal, error) {
	var claims SessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if !parsed.Valid || claims.Login == "" {
		return nil, errors.New("invalid session token")
	}
	return v.users.FindByLogin(ctx, claims.Login)
}

// SessionMiddleware resolves the session cookie to a Principal and stores it
// in the request context. Requests without a valid session pass through with
// no principal; handlers decide whether to force authentication.
//
// The context write goes through withPrincipal supplied by the caller so this
// package stays decoupled from the context-key package that depends on it.
func SessionMiddleware(
	validator *SessionValidator,
	logger *slog.Logger,
	withPrincipal func(context.Context, *Principal) context.Context,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := validator.Validate(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, sentinel.ErrNotFound) {
					logger.WarnContext(r.Context(), "session validation failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
		})
	}
}
