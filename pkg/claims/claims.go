// Package claims assembles the identity attributes the authorization core
// embeds in ID tokens and serves from the userinfo endpoint.
package claims

import (
	"context"
	"log/slog"
	"strings"

	"openid-gateway/internal/identity"
	"openid-gateway/internal/platform/metrics"
	"openid-gateway/pkg/requestcontext"
)

// Resolver maps (user, requested scope) to a bounded claims payload. Pure
// beyond the user lookup; failures degrade the payload instead of erroring.
type Resolver struct {
	users   identity.UserStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewResolver(users identity.UserStore, logger *slog.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{users: users, logger: logger, metrics: m}
}

// Resolve builds the claims payload for a user and scope.
//
// The scope is always included verbatim: downstream consumers split it
// themselves, and the userinfo endpoint reads the scope back out of the
// token. The nonce is copied from the request context when present. Profile
// claims appear only when the profile scope was requested, and only for
// non-empty source attributes. The picture claim is the exception: it is
// always derived from the contact address.
func (r *Resolver) Resolve(ctx context.Context, userID, scope string) map[string]string {
	r.metrics.ObserveClaimsResolved()

	payload := map[string]string{"scope": scope}
	if nonce := strings.TrimSpace(requestcontext.Nonce(ctx)); nonce != "" {
		payload["nonce"] = nonce
	}

	if !hasScope(scope, "profile") {
		return payload
	}

	// The user identifier is the login name.
	user, err := r.users.FindByLogin(ctx, userID)
	if err != nil {
		// An unresolvable user yields a degraded but valid claims set.
		r.logger.WarnContext(ctx, "claims user lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return payload
	}

	for claim, value := range map[string]string{
		"username":    user.Login,
		"given_name":  user.FirstName,
		"family_name": user.LastName,
		"nickname":    user.Nickname,
	} {
		if value != "" {
			payload[claim] = value
		}
	}
	// Unlike the attributes above, picture has no omit-if-empty guard.
	payload["picture"] = identity.AvatarURL(user.Email)

	return payload
}

func hasScope(scope, member string) bool {
	for _, s := range strings.Split(scope, " ") {
		if s == member {
			return true
		}
	}
	return false
}
