package claims

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openid-gateway/internal/identity"
	"openid-gateway/pkg/requestcontext"
)

func newResolver(t *testing.T) (*Resolver, *identity.InMemoryStore) {
	t.Helper()
	users := identity.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(users, logger, nil), users
}

func TestResolveOpenidOnly(t *testing.T) {
	resolver, users := newResolver(t)
	users.Put(identity.Principal{Login: "jane", FirstName: "Jane", Email: "jane@example.com"})

	payload := resolver.Resolve(context.Background(), "jane", "openid")

	assert.Equal(t, map[string]string{"scope": "openid"}, payload,
		"no profile claims without the profile scope")
}

func TestResolveCopiesNonceFromContext(t *testing.T) {
	resolver, _ := newResolver(t)
	ctx := requestcontext.WithNonce(context.Background(), "  n-123  ")

	payload := resolver.Resolve(ctx, "jane", "openid")

	assert.Equal(t, map[string]string{"scope": "openid", "nonce": "n-123"}, payload)
}

func TestResolveProfileClaims(t *testing.T) {
	resolver, users := newResolver(t)
	users.Put(identity.Principal{
		Login:     "jane",
		FirstName: "Jane",
		LastName:  "Doe",
		Nickname:  "jd",
		Email:     "jane@example.com",
	})

	payload := resolver.Resolve(context.Background(), "jane", "openid profile")

	assert.Equal(t, "openid profile", payload["scope"])
	assert.Equal(t, "jane", payload["username"])
	assert.Equal(t, "Jane", payload["given_name"])
	assert.Equal(t, "Doe", payload["family_name"])
	assert.Equal(t, "jd", payload["nickname"])
	assert.Equal(t, identity.AvatarURL("jane@example.com"), payload["picture"])
}

func TestResolveOmitsEmptyAttributesButKeepsPicture(t *testing.T) {
	resolver, users := newResolver(t)
	users.Put(identity.Principal{
		Login:     "jane",
		FirstName: "Jane",
		LastName:  "", // unset in the directory
		Nickname:  "jd",
	})

	payload := resolver.Resolve(context.Background(), "jane", "openid profile")

	_, hasFamilyName := payload["family_name"]
	assert.False(t, hasFamilyName, "empty attributes are omitted, not set to empty strings")
	require.Contains(t, payload, "picture", "picture has no omit-if-empty guard")
	assert.Equal(t, identity.AvatarURL(""), payload["picture"])
}

func TestResolveUnknownUserDegradesGracefully(t *testing.T) {
	resolver, _ := newResolver(t)

	payload := resolver.Resolve(context.Background(), "ghost", "openid profile")

	assert.Equal(t, map[string]string{"scope": "openid profile"}, payload,
		"an unresolvable user yields a degraded but valid claims set")
}

func TestResolveScopeMatchingIsExact(t *testing.T) {
	resolver, users := newResolver(t)
	users.Put(identity.Principal{Login: "jane", FirstName: "Jane"})

	payload := resolver.Resolve(context.Background(), "jane", "openid profiles")

	_, hasGivenName := payload["given_name"]
	assert.False(t, hasGivenName, "scope membership is exact token match, not prefix")
}
