// Package identity models the authenticated user as seen by the gateway. The
// identity host owns authentication and sessions; this package only carries
// the attributes the consent and claims layers read.
package identity

import (
	"context"
	"crypto/md5" //nolint:gosec // avatar hashes are a lookup key, not a secret
	"encoding/hex"
	"fmt"
	"strings"
)

// Principal is the authenticated user identity. Supplied by the identity host
// per request; never persisted by the gateway.
type Principal struct {
	ID           string
	Login        string
	FirstName    string
	LastName     string
	Nickname     string
	Email        string
	Capabilities []string
}

// Can reports whether the principal holds the named capability.
func (p *Principal) Can(capability string) bool {
	for _, c := range p.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// UserStore resolves principals by login name. The backing user directory
// belongs to the identity host; the gateway only reads from it.
type UserStore interface {
	FindByLogin(ctx context.Context, login string) (*Principal, error)
}

// AvatarURL derives a stable avatar reference for a contact address. The hash
// is computed even for an empty address so the claim is always present.
func AvatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized)) //nolint:gosec
	return fmt.Sprintf("https://secure.gravatar.com/avatar/%s?d=mm", hex.EncodeToString(sum[:]))
}
