// Package clients holds the OAuth client registry the consent flow consults.
// The gateway only reads from it; registration management belongs to the
// external authorization core.
package clients

import (
	"context"
	"time"
)

// Client is a registered OAuth 2.0 client as the gateway sees it. The secret
// hash is stored for the authorization core's token endpoint; the gateway
// itself never verifies secrets.
type Client struct {
	ClientID        string
	Name            string
	SecretHash      string
	RedirectURIs    []string
	RequiresConsent bool
	CreatedAt       time.Time
}

//go:generate mockgen -source=registry.go -destination=mocks/registry_mock.go -package=mocks

// Registry answers the two questions the consent flow asks about a client.
//
// ClientName returns "" for an unknown client rather than an error: absence
// is a normal answer, and the flow translates it into a bodyless 404 without
// leaking which clients exist. Errors mean the backing store itself failed.
type Registry interface {
	ClientName(ctx context.Context, clientID string) (string, error)
	RequiresConsent(ctx context.Context, clientID string) (bool, error)
}
