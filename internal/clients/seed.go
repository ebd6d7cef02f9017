package clients

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// SeedBootstrapClient registers a default client for local development. The
// plaintext secret is hashed before storage; the authorization core compares
// against the hash at token time.
func SeedBootstrapClient(store *InMemoryStore) (Client, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("dev-client-secret"), bcrypt.DefaultCost)
	if err != nil {
		return Client{}, fmt.Errorf("hash bootstrap client secret: %w", err)
	}

	c := Client{
		ClientID:   "test-client",
		Name:       "Development Client",
		SecretHash: string(hash),
		RedirectURIs: []string{
			"http://localhost:3000/callback",
			"http://localhost",
		},
		RequiresConsent: true,
		CreatedAt:       time.Now(),
	}
	store.Put(c)
	return c, nil
}
