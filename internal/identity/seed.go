package identity

// SeedBootstrapUser registers a default principal for local development so a
// freshly started gateway can validate a session without an external user
// directory. The capability grants consent-flow access out of the box.
func SeedBootstrapUser(store *InMemoryStore, capability string) Principal {
	p := Principal{
		ID:           "1",
		Login:        "dev-user",
		FirstName:    "Dev",
		LastName:     "User",
		Nickname:     "dev",
		Email:        "dev-user@localhost",
		Capabilities: []string{capability},
	}
	store.Put(p)
	return p
}
