package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreLookups(t *testing.T) {
	store := NewInMemoryStore()
	store.Put(Client{ClientID: "abc", Name: "Example App", RequiresConsent: true})

	name, err := store.ClientName(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Example App", name)

	requires, err := store.RequiresConsent(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, requires)
}

func TestInMemoryStoreUnknownClient(t *testing.T) {
	store := NewInMemoryStore()

	name, err := store.ClientName(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, "", name, "absence is signaled by an empty name, not an error")

	requires, err := store.RequiresConsent(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, requires)
}

func TestSeedBootstrapClient(t *testing.T) {
	store := NewInMemoryStore()
	seeded, err := SeedBootstrapClient(store)
	require.NoError(t, err)

	name, err := store.ClientName(context.Background(), seeded.ClientID)
	require.NoError(t, err)
	assert.Equal(t, seeded.Name, name)
	assert.NotEmpty(t, seeded.SecretHash)
	assert.NotEqual(t, "dev-client-secret", seeded.SecretHash, "secret must be stored hashed")
}
