package nonce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndVerify(t *testing.T) {
	svc := NewService("test-key", time.Minute)

	token, err := svc.Mint()
	require.NoError(t, err)
	assert.NoError(t, svc.Verify(token))
}

func TestMintedTokensAreDistinct(t *testing.T) {
	svc := NewService("test-key", time.Minute)

	a, err := svc.Mint()
	require.NoError(t, err)
	b, err := svc.Mint()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	minter := NewService("key-a", time.Minute)
	verifier := NewService("key-b", time.Minute)

	token, err := minter.Mint()
	require.NoError(t, err)
	assert.Error(t, verifier.Verify(token))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService("test-key", time.Minute)
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	token, err := svc.Mint()
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	assert.Error(t, svc.Verify(token))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewService("test-key", time.Minute)
	assert.Error(t, svc.Verify("not-a-token"))
}
