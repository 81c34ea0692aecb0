package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledGuardHasNoAdminHash(t *testing.T) {
	g, err := New("")
	require.NoError(t, err)
	assert.False(t, g.Enabled())
}

func TestLoginAndValidateRoundTrip(t *testing.T) {
	hash, err := HashSecret("correct horse battery staple")
	require.NoError(t, err)

	g, err := New(hash)
	require.NoError(t, err)
	assert.True(t, g.Enabled())

	token, expiresAt, err := g.Login("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, int64(0))

	assert.NoError(t, g.Validate(token))
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	hash, err := HashSecret("correct horse battery staple")
	require.NoError(t, err)
	g, err := New(hash)
	require.NoError(t, err)

	_, _, err = g.Login("wrong secret")
	assert.Error(t, err)
}

func TestValidateRejectsGarbageToken(t *testing.T) {
	hash, err := HashSecret("s3cr3t")
	require.NoError(t, err)
	g, err := New(hash)
	require.NoError(t, err)

	assert.Error(t, g.Validate("not-a-jwt"))
}

func TestValidateRejectsTokenFromADifferentGuardInstance(t *testing.T) {
	hash, err := HashSecret("s3cr3t")
	require.NoError(t, err)

	g1, err := New(hash)
	require.NoError(t, err)
	g2, err := New(hash)
	require.NoError(t, err)

	token, _, err := g1.Login("s3cr3t")
	require.NoError(t, err)

	assert.Error(t, g2.Validate(token))
}
