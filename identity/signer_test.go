package identity_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geekshopping/platform/identity"
)

func signedTestToken(t *testing.T, key []byte, issuer string, expiresAt time.Time) string {
	t.Helper()

	signer := identity.NewHS256Signer(key)
	raw, err := signer.Sign(&identity.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Scope: []string{"read"},
	})
	require.NoError(t, err)
	return raw
}

func TestHS256SignerAndVerifier(t *testing.T) {
	key := []byte("signing-test-key")
	issuer := "https://localhost:4435"

	t.Run("Round trip", func(t *testing.T) {
		raw := signedTestToken(t, key, issuer, time.Now().Add(time.Hour))

		verifier := identity.NewHS256Verifier(key, issuer)
		claims, err := verifier.Verify(raw)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject())
		assert.True(t, claims.HasScope("read"))
	})

	t.Run("Nil claims", func(t *testing.T) {
		signer := identity.NewHS256Signer(key)
		_, err := signer.Sign(nil)
		assert.Error(t, err)
	})

	t.Run("Wrong key", func(t *testing.T) {
		raw := signedTestToken(t, key, issuer, time.Now().Add(time.Hour))

		verifier := identity.NewHS256Verifier([]byte("other-key"), issuer)
		_, err := verifier.Verify(raw)
		assert.Error(t, err)
	})

	t.Run("Wrong issuer", func(t *testing.T) {
		raw := signedTestToken(t, key, "https://elsewhere", time.Now().Add(time.Hour))

		verifier := identity.NewHS256Verifier(key, issuer)
		_, err := verifier.Verify(raw)
		assert.Error(t, err)
	})

	t.Run("Expired token", func(t *testing.T) {
		raw := signedTestToken(t, key, issuer, time.Now().Add(-time.Minute))

		verifier := identity.NewHS256Verifier(key, issuer)
		_, err := verifier.Verify(raw)
		assert.Error(t, err)
	})

	t.Run("Malformed token", func(t *testing.T) {
		verifier := identity.NewHS256Verifier(key, issuer)
		_, err := verifier.Verify("not.a.jwt")
		assert.Error(t, err)
	})
}
