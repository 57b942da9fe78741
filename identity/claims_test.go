package identity_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/geekshopping/platform/identity"
)

func TestAccessClaims(t *testing.T) {
	expires := time.Now().Add(time.Hour).Truncate(time.Second)

	claims := &identity.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Scope: []string{"read", identity.ScopeGeekShopping},
		Claims: []identity.Claim{
			{Type: identity.ClaimTypeRole, Value: identity.RoleAdmin},
			{Type: identity.ClaimTypeRole, Value: identity.RoleClient},
			{Type: identity.ClaimTypeGivenName, Value: "Admin"},
		},
	}

	t.Run("Subject", func(t *testing.T) {
		assert.Equal(t, "user-1", claims.Subject())
	})

	t.Run("HasScope", func(t *testing.T) {
		assert.True(t, claims.HasScope("read"))
		assert.True(t, claims.HasScope(identity.ScopeGeekShopping))
		assert.False(t, claims.HasScope("delete"))
	})

	t.Run("ClaimsOfType keeps issue order and duplicates", func(t *testing.T) {
		roles := claims.ClaimsOfType(identity.ClaimTypeRole)
		assert.Equal(t, []identity.Claim{
			{Type: identity.ClaimTypeRole, Value: identity.RoleAdmin},
			{Type: identity.ClaimTypeRole, Value: identity.RoleClient},
		}, roles)

		assert.Empty(t, claims.ClaimsOfType(identity.ClaimTypeEmail))
	})

	t.Run("Expires", func(t *testing.T) {
		assert.Equal(t, expires, claims.Expires())

		empty := &identity.AccessClaims{}
		assert.True(t, empty.Expires().IsZero())
	})
}

func TestUserFullName(t *testing.T) {
	tests := []struct {
		name     string
		first    string
		last     string
		expected string
	}{
		{"Both parts", "Admin", "GeekShopping", "Admin GeekShopping"},
		{"First only", "Admin", "", "Admin"},
		{"Last only", "", "GeekShopping", "GeekShopping"},
		{"Empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &identity.User{FirstName: tt.first, LastName: tt.last}
			assert.Equal(t, tt.expected, u.FullName())
		})
	}
}

func TestUserIsLockedOut(t *testing.T) {
	now := time.Now()

	u := &identity.User{}
	assert.False(t, u.IsLockedOut(now))

	until := now.Add(time.Minute)
	u.LockoutUntil = &until
	assert.True(t, u.IsLockedOut(now))
	assert.False(t, u.IsLockedOut(until.Add(time.Second)))
}
