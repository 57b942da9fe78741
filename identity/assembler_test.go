package identity_test

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geekshopping/platform/identity"
)

func claimValues(claims []identity.Claim, claimType string) []string {
	var out []string
	for _, c := range claims {
		if c.Type == claimType {
			out = append(out, c.Value)
		}
	}
	return out
}

func TestAssemble(t *testing.T) {
	ctx := context.Background()
	registry := testRegistry(t)

	t.Run("Admin with full identity scopes", func(t *testing.T) {
		store := newMemStore()
		user := seedTestUser(t, store, "admin", "Admin@123", identity.RoleAdmin)

		assembler := identity.NewClaimsAssembler(store)

		claimTypes := registry.RequestedClaimTypes([]string{"openid", "profile", "email"})
		claims, err := assembler.Assemble(ctx, user.ID, claimTypes)
		require.NoError(t, err)

		assert.Equal(t, []string{"Admin GeekShopping"}, claimValues(claims, identity.ClaimTypeName))
		assert.Equal(t, []string{"Admin"}, claimValues(claims, identity.ClaimTypeGivenName))
		assert.Equal(t, []string{"GeekShopping"}, claimValues(claims, identity.ClaimTypeFamilyName))
		assert.Equal(t, []string{"admin@geekshopping.com"}, claimValues(claims, identity.ClaimTypeEmail))
		assert.Equal(t, []string{"true"}, claimValues(claims, identity.ClaimTypeEmailVerified))
		assert.Equal(t, []string{identity.RoleAdmin}, claimValues(claims, identity.ClaimTypeRole))
	})

	t.Run("Name parts appear even without profile scope", func(t *testing.T) {
		store := newMemStore()
		user := seedTestUser(t, store, "admin", "Admin@123", identity.RoleAdmin)

		assembler := identity.NewClaimsAssembler(store)

		claims, err := assembler.Assemble(ctx, user.ID, nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"Admin"}, claimValues(claims, identity.ClaimTypeGivenName))
		assert.Equal(t, []string{"GeekShopping"}, claimValues(claims, identity.ClaimTypeFamilyName))
		assert.Empty(t, claimValues(claims, identity.ClaimTypeName))
		assert.Empty(t, claimValues(claims, identity.ClaimTypeEmail))
	})

	t.Run("Filtered claims are a subset of requested types", func(t *testing.T) {
		store := newMemStore()
		user := seedTestUser(t, store, "admin", "Admin@123")

		assembler := identity.NewClaimsAssembler(store)

		requested := []string{identity.ClaimTypeEmail}
		claims, err := assembler.Assemble(ctx, user.ID, requested)
		require.NoError(t, err)

		for _, c := range claims {
			switch c.Type {
			case identity.ClaimTypeGivenName, identity.ClaimTypeFamilyName, identity.ClaimTypeRole:
				// always issued
			default:
				assert.Contains(t, requested, c.Type)
			}
		}
		assert.Empty(t, claimValues(claims, identity.ClaimTypeEmailVerified))
	})

	t.Run("One role claim per membership", func(t *testing.T) {
		store := newMemStore()
		user := seedTestUser(t, store, "admin", "Admin@123", identity.RoleAdmin, identity.RoleClient)

		assembler := identity.NewClaimsAssembler(store)

		claims, err := assembler.Assemble(ctx, user.ID, nil)
		require.NoError(t, err)

		assert.Equal(t, []string{identity.RoleAdmin, identity.RoleClient}, claimValues(claims, identity.ClaimTypeRole))
	})

	t.Run("Deterministic output", func(t *testing.T) {
		store := newMemStore()
		user := seedTestUser(t, store, "admin", "Admin@123", identity.RoleAdmin)

		assembler := identity.NewClaimsAssembler(store)
		claimTypes := registry.RequestedClaimTypes([]string{"openid", "profile", "email"})

		first, err := assembler.Assemble(ctx, user.ID, claimTypes)
		require.NoError(t, err)

		second, err := assembler.Assemble(ctx, user.ID, claimTypes)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Unknown subject", func(t *testing.T) {
		store := newMemStore()
		assembler := identity.NewClaimsAssembler(store)

		_, err := assembler.Assemble(ctx, uuid.New(), nil)
		require.Error(t, err)
		requireTextCode(t, err, identity.TextCodeSubjectNotFound)
	})

	t.Run("Empty profile fields emit nothing", func(t *testing.T) {
		store := newMemStore()
		user := &identity.User{
			ID:           uuid.New(),
			Username:     "ghost",
			PasswordHash: mustHash(t, "Ghost@123"),
		}
		store.addUser(user)

		assembler := identity.NewClaimsAssembler(store)

		claims, err := assembler.Assemble(ctx, user.ID, []string{
			identity.ClaimTypeName, identity.ClaimTypeEmail,
		})
		require.NoError(t, err)
		assert.Empty(t, claims)
	})
}

func TestAssembleStoreFailure(t *testing.T) {
	expiredContext := func() context.Context {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}

	t.Run("Lookup failure on an expired context is unavailable", func(t *testing.T) {
		store := newMemStore()
		store.findErr = errors.New("connection refused")

		assembler := identity.NewClaimsAssembler(store)

		_, err := assembler.Assemble(expiredContext(), uuid.New(), nil)
		requireTextCode(t, err, identity.TextCodeStoreUnavailable)
	})

	t.Run("Role lookup failure on an expired context is unavailable", func(t *testing.T) {
		store := newMemStore()
		user := seedTestUser(t, store, "admin", "Admin@123", identity.RoleAdmin)
		store.rolesErr = errors.New("connection reset")

		assembler := identity.NewClaimsAssembler(store)

		_, err := assembler.Assemble(expiredContext(), user.ID, nil)
		requireTextCode(t, err, identity.TextCodeStoreUnavailable)
	})

	t.Run("Role lookup failure on a live context wraps as internal", func(t *testing.T) {
		store := newMemStore()
		user := seedTestUser(t, store, "admin", "Admin@123", identity.RoleAdmin)
		store.rolesErr = errors.New("connection reset")

		assembler := identity.NewClaimsAssembler(store)

		_, err := assembler.Assemble(context.Background(), user.ID, nil)
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryInternal, richErr.Category)
		assert.NotEqual(t, identity.TextCodeStoreUnavailable, richErr.TextCode)
	})
}
