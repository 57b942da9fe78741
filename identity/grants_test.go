package identity_test

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geekshopping/platform/identity"
)

func testRegistry(t *testing.T) *identity.Registry {
	t.Helper()

	registry, err := identity.DefaultRegistry()
	require.NoError(t, err)
	return registry
}

func requireTextCode(t *testing.T, err error, textCode string) {
	t.Helper()

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr), "expected structured error, got %v", err)
	assert.Equal(t, textCode, richErr.TextCode)
}

func TestGrantEvaluator(t *testing.T) {
	registry := testRegistry(t)
	evaluator := identity.NewGrantEvaluator(registry)

	t.Run("Grants exactly the requested scopes", func(t *testing.T) {
		granted, err := evaluator.Evaluate("client", identity.GrantTypeClientCredentials, []string{"read", "write"})
		require.NoError(t, err)
		assert.Equal(t, []string{"read", "write"}, granted)
	})

	t.Run("Empty scope request is granted empty", func(t *testing.T) {
		granted, err := evaluator.Evaluate("client", identity.GrantTypeClientCredentials, nil)
		require.NoError(t, err)
		assert.Empty(t, granted)
	})

	t.Run("Unknown client", func(t *testing.T) {
		_, err := evaluator.Evaluate("ghost", identity.GrantTypeClientCredentials, []string{"read"})
		require.Error(t, err)
		requireTextCode(t, err, identity.TextCodeUnknownClient)
	})

	t.Run("Grant type not allowed", func(t *testing.T) {
		_, err := evaluator.Evaluate("client", identity.GrantTypeAuthorizationCode, []string{"read"})
		require.Error(t, err)
		requireTextCode(t, err, identity.TextCodeGrantTypeNotAllowed)
	})

	t.Run("One disallowed scope rejects the whole request", func(t *testing.T) {
		_, err := evaluator.Evaluate("client", identity.GrantTypeClientCredentials, []string{"read", "delete"})
		require.Error(t, err)
		requireTextCode(t, err, identity.TextCodeScopeNotAllowed)
	})

	t.Run("Web client may request identity scopes", func(t *testing.T) {
		granted, err := evaluator.Evaluate(
			"geekshopping_web",
			identity.GrantTypeAuthorizationCode,
			[]string{"openid", "profile", "email", identity.ScopeGeekShopping},
		)
		require.NoError(t, err)
		assert.Len(t, granted, 4)
	})
}
