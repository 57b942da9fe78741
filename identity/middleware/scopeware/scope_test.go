package scopeware_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/geekshopping/platform/identity/middleware/scopeware"
)

type stubClaims struct {
	subject string
	scopes  []string
}

func (c *stubClaims) Subject() string  { return c.subject }
func (c *stubClaims) Scopes() []string { return c.scopes }

func (c *stubClaims) HasScope(scope string) bool {
	for _, s := range c.scopes {
		if s == scope {
			return true
		}
	}
	return false
}

type stubVerifier struct {
	claims *stubClaims
	err    error
}

func (v *stubVerifier) Verify(raw string) (scopeware.ScopeClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

func passErr(c router.Context, err error) error {
	return err
}

func noopNext(ctx router.Context) error {
	return ctx.Next()
}

func TestCheck(t *testing.T) {
	claims := &stubClaims{subject: "u-1", scopes: []string{"read", "geek_shopping"}}

	require.NoError(t, scopeware.Check(claims, "geek_shopping"))

	err := scopeware.Check(claims, "delete")
	require.Error(t, err)
	assert.ErrorIs(t, err, scopeware.ErrInsufficientScope)

	err = scopeware.Check(nil, "read")
	assert.ErrorIs(t, err, scopeware.ErrTokenMissing)
}

func TestMiddlewareAllowsTokenWithScope(t *testing.T) {
	verifier := &stubVerifier{
		claims: &stubClaims{subject: "u-1", scopes: []string{"geek_shopping"}},
	}

	middleware := scopeware.New(scopeware.Config{
		Verifier:      verifier,
		RequiredScope: "geek_shopping",
		ErrorHandler:  passErr,
	})

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer some.raw.token"
	ctx.On("GetString", "Authorization", "").Return("Bearer some.raw.token")
	ctx.On("Locals", "token", mock.Anything).Return(nil)

	err := middleware(noopNext)(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
}

func TestMiddlewareRejectsTokenWithoutScope(t *testing.T) {
	verifier := &stubVerifier{
		claims: &stubClaims{subject: "u-1", scopes: []string{"read", "write"}},
	}

	middleware := scopeware.New(scopeware.Config{
		Verifier:      verifier,
		RequiredScope: "geek_shopping",
		ErrorHandler:  passErr,
	})

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer some.raw.token"
	ctx.On("GetString", "Authorization", "").Return("Bearer some.raw.token")

	err := middleware(noopNext)(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, scopeware.ErrInsufficientScope)
	assert.False(t, ctx.NextCalled)
}

func TestMiddlewareRejectsMissingBearer(t *testing.T) {
	verifier := &stubVerifier{claims: &stubClaims{scopes: []string{"geek_shopping"}}}

	middleware := scopeware.New(scopeware.Config{
		Verifier:      verifier,
		RequiredScope: "geek_shopping",
		ErrorHandler:  passErr,
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")

	err := middleware(noopNext)(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, scopeware.ErrTokenMissing)
}

func TestMiddlewareRejectsInvalidToken(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("token is expired")}

	middleware := scopeware.New(scopeware.Config{
		Verifier:      verifier,
		RequiredScope: "geek_shopping",
		ErrorHandler:  passErr,
	})

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer expired.token"
	ctx.On("GetString", "Authorization", "").Return("Bearer expired.token")

	err := middleware(noopNext)(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
	assert.False(t, ctx.NextCalled)
}

func TestMiddlewareFilterSkipsCheck(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("should not be called")}

	middleware := scopeware.New(scopeware.Config{
		Verifier:      verifier,
		RequiredScope: "geek_shopping",
		ErrorHandler:  passErr,
		Filter: func(ctx router.Context) bool {
			return true
		},
	})

	ctx := router.NewMockContext()

	err := middleware(noopNext)(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
}

func TestVerifierFunc(t *testing.T) {
	claims := &stubClaims{subject: "u-9", scopes: []string{"read"}}

	verifier := scopeware.VerifierFunc(func(raw string) (scopeware.ScopeClaims, error) {
		if raw == "good" {
			return claims, nil
		}
		return nil, errors.New("bad token")
	})

	got, err := verifier.Verify("good")
	require.NoError(t, err)
	assert.Equal(t, "u-9", got.Subject())

	_, err = verifier.Verify("nope")
	require.Error(t, err)
}
