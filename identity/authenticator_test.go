package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geekshopping/platform/identity"
)

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful authentication", func(t *testing.T) {
		store := newMemStore()
		user := seedTestUser(t, store, "admin", "Admin@123", identity.RoleAdmin)

		authenticator := identity.NewAuthenticator(store)

		got, err := authenticator.Authenticate(ctx, "admin", "Admin@123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got)
	})

	t.Run("Unknown user", func(t *testing.T) {
		store := newMemStore()
		authenticator := identity.NewAuthenticator(store)

		got, err := authenticator.Authenticate(ctx, "nobody", "whatever")
		require.Error(t, err)
		assert.Equal(t, uuid.Nil, got)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, identity.TextCodeInvalidCredentials, richErr.TextCode)
	})

	t.Run("Wrong password", func(t *testing.T) {
		store := newMemStore()
		seedTestUser(t, store, "admin", "Admin@123")

		authenticator := identity.NewAuthenticator(store)

		_, err := authenticator.Authenticate(ctx, "admin", "wrong")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, identity.TextCodeInvalidCredentials, richErr.TextCode)
	})

	t.Run("Unknown user and wrong password are indistinguishable", func(t *testing.T) {
		store := newMemStore()
		seedTestUser(t, store, "admin", "Admin@123")

		authenticator := identity.NewAuthenticator(store)

		_, errUnknown := authenticator.Authenticate(ctx, "nobody", "whatever")
		_, errBadPass := authenticator.Authenticate(ctx, "admin", "wrong")

		require.Error(t, errUnknown)
		require.Error(t, errBadPass)

		var e1, e2 *goerrors.Error
		require.True(t, goerrors.As(errUnknown, &e1))
		require.True(t, goerrors.As(errBadPass, &e2))
		assert.Equal(t, e1.TextCode, e2.TextCode)
		assert.Equal(t, e1.Message, e2.Message)
	})
}

func TestAuthenticateLockout(t *testing.T) {
	ctx := context.Background()

	t.Run("Sixth attempt is locked out even with correct password", func(t *testing.T) {
		store := newMemStore()
		user := seedTestUser(t, store, "admin", "Admin@123")

		authenticator := identity.NewAuthenticator(store)

		for i := 0; i < identity.DefaultMaxFailedAccess; i++ {
			_, err := authenticator.Authenticate(ctx, "admin", "wrong")
			require.Error(t, err)
		}

		require.NotNil(t, store.users[user.ID].LockoutUntil)

		_, err := authenticator.Authenticate(ctx, "admin", "Admin@123")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, identity.TextCodeLockedOut, richErr.TextCode)
	})

	t.Run("Lockout expires after the window", func(t *testing.T) {
		store := newMemStore()
		user := seedTestUser(t, store, "admin", "Admin@123")

		now := time.Now()
		clock := func() time.Time { return now }

		authenticator := identity.NewAuthenticator(store,
			identity.WithAuthenticatorClock(clock),
		)

		for i := 0; i < identity.DefaultMaxFailedAccess; i++ {
			_, err := authenticator.Authenticate(ctx, "admin", "wrong")
			require.Error(t, err)
		}

		_, err := authenticator.Authenticate(ctx, "admin", "Admin@123")
		require.Error(t, err)

		// jump past the lockout window
		now = now.Add(identity.DefaultLockoutWindow + time.Minute)

		got, err := authenticator.Authenticate(ctx, "admin", "Admin@123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got)
	})

	t.Run("Success resets the failure counter", func(t *testing.T) {
		store := newMemStore()
		user := seedTestUser(t, store, "admin", "Admin@123")

		authenticator := identity.NewAuthenticator(store)

		for i := 0; i < identity.DefaultMaxFailedAccess-1; i++ {
			_, err := authenticator.Authenticate(ctx, "admin", "wrong")
			require.Error(t, err)
		}

		_, err := authenticator.Authenticate(ctx, "admin", "Admin@123")
		require.NoError(t, err)
		assert.Equal(t, 0, store.users[user.ID].FailedAccessCount)

		// one more failure after the reset must not lock the account
		_, err = authenticator.Authenticate(ctx, "admin", "wrong")
		require.Error(t, err)
		assert.Nil(t, store.users[user.ID].LockoutUntil)
	})

	t.Run("Custom lockout policy", func(t *testing.T) {
		store := newMemStore()
		seedTestUser(t, store, "admin", "Admin@123")

		authenticator := identity.NewAuthenticator(store,
			identity.WithLockoutPolicy(2, time.Minute),
		)

		_, err := authenticator.Authenticate(ctx, "admin", "wrong")
		require.Error(t, err)
		_, err = authenticator.Authenticate(ctx, "admin", "wrong")
		require.Error(t, err)

		_, err = authenticator.Authenticate(ctx, "admin", "Admin@123")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, identity.TextCodeLockedOut, richErr.TextCode)
	})
}

func TestAuthenticateStoreFailure(t *testing.T) {
	expiredContext := func() context.Context {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}

	t.Run("Lookup failure on an expired context is unavailable", func(t *testing.T) {
		store := newMemStore()
		store.findErr = errors.New("connection refused")

		authenticator := identity.NewAuthenticator(store)

		_, err := authenticator.Authenticate(expiredContext(), "admin", "Admin@123")
		requireTextCode(t, err, identity.TextCodeStoreUnavailable)
	})

	t.Run("Lockout write failure on an expired context is unavailable", func(t *testing.T) {
		store := newMemStore()
		seedTestUser(t, store, "admin", "Admin@123")
		store.lockoutErr = errors.New("connection reset")

		authenticator := identity.NewAuthenticator(store)

		_, err := authenticator.Authenticate(expiredContext(), "admin", "wrong")
		requireTextCode(t, err, identity.TextCodeStoreUnavailable)
	})

	t.Run("Reset failure on an expired context is unavailable", func(t *testing.T) {
		store := newMemStore()
		seedTestUser(t, store, "admin", "Admin@123")
		store.lockoutErr = errors.New("connection reset")

		authenticator := identity.NewAuthenticator(store)

		_, err := authenticator.Authenticate(expiredContext(), "admin", "Admin@123")
		requireTextCode(t, err, identity.TextCodeStoreUnavailable)
	})

	t.Run("Lookup failure on a live context wraps as internal", func(t *testing.T) {
		store := newMemStore()
		store.findErr = errors.New("connection refused")

		authenticator := identity.NewAuthenticator(store)

		_, err := authenticator.Authenticate(context.Background(), "admin", "Admin@123")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryInternal, richErr.Category)
		assert.NotEqual(t, identity.TextCodeStoreUnavailable, richErr.TextCode)
	})
}
