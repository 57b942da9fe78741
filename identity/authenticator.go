package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Lockout policy defaults, matching the stock identity configuration.
const (
	DefaultMaxFailedAccess = 5
	DefaultLockoutWindow   = 30 * time.Minute
)

// Authenticator validates stored credentials and enforces the lockout policy.
// It is the only path that mutates lockout state; the store performs the
// read-modify-write atomically per record, so concurrent failures for the
// same user cannot under-count.
type Authenticator struct {
	store           CredentialStore
	maxFailedAccess int
	lockoutWindow   time.Duration
	storeTimeout    time.Duration
	logger          Logger
	now             func() time.Time
}

type AuthenticatorOption func(*Authenticator)

// NewAuthenticator returns an Authenticator over the given store.
func NewAuthenticator(store CredentialStore, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		store:           store,
		maxFailedAccess: DefaultMaxFailedAccess,
		lockoutWindow:   DefaultLockoutWindow,
		storeTimeout:    5 * time.Second,
		logger:          defLogger{},
		now:             time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

func WithLockoutPolicy(maxFailed int, window time.Duration) AuthenticatorOption {
	return func(a *Authenticator) {
		if maxFailed > 0 {
			a.maxFailedAccess = maxFailed
		}
		if window > 0 {
			a.lockoutWindow = window
		}
	}
}

func WithAuthenticatorLogger(logger Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithAuthenticatorClock(now func() time.Time) AuthenticatorOption {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

func WithStoreTimeout(d time.Duration) AuthenticatorOption {
	return func(a *Authenticator) {
		if d > 0 {
			a.storeTimeout = d
		}
	}
}

// Authenticate validates the username/password pair. The returned error never
// tells the caller whether the username or the password was wrong; internal
// reasons travel in error metadata for logs only.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (uuid.UUID, error) {
	ctx, cancel := timeoutContext(ctx, a.storeTimeout)
	defer cancel()

	user, err := a.store.FindUserByUsername(ctx, username)
	if err != nil {
		if goerrors.IsNotFound(err) {
			a.logger.Debug("authenticate: unknown user", "username", username)
			return uuid.Nil, ErrInvalidCredentials.Clone().
				WithMetadata(map[string]any{"reason": "unknown_user"})
		}
		return uuid.Nil, storeFailure(ctx, err)
	}

	now := a.now()
	if user.IsLockedOut(now) {
		a.logger.Warn("authenticate: locked out", "user_id", user.ID.String())
		return uuid.Nil, ErrLockedOut.Clone().
			WithMetadata(map[string]any{"lockout_until": user.LockoutUntil})
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		lockoutUntil := now.Add(a.lockoutWindow)
		if err2 := a.store.UpdateLockout(ctx, user.ID, a.maxFailedAccess, lockoutUntil); err2 != nil {
			return uuid.Nil, storeFailure(ctx, err2)
		}

		a.logger.Debug("authenticate: bad password", "user_id", user.ID.String())
		return uuid.Nil, ErrInvalidCredentials.Clone().
			WithMetadata(map[string]any{"reason": "bad_password"})
	}

	// A success always resets the counter, regardless of interleaving with
	// concurrent failures; last write wins on the reset.
	if err := a.store.ResetLockout(ctx, user.ID); err != nil {
		return uuid.Nil, storeFailure(ctx, err)
	}

	return user.ID, nil
}

// storeFailure converts deadline errors into StoreUnavailable; anything else
// is wrapped as an internal store error.
func storeFailure(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ErrStoreUnavailable.Clone().
			WithMetadata(map[string]any{"cause": ctx.Err().Error()})
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "credential store call failed")
}
