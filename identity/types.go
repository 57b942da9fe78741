package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialStore is the store we consume to authenticate users and build
// their claim sets. Lockout state lives here, not in memory, so it survives
// process restarts.
type CredentialStore interface {
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetRoles(ctx context.Context, userID uuid.UUID) ([]string, error)

	// UpdateLockout records one failed access attempt. The store increments
	// the failure counter atomically; when the counter reaches maxFailed it
	// resets to zero and lockoutUntil is persisted. A single statement per
	// call keeps concurrent failures from under-counting.
	UpdateLockout(ctx context.Context, userID uuid.UUID, maxFailed int, lockoutUntil time.Time) error

	// ResetLockout clears the failure counter and any active lockout window.
	ResetLockout(ctx context.Context, userID uuid.UUID) error
}

// Signer turns assembled claims into a signed token artifact. The dev
// deployment uses an HMAC key, production injects a real key provider.
type Signer interface {
	Sign(claims *AccessClaims) (string, error)
}

// TokenVerifier is the resource server side counterpart to Signer.
type TokenVerifier interface {
	Verify(raw string) (*AccessClaims, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

func timeoutContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(ctx, d)
}
