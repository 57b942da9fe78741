package identity

import "github.com/goliatone/go-errors"

const (
	TextCodeUnknownClient       = "UNKNOWN_CLIENT"
	TextCodeGrantTypeNotAllowed = "GRANT_TYPE_NOT_ALLOWED"
	TextCodeScopeNotAllowed     = "SCOPE_NOT_ALLOWED"
	TextCodeInvalidClientSecret = "INVALID_CLIENT_SECRET"
	TextCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	TextCodeLockedOut           = "LOCKED_OUT"
	TextCodeSubjectNotFound     = "SUBJECT_NOT_FOUND"
	TextCodeInsufficientScope   = "INSUFFICIENT_SCOPE"
	TextCodeStoreUnavailable    = "STORE_UNAVAILABLE"
)

// ErrUnknownClient is returned when the client id is not registered.
var ErrUnknownClient = errors.New("unknown client", errors.CategoryBadInput).
	WithTextCode(TextCodeUnknownClient).
	WithCode(errors.CodeBadRequest)

// ErrGrantTypeNotAllowed is returned when the client may not use the grant type.
var ErrGrantTypeNotAllowed = errors.New("grant type not allowed for client", errors.CategoryBadInput).
	WithTextCode(TextCodeGrantTypeNotAllowed).
	WithCode(errors.CodeBadRequest)

// ErrScopeNotAllowed is returned when any requested scope falls outside the
// client's allowed scopes. The grant is all-or-nothing; we never narrow it.
var ErrScopeNotAllowed = errors.New("requested scope not allowed for client", errors.CategoryBadInput).
	WithTextCode(TextCodeScopeNotAllowed).
	WithCode(errors.CodeBadRequest)

// ErrInvalidClientSecret is returned when the presented client secret does not
// match the registered secret hash.
var ErrInvalidClientSecret = errors.New("invalid client secret", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidClientSecret).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials covers both unknown-user and bad-password outcomes so
// callers cannot enumerate accounts. The metadata carries the internal reason.
var ErrInvalidCredentials = errors.New("invalid username or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrLockedOut is returned while a lockout window is active.
var ErrLockedOut = errors.New("account temporarily locked", errors.CategoryAuth).
	WithTextCode(TextCodeLockedOut).
	WithCode(errors.CodeUnauthorized)

// ErrSubjectNotFound is returned by the claims assembler when the subject no
// longer exists; token issuance treats it as an inactive subject.
var ErrSubjectNotFound = errors.New("subject not found", errors.CategoryNotFound).
	WithTextCode(TextCodeSubjectNotFound).
	WithCode(errors.CodeNotFound)

// ErrInsufficientScope is returned by the scope gate when the token is valid
// but lacks the required scope.
var ErrInsufficientScope = errors.New("insufficient scope", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientScope).
	WithCode(errors.CodeForbidden)

// ErrStoreUnavailable converts store timeouts into a retryable terminal error.
// We do not retry internally; the caller may, with backoff.
var ErrStoreUnavailable = errors.New("credential store unavailable", errors.CategoryInternal).
	WithTextCode(TextCodeStoreUnavailable).
	WithCode(errors.CodeInternal)

// ErrNoEmptyString rejects empty secrets before hashing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword mirrors bcrypt's mismatch error with our category.
var ErrMismatchedHashAndPassword = errors.New("hash and password mismatch", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)
