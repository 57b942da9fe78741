package scopeware

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup   = "header:" + router.HeaderAuthorization
	ErrTokenMissing      = errors.New("missing or malformed bearer token")
	ErrInsufficientScope = errors.New("insufficient scope")
	ErrTokenInvalid      = errors.New("invalid or expired token")
)

// TokenVerifier validates a raw bearer token without importing the identity
// package; this mirrors identity.TokenVerifier to avoid import cycles.
type TokenVerifier interface {
	Verify(raw string) (ScopeClaims, error)
}

// ScopeClaims is what the gate needs from validated claims.
type ScopeClaims interface {
	Subject() string
	Scopes() []string
	HasScope(scope string) bool
}

// VerifierFunc adapts a verify function to TokenVerifier.
type VerifierFunc func(raw string) (ScopeClaims, error)

func (f VerifierFunc) Verify(raw string) (ScopeClaims, error) {
	return f(raw)
}

// Check is the policy decision by itself: a valid token either carries the
// required scope or the request is denied. Pure; no mutation.
func Check(claims ScopeClaims, requiredScope string) error {
	if claims == nil {
		return ErrTokenMissing
	}

	if !claims.HasScope(requiredScope) {
		return fmt.Errorf("%w: required scope %q not in token", ErrInsufficientScope, requiredScope)
	}

	return nil
}

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	ContextKey     string
	TokenLookup    string
	AuthScheme     string
	// Verifier validates the raw token; required unless JWKSetURLs is set.
	Verifier TokenVerifier
	// RequiredScope is the scope this endpoint's policy declares.
	RequiredScope string
	// JWKSetURLs builds a keyfunc-backed verifier for externally issued
	// RS256 tokens when no Verifier is supplied.
	JWKSetURLs []string
	// Issuer, when set, is enforced against externally issued tokens.
	Issuer string
}

// New returns a middleware enforcing the endpoint's declared scope policy:
// no valid token is a 401, a valid token without the scope is a 403.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := extractRawToken(ctx, cfg)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.Verifier.Verify(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if cfg.RequiredScope != "" {
				if err := Check(claims, cfg.RequiredScope); err != nil {
					return cfg.ErrorHandler(ctx, err)
				}
			}

			ctx.Locals(cfg.ContextKey, claims)

			return cfg.SuccessHandler(ctx)
		}
	}
}

// RequireScope builds a gate for a single scope with an existing verifier.
func RequireScope(scope string, verifier TokenVerifier) router.MiddlewareFunc {
	return New(Config{
		Verifier:      verifier,
		RequiredScope: scope,
	})
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			if errors.Is(err, ErrInsufficientScope) {
				return c.Status(router.StatusForbidden).SendString(ErrInsufficientScope.Error())
			}
			return c.Status(router.StatusUnauthorized).SendString(ErrTokenInvalid.Error())
		}
	}

	if cfg.Verifier == nil && len(cfg.JWKSetURLs) == 0 {
		panic("SCOPE: middleware configuration: a Verifier or JWKSetURLs is required.")
	}

	if cfg.Verifier == nil {
		verifier, err := newJWKSVerifier(cfg.JWKSetURLs, cfg.Issuer)
		if err != nil {
			panic("Failed to create verifier from JWK Set URL: " + err.Error())
		}
		cfg.Verifier = verifier
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "token"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func extractRawToken(ctx router.Context, cfg Config) (string, error) {
	parts := strings.SplitN(cfg.TokenLookup, ":", 2)
	header := router.HeaderAuthorization
	if len(parts) == 2 && parts[0] == "header" {
		header = strings.TrimSpace(parts[1])
	}

	a := ctx.GetString(header, "")
	scheme := strings.TrimSpace(cfg.AuthScheme)
	l := len(scheme)

	if len(a) > l+1 && strings.EqualFold(a[:l], scheme) {
		return strings.TrimSpace(a[l:]), nil
	}

	return "", ErrTokenMissing
}

// jwksClaims adapts generic parsed claims to ScopeClaims.
type jwksClaims struct {
	jwt.RegisteredClaims
	Scope []string `json:"scope,omitempty"`
}

func (c *jwksClaims) Subject() string  { return c.RegisteredClaims.Subject }
func (c *jwksClaims) Scopes() []string { return c.Scope }

func (c *jwksClaims) HasScope(scope string) bool {
	for _, s := range c.Scope {
		if s == scope {
			return true
		}
	}
	return false
}

type jwksVerifier struct {
	keyfunc jwt.Keyfunc
	issuer  string
}

func newJWKSVerifier(urls []string, issuer string) (*jwksVerifier, error) {
	opts := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWK set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}

	m := make(map[string]keyfunc.Options, len(urls))
	for _, url := range urls {
		m[url] = opts
	}

	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWK URLs: %w", err)
	}

	return &jwksVerifier{keyfunc: multi.Keyfunc, issuer: issuer}, nil
}

func (v *jwksVerifier) Verify(raw string) (ScopeClaims, error) {
	opts := make([]jwt.ParserOption, 0, 1)
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &jwksClaims{}, v.keyfunc, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwksClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
