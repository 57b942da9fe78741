package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultAccessTokenLifetime applies when a client registration does not set
// its own lifetime.
const DefaultAccessTokenLifetime = time.Hour

// GrantRequest is the transient per-request input to token issuance. Subject
// credentials are only required for interactive grant types.
type GrantRequest struct {
	ClientID     string
	ClientSecret string
	GrantType    string
	Scopes       []string
	Username     string
	Password     string
}

// IssuedToken is the issuance result: the signed artifact plus the claim
// payload that went into it.
type IssuedToken struct {
	Subject     string // empty for machine to machine grants
	Issuer      string
	Audience    []string
	Scopes      []string
	Claims      []Claim
	ExpiresAt   time.Time
	AccessToken string
}

// TokenIssuer orchestrates grant evaluation, user authentication and claims
// assembly into a signed token. Signing is pluggable; the dev deployment
// injects an HMAC signer.
type TokenIssuer struct {
	registry        *Registry
	evaluator       *GrantEvaluator
	authenticator   *Authenticator
	assembler       *ClaimsAssembler
	signer          Signer
	issuer          string
	defaultLifetime time.Duration
	logger          Logger
	now             func() time.Time
}

type IssuerOption func(*TokenIssuer)

func NewTokenIssuer(registry *Registry, authenticator *Authenticator, assembler *ClaimsAssembler, signer Signer, issuer string, opts ...IssuerOption) *TokenIssuer {
	ti := &TokenIssuer{
		registry:        registry,
		evaluator:       NewGrantEvaluator(registry),
		authenticator:   authenticator,
		assembler:       assembler,
		signer:          signer,
		issuer:          issuer,
		defaultLifetime: DefaultAccessTokenLifetime,
		logger:          defLogger{},
		now:             time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ti)
		}
	}

	return ti
}

func WithIssuerLogger(logger Logger) IssuerOption {
	return func(ti *TokenIssuer) {
		if logger != nil {
			ti.logger = logger
		}
	}
}

func WithIssuerClock(now func() time.Time) IssuerOption {
	return func(ti *TokenIssuer) {
		if now != nil {
			ti.now = now
		}
	}
}

func WithDefaultTokenLifetime(d time.Duration) IssuerOption {
	return func(ti *TokenIssuer) {
		if d > 0 {
			ti.defaultLifetime = d
		}
	}
}

// Issue runs a GrantRequest to completion. The request either ends in a
// signed token or a terminal rejection; there are no retries inside this
// flow, a rejected request means the caller submits a new one.
func (ti *TokenIssuer) Issue(ctx context.Context, req GrantRequest) (*IssuedToken, error) {
	client, ok := ti.registry.Client(req.ClientID)
	if !ok {
		return nil, ErrUnknownClient.Clone().
			WithMetadata(map[string]any{"client_id": req.ClientID})
	}

	if err := ComparePasswordAndHash(req.ClientSecret, client.SecretHash); err != nil {
		ti.logger.Warn("issue: client secret mismatch", "client_id", req.ClientID)
		return nil, ErrInvalidClientSecret.Clone().
			WithMetadata(map[string]any{"client_id": req.ClientID})
	}

	granted, err := ti.evaluator.Evaluate(req.ClientID, req.GrantType, req.Scopes)
	if err != nil {
		return nil, err
	}

	token := &IssuedToken{
		Issuer:    ti.issuer,
		Audience:  []string{ti.issuer + "/resources"},
		Scopes:    granted,
		ExpiresAt: ti.now().Add(ti.tokenLifetime(client)),
	}

	if interactiveGrantType(req.GrantType) {
		subject, claims, err := ti.subjectClaims(ctx, req, granted)
		if err != nil {
			return nil, err
		}
		token.Subject = subject
		token.Claims = claims
	}

	for _, scope := range granted {
		token.Claims = append(token.Claims, Claim{Type: ClaimTypeScope, Value: scope})
	}

	signed, err := ti.signer.Sign(ti.accessClaims(token))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign access token")
	}

	token.AccessToken = signed

	return token, nil
}

func (ti *TokenIssuer) subjectClaims(ctx context.Context, req GrantRequest, granted []string) (string, []Claim, error) {
	if req.Username == "" || req.Password == "" {
		return "", nil, ErrInvalidCredentials.Clone().
			WithMetadata(map[string]any{"reason": "missing_subject_credentials"})
	}

	userID, err := ti.authenticator.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return "", nil, err
	}

	claimTypes := ti.registry.RequestedClaimTypes(granted)

	claims, err := ti.assembler.Assemble(ctx, userID, claimTypes)
	if err != nil {
		return "", nil, err
	}

	return userID.String(), claims, nil
}

func (ti *TokenIssuer) accessClaims(token *IssuedToken) *AccessClaims {
	now := ti.now()

	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    token.Issuer,
			Subject:   token.Subject,
			Audience:  jwt.ClaimStrings(token.Audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(token.ExpiresAt),
			ID:        uuid.NewString(),
		},
		Scope:  token.Scopes,
		Claims: token.Claims,
	}

	return claims
}

func (ti *TokenIssuer) tokenLifetime(client Client) time.Duration {
	if client.AccessTokenLifetime > 0 {
		return client.AccessTokenLifetime
	}
	return ti.defaultLifetime
}

func interactiveGrantType(grantType string) bool {
	return grantType == GrantTypeAuthorizationCode
}
