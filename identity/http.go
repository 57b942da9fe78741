package identity

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterIdentityRoutes mounts the token endpoint and the discovery
// document on the given router.
func RegisterIdentityRoutes[T any](app router.Router[T], opts ...TokenControllerOption) {
	controller := NewTokenController(opts...)

	app.Post("/connect/token", controller.TokenPost).
		SetName("connect.token")

	app.Get("/.well-known/openid-configuration", controller.DiscoveryShow).
		SetName("connect.discovery")
}

type TokenController struct {
	Debug    bool
	Logger   Logger
	Issuer   *TokenIssuer
	Registry *Registry
	// IssuerURL is the public base URL advertised by the discovery document.
	IssuerURL string
}

type TokenControllerOption func(*TokenController) *TokenController

func NewTokenController(opts ...TokenControllerOption) *TokenController {
	c := &TokenController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Issuer == nil {
		panic("Missing TokenIssuer in token controller...")
	}

	if c.Registry == nil {
		panic("Missing Registry in token controller...")
	}

	return c
}

func WithTokenIssuer(issuer *TokenIssuer) TokenControllerOption {
	return func(c *TokenController) *TokenController {
		c.Issuer = issuer
		return c
	}
}

func WithRegistry(registry *Registry) TokenControllerOption {
	return func(c *TokenController) *TokenController {
		c.Registry = registry
		return c
	}
}

func WithIssuerURL(url string) TokenControllerOption {
	return func(c *TokenController) *TokenController {
		c.IssuerURL = url
		return c
	}
}

func WithControllerLogger(logger Logger) TokenControllerOption {
	return func(c *TokenController) *TokenController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) TokenControllerOption {
	return func(c *TokenController) *TokenController {
		c.Debug = debug
		return c
	}
}

// TokenRequest is the token endpoint form payload.
type TokenRequest struct {
	GrantType    string `form:"grant_type" json:"grant_type"`
	ClientID     string `form:"client_id" json:"client_id"`
	ClientSecret string `form:"client_secret" json:"client_secret"`
	Scope        string `form:"scope" json:"scope"`
	Username     string `form:"username" json:"username"`
	Password     string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r TokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.GrantType,
			validation.Required,
			validation.In(GrantTypeClientCredentials, GrantTypeAuthorizationCode),
		),
		validation.Field(
			&r.ClientID,
			validation.Required,
		),
		validation.Field(
			&r.ClientSecret,
			validation.Required,
		),
	)
}

// TokenResponse is the token endpoint success body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

type tokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func (a *TokenController) TokenPost(ctx router.Context) error {
	payload := new(TokenRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, tokenError{
			Error:            "invalid_request",
			ErrorDescription: "malformed token request",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, tokenError{
			Error:            "invalid_request",
			ErrorDescription: err.Error(),
		})
	}

	if a.Debug {
		fmt.Println("======= TOKEN REQUEST ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	req := GrantRequest{
		ClientID:     payload.ClientID,
		ClientSecret: payload.ClientSecret,
		GrantType:    payload.GrantType,
		Scopes:       splitScopes(payload.Scope),
		Username:     payload.Username,
		Password:     payload.Password,
	}

	token, err := a.Issuer.Issue(ctx.Context(), req)
	if err != nil {
		return a.renderTokenError(ctx, err)
	}

	expiresIn := int64(time.Until(token.ExpiresAt).Round(time.Second).Seconds())

	return ctx.JSON(router.StatusOK, TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Scope:       strings.Join(token.Scopes, " "),
	})
}

// renderTokenError maps issuance failures onto OAuth2 error bodies. User
// facing authentication failures stay generic so callers cannot enumerate
// accounts; the detailed reason only reaches logs.
func (a *TokenController) renderTokenError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		a.Logger.Error("token issuance failed", "error", err)
		return ctx.JSON(http.StatusInternalServerError, tokenError{Error: "server_error"})
	}

	switch richErr.TextCode {
	case TextCodeUnknownClient, TextCodeInvalidClientSecret:
		return ctx.JSON(router.StatusUnauthorized, tokenError{Error: "invalid_client"})
	case TextCodeGrantTypeNotAllowed:
		return ctx.JSON(router.StatusBadRequest, tokenError{Error: "unauthorized_client"})
	case TextCodeScopeNotAllowed:
		return ctx.JSON(router.StatusBadRequest, tokenError{Error: "invalid_scope"})
	case TextCodeInvalidCredentials, TextCodeLockedOut, TextCodeSubjectNotFound:
		// same body for every credential outcome
		return ctx.JSON(router.StatusBadRequest, tokenError{
			Error:            "invalid_grant",
			ErrorDescription: "invalid login",
		})
	case TextCodeStoreUnavailable:
		a.Logger.Error("token issuance failed, store unavailable", "error", err)
		return ctx.JSON(http.StatusServiceUnavailable, tokenError{Error: "temporarily_unavailable"})
	default:
		a.Logger.Error("token issuance failed", "error", err)
		return ctx.JSON(http.StatusInternalServerError, tokenError{Error: "server_error"})
	}
}

// DiscoveryShow serves a minimal OpenID Connect discovery document.
func (a *TokenController) DiscoveryShow(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, map[string]any{
		"issuer":                a.IssuerURL,
		"token_endpoint":        a.IssuerURL + "/connect/token",
		"grant_types_supported": []string{GrantTypeClientCredentials, GrantTypeAuthorizationCode},
		"scopes_supported":      a.Registry.ScopeNames(),
		"claims_supported": []string{
			ClaimTypeSubject, ClaimTypeName, ClaimTypeGivenName,
			ClaimTypeFamilyName, ClaimTypeEmail, ClaimTypeEmailVerified,
			ClaimTypePhoneNumber, ClaimTypeRole,
		},
	})
}

func splitScopes(scope string) []string {
	fields := strings.Fields(scope)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
