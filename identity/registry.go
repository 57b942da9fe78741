package identity

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Grant types recognized by the issuer.
const (
	// GrantTypeClientCredentials is the machine to machine flow, no subject.
	GrantTypeClientCredentials = "client_credentials"
	// GrantTypeAuthorizationCode is the interactive flow, requires a user.
	GrantTypeAuthorizationCode = "authorization_code"
)

// IdentityResource is a claim-set bundle a client can request by name, e.g.
// requesting "profile" grants access to the profile claim types.
type IdentityResource struct {
	Name        string
	DisplayName string
	ClaimTypes  []string
}

// APIScope is a named permission granted to a client rather than user data
// disclosed to it.
type APIScope struct {
	Name        string
	DisplayName string
}

// Client is a registered application allowed to request tokens.
type Client struct {
	ClientID               string
	SecretHash             string
	AllowedGrantTypes      []string
	AllowedScopes          []string
	RedirectURIs           []string
	PostLogoutRedirectURIs []string
	AllowOfflineAccess     bool
	AccessTokenLifetime    time.Duration
}

// Validate runs structural validation on a client record.
func (c Client) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ClientID, validation.Required),
		validation.Field(&c.SecretHash, validation.Required),
		validation.Field(&c.AllowedGrantTypes, validation.Required),
		validation.Field(&c.AllowedScopes, validation.Required),
	)
}

// AllowsGrantType reports whether the client may use the grant type.
func (c Client) AllowsGrantType(grantType string) bool {
	for _, g := range c.AllowedGrantTypes {
		if g == grantType {
			return true
		}
	}
	return false
}

// AllowsScope reports whether a single scope is inside the client's grant.
func (c Client) AllowsScope(scope string) bool {
	for _, s := range c.AllowedScopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Registry is the static configuration describing identity resources, API
// scopes and registered clients. It is built once at process start and shared
// read-only across all request handling units; nothing mutates it afterwards.
type Registry struct {
	identityResources map[string]IdentityResource
	apiScopes         map[string]APIScope
	clients           map[string]Client

	// declaration order, kept so claim-type unions and discovery output
	// stay deterministic
	resourceOrder []string
	scopeOrder    []string
}

// NewRegistry builds an immutable registry from the given records.
func NewRegistry(resources []IdentityResource, scopes []APIScope, clients []Client) (*Registry, error) {
	r := &Registry{
		identityResources: make(map[string]IdentityResource, len(resources)),
		apiScopes:         make(map[string]APIScope, len(scopes)),
		clients:           make(map[string]Client, len(clients)),
	}

	for _, res := range resources {
		if err := validation.Validate(res.Name, validation.Required); err != nil {
			return nil, err
		}
		r.identityResources[res.Name] = res
		r.resourceOrder = append(r.resourceOrder, res.Name)
	}

	for _, s := range scopes {
		if err := validation.Validate(s.Name, validation.Required); err != nil {
			return nil, err
		}
		r.apiScopes[s.Name] = s
		r.scopeOrder = append(r.scopeOrder, s.Name)
	}

	for _, c := range clients {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		r.clients[c.ClientID] = c
	}

	return r, nil
}

// Client looks up a registered client by id.
func (r *Registry) Client(clientID string) (Client, bool) {
	c, ok := r.clients[clientID]
	return c, ok
}

// IdentityResourceByName looks up a claim bundle by scope name.
func (r *Registry) IdentityResourceByName(name string) (IdentityResource, bool) {
	res, ok := r.identityResources[name]
	return res, ok
}

// APIScopeByName looks up an API scope by name.
func (r *Registry) APIScopeByName(name string) (APIScope, bool) {
	s, ok := r.apiScopes[name]
	return s, ok
}

// ScopeNames returns every requestable scope name, identity resources first,
// in declaration order.
func (r *Registry) ScopeNames() []string {
	names := make([]string, 0, len(r.resourceOrder)+len(r.scopeOrder))
	names = append(names, r.resourceOrder...)
	names = append(names, r.scopeOrder...)
	return names
}

// IsAPIScope reports whether name is a registered API scope.
func (r *Registry) IsAPIScope(name string) bool {
	_, ok := r.apiScopes[name]
	return ok
}

// RequestedClaimTypes resolves granted scopes to the union of their declared
// claim types. Order follows resource declaration order, then each resource's
// claim list; duplicates collapse to their first occurrence so two resources
// declaring the same claim type do not double it.
func (r *Registry) RequestedClaimTypes(scopes []string) []string {
	granted := make(map[string]bool, len(scopes))
	for _, s := range scopes {
		granted[s] = true
	}

	seen := map[string]bool{}
	var types []string
	for _, name := range r.resourceOrder {
		if !granted[name] {
			continue
		}
		res, ok := r.IdentityResourceByName(name)
		if !ok {
			continue
		}
		for _, ct := range res.ClaimTypes {
			if seen[ct] {
				continue
			}
			seen[ct] = true
			types = append(types, ct)
		}
	}
	return types
}

// DefaultRegistry reproduces the stock GeekShopping configuration: the
// standard OpenID Connect identity resources, the geek_shopping umbrella
// scope plus granular read/write/delete scopes, a machine to machine client
// and the web front end client.
func DefaultRegistry() (*Registry, error) {
	clientSecret, err := HashSecret("my_super_secret")
	if err != nil {
		return nil, err
	}

	webSecret, err := HashSecret("geekshopping_web_secret")
	if err != nil {
		return nil, err
	}

	return NewRegistry(
		DefaultIdentityResources(),
		DefaultAPIScopes(),
		[]Client{
			{
				ClientID:          "client",
				SecretHash:        clientSecret,
				AllowedGrantTypes: []string{GrantTypeClientCredentials},
				AllowedScopes:     []string{"read", "write", "profile"},
			},
			{
				ClientID:               "geekshopping_web",
				SecretHash:             webSecret,
				AllowedGrantTypes:      []string{GrantTypeAuthorizationCode},
				AllowedScopes:          []string{"openid", "profile", "email", "geek_shopping"},
				RedirectURIs:           []string{"https://localhost:5005/signin-oidc"},
				PostLogoutRedirectURIs: []string{"https://localhost:5005/signout-callback-oidc"},
				AllowOfflineAccess:     true,
				AccessTokenLifetime:    3000 * time.Second,
			},
		},
	)
}

// DefaultIdentityResources returns the standard OIDC claim bundles.
func DefaultIdentityResources() []IdentityResource {
	return []IdentityResource{
		{
			Name:        "openid",
			DisplayName: "Your user identifier",
			ClaimTypes:  []string{ClaimTypeSubject},
		},
		{
			Name:        "profile",
			DisplayName: "User profile",
			ClaimTypes: []string{
				ClaimTypeName, ClaimTypeFamilyName, ClaimTypeGivenName,
				"middle_name", "nickname", "preferred_username", "profile",
				"picture", "website", "gender", "birthdate", "zoneinfo",
				"locale", "updated_at",
			},
		},
		{
			Name:        "email",
			DisplayName: "Your email address",
			ClaimTypes:  []string{ClaimTypeEmail, ClaimTypeEmailVerified},
		},
	}
}

// DefaultAPIScopes returns the GeekShopping permission scopes.
func DefaultAPIScopes() []APIScope {
	return []APIScope{
		{Name: ScopeGeekShopping, DisplayName: "GeekShopping Server"},
		{Name: "read", DisplayName: "Read data."},
		{Name: "write", DisplayName: "Write data."},
		{Name: "delete", DisplayName: "Delete data."},
	}
}
