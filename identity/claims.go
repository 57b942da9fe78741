package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Well-known claim types used by the assembler and issuer.
const (
	ClaimTypeSubject       = "sub"
	ClaimTypeName          = "name"
	ClaimTypeGivenName     = "given_name"
	ClaimTypeFamilyName    = "family_name"
	ClaimTypeEmail         = "email"
	ClaimTypeEmailVerified = "email_verified"
	ClaimTypePhoneNumber   = "phone_number"
	ClaimTypeRole          = "role"
	ClaimTypeScope         = "scope"
)

// ScopeGeekShopping is the umbrella API scope the product API requires.
const ScopeGeekShopping = "geek_shopping"

// Claim is a single (type, value) fact about a subject. Issued claim lists
// are ordered and may repeat a type, e.g. one role claim per membership;
// consumers must not assume uniqueness per type.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// AccessClaims is the JWT payload for issued tokens. The registered claims
// carry issuer, audience, subject and expiry; Scope carries granted scope
// names for resource-server policy checks; Claims preserves the full ordered
// issued-claim list, duplicates included.
type AccessClaims struct {
	jwt.RegisteredClaims
	Scope  []string `json:"scope,omitempty"`
	Claims []Claim  `json:"claims,omitempty"`
}

// Subject returns the subject claim, empty for machine to machine tokens.
func (c *AccessClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Scopes returns the granted scope names.
func (c *AccessClaims) Scopes() []string {
	return c.Scope
}

// HasScope reports whether the token carries the scope.
func (c *AccessClaims) HasScope(scope string) bool {
	for _, s := range c.Scope {
		if s == scope {
			return true
		}
	}
	return false
}

// ClaimsOfType returns every issued claim of the given type, in issue order.
func (c *AccessClaims) ClaimsOfType(claimType string) []Claim {
	var out []Claim
	for _, claim := range c.Claims {
		if claim.Type == claimType {
			out = append(out, claim)
		}
	}
	return out
}

// Expires returns the expiration time.
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}
