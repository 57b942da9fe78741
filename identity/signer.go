package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// HS256Signer signs access tokens with a shared HMAC key. This is the dev
// signing credential; production injects a Signer backed by a managed key.
type HS256Signer struct {
	key []byte
}

var _ Signer = (*HS256Signer)(nil)

func NewHS256Signer(key []byte) *HS256Signer {
	return &HS256Signer{key: key}
}

// Sign signs the claims using HS256.
func (s *HS256Signer) Sign(claims *AccessClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// HS256Verifier validates tokens signed by HS256Signer, checking signature
// and issuer.
type HS256Verifier struct {
	key    []byte
	issuer string
	logger Logger
}

var _ TokenVerifier = (*HS256Verifier)(nil)

func NewHS256Verifier(key []byte, issuer string) *HS256Verifier {
	return &HS256Verifier{key: key, issuer: issuer, logger: defLogger{}}
}

// Verify parses and validates a raw token, returning structured claims.
func (v *HS256Verifier) Verify(raw string) (*AccessClaims, error) {
	opts := make([]jwt.ParserOption, 0, 1)
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			v.logger.Error("verify: unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.key, nil
	}, opts...)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "token verification failed").
			WithCode(goerrors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, goerrors.New("unable to decode token claims", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	return claims, nil
}
