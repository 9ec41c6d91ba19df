package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims are the standard claims of a platform-issued JWT. The platform does
// not publish a verification contract for third parties, so these are parsed
// without signature verification — use them for display and sanity checks,
// never for trust decisions.
type Claims struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// ParseClaims decodes the claims of a raw JWT without verifying it.
func ParseClaims(raw string) (Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return Claims{}, errors.Wrap(err, "[ParseClaims] parsing token")
	}

	var claims Claims
	if subject, err := parsed.Claims.GetSubject(); err == nil {
		claims.Subject = subject
	}
	if issuer, err := parsed.Claims.GetIssuer(); err == nil {
		claims.Issuer = issuer
	}
	if expiry, err := parsed.Claims.GetExpirationTime(); err == nil && expiry != nil {
		claims.ExpiresAt = expiry.Time
	}
	if issued, err := parsed.Claims.GetIssuedAt(); err == nil && issued != nil {
		claims.IssuedAt = issued.Time
	}
	return claims, nil
}

// Claims decodes the claims of the ID token issued alongside the access
// token.
func (t AccessToken) Claims() (Claims, error) {
	return ParseClaims(t.IDToken)
}
