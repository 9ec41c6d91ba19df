// Package token holds the access-token value object handed out by the
// authentication flow and helpers to inspect it.
package token

import (
	"fmt"
	"time"
)

// ExpiryMargin is subtracted from the server-reported lifetime so a token is
// treated as expired slightly before its literal expiry. This avoids racing
// the server clock with a token that is about to die mid-flight.
const ExpiryMargin = 30 * time.Second

// AccessToken is the bearer token for authenticated API calls, together with
// the OpenID token issued alongside it. It is immutable and replaced
// wholesale on refresh.
//
// Token and IDToken are credentials; never log them.
type AccessToken struct {
	Type    string    `json:"type"`
	Token   string    `json:"token"`
	IDToken string    `json:"idToken"`
	Expiry  time.Time `json:"expiry"`
}

// String redacts the token values so an AccessToken is safe to print.
func (t AccessToken) String() string {
	return fmt.Sprintf("AccessToken(%s ****, expires %s)", t.Type, t.Expiry.Format(time.RFC3339))
}

// Encoded returns the Authorization header value for this token.
func (t AccessToken) Encoded() string {
	return t.Type + " " + t.Token
}

// Expired reports whether the token is unusable at the given instant. The
// boundary is inclusive: a token expiring exactly now is expired.
func (t AccessToken) Expired(now time.Time) bool {
	return !now.Before(t.Expiry)
}

// IsZero reports whether no token has been set.
func (t AccessToken) IsZero() bool {
	return t.Token == "" && t.Expiry.IsZero()
}
