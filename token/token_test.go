package token_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/valorantgo/valorant/token"
)

func TestAccessTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expiry  time.Time
		expired bool
	}{
		{name: "future expiry is valid", expiry: now.Add(time.Minute), expired: false},
		{name: "expiry exactly now is expired", expiry: now, expired: true},
		{name: "past expiry is expired", expiry: now.Add(-time.Second), expired: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tok := token.AccessToken{Type: "Bearer", Token: "x", Expiry: tc.expiry}
			require.Equal(t, tc.expired, tok.Expired(now))
		})
	}
}

func TestAccessTokenEncoded(t *testing.T) {
	tok := token.AccessToken{Type: "Bearer", Token: "abc123"}
	require.Equal(t, "Bearer abc123", tok.Encoded())
}

func TestAccessTokenStringRedactsSecrets(t *testing.T) {
	tok := token.AccessToken{Type: "Bearer", Token: "abc123", IDToken: "id456", Expiry: time.Now()}
	printed := fmt.Sprint(tok)
	require.NotContains(t, printed, "abc123")
	require.NotContains(t, printed, "id456")
	require.Contains(t, printed, "Bearer")
}

func TestAccessTokenIsZero(t *testing.T) {
	require.True(t, token.AccessToken{}.IsZero())
	require.False(t, token.AccessToken{Token: "x"}.IsZero())
}

func TestParseClaims(t *testing.T) {
	issued := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	expiry := issued.Add(time.Hour)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "3fa8598d-066e-5bdb-998c-74c015c5dba5",
		"iss": "https://auth.example.com",
		"iat": issued.Unix(),
		"exp": expiry.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	claims, err := token.ParseClaims(raw)
	require.NoError(t, err)
	require.Equal(t, "3fa8598d-066e-5bdb-998c-74c015c5dba5", claims.Subject)
	require.Equal(t, "https://auth.example.com", claims.Issuer)
	require.Equal(t, expiry.Unix(), claims.ExpiresAt.Unix())
	require.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
}

func TestParseClaimsRejectsGarbage(t *testing.T) {
	_, err := token.ParseClaims("not-a-jwt")
	require.Error(t, err)
}
