// Package session maintains an authenticated platform session: it
// establishes one from credentials, keeps its access token fresh, and
// persists it across processes.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/valorantgo/valorant/auth"
	"github.com/valorantgo/valorant/riot"
	"github.com/valorantgo/valorant/token"
)

// Session is the complete authenticated state of one account. It is a plain
// value: safe to copy, marshal and persist. All fields update together when
// the session is established; a refresh replaces only the access token and
// the cookies.
//
// A persisted Session includes the account password, so at-rest encryption
// (SealedCodec) or an OS keyring (KeyringStore) is strongly preferred over a
// plain file.
type Session struct {
	Credentials       *auth.Credentials `json:"credentials,omitempty"`
	AccessToken       token.AccessToken `json:"accessToken"`
	EntitlementsToken string            `json:"entitlementsToken"`
	Cookies           []auth.Cookie     `json:"cookies"`
	Location          riot.Location     `json:"location"`
	UserID            uuid.UUID         `json:"userID"`

	// HasExpired records that the last refresh attempt needed user
	// interaction. It is sticky until a refresh succeeds, so callers can
	// surface a re-login prompt even after restoring the session from disk.
	HasExpired bool `json:"hasExpired,omitempty"`
}

// Valid reports whether the session's access token is still usable at the
// given instant.
func (s Session) Valid(now time.Time) bool {
	return !s.AccessToken.IsZero() && !s.AccessToken.Expired(now)
}

// EstablishOption configures Establish.
type EstablishOption func(*establishConfig)

type establishConfig struct {
	cookies  []auth.Cookie
	authOpts []auth.Option
	log      zerolog.Logger
}

// WithCookiesFrom seeds the login with cookies from a previous session so
// resumption is attempted before a fresh credential login.
func WithCookiesFrom(cookies []auth.Cookie) EstablishOption {
	return func(cfg *establishConfig) { cfg.cookies = cookies }
}

// WithEstablishLogger sets the logger used during establishment.
func WithEstablishLogger(log zerolog.Logger) EstablishOption {
	return func(cfg *establishConfig) { cfg.log = log }
}

// WithAuthOptions passes additional options to the underlying login client.
func WithAuthOptions(opts ...auth.Option) EstablishOption {
	return func(cfg *establishConfig) { cfg.authOpts = append(cfg.authOpts, opts...) }
}

// Establish performs a full login and assembles a complete session: access
// token, entitlements token, user ID and region affinity. The three lookups
// after the login are independent and run concurrently.
//
// The multifactor handler may be nil if the account has no multifactor
// authentication enabled.
func Establish(ctx context.Context, credentials auth.Credentials, multifactor auth.MultifactorHandler, opts ...EstablishOption) (*Session, error) {
	cfg := establishConfig{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	authOpts := append([]auth.Option{
		auth.WithLogger(cfg.log),
		auth.WithCookies(cfg.cookies),
	}, cfg.authOpts...)
	client := auth.NewClient(authOpts...)

	accessToken, err := client.FetchAccessToken(ctx, auth.AllowLogin(credentials, multifactor))
	if err != nil {
		return nil, err
	}
	client.SetAccessToken(accessToken.Encoded())

	session := &Session{
		Credentials: &credentials,
		AccessToken: accessToken,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		entitlements, err := client.EntitlementsToken(groupCtx)
		session.EntitlementsToken = entitlements
		return err
	})
	group.Go(func() error {
		userID, err := client.UserID(groupCtx)
		session.UserID = userID
		return err
	})
	group.Go(func() error {
		location, err := client.Location(groupCtx, accessToken.IDToken)
		session.Location = location
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	session.Cookies = client.Cookies()
	return session, nil
}
