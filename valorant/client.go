// Package valorant is the authenticated client for the game's own APIs. It
// pulls fresh access tokens from a session handler, attaches the required
// identity headers to every request, and translates failure responses into
// the error types of the riot package.
package valorant

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/valorantgo/valorant/internal/transport"
	"github.com/valorantgo/valorant/riot"
	"github.com/valorantgo/valorant/session"
)

const (
	headerEntitlements   = "X-Riot-Entitlements-JWT"
	headerClientVersion  = "X-Riot-ClientVersion"
	headerClientPlatform = "X-Riot-ClientPlatform"
)

// BaseURLs are the hosts a client talks to for one location.
type BaseURLs struct {
	// GameAPI serves per-player endpoints (pd).
	GameAPI string
	// LiveGame serves in-progress match endpoints (glz).
	LiveGame string
	// Shared serves cross-player data like the region's game configuration.
	Shared string
}

// DefaultBaseURLs returns the production hosts for a location.
func DefaultBaseURLs(location riot.Location) BaseURLs {
	return BaseURLs{
		GameAPI:  fmt.Sprintf("https://pd.%s.a.pvp.net", location.Shard),
		LiveGame: fmt.Sprintf("https://glz-%s-1.%s.a.pvp.net", location.Region, location.Shard),
		Shared:   fmt.Sprintf("https://shared.%s.a.pvp.net", location.Shard),
	}
}

// Client calls the game APIs on behalf of one session. It is safe for
// concurrent use.
type Client struct {
	location      riot.Location
	urls          BaseURLs
	urlsFor       func(riot.Location) BaseURLs
	clientVersion string
	platform      riot.PlatformInfo
	userID        uuid.UUID
	sessions      *session.Handler
	transport     *transport.Client
	log           zerolog.Logger
	exchanges     *ExchangeLog

	httpClient       *http.Client
	exchangeCapacity int
}

// Option configures a Client.
type Option func(*Client)

// WithClientVersion sets the game client version sent with every request.
// Some endpoints reject requests from versions they consider outdated.
func WithClientVersion(version string) Option {
	return func(c *Client) { c.clientVersion = version }
}

// WithPlatform overrides the platform identity sent with every request.
func WithPlatform(platform riot.PlatformInfo) Option {
	return func(c *Client) { c.platform = platform }
}

// WithBaseURLs overrides how hosts are derived from a location (tests).
func WithBaseURLs(urlsFor func(riot.Location) BaseURLs) Option {
	return func(c *Client) { c.urlsFor = urlsFor }
}

// WithHTTPClient bases the client's transport on the given http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets the logger for exchange debug output.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithExchangeCapacity sets how many exchanges the client remembers.
func WithExchangeCapacity(capacity int) Option {
	return func(c *Client) { c.exchangeCapacity = capacity }
}

// New creates a client for the session owned by the given handler. The
// client's location and user follow the session.
func New(sessions *session.Handler, opts ...Option) *Client {
	current := sessions.Current()
	c := &Client{
		location: current.Location,
		urlsFor:  DefaultBaseURLs,
		platform: riot.DefaultPlatform,
		userID:   current.UserID,
		sessions: sessions,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.urls = c.urlsFor(c.location)
	c.exchanges = NewExchangeLog(c.exchangeCapacity)
	c.transport = transport.New(c.httpClient,
		transport.WithLogger(c.log),
		transport.WithObserver(c.exchanges.Record),
	)
	return c
}

// In returns a client addressing another location's hosts. The session,
// transport and exchange log are shared with the receiver; only the routing
// changes. Useful for accounts whose data lives on a different shard than
// their affinity suggests.
func (c *Client) In(location riot.Location) *Client {
	clone := *c
	clone.location = location
	clone.urls = c.urlsFor(location)
	return &clone
}

// Location returns the location the client addresses.
func (c *Client) Location() riot.Location {
	return c.location
}

// UserID returns the account the session belongs to.
func (c *Client) UserID() uuid.UUID {
	return c.userID
}

// Session returns a snapshot of the session the client operates on.
func (c *Client) Session() session.Session {
	return c.sessions.Current()
}

// SetReauthPolicy changes what refreshes may do on the client's behalf.
func (c *Client) SetReauthPolicy(policy session.ReauthPolicy) {
	c.sessions.SetReauthPolicy(policy)
}

// Exchanges returns the client's exchange log.
func (c *Client) Exchanges() *ExchangeLog {
	return c.exchanges
}

// send performs one authenticated exchange. The access token is fetched
// from the session handler first, which refreshes it when needed. Non-200
// responses become riot errors; ones that recommend re-authentication also
// flag the session as expired.
func (c *Client) send(ctx context.Context, method, url string, body, out interface{}) error {
	accessToken, err := c.sessions.AccessToken(ctx)
	if err != nil {
		return err
	}
	entitlements := c.sessions.EntitlementsToken()

	response, err := c.transport.Send(ctx, method, url, body, func(req *http.Request) {
		req.Header.Set("Authorization", accessToken.Encoded())
		req.Header.Set(headerEntitlements, entitlements)
		if c.clientVersion != "" {
			req.Header.Set(headerClientVersion, c.clientVersion)
		}
		req.Header.Set(headerClientPlatform, c.platform.Encoded())
	})
	if err != nil {
		return err
	}
	if response.StatusCode != http.StatusOK {
		apiErr := riot.ClassifyResponse(response.StatusCode, response.Body, response.Header)
		if riot.RecommendsReauth(apiErr) {
			c.sessions.MarkExpired()
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return response.Decode(out)
}
