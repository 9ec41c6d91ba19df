// Package auth drives the platform's multi-round login protocol: cookie
// probe, credential submission, an optional multifactor loop, and extraction
// of the access token from the final redirect payload.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/valorantgo/valorant/internal/transport"
	"github.com/valorantgo/valorant/riot"
)

// Endpoints are the hosts the login protocol talks to.
type Endpoints struct {
	// Auth serves /api/v1/authorization and /userinfo.
	Auth string
	// Entitlements serves /token/v1.
	Entitlements string
	// Affinity serves the region-affinity lookup.
	Affinity string
}

// DefaultEndpoints returns the production hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Auth:         "https://auth.riotgames.com",
		Entitlements: "https://entitlements.auth.riotgames.com/api",
		Affinity:     "https://riot-geo.pas.si.riotgames.com",
	}
}

const defaultTimeout = 30 * time.Second

// Client executes the login protocol against the authentication service. It
// owns a cookie jar that the protocol mutates as responses come in; the jar's
// contents are the session's resumption material.
//
// A Client is not safe for concurrent use; the session layer guarantees at
// most one login runs at a time.
type Client struct {
	endpoints  Endpoints
	jar        *Jar
	transport  *transport.Client
	baseHTTP   *http.Client
	log        zerolog.Logger
	now        func() time.Time
	authHeader string
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoints overrides the hosts the client talks to.
func WithEndpoints(endpoints Endpoints) Option {
	return func(c *Client) { c.endpoints = endpoints }
}

// WithHTTPClient bases the client's transport on the given http.Client. The
// client is copied; its cookie jar is replaced with the login jar.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.baseHTTP = httpClient }
}

// WithLogger sets the logger for exchange debug output.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithCookies seeds the jar with cookies from a previous session.
func WithCookies(cookies []Cookie) Option {
	return func(c *Client) { c.jar.Import(cookies) }
}

// WithClock overrides the clock used to compute token expiry (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a login client with a fresh cookie jar.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoints: DefaultEndpoints(),
		jar:       NewJar(),
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	httpClient := http.Client{Timeout: defaultTimeout}
	if c.baseHTTP != nil {
		httpClient = *c.baseHTTP
	}
	httpClient.Jar = c.jar

	c.transport = transport.New(&httpClient, transport.WithLogger(c.log))
	return c
}

// Cookies exports the jar's current contents.
func (c *Client) Cookies() []Cookie {
	return c.jar.Export()
}

// SetAccessToken makes subsequent exchanges carry the token in their
// Authorization header. Needed for the entitlement, userinfo and affinity
// lookups that follow a successful login.
func (c *Client) SetAccessToken(encoded string) {
	c.authHeader = encoded
}

// EntitlementsToken fetches the secondary credential required alongside the
// access token by most downstream API calls.
func (c *Client) EntitlementsToken(ctx context.Context) (string, error) {
	var response struct {
		EntitlementsToken string `json:"entitlements_token"`
	}
	err := c.exchange(ctx, http.MethodPost, c.endpoints.Entitlements+"/token/v1", struct{}{}, &response)
	if err != nil {
		return "", err
	}
	return response.EntitlementsToken, nil
}

// UserID fetches the identifier of the account that owns the session.
func (c *Client) UserID(ctx context.Context) (uuid.UUID, error) {
	var response struct {
		Sub uuid.UUID `json:"sub"`
	}
	err := c.exchange(ctx, http.MethodGet, c.endpoints.Auth+"/userinfo", nil, &response)
	if err != nil {
		return uuid.UUID{}, err
	}
	return response.Sub, nil
}

// Location resolves the server-assigned region affinity for the session.
func (c *Client) Location(ctx context.Context, idToken string) (riot.Location, error) {
	request := struct {
		IDToken string `json:"id_token"`
	}{IDToken: idToken}
	var response struct {
		Token      string `json:"token"`
		Affinities struct {
			Live string `json:"live"`
		} `json:"affinities"`
	}
	err := c.exchange(ctx, http.MethodPut, c.endpoints.Affinity+"/pas/v1/product/valorant", request, &response)
	if err != nil {
		return riot.Location{}, err
	}
	return riot.LocationForRegion(response.Affinities.Live)
}

// exchange sends one round-trip and decodes the JSON response. The auth
// service reports failures inside its payloads, so responses are decoded
// regardless of status code; an undecodable 403 means the request never
// reached the real servers.
func (c *Client) exchange(ctx context.Context, method, url string, body, out interface{}) error {
	response, err := c.transport.Send(ctx, method, url, body, func(req *http.Request) {
		if c.authHeader != "" {
			req.Header.Set("Authorization", c.authHeader)
		}
	})
	if err != nil {
		return err
	}
	if err := response.Decode(out); err != nil {
		if response.StatusCode == http.StatusForbidden {
			return ErrUnreachable
		}
		return err
	}
	return nil
}
