// Package transport performs single request/response exchanges against the
// platform's HTTP APIs: JSON encoding, header injection, exchange logging.
// It knows nothing about authentication or retries; callers own both.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// Exchange records the observable outcome of one round-trip.
type Exchange struct {
	Method     string
	URL        string
	StatusCode int // 0 when the request never produced a response
	Err        error
	Duration   time.Duration
}

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body as JSON.
func (r *Response) Decode(out interface{}) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return errors.Wrap(err, "[Response.Decode] decoding response body")
	}
	return nil
}

// Client sends individual exchanges. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	log        zerolog.Logger
	observers  []func(Exchange)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-exchange debug lines.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithObserver registers a callback invoked after every exchange, including
// failed ones. Observers must not block.
func WithObserver(observe func(Exchange)) Option {
	return func(c *Client) { c.observers = append(c.observers, observe) }
}

// New creates a Client around the given http.Client. A nil httpClient gets a
// private client with a sane timeout.
func New(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	c := &Client{
		httpClient: httpClient,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send performs one exchange. A non-nil body is JSON-encoded. The configure
// hook, if given, runs on the built request before it is sent (header
// injection). Responses are returned regardless of status code; classifying
// non-200 responses is the caller's job.
//
// Header values set by configure may be credentials, so neither request nor
// response bodies or headers are ever logged here.
func (c *Client) Send(ctx context.Context, method, url string, body interface{}, configure func(*http.Request)) (*Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Client.Send] encoding request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Send] building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if configure != nil {
		configure(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.finish(Exchange{
			Method:   method,
			URL:      url,
			Err:      err,
			Duration: time.Since(start),
		})
		return nil, errors.Wrapf(err, "[Client.Send] %s %s", method, url)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.finish(Exchange{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        err,
			Duration:   time.Since(start),
		})
		return nil, errors.Wrapf(err, "[Client.Send] reading response of %s %s", method, url)
	}

	c.finish(Exchange{
		Method:     method,
		URL:        url,
		StatusCode: resp.StatusCode,
		Duration:   time.Since(start),
	})
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
	}, nil
}

func (c *Client) finish(exchange Exchange) {
	event := c.log.Debug().
		Str("method", exchange.Method).
		Str("url", exchange.URL).
		Dur("duration", exchange.Duration)
	if exchange.Err != nil {
		event.Err(exchange.Err).Msg("exchange failed")
	} else {
		event.Int("status", exchange.StatusCode).Msg("exchange complete")
	}

	for _, observe := range c.observers {
		observe(exchange)
	}
}
