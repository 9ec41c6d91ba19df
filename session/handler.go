package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/valorantgo/valorant/auth"
	"github.com/valorantgo/valorant/riot"
	"github.com/valorantgo/valorant/token"
)

// ReauthPolicy decides what a token refresh may do when cookie resumption
// alone is not enough.
type ReauthPolicy struct {
	mode        reauthMode
	multifactor auth.MultifactorHandler
}

type reauthMode int

const (
	modeNoReauth reauthMode = iota
	modeFailOnMFA
	modeFullReauth
)

// NoReauth forbids refreshing altogether. An expired token fails immediately
// with riot.SessionExpiredError without touching the network. Use this where
// blocking on a login round-trip is unacceptable.
func NoReauth() ReauthPolicy {
	return ReauthPolicy{mode: modeNoReauth}
}

// FailOnMFA allows cookie resumption and a credential re-login, but fails
// with riot.SessionExpiredError{MFARequired: true} if the server demands a
// multifactor code. Use this where nobody is around to type one in.
func FailOnMFA() ReauthPolicy {
	return ReauthPolicy{mode: modeFailOnMFA}
}

// FullReauth allows the complete login flow, delegating multifactor
// challenges to the given handler.
func FullReauth(multifactor auth.MultifactorHandler) ReauthPolicy {
	return ReauthPolicy{mode: modeFullReauth, multifactor: multifactor}
}

func (p ReauthPolicy) behavior(credentials *auth.Credentials) auth.LoginBehavior {
	if credentials == nil {
		return auth.ResumeOnly()
	}
	switch p.mode {
	case modeFullReauth:
		return auth.AllowLogin(*credentials, p.multifactor)
	default:
		return auth.AllowLogin(*credentials, nil)
	}
}

// UpdateFunc observes every change to the session's state. Implementations
// typically persist the new snapshot. The callback runs outside the
// handler's lock and must be safe for concurrent use.
type UpdateFunc func(Session)

// Handler owns a session and keeps its access token fresh. Any number of
// goroutines may request the token concurrently; when it has expired,
// exactly one login flow runs and everyone waits for its outcome. A waiter
// whose context is canceled stops waiting, but the refresh itself keeps
// running so the remaining waiters still get a token.
type Handler struct {
	mu      sync.Mutex
	session Session

	policy   ReauthPolicy
	flight   singleflight.Group
	onUpdate UpdateFunc
	authOpts []auth.Option
	log      zerolog.Logger
	now      func() time.Time
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithUpdateFunc registers a callback invoked after every session change,
// including a refresh failure that marks the session expired.
func WithUpdateFunc(fn UpdateFunc) HandlerOption {
	return func(h *Handler) { h.onUpdate = fn }
}

// WithLogger sets the handler's logger.
func WithLogger(log zerolog.Logger) HandlerOption {
	return func(h *Handler) { h.log = log }
}

// WithHandlerAuthOptions passes additional options to the login clients the
// handler creates for refreshes.
func WithHandlerAuthOptions(opts ...auth.Option) HandlerOption {
	return func(h *Handler) { h.authOpts = append(h.authOpts, opts...) }
}

// WithClock overrides the clock used for expiry checks (tests).
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) { h.now = now }
}

// NewHandler wraps an established or restored session.
func NewHandler(session Session, policy ReauthPolicy, opts ...HandlerOption) *Handler {
	h := &Handler{
		session: session,
		policy:  policy,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Current returns a snapshot of the session as it is right now.
func (h *Handler) Current() Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session
}

// EntitlementsToken returns the session's entitlements token. It is fetched
// once at establishment and does not rotate with the access token.
func (h *Handler) EntitlementsToken() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session.EntitlementsToken
}

// SetReauthPolicy replaces the handler's refresh policy. It applies to
// refreshes started afterwards; an in-flight refresh is unaffected.
func (h *Handler) SetReauthPolicy(policy ReauthPolicy) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.policy = policy
}

// MarkExpired flags the session as needing user interaction, e.g. after a
// request failed with an error that recommends re-authentication.
func (h *Handler) MarkExpired() {
	h.mu.Lock()
	h.session.HasExpired = true
	snapshot := h.session
	h.mu.Unlock()
	h.notify(snapshot)
}

// AccessToken returns a currently-valid access token, refreshing first if
// the stored one has expired. Concurrent callers share a single refresh.
func (h *Handler) AccessToken(ctx context.Context) (token.AccessToken, error) {
	h.mu.Lock()
	current := h.session.AccessToken
	credentials := h.session.Credentials
	policy := h.policy
	now := h.now()
	h.mu.Unlock()

	if !current.IsZero() && !current.Expired(now) {
		return current, nil
	}

	if policy.mode == modeNoReauth {
		h.MarkExpired()
		return token.AccessToken{}, &riot.SessionExpiredError{}
	}

	session, err := h.refresh(ctx, policy.behavior(credentials), false)
	if err != nil {
		return token.AccessToken{}, err
	}
	return session.AccessToken, nil
}

// Refresh forces a login round regardless of the current token's validity
// and returns the resulting session. The multifactor handler overrides the
// policy's for this one refresh; it may be nil.
func (h *Handler) Refresh(ctx context.Context, multifactor auth.MultifactorHandler) (Session, error) {
	behavior := auth.ResumeOnly()
	if credentials := h.credentials(); credentials != nil {
		behavior = auth.AllowLogin(*credentials, multifactor)
	}
	return h.refresh(ctx, behavior, true)
}

func (h *Handler) credentials() *auth.Credentials {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session.Credentials
}

// refresh funnels every concurrent caller into one in-flight login. The
// flight runs on a context detached from the initiating caller so that one
// impatient caller cannot abort a refresh others are waiting on.
func (h *Handler) refresh(ctx context.Context, behavior auth.LoginBehavior, forced bool) (Session, error) {
	results := h.flight.DoChan("refresh", func() (interface{}, error) {
		return h.doRefresh(context.WithoutCancel(ctx), behavior, forced)
	})

	select {
	case <-ctx.Done():
		return Session{}, ctx.Err()
	case result := <-results:
		if result.Err != nil {
			return Session{}, result.Err
		}
		return result.Val.(Session), nil
	}
}

func (h *Handler) doRefresh(ctx context.Context, behavior auth.LoginBehavior, forced bool) (Session, error) {
	h.mu.Lock()
	if !forced && h.session.Valid(h.now()) {
		// another flight refreshed while this caller was queueing
		snapshot := h.session
		h.mu.Unlock()
		return snapshot, nil
	}
	cookies := h.session.Cookies
	h.mu.Unlock()

	authOpts := append([]auth.Option{
		auth.WithLogger(h.log),
		auth.WithCookies(cookies),
	}, h.authOpts...)
	client := auth.NewClient(authOpts...)

	h.log.Debug().Msg("refreshing access token")
	accessToken, err := client.FetchAccessToken(ctx, behavior)
	if err != nil {
		var expired *riot.SessionExpiredError
		if errors.As(err, &expired) {
			h.MarkExpired()
			return Session{}, err
		}
		return Session{}, &riot.SessionResumptionError{Cause: err}
	}

	h.mu.Lock()
	h.session.AccessToken = accessToken
	h.session.Cookies = client.Cookies()
	h.session.HasExpired = false
	snapshot := h.session
	h.mu.Unlock()
	h.notify(snapshot)
	return snapshot, nil
}

func (h *Handler) notify(snapshot Session) {
	if h.onUpdate != nil {
		h.onUpdate(snapshot)
	}
}
