package riot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

var (
	// ErrUnauthorized is returned for 401 responses that carry no structured
	// error body. It usually means the session needs to be reauthenticated.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrResourceNotFound is returned when the API reports RESOURCE_NOT_FOUND.
	ErrResourceNotFound = errors.New("resource not found")
)

// Error is how the platform represents an error it encountered: a
// SCREAMING_SNAKE_CASE code plus a human-readable message.
type Error struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// TokenFailureError indicates a token/claims failure, most likely an expired
// access token.
type TokenFailureError struct {
	Message string
}

func (e *TokenFailureError) Error() string {
	return fmt.Sprintf("token failure: %s", e.Message)
}

// SessionExpiredError indicates the session has expired or otherwise been
// invalidated and a fresh login is required. MFARequired is true when
// reauthentication was attempted but blocked on a multifactor code.
type SessionExpiredError struct {
	MFARequired bool
}

func (e *SessionExpiredError) Error() string {
	if e.MFARequired {
		return "session expired: multifactor code required"
	}
	return "session expired"
}

// SessionResumptionError indicates the session could not be resumed for an
// unrecognized reason. The session is not necessarily expired; the cause may
// be transient and reauthenticating could still fix it.
type SessionResumptionError struct {
	Cause error
}

func (e *SessionResumptionError) Error() string {
	return fmt.Sprintf("session resumption failed: %v", e.Cause)
}

func (e *SessionResumptionError) Unwrap() error { return e.Cause }

// ScheduledDowntimeError indicates the service is down for maintenance.
type ScheduledDowntimeError struct {
	Message string
}

func (e *ScheduledDowntimeError) Error() string {
	return fmt.Sprintf("scheduled downtime: %s", e.Message)
}

// BadResponseError is returned for any non-200 response that does not map to
// a more specific error. If the API returned a valid error body it is passed
// on here.
type BadResponseError struct {
	StatusCode int
	Err        *Error
}

func (e *BadResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bad response code %d: %s (%s)", e.StatusCode, e.Err.Message, e.Err.ErrorCode)
	}
	return fmt.Sprintf("bad response code %d", e.StatusCode)
}

// RateLimitedError indicates too many requests were sent. If the server
// provided one, RetryAfter holds the number of seconds until the limit lifts.
type RateLimitedError struct {
	RetryAfter *int
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter != nil {
		return fmt.Sprintf("rate limited: retry after %ds", *e.RetryAfter)
	}
	return "rate limited"
}

// RecommendsReauth reports whether the given error suggests the caller should
// establish a fresh session.
func RecommendsReauth(err error) bool {
	var (
		tokenFailure *TokenFailureError
		expired      *SessionExpiredError
		resumption   *SessionResumptionError
	)
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.As(err, &tokenFailure),
		errors.As(err, &expired),
		errors.As(err, &resumption):
		return true
	default:
		return false
	}
}

// ClassifyResponse maps a non-200 response to a typed error. A structured
// error body takes precedence over the bare status code.
func ClassifyResponse(statusCode int, body []byte, header http.Header) error {
	var riotErr Error
	if err := json.Unmarshal(body, &riotErr); err == nil && riotErr.ErrorCode != "" {
		switch riotErr.ErrorCode {
		case "BAD_CLAIMS":
			return &TokenFailureError{Message: riotErr.Message}
		case "SCHEDULED_DOWNTIME":
			return &ScheduledDowntimeError{Message: riotErr.Message}
		case "RESOURCE_NOT_FOUND":
			return ErrResourceNotFound
		default:
			return &BadResponseError{StatusCode: statusCode, Err: &riotErr}
		}
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		var retryAfter *int
		if raw := header.Get("Retry-After"); raw != "" {
			if seconds, err := strconv.Atoi(raw); err == nil {
				retryAfter = &seconds
			}
		}
		return &RateLimitedError{RetryAfter: retryAfter}
	default:
		return &BadResponseError{StatusCode: statusCode}
	}
}
