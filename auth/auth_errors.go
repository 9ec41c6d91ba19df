package auth

import "errors"

var (
	// ErrMissingResponseBody indicates the server sent a response type that
	// promises a payload (token redirect or multifactor challenge) without
	// actually carrying one. This is a protocol violation, not an auth
	// failure.
	ErrMissingResponseBody = errors.New("auth exchange missing response body")
	// ErrMalformedAccessToken indicates the redirect payload of a successful
	// login was missing one of token_type, access_token, id_token or
	// expires_in.
	ErrMalformedAccessToken = errors.New("malformed access token payload")
	// ErrUnreachable indicates the authentication servers answered with
	// something that is not theirs, typically because a VPN or network
	// filter intercepted the request.
	ErrUnreachable = errors.New("authentication servers could not be reached")
)

// messageOverrides maps known server error strings to friendlier wording.
var messageOverrides = map[string]string{
	"auth_failure": "invalid username or password",
}

// AuthenticationError is a hard authentication failure reported by the
// server, e.g. a wrong username or password. Message carries the
// server-provided string untransformed.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if friendly, ok := messageOverrides[e.Message]; ok {
		return friendly
	}
	return e.Message
}

// UnexpectedResponseError is an explicit error response from the server that
// the login protocol has no defined handling for.
type UnexpectedResponseError struct {
	Message string
}

func (e *UnexpectedResponseError) Error() string {
	if e.Message == "" {
		return "unexpected auth error with no message"
	}
	return "unexpected auth error: " + e.Message
}
