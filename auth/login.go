package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/valorantgo/valorant/riot"
	"github.com/valorantgo/valorant/token"
)

// Wire values of the auth response "type" field. The enumeration is
// exhaustive: the server answers with nothing else.
const (
	responseTypeAuth        = "auth"
	responseTypeResponse    = "response"
	responseTypeError       = "error"
	responseTypeMultifactor = "multifactor"
)

type probeRequest struct {
	ClientID     string `json:"client_id"`
	ResponseType string `json:"response_type"`
	RedirectURI  string `json:"redirect_uri"`
	Nonce        string `json:"nonce"`
	Scope        string `json:"scope"`
}

func defaultProbe() probeRequest {
	return probeRequest{
		ClientID:     "play-valorant-web-prod",
		ResponseType: "token id_token",
		RedirectURI:  "https://playvalorant.com/",
		Nonce:        "1",
		Scope:        "account openid",
	}
}

type credentialsRequest struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// The multifactor round is the one message the service expects with
// camelCase keys.
type multifactorRequest struct {
	Type           string `json:"type"`
	Code           string `json:"code"`
	RememberDevice bool   `json:"rememberDevice"`
}

type authResponse struct {
	Type        string                `json:"type"`
	Error       string                `json:"error,omitempty"`
	Response    *redirectPayload      `json:"response,omitempty"`
	Multifactor *MultifactorChallenge `json:"multifactor,omitempty"`
}

type redirectPayload struct {
	Mode       string `json:"mode"`
	Parameters struct {
		URI string `json:"uri"`
	} `json:"parameters"`
}

// FetchAccessToken drives the login protocol to a fresh access token.
//
// It starts with a stateless probe. If the server reports the session as
// already authenticated, the token is extracted straight from the probe
// response — cookie-based resumption, no credentials involved. Otherwise a
// credential login runs if the behavior permits one, looping through
// multifactor rounds as demanded by the server.
//
// The client's cookie jar is mutated as responses are processed; on success
// it holds the resumption material for the next refresh.
func (c *Client) FetchAccessToken(ctx context.Context, behavior LoginBehavior) (token.AccessToken, error) {
	probe, err := c.sendProbe(ctx)
	if err != nil {
		return token.AccessToken{}, err
	}

	response := probe
	if probe.Type == responseTypeAuth {
		if behavior.credentials == nil {
			return token.AccessToken{}, &riot.SessionExpiredError{MFARequired: false}
		}
		if probe.Error != "" {
			// The server considers the existing session broken. Start from a
			// clean jar rather than submitting credentials over stale state.
			c.log.Debug().Str("error", probe.Error).Msg("discarding cookies, session broken")
			c.jar.Clear()
			if _, err := c.sendProbe(ctx); err != nil {
				return token.AccessToken{}, err
			}
		}
		response, err = c.sendAuthMessage(ctx, credentialsRequest{
			Type:     responseTypeAuth,
			Username: behavior.credentials.Username,
			Password: behavior.credentials.Password,
			Remember: true,
		})
		if err != nil {
			return token.AccessToken{}, err
		}
	}

	return c.settleAuthResponse(ctx, response, behavior)
}

// settleAuthResponse walks the remaining protocol rounds until the server
// either hands out a token or rejects the login.
func (c *Client) settleAuthResponse(ctx context.Context, response *authResponse, behavior LoginBehavior) (token.AccessToken, error) {
	for {
		switch response.Type {
		case responseTypeAuth:
			message := response.Error
			if message == "" {
				message = "<no message given>"
			}
			return token.AccessToken{}, &AuthenticationError{Message: message}

		case responseTypeError:
			return token.AccessToken{}, &UnexpectedResponseError{Message: response.Error}

		case responseTypeMultifactor:
			if behavior.credentials == nil {
				return token.AccessToken{}, &riot.SessionExpiredError{MFARequired: false}
			}
			if behavior.multifactor == nil {
				return token.AccessToken{}, &riot.SessionExpiredError{MFARequired: true}
			}
			if response.Multifactor == nil {
				return token.AccessToken{}, errors.Wrap(ErrMissingResponseBody, "[FetchAccessToken] multifactor round")
			}
			// The server reports error "multifactor_attempt_failed" on a
			// wrong code and asks again; the handler owns the retry loop.
			code, err := behavior.multifactor(ctx, *response.Multifactor)
			if err != nil {
				return token.AccessToken{}, err
			}
			response, err = c.sendAuthMessage(ctx, multifactorRequest{
				Type:           responseTypeMultifactor,
				Code:           code,
				RememberDevice: true,
			})
			if err != nil {
				return token.AccessToken{}, err
			}

		case responseTypeResponse:
			if response.Response == nil {
				return token.AccessToken{}, errors.Wrap(ErrMissingResponseBody, "[FetchAccessToken] token round")
			}
			return extractAccessToken(response.Response.Parameters.URI, c.now())

		default:
			return token.AccessToken{}, &UnexpectedResponseError{Message: "unknown response type " + response.Type}
		}
	}
}

func (c *Client) sendProbe(ctx context.Context) (*authResponse, error) {
	var response authResponse
	err := c.exchange(ctx, http.MethodPost, c.endpoints.Auth+"/api/v1/authorization", defaultProbe(), &response)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) sendAuthMessage(ctx context.Context, message interface{}) (*authResponse, error) {
	var response authResponse
	err := c.exchange(ctx, http.MethodPut, c.endpoints.Auth+"/api/v1/authorization", message, &response)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// extractAccessToken parses the fragment of the redirect-style URI carried by
// a successful login response. All four fields are required; a partial token
// is never produced.
func extractAccessToken(uri string, now time.Time) (token.AccessToken, error) {
	_, fragment, found := strings.Cut(uri, "#")
	if !found {
		return token.AccessToken{}, errors.Wrap(ErrMalformedAccessToken, "[extractAccessToken] no fragment")
	}

	values := make(map[string]string)
	for _, pair := range strings.Split(fragment, "&") {
		if key, value, ok := strings.Cut(pair, "="); ok {
			values[key] = value
		}
	}

	tokenType := values["token_type"]
	accessToken := values["access_token"]
	idToken := values["id_token"]
	expiresIn, convErr := strconv.Atoi(values["expires_in"])
	if tokenType == "" || accessToken == "" || idToken == "" || convErr != nil || expiresIn <= 0 {
		return token.AccessToken{}, errors.Wrap(ErrMalformedAccessToken, "[extractAccessToken] missing fields")
	}

	return token.AccessToken{
		Type:    tokenType,
		Token:   accessToken,
		IDToken: idToken,
		Expiry:  now.Add(time.Duration(expiresIn)*time.Second - token.ExpiryMargin),
	}, nil
}
