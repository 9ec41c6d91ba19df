package session

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts the handler to oauth2.TokenSource so the session can
// drive libraries built on the oauth2 ecosystem. The returned source shares
// the handler's single-flight refresh; no extra caching layer is needed.
func (h *Handler) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, handler: h}
}

type tokenSource struct {
	ctx     context.Context
	handler *Handler
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	accessToken, err := s.handler.AccessToken(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: accessToken.Token,
		TokenType:   accessToken.Type,
		Expiry:      accessToken.Expiry,
	}, nil
}
