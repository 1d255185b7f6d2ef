// Package upstream drives the real authorization-code and refresh-token
// exchanges against the upstream identity provider (Google). The proxy
// impersonates an authorization server toward protocol clients, but toward
// Google it is an ordinary OAuth client built on golang.org/x/oauth2.
package upstream

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/adamgrzybowski/google-task-mcp/internal/config"
	"github.com/adamgrzybowski/google-task-mcp/internal/errors"
)

// googleIssuer is the OIDC issuer used for endpoint discovery.
const googleIssuer = "https://accounts.google.com"

// Client wraps the oauth2 configuration for the upstream provider. All of
// its calls are single network round trips with no retries: a rejected code
// or refresh token will not succeed on a second attempt.
type Client struct {
	oauthConfig *oauth2.Config
}

// New builds an upstream client from configuration, discovering the
// provider's endpoints via OIDC and falling back to the static Google
// endpoint when discovery fails (e.g. offline test environments).
func New(ctx context.Context, cfg config.Config) *Client {
	endpoint := google.Endpoint
	if provider, err := oidc.NewProvider(ctx, googleIssuer); err == nil {
		endpoint = provider.Endpoint()
	} else {
		log.Warn().Err(err).Msg("OIDC discovery failed, using static Google endpoint")
	}

	return NewWithEndpoint(cfg, endpoint)
}

// NewWithEndpoint builds an upstream client against an explicit endpoint.
// Tests point this at a local fake provider.
func NewWithEndpoint(cfg config.Config, endpoint oauth2.Endpoint) *Client {
	return &Client{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GetGoogleClientID(),
			ClientSecret: cfg.GetGoogleClientSecret(),
			Endpoint:     endpoint,
			RedirectURL:  cfg.GetBaseURL() + "/callback",
			Scopes:       cfg.GetScopes(),
		},
	}
}

// AuthCodeURL deterministically builds the upstream authorization URL for a
// pending flow. Offline access plus forced re-consent guarantees Google
// issues a refresh token even for a previously consented user; the state
// value is forwarded unchanged so the callback can find the pending record.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an upstream authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrUpstreamExchange, err)
	}
	return token, nil
}

// Refresh trades a refresh token for a new access token. If the provider
// does not rotate the refresh token, the old one is carried forward so the
// caller always gets complete refresh material back.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	source := c.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrUpstreamExchange, err)
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return token, nil
}

// TokenSource returns a self-refreshing source seeded with the given token
// material. It is the credential the downstream Tasks client is built from
// when refresh material is on file.
func (c *Client) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return c.oauthConfig.TokenSource(ctx, token)
}
