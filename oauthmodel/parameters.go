package oauthmodel

import (
	"net/http"

	"github.com/adamgrzybowski/google-task-mcp/internal/errors"
)

// AuthorizationParameters holds the query parameters of a client's
// /authorize request. redirect_uri and state are mandatory; client_id is
// optional and only checked when it names a registered client. The PKCE
// parameters are captured for storage but are not currently verified at
// token-exchange time (known gap, see authflow.PendingAuthorization).
type AuthorizationParameters struct {
	ClientID            string
	RedirectURI         string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// ParseAuthorizationParameters extracts and validates the authorization
// parameters from an incoming request. The returned error names the missing
// parameter so the client error response can surface it verbatim.
func ParseAuthorizationParameters(r *http.Request) (*AuthorizationParameters, error) {
	q := r.URL.Query()

	params := &AuthorizationParameters{
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		State:               q.Get("state"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
	}

	if params.RedirectURI == "" {
		return nil, errors.ErrMissingRedirectURI
	}
	if params.State == "" {
		return nil, errors.ErrMissingState
	}

	return params, nil
}
