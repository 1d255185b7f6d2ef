package oauthmodel

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges a proxy-issued authorization code for
	// upstream tokens.
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for a new access token.
	RefreshTokenGrant GrantType = "refresh_token"
)

// TokenRequest is the decoded body of a POST /token request. Clients send
// either form-encoded or JSON bodies; ParseTokenRequest normalizes both into
// this record once at the boundary so the handlers dispatch on typed fields.
type TokenRequest struct {
	GrantType    GrantType `json:"grant_type"`
	Code         string    `json:"code,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	CodeVerifier string    `json:"code_verifier,omitempty"`
}

// ParseTokenRequest decodes a token request from either a JSON or a
// form-urlencoded body, selected by Content-Type.
func ParseTokenRequest(r *http.Request) (*TokenRequest, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		var req TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form data: %w", err)
	}

	return &TokenRequest{
		GrantType:    GrantType(r.FormValue("grant_type")),
		Code:         r.FormValue("code"),
		RefreshToken: r.FormValue("refresh_token"),
		ClientID:     r.FormValue("client_id"),
		ClientSecret: r.FormValue("client_secret"),
		CodeVerifier: r.FormValue("code_verifier"),
	}, nil
}
