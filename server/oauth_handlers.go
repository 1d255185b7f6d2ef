package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/adamgrzybowski/google-task-mcp/authflow"
	"github.com/adamgrzybowski/google-task-mcp/internal/errors"
	"github.com/adamgrzybowski/google-task-mcp/internal/randtoken"
	"github.com/adamgrzybowski/google-task-mcp/oauthmodel"
)

// Authorize begins the authorization flow: it validates the client's
// request, stashes a pending authorization keyed by state, and redirects the
// user agent to the upstream provider. A single synchronous redirect
// construction, no retries.
func (s *Server) Authorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := oauthmodel.ParseAuthorizationParameters(r)
		if err != nil {
			writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
			return
		}

		// Registrations are in-memory and die with the process, so an
		// unknown client_id passes through; a known one must use one of
		// the redirect URIs it registered.
		if params.ClientID != "" {
			if client, err := s.stores.Clients.Get(params.ClientID); err == nil && !client.HasRedirectURI(params.RedirectURI) {
				writeJSONError(w, "invalid_request", "redirect_uri is not registered for this client", http.StatusBadRequest)
				return
			}
		}

		pending := &authflow.PendingAuthorization{
			ClientRedirectURI:   params.RedirectURI,
			ClientState:         params.State,
			CodeChallenge:       params.CodeChallenge,
			CodeChallengeMethod: params.CodeChallengeMethod,
			CreatedAt:           time.Now(),
		}

		if err := s.stores.AuthFlows.Create(params.State, pending); err != nil {
			writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
			return
		}

		// The same state value is forwarded upstream so the callback can
		// find this pending record.
		http.Redirect(w, r, s.upstream.AuthCodeURL(params.State), http.StatusFound)
	}
}

// Callback receives the upstream provider's redirect. It performs no token
// exchange; it only mints a proxy-local code, attaches it to the pending
// record, and relays the user agent back to the original client. The state
// lookup is the sole CSRF defense: an attacker without the state value
// cannot complete a pending authorization.
func (s *Server) Callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		if errorParam != "" {
			http.Error(w, fmt.Sprintf("Authorization failed: %s - %s", errorParam, errorDesc), http.StatusBadRequest)
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		proxyCode := randtoken.Code()
		pending, err := s.stores.AuthFlows.Attach(state, code, proxyCode)
		if err != nil {
			// Expired or forged state; logged distinctly from ordinary
			// validation failures.
			log.Warn().Str("state", state).Msg("callback with unknown state")
			http.Error(w, "Invalid or expired state", http.StatusBadRequest)
			return
		}

		redirectURL, err := url.Parse(pending.ClientRedirectURI)
		if err != nil {
			http.Error(w, "Invalid redirect URI", http.StatusBadRequest)
			return
		}

		q := redirectURL.Query()
		q.Set("code", proxyCode)
		q.Set("state", pending.ClientState)
		redirectURL.RawQuery = q.Encode()

		http.Redirect(w, r, redirectURL.String(), http.StatusFound)
	}
}

// Token exchanges proxy-local codes or refresh tokens for upstream tokens.
// The body is decoded once into a typed request, then dispatched on
// grant_type.
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenReq, err := oauthmodel.ParseTokenRequest(r)
		if err != nil {
			writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
			return
		}

		switch tokenReq.GrantType {
		case oauthmodel.AuthorizationCodeGrant:
			s.handleAuthorizationCodeGrant(w, r, tokenReq)
		case oauthmodel.RefreshTokenGrant:
			s.handleRefreshTokenGrant(w, r, tokenReq)
		default:
			writeJSONError(w, "unsupported_grant_type", fmt.Sprintf("%s: %q", errors.ErrUnsupportedGrant, tokenReq.GrantType), http.StatusBadRequest)
		}
	}
}

func (s *Server) handleAuthorizationCodeGrant(w http.ResponseWriter, r *http.Request, tokenReq *oauthmodel.TokenRequest) {
	if tokenReq.Code == "" {
		writeJSONError(w, "invalid_request", errors.ErrMissingCode.Error(), http.StatusBadRequest)
		return
	}

	// Taking the record removes it from both index maps, so a proxy code is
	// single-use at the application layer, not just upstream.
	pending, err := s.stores.AuthFlows.TakeByCode(tokenReq.Code)
	if err != nil {
		log.Warn().Msg("token exchange with unknown proxy code")
		writeJSONError(w, "invalid_grant", errors.ErrCodeNotFound.Error(), http.StatusBadRequest)
		return
	}

	if pending.UpstreamCode == "" {
		writeJSONError(w, "invalid_grant", errors.ErrCodeNotCompleted.Error(), http.StatusBadRequest)
		return
	}

	token, err := s.upstream.Exchange(r.Context(), pending.UpstreamCode)
	if err != nil {
		// An authorization code is single-use by protocol definition, so a
		// failed exchange is never retried.
		writeJSONError(w, "invalid_grant", err.Error(), http.StatusBadRequest)
		return
	}

	s.persistAndRespond(w, token)
}

func (s *Server) handleRefreshTokenGrant(w http.ResponseWriter, r *http.Request, tokenReq *oauthmodel.TokenRequest) {
	if tokenReq.RefreshToken == "" {
		writeJSONError(w, "invalid_request", errors.ErrMissingRefreshToken.Error(), http.StatusBadRequest)
		return
	}

	token, err := s.upstream.Refresh(r.Context(), tokenReq.RefreshToken)
	if err != nil {
		writeJSONError(w, "invalid_grant", err.Error(), http.StatusBadRequest)
		return
	}

	s.persistAndRespond(w, token)
}

// persistAndRespond stores the refresh material keyed by the new access
// token and writes the OAuth token response. Persistence failure is logged
// inside the store and does not fail the request.
func (s *Server) persistAndRespond(w http.ResponseWriter, token *oauth2.Token) {
	expiresIn := int(time.Until(token.Expiry).Seconds())

	if err := s.stores.Tokens.Put(token.AccessToken, token.RefreshToken, expiresIn); err != nil {
		log.Error().Err(err).Msg("failed to store token data")
	}

	scope := strings.Join(s.config.GetScopes(), " ")
	if granted, ok := token.Extra("scope").(string); ok && granted != "" {
		scope = granted
	}

	resp := oauthmodel.TokenResponse{
		AccessToken:  token.AccessToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
		RefreshToken: token.RefreshToken,
		Scope:        scope,
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSONError writes an OAuth2 error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
