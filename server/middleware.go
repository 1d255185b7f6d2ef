package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/adamgrzybowski/google-task-mcp/internal/errors"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (s *Server) APIMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
	}
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		if s.env == "DEV" {
			log.Debug().Str("requestId", requestID).Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		}
		next(w, r)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("recovered from handler panic")
				writeJSONError(w, "server_error", "internal server error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

// RequireBearer gates the protocol endpoint. A request without a usable
// bearer token is challenged with a WWW-Authenticate header pointing back at
// the protected-resource metadata document, unless environment-level default
// credentials are configured, in which case credential-less sessions are
// allowed through and bound to those defaults.
func (s *Server) RequireBearer() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" && !s.hasDefaultCredentials() {
				s.writeBearerChallenge(w)
				return
			}
			next(w, r)
		}
	}
}

func (s *Server) hasDefaultCredentials() bool {
	return s.config.GetDefaultAccessToken() != "" || s.config.GetDefaultRefreshToken() != ""
}

func (s *Server) writeBearerChallenge(w http.ResponseWriter) {
	metadataURL := s.config.GetBaseURL() + RouteWellKnownProtectedResource
	scope := strings.Join(s.config.GetScopes(), " ")
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Bearer resource_metadata=%q, scope=%q", metadataURL, scope))
	writeJSONError(w, "invalid_token", errors.ErrMissingBearerToken.Error(), http.StatusUnauthorized)
}

// BearerToken extracts the bearer token from an Authorization header.
// Returns "" when the header is absent or not a bearer scheme.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
