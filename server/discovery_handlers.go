package server

import (
	"encoding/json"
	"net/http"

	"github.com/adamgrzybowski/google-task-mcp/oauthmodel"
)

const contentTypeJSON = "application/json; charset=utf-8"

// WellKnownAuthorizationServer serves the RFC 8414 metadata document that
// describes the proxy's own endpoints. The proxy is the issuer from the
// protocol client's point of view; the upstream provider never appears here.
func (s *Server) WellKnownAuthorizationServer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baseURL := s.config.GetBaseURL()

		resp := oauthmodel.AuthorizationServerMetadata{
			Issuer:                        baseURL,
			AuthorizationEndpoint:         baseURL + RouteAuthorize,
			TokenEndpoint:                 baseURL + RouteToken,
			RegistrationEndpoint:          baseURL + RouteRegister,
			ScopesSupported:               s.config.GetScopes(),
			ResponseTypesSupported:        []string{"code"},
			GrantTypesSupported:           []string{"authorization_code", "refresh_token"},
			CodeChallengeMethodsSupported: []string{"S256"},
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "public, max-age=3600") // Cache for 1 hour
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// WellKnownProtectedResource serves the RFC 9728 document describing the
// protocol endpoint as an OAuth protected resource.
func (s *Server) WellKnownProtectedResource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baseURL := s.config.GetBaseURL()

		resp := oauthmodel.ProtectedResourceMetadata{
			Resource:             baseURL + RouteMCP,
			AuthorizationServers: []string{baseURL},
			ScopesSupported:      s.config.GetScopes(),
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "public, max-age=3600") // Cache for 1 hour
		_ = json.NewEncoder(w).Encode(resp)
	}
}
