package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/adamgrzybowski/google-task-mcp/clients"
	"github.com/adamgrzybowski/google-task-mcp/internal/errors"
	"github.com/adamgrzybowski/google-task-mcp/internal/randtoken"
	"github.com/adamgrzybowski/google-task-mcp/oauthmodel"
)

// Register implements RFC 7591 dynamic client registration. The only
// required member is a non-empty redirect_uris array; the response carries a
// client_secret_expires_at of 0 because issued secrets never expire.
func (s *Server) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauthmodel.ClientRegistrationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid_request", "invalid request body", http.StatusBadRequest)
			return
		}

		if len(req.RedirectURIs) == 0 {
			writeJSONError(w, "invalid_request", errors.ErrMissingRedirectURIs.Error(), http.StatusBadRequest)
			return
		}

		now := time.Now()
		client := &clients.Client{
			ID:           randtoken.ClientID(),
			Secret:       randtoken.ClientSecret(),
			RedirectURIs: req.RedirectURIs,
			Name:         req.ClientName,
			CreatedAt:    now,
		}

		if err := s.stores.Clients.Upsert(client); err != nil {
			writeJSONError(w, "server_error", err.Error(), http.StatusInternalServerError)
			return
		}

		resp := oauthmodel.ClientRegistrationResponse{
			ClientID:              client.ID,
			ClientSecret:          client.Secret,
			ClientIDIssuedAt:      now.Unix(),
			ClientSecretExpiresAt: 0,
			ClientName:            client.Name,
			RedirectURIs:          client.RedirectURIs,
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
