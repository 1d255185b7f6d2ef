// Package mcpserver exposes the task tools over the Model Context Protocol
// and owns the session layer: each protocol session is bound 1:1 to a
// transport and a downstream Tasks client built from that session's
// credential.
package mcpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/adamgrzybowski/google-task-mcp/internal/config"
	"github.com/adamgrzybowski/google-task-mcp/internal/errors"
	"github.com/adamgrzybowski/google-task-mcp/server"
	"github.com/adamgrzybowski/google-task-mcp/tasks"
	"github.com/adamgrzybowski/google-task-mcp/tokenstore"
	"github.com/adamgrzybowski/google-task-mcp/upstream"
)

type contextKey string

const bearerContextKey contextKey = "bearerToken"

// WithBearer is the HTTP context func for the streamable transport: it
// stashes the request's bearer token so tool handlers can bind a session to
// its credential.
func WithBearer(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, bearerContextKey, server.BearerToken(r))
}

func bearerFromContext(ctx context.Context) string {
	bearer, _ := ctx.Value(bearerContextKey).(string)
	return bearer
}

// Session is one protocol-level multiplexed connection. The transport is
// owned by the MCP layer; the downstream client is owned here and is never
// shared across sessions because it is bound to one credential.
type Session struct {
	ID        string
	Bearer    string
	Tasks     tasks.Service
	CreatedAt time.Time

	bound bool
}

// ServiceFactory builds a downstream client from a token source. Tests
// substitute a fake.
type ServiceFactory func(ctx context.Context, source oauth2.TokenSource) (tasks.Service, error)

// SessionManager maps protocol session IDs to their state. Entries are
// created when the protocol handshake completes, bound to a credential on
// the first tool call, and removed when the protocol layer signals closure.
// Sessions are never persisted: a restart forces clients to re-handshake.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	config   config.Config
	tokens   *tokenstore.Store
	upstream *upstream.Client
	factory  ServiceFactory

	// baseCtx outlives any single request; token sources created for a
	// session must not die with the request that provisioned them.
	baseCtx context.Context
}

// NewSessionManager creates a session manager building real Google Tasks
// clients.
func NewSessionManager(cfg config.Config, tokens *tokenstore.Store, upstreamClient *upstream.Client) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		config:   cfg,
		tokens:   tokens,
		upstream: upstreamClient,
		factory: func(ctx context.Context, source oauth2.TokenSource) (tasks.Service, error) {
			return tasks.NewGoogleService(ctx, source)
		},
		baseCtx: context.Background(),
	}
}

// SetFactory overrides downstream client construction. For tests.
func (m *SessionManager) SetFactory(factory ServiceFactory) {
	m.factory = factory
}

// Register creates the session entry once the protocol handshake assigns an
// identifier. The downstream client is not built yet: provisioning happens
// lazily on the first tool call, which is when the bearer token is visible.
func (m *SessionManager) Register(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; exists {
		return
	}
	m.sessions[sessionID] = &Session{
		ID:        sessionID,
		CreatedAt: time.Now(),
	}
	log.Debug().Str("session", sessionID).Msg("session registered")
}

// Close tears a session down: the entry is removed and the downstream
// client reference released. The transport itself is closed by the MCP
// layer.
func (m *SessionManager) Close(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; !exists {
		return
	}
	delete(m.sessions, sessionID)
	log.Debug().Str("session", sessionID).Msg("session closed")
}

// Resolve returns the session for a tool-call context, binding the
// downstream client on first use. The bind is a single critical section so
// two concurrent first calls cannot build two clients for one session.
func (m *SessionManager) Resolve(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, errors.ErrSessionNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		// The hook may not have fired for transports that synthesize
		// session IDs; create lazily rather than failing the call.
		session = &Session{ID: sessionID, CreatedAt: time.Now()}
		m.sessions[sessionID] = session
	}

	if session.bound {
		return session, nil
	}

	bearer := bearerFromContext(ctx)
	source, err := m.credentialSource(bearer)
	if err != nil {
		return nil, err
	}

	service, err := m.factory(m.baseCtx, source)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build downstream client")
	}

	session.Bearer = bearer
	session.Tasks = service
	session.bound = true
	log.Info().Str("session", sessionID).Bool("refreshable", bearer == "" || m.hasRefreshMaterial(bearer)).Msg("session provisioned")
	return session, nil
}

// credentialSource picks the credential for a session. A bearer token with
// refresh material on file gets a self-refreshing, key-rotating source; a
// bearer without it gets a static source that simply fails once the token
// naturally expires (accepted degradation, not silent: the failure surfaces
// as a tool error); no bearer falls back to environment-level defaults.
func (m *SessionManager) credentialSource(bearer string) (oauth2.TokenSource, error) {
	if bearer != "" {
		if data, err := m.tokens.Get(bearer); err == nil {
			base := m.upstream.TokenSource(m.baseCtx, &oauth2.Token{
				AccessToken:  data.AccessToken,
				RefreshToken: data.RefreshToken,
				Expiry:       data.ExpiresAt,
			})
			return tokenstore.NewRotatingSource(m.tokens, base, data.AccessToken), nil
		}
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: bearer}), nil
	}

	if refresh := m.config.GetDefaultRefreshToken(); refresh != "" {
		return m.upstream.TokenSource(m.baseCtx, &oauth2.Token{
			AccessToken:  m.config.GetDefaultAccessToken(),
			RefreshToken: refresh,
		}), nil
	}

	if access := m.config.GetDefaultAccessToken(); access != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: access}), nil
	}

	return nil, errors.ErrNoCredential
}

func (m *SessionManager) hasRefreshMaterial(bearer string) bool {
	_, err := m.tokens.Get(bearer)
	return err == nil
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
