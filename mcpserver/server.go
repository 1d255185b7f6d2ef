package mcpserver

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
)

// MCPServer bundles the protocol server, its streamable HTTP transport and
// the session manager behind it.
type MCPServer struct {
	mcpServer *server.MCPServer
	handler   *server.StreamableHTTPServer
	sessions  *SessionManager
}

// New builds the protocol server: tool registration, session lifecycle
// hooks, and the streamable HTTP transport that carries it.
func New(appName, version string, sessions *SessionManager) *MCPServer {
	hooks := &server.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		sessions.Register(session.SessionID())
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		sessions.Close(session.SessionID())
	})

	s := &MCPServer{
		mcpServer: server.NewMCPServer(
			appName,
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
			server.WithHooks(hooks),
		),
		sessions: sessions,
	}
	s.registerTools()

	s.handler = server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithHTTPContextFunc(WithBearer),
	)
	return s
}

// Handler returns the streamable HTTP transport for mounting on a mux.
func (s *MCPServer) Handler() http.Handler {
	return s.handler
}

// Shutdown stops the transport and drops all sessions.
func (s *MCPServer) Shutdown(ctx context.Context) error {
	return s.handler.Shutdown(ctx)
}

// resolveSession binds the calling protocol session to its credential and
// returns it. Used at the top of every tool handler.
func (s *MCPServer) resolveSession(ctx context.Context) (*Session, error) {
	clientSession := server.ClientSessionFromContext(ctx)
	sessionID := ""
	if clientSession != nil {
		sessionID = clientSession.SessionID()
	}
	return s.sessions.Resolve(ctx, sessionID)
}
