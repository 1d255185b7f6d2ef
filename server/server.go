package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/adamgrzybowski/google-task-mcp/authflow"
	"github.com/adamgrzybowski/google-task-mcp/clients"
	"github.com/adamgrzybowski/google-task-mcp/internal/config"
	"github.com/adamgrzybowski/google-task-mcp/tokenstore"
	"github.com/adamgrzybowski/google-task-mcp/upstream"
)

// Stores bundles the shared state the HTTP surface operates on. Each store
// is an owner object exposing only atomic operations; handlers never touch a
// raw map.
type Stores struct {
	AuthFlows authflow.Repo
	Clients   clients.Repo
	Tokens    *tokenstore.Store
}

// Server is the OAuth authorization proxy. Toward protocol clients it
// impersonates a full authorization server (discovery, authorize, token,
// dynamic registration); toward the upstream provider it is a plain OAuth
// client. The protocol endpoint itself is mounted behind the bearer
// middleware as an opaque http.Handler.
type Server struct {
	env      string // Environment (e.g., "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	stores   Stores
	upstream *upstream.Client
	protocol http.Handler
}

// New assembles the server and its route table. protocolHandler may be nil
// when only the OAuth surface is wanted (tests do this).
func New(cfg config.Config, stores Stores, upstreamClient *upstream.Client, protocolHandler http.Handler) *Server {
	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		stores:   stores,
		upstream: upstreamClient,
		protocol: protocolHandler,
	}

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		log.Info().Str("route", route).Msg("registered")
	}
}
