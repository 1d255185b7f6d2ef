package server

// Route path constants
// All routes are defined here to ensure consistency and prevent typos
const (
	// OAuth discovery documents
	RouteWellKnownAuthServer        = "/.well-known/oauth-authorization-server"
	RouteWellKnownProtectedResource = "/.well-known/oauth-protected-resource"

	// OAuth flow endpoints
	RouteAuthorize = "/authorize"
	RouteCallback  = "/callback"
	RouteToken     = "/token"
	RouteRegister  = "/register"

	// Protocol endpoint (bearer-protected)
	RouteMCP = "/mcp"
)
