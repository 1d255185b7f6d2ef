package server

func (s *Server) initRoutes() {
	// Discovery documents
	s.RegisterRouteFunc("GET "+RouteWellKnownAuthServer, ChainMiddleware(s.WellKnownAuthorizationServer(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteWellKnownProtectedResource, ChainMiddleware(s.WellKnownProtectedResource(), s.APIMiddleware()...))

	// OAuth flow
	s.RegisterRouteFunc("GET "+RouteAuthorize, ChainMiddleware(s.Authorize(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.Callback(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteToken, ChainMiddleware(s.Token(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteRegister, ChainMiddleware(s.Register(), s.APIMiddleware()...))

	// Protocol endpoint: streamable HTTP uses POST for messages, GET for the
	// event stream and DELETE for session termination, so the route is
	// registered without a method.
	if s.protocol != nil {
		s.RegisterRouteHandler(RouteMCP, ChainMiddleware(s.protocol.ServeHTTP, append(s.APIMiddleware(), s.RequireBearer())...))
	}
}
