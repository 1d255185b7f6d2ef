package config

import "time"

// OAuthConfig carries everything the proxy needs to talk to the upstream
// provider and to run its stores: Google client credentials, requested
// scopes, optional environment-level default tokens, and the TTL/retention
// windows for the in-memory and persistent stores.
type OAuthConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetScopes() []string

	// Environment-level default credentials, used for sessions that carry
	// no bearer token (e.g. a locally run stdio-style client).
	GetDefaultAccessToken() string
	GetDefaultRefreshToken() string

	GetPendingAuthTTL() time.Duration
	GetTokenRetention() time.Duration
	GetSweepInterval() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (OAuth) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

// GetScopes returns the upstream scopes requested during authorization.
// The tasks scope grants task CRUD; the userinfo scope lets clients
// attribute the delegation to an account.
func (OAuth) GetScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/tasks",
		"https://www.googleapis.com/auth/userinfo.email",
		"openid",
	}
}

func (OAuth) GetDefaultAccessToken() string {
	return GetEnv("GOOGLE_ACCESS_TOKEN", "")
}

func (OAuth) GetDefaultRefreshToken() string {
	return GetEnv("GOOGLE_REFRESH_TOKEN", "")
}

// GetPendingAuthTTL is how long an in-flight authorization attempt may wait
// for the upstream redirect before it is garbage collected.
func (OAuth) GetPendingAuthTTL() time.Duration {
	return 10 * time.Minute
}

// GetTokenRetention is how long persisted refresh material is kept before
// the sweep evicts it and the user must authorize again.
func (OAuth) GetTokenRetention() time.Duration {
	return 30 * 24 * time.Hour
}

func (OAuth) GetSweepInterval() time.Duration {
	return time.Minute
}
