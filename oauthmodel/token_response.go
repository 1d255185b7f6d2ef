package oauthmodel

// TokenResponse is the standard OAuth2 token endpoint response (RFC 6749).
// The access and refresh tokens are the upstream provider's, relayed
// unmodified; the proxy keys its persistent refresh material by the access
// token string.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}
