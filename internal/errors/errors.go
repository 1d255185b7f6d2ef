package errors

import (
	"errors"
	"fmt"
)

// Common error types for the OAuth proxy
var (
	// Client input errors (missing or malformed required parameters)
	ErrMissingRedirectURI  = errors.New("redirect_uri is required")
	ErrMissingState        = errors.New("state is required")
	ErrMissingCode         = errors.New("code is required")
	ErrMissingRefreshToken = errors.New("refresh_token is required")
	ErrMissingRedirectURIs = errors.New("redirect_uris required")

	// Authorization flow errors
	ErrStateNotFound    = errors.New("invalid or expired state")
	ErrCodeNotFound     = errors.New("invalid or expired authorization code")
	ErrCodeNotCompleted = errors.New("authorization was never completed upstream")
	ErrDuplicateState   = errors.New("state already in use")
	ErrUnsupportedGrant = errors.New("unsupported grant type")
	ErrUpstreamExchange = errors.New("upstream token exchange failed")

	// Store errors
	ErrClientNotFound    = errors.New("client not found")
	ErrTokenDataNotFound = errors.New("no stored token data")

	// Session errors
	ErrMissingBearerToken = errors.New("missing bearer token")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNoCredential       = errors.New("no credential available for session")
)

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
