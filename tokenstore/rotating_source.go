package tokenstore

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// RotatingSource is an oauth2.TokenSource that keeps the persistent store in
// step with upstream refreshes. When the wrapped source mints a new access
// token, the store record is re-keyed from the old token to the new one, so
// a client that keeps presenting its original bearer token still resolves to
// live refresh material on the next lookup.
type RotatingSource struct {
	store *Store
	src   oauth2.TokenSource

	mu         sync.Mutex
	lastAccess string
}

// NewRotatingSource wraps src, tracking currentAccess as the store key the
// next rotation migrates away from.
func NewRotatingSource(store *Store, src oauth2.TokenSource, currentAccess string) *RotatingSource {
	return &RotatingSource{
		store:      store,
		src:        src,
		lastAccess: currentAccess,
	}
}

// Token returns a valid token from the wrapped source, rotating the store
// key if the upstream refreshed behind the scenes.
func (s *RotatingSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	if token.AccessToken != s.lastAccess {
		expiresIn := int(time.Until(token.Expiry).Seconds())
		if err := s.store.Rotate(s.lastAccess, token.AccessToken, expiresIn); err != nil {
			// The old key may already have been swept; store the refreshed
			// token as a fresh record so the session keeps working.
			log.Warn().Err(err).Msg("token rotation missed its old key, storing fresh record")
			_ = s.store.Put(token.AccessToken, token.RefreshToken, expiresIn)
		}
		s.lastAccess = token.AccessToken
	}

	return token, nil
}

var _ oauth2.TokenSource = (*RotatingSource)(nil)
