// Package tokenstore owns the durable mapping from proxy-issued access
// tokens to upstream refresh material. It is the one store that survives a
// restart: losing a pending login is an inconvenience, losing a refresh
// token forces the user back through the whole authorization flow.
package tokenstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adamgrzybowski/google-task-mcp/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// StoredTokenData is one durable refresh record, keyed by its current access
// token. The key migrates on every refresh: the old access token entry is
// deleted and the data reinserted under the new one, which is how a later
// bearer token presented by a client still traces back to refreshable
// credentials.
type StoredTokenData struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store is a write-through, file-backed token store. Every mutation
// serializes the full map to disk; correctness is prioritized over I/O
// efficiency because a lost record means forced re-authentication. The
// on-disk layout is a flat JSON map with no schema version field; the
// decoder ignores unknown fields, so additions stay forward-readable.
type Store struct {
	mu     sync.RWMutex
	tokens map[string]*StoredTokenData

	fileMu sync.Mutex
	path   string

	retention   time.Duration
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// New creates a store persisting to tokens.json under dataFolder and loads
// any surviving records, skipping those past the retention window.
func New(dataFolder string, retention time.Duration) (*Store, error) {
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return nil, errors.Wrapf(err, "failed to create data folder %q", dataFolder)
	}

	s := &Store{
		tokens:      make(map[string]*StoredTokenData),
		path:        filepath.Join(dataFolder, "tokens.json"),
		retention:   retention,
		stopCleanup: make(chan struct{}),
	}
	s.load()
	return s, nil
}

// Put upserts a refresh record under accessToken and persists. ExpiresAt is
// computed here, at mint time, and never recomputed elsewhere.
func (s *Store) Put(accessToken, refreshToken string, expiresIn int) error {
	if accessToken == "" {
		return errors.ErrTokenDataNotFound
	}

	now := NowTimeFunc()
	s.mu.Lock()
	s.tokens[accessToken] = &StoredTokenData{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(time.Duration(expiresIn) * time.Second),
		CreatedAt:    now,
	}
	s.mu.Unlock()

	s.persist()
	return nil
}

// Rotate migrates a record from its old access-token key to the new one
// after a transparent refresh. The original refresh token and creation time
// are preserved; only the key and expiry change.
func (s *Store) Rotate(oldAccessToken, newAccessToken string, expiresIn int) error {
	s.mu.Lock()
	data, exists := s.tokens[oldAccessToken]
	if !exists {
		s.mu.Unlock()
		return errors.ErrTokenDataNotFound
	}

	delete(s.tokens, oldAccessToken)
	s.tokens[newAccessToken] = &StoredTokenData{
		AccessToken:  newAccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresAt:    NowTimeFunc().Add(time.Duration(expiresIn) * time.Second),
		CreatedAt:    data.CreatedAt,
	}
	s.mu.Unlock()

	s.persist()
	return nil
}

// Get looks up the refresh record for an access token.
func (s *Store) Get(accessToken string) (*StoredTokenData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.tokens[accessToken]
	if !exists {
		return nil, errors.ErrTokenDataNotFound
	}

	copied := *data
	return &copied, nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// Sweep evicts records whose age exceeds the retention window and persists
// only if something was removed, avoiding needless writes on idle ticks.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	removed := 0
	for key, data := range s.tokens {
		if now.Sub(data.CreatedAt) > s.retention {
			delete(s.tokens, key)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("swept expired token records")
		s.persist()
	}
	return removed
}

// Start launches the background retention sweep. Callers must Stop the store
// to release the goroutine.
func (s *Store) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(NowTimeFunc())
			case <-s.stopCleanup:
				return
			}
		}
	}()
}

// Stop terminates the background sweep.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

// load reads the persisted map, dropping records already past retention.
// A missing file is a fresh start; a corrupt one is logged and skipped so a
// bad disk state never prevents the proxy from serving.
func (s *Store) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error().Err(err).Str("path", s.path).Msg("failed to read token store")
		}
		return
	}

	var persisted map[string]*StoredTokenData
	if err := json.Unmarshal(raw, &persisted); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("failed to decode token store")
		return
	}

	now := NowTimeFunc()
	loaded, skipped := 0, 0
	s.mu.Lock()
	for key, data := range persisted {
		if now.Sub(data.CreatedAt) > s.retention {
			skipped++
			continue
		}
		s.tokens[key] = data
		loaded++
	}
	s.mu.Unlock()

	log.Info().Int("loaded", loaded).Int("skipped", skipped).Msg("loaded persisted token records")
}

// persist writes the whole map to disk. The snapshot is taken under a read
// lock so the write itself never stalls concurrent readers; failures are
// logged and the in-memory state keeps serving, at the cost of durability
// until the next successful write.
func (s *Store) persist() {
	s.mu.RLock()
	raw, err := json.MarshalIndent(s.tokens, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		log.Error().Err(err).Msg("failed to encode token store")
		return
	}

	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("failed to persist token store")
	}
}
