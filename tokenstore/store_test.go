package tokenstore_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adamgrzybowski/google-task-mcp/internal/errors"
	"github.com/adamgrzybowski/google-task-mcp/tokenstore"
)

const (
	testRetention    = 30 * 24 * time.Hour
	testAccessToken  = "ya29.access-1"
	testRefreshToken = "1//refresh-1"
)

func newStore(t *testing.T) (*tokenstore.Store, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := tokenstore.New(dir, testRetention)
	require.NoError(t, err)
	return store, dir
}

func fixNow(t *testing.T, now time.Time) {
	t.Helper()

	tokenstore.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { tokenstore.NowTimeFunc = time.Now })
}

func TestPutAndGet(t *testing.T) {
	store, _ := newStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixNow(t, now)

	require.NoError(t, store.Put(testAccessToken, testRefreshToken, 3600))

	data, err := store.Get(testAccessToken)
	require.NoError(t, err)
	require.Equal(t, testRefreshToken, data.RefreshToken)
	require.Equal(t, now.Add(time.Hour), data.ExpiresAt)
	require.Equal(t, now, data.CreatedAt)
}

func TestGetUnknownToken(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Get("never-issued")
	require.ErrorIs(t, err, errors.ErrTokenDataNotFound)
}

func TestPutRejectsEmptyAccessToken(t *testing.T) {
	store, _ := newStore(t)

	err := store.Put("", testRefreshToken, 3600)
	require.ErrorIs(t, err, errors.ErrTokenDataNotFound)
}

func TestRotatePreservesRefreshTokenAndCreatedAt(t *testing.T) {
	store, _ := newStore(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixNow(t, created)
	require.NoError(t, store.Put(testAccessToken, testRefreshToken, 3600))

	rotatedAt := created.Add(50 * time.Minute)
	fixNow(t, rotatedAt)
	require.NoError(t, store.Rotate(testAccessToken, "ya29.access-2", 3600))

	// Old key is gone, new key carries the original refresh material.
	_, err := store.Get(testAccessToken)
	require.ErrorIs(t, err, errors.ErrTokenDataNotFound)

	data, err := store.Get("ya29.access-2")
	require.NoError(t, err)
	require.Equal(t, testRefreshToken, data.RefreshToken)
	require.Equal(t, created, data.CreatedAt)
	require.Equal(t, rotatedAt.Add(time.Hour), data.ExpiresAt)
	require.Equal(t, 1, store.Len())
}

func TestRotateUnknownKey(t *testing.T) {
	store, _ := newStore(t)

	err := store.Rotate("never-issued", "ya29.access-2", 3600)
	require.ErrorIs(t, err, errors.ErrTokenDataNotFound)
}

func TestSweepEvictsPastRetention(t *testing.T) {
	store, _ := newStore(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixNow(t, created)
	require.NoError(t, store.Put("old-token", testRefreshToken, 3600))
	require.NoError(t, store.Put("fresh-token", testRefreshToken, 3600))

	// Just inside the window: nothing evicted.
	require.Equal(t, 0, store.Sweep(created.Add(testRetention)))

	// Age the first record past retention by re-creating the second one
	// later, then sweep past the first's horizon.
	fixNow(t, created.Add(time.Hour))
	require.NoError(t, store.Put("fresh-token", testRefreshToken, 3600))

	removed := store.Sweep(created.Add(testRetention).Add(time.Minute))
	require.Equal(t, 1, removed)

	_, err := store.Get("old-token")
	require.ErrorIs(t, err, errors.ErrTokenDataNotFound)
	_, err = store.Get("fresh-token")
	require.NoError(t, err)
}

func TestPersistenceAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixNow(t, now)

	store, err := tokenstore.New(dir, testRetention)
	require.NoError(t, err)
	require.NoError(t, store.Put(testAccessToken, testRefreshToken, 3600))

	reopened, err := tokenstore.New(dir, testRetention)
	require.NoError(t, err)

	data, err := reopened.Get(testAccessToken)
	require.NoError(t, err)
	require.Equal(t, testRefreshToken, data.RefreshToken)
	require.Equal(t, now, data.CreatedAt)
}

func TestLoadSkipsRecordsPastRetention(t *testing.T) {
	dir := t.TempDir()
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixNow(t, created)

	store, err := tokenstore.New(dir, testRetention)
	require.NoError(t, err)
	require.NoError(t, store.Put(testAccessToken, testRefreshToken, 3600))

	fixNow(t, created.Add(testRetention).Add(time.Minute))
	reopened, err := tokenstore.New(dir, testRetention)
	require.NoError(t, err)

	_, err = reopened.Get(testAccessToken)
	require.ErrorIs(t, err, errors.ErrTokenDataNotFound)
	require.Equal(t, 0, reopened.Len())
}

func TestLoadToleratesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tokens.json"), []byte("{not json"), 0o600))

	store, err := tokenstore.New(dir, testRetention)
	require.NoError(t, err)
	require.Equal(t, 0, store.Len())

	// The store stays writable after a bad load.
	require.NoError(t, store.Put(testAccessToken, testRefreshToken, 3600))
}
