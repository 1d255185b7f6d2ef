package tokenstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/adamgrzybowski/google-task-mcp/tokenstore"
)

// stubSource returns a fixed sequence of tokens, one per call.
type stubSource struct {
	tokens []*oauth2.Token
	calls  int
}

func (s *stubSource) Token() (*oauth2.Token, error) {
	token := s.tokens[s.calls]
	if s.calls < len(s.tokens)-1 {
		s.calls++
	}
	return token, nil
}

func TestRotatingSourcePassesThroughUnchangedToken(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Put(testAccessToken, testRefreshToken, 3600))

	src := &stubSource{tokens: []*oauth2.Token{
		{AccessToken: testAccessToken, Expiry: time.Now().Add(time.Hour)},
	}}
	rotating := tokenstore.NewRotatingSource(store, src, testAccessToken)

	token, err := rotating.Token()
	require.NoError(t, err)
	require.Equal(t, testAccessToken, token.AccessToken)

	// No rotation happened: the record is still under its original key.
	data, err := store.Get(testAccessToken)
	require.NoError(t, err)
	require.Equal(t, testRefreshToken, data.RefreshToken)
}

func TestRotatingSourceRekeysStoreOnRefresh(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Put(testAccessToken, testRefreshToken, 3600))

	src := &stubSource{tokens: []*oauth2.Token{
		{AccessToken: "ya29.access-2", Expiry: time.Now().Add(time.Hour)},
	}}
	rotating := tokenstore.NewRotatingSource(store, src, testAccessToken)

	token, err := rotating.Token()
	require.NoError(t, err)
	require.Equal(t, "ya29.access-2", token.AccessToken)

	_, err = store.Get(testAccessToken)
	require.Error(t, err)

	data, err := store.Get("ya29.access-2")
	require.NoError(t, err)
	require.Equal(t, testRefreshToken, data.RefreshToken)
}

func TestRotatingSourceRotatesOnlyOncePerRefresh(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Put(testAccessToken, testRefreshToken, 3600))

	src := &stubSource{tokens: []*oauth2.Token{
		{AccessToken: "ya29.access-2", Expiry: time.Now().Add(time.Hour)},
		{AccessToken: "ya29.access-2", Expiry: time.Now().Add(time.Hour)},
	}}
	rotating := tokenstore.NewRotatingSource(store, src, testAccessToken)

	_, err := rotating.Token()
	require.NoError(t, err)
	_, err = rotating.Token()
	require.NoError(t, err)

	require.Equal(t, 1, store.Len())
}

func TestRotatingSourceRecoversFromSweptKey(t *testing.T) {
	store, _ := newStore(t)
	// No record was ever stored under the old key, as if the sweep already
	// removed it.
	src := &stubSource{tokens: []*oauth2.Token{
		{AccessToken: "ya29.access-2", RefreshToken: testRefreshToken, Expiry: time.Now().Add(time.Hour)},
	}}
	rotating := tokenstore.NewRotatingSource(store, src, testAccessToken)

	token, err := rotating.Token()
	require.NoError(t, err)
	require.Equal(t, "ya29.access-2", token.AccessToken)

	data, err := store.Get("ya29.access-2")
	require.NoError(t, err)
	require.Equal(t, testRefreshToken, data.RefreshToken)
}
