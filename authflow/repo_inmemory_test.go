package authflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adamgrzybowski/google-task-mcp/authflow"
	"github.com/adamgrzybowski/google-task-mcp/internal/errors"
)

const (
	testState        = "random-state-value"
	testRedirectURI  = "http://localhost:3000/callback"
	testUpstreamCode = "4/upstream-code"
	testProxyCode    = "code_abc123"
)

func newPending(createdAt time.Time) *authflow.PendingAuthorization {
	return &authflow.PendingAuthorization{
		ClientRedirectURI: testRedirectURI,
		ClientState:       testState,
		CreatedAt:         createdAt,
	}
}

func TestCreateRejectsEmptyState(t *testing.T) {
	repo := authflow.NewInMemoryRepo(10 * time.Minute)

	err := repo.Create("", newPending(time.Now()))
	require.ErrorIs(t, err, errors.ErrMissingState)
}

func TestCreateRejectsDuplicateState(t *testing.T) {
	repo := authflow.NewInMemoryRepo(10 * time.Minute)

	require.NoError(t, repo.Create(testState, newPending(time.Now())))
	err := repo.Create(testState, newPending(time.Now()))
	require.ErrorIs(t, err, errors.ErrDuplicateState)
}

func TestAttachCompletesPendingAuthorization(t *testing.T) {
	repo := authflow.NewInMemoryRepo(10 * time.Minute)
	require.NoError(t, repo.Create(testState, newPending(time.Now())))

	pending, err := repo.Attach(testState, testUpstreamCode, testProxyCode)
	require.NoError(t, err)
	require.Equal(t, testUpstreamCode, pending.UpstreamCode)
	require.Equal(t, testProxyCode, pending.ProxyCode)
	require.Equal(t, testRedirectURI, pending.ClientRedirectURI)
}

func TestAttachUnknownState(t *testing.T) {
	repo := authflow.NewInMemoryRepo(10 * time.Minute)

	_, err := repo.Attach("no-such-state", testUpstreamCode, testProxyCode)
	require.ErrorIs(t, err, errors.ErrStateNotFound)
}

func TestTakeByCodeIsSingleUse(t *testing.T) {
	repo := authflow.NewInMemoryRepo(10 * time.Minute)
	require.NoError(t, repo.Create(testState, newPending(time.Now())))
	_, err := repo.Attach(testState, testUpstreamCode, testProxyCode)
	require.NoError(t, err)

	pending, err := repo.TakeByCode(testProxyCode)
	require.NoError(t, err)
	require.Equal(t, testUpstreamCode, pending.UpstreamCode)

	// Second take must fail: the code was consumed.
	_, err = repo.TakeByCode(testProxyCode)
	require.ErrorIs(t, err, errors.ErrCodeNotFound)

	// The state index was cleaned up with it.
	_, err = repo.Attach(testState, testUpstreamCode, testProxyCode)
	require.ErrorIs(t, err, errors.ErrStateNotFound)
}

func TestAttachRejectsReplayedCallback(t *testing.T) {
	repo := authflow.NewInMemoryRepo(10 * time.Minute)
	require.NoError(t, repo.Create(testState, newPending(time.Now())))

	_, err := repo.Attach(testState, testUpstreamCode, "code_first")
	require.NoError(t, err)

	// A replayed callback on the completed state must not mint a second
	// live proxy code.
	_, err = repo.Attach(testState, testUpstreamCode, "code_second")
	require.ErrorIs(t, err, errors.ErrStateNotFound)

	_, err = repo.TakeByCode("code_second")
	require.ErrorIs(t, err, errors.ErrCodeNotFound)

	pending, err := repo.TakeByCode("code_first")
	require.NoError(t, err)
	require.Equal(t, "code_first", pending.ProxyCode)
}

func TestReplayedCallbackLeavesNothingBehindAfterSweep(t *testing.T) {
	repo := authflow.NewInMemoryRepo(10 * time.Minute)
	now := time.Now()
	require.NoError(t, repo.Create(testState, newPending(now.Add(-11*time.Minute))))

	_, err := repo.Attach(testState, testUpstreamCode, "code_first")
	require.NoError(t, err)
	_, err = repo.Attach(testState, testUpstreamCode, "code_second")
	require.ErrorIs(t, err, errors.ErrStateNotFound)

	require.Equal(t, 1, repo.Sweep(now))

	// Neither proxy code outlives the TTL sweep.
	_, err = repo.TakeByCode("code_first")
	require.ErrorIs(t, err, errors.ErrCodeNotFound)
	_, err = repo.TakeByCode("code_second")
	require.ErrorIs(t, err, errors.ErrCodeNotFound)
}

func TestTakeByCodeUnknownCode(t *testing.T) {
	repo := authflow.NewInMemoryRepo(10 * time.Minute)

	_, err := repo.TakeByCode("never-issued")
	require.ErrorIs(t, err, errors.ErrCodeNotFound)

	_, err = repo.TakeByCode("")
	require.ErrorIs(t, err, errors.ErrMissingCode)
}

func TestSweepEvictsExpiredRecords(t *testing.T) {
	repo := authflow.NewInMemoryRepo(10 * time.Minute)
	now := time.Now()

	require.NoError(t, repo.Create("fresh", newPending(now)))
	require.NoError(t, repo.Create("stale", newPending(now.Add(-11*time.Minute))))

	removed := repo.Sweep(now)
	require.Equal(t, 1, removed)

	_, err := repo.Attach("stale", testUpstreamCode, testProxyCode)
	require.ErrorIs(t, err, errors.ErrStateNotFound)

	_, err = repo.Attach("fresh", testUpstreamCode, testProxyCode)
	require.NoError(t, err)
}

func TestSweepEvictsCompletedRecordsFromBothIndexes(t *testing.T) {
	repo := authflow.NewInMemoryRepo(10 * time.Minute)
	now := time.Now()

	require.NoError(t, repo.Create(testState, newPending(now.Add(-11*time.Minute))))
	_, err := repo.Attach(testState, testUpstreamCode, testProxyCode)
	require.NoError(t, err)

	require.Equal(t, 1, repo.Sweep(now))

	_, err = repo.TakeByCode(testProxyCode)
	require.ErrorIs(t, err, errors.ErrCodeNotFound)
}

func TestAttachReturnsCopy(t *testing.T) {
	repo := authflow.NewInMemoryRepo(10 * time.Minute)
	require.NoError(t, repo.Create(testState, newPending(time.Now())))

	first, err := repo.Attach(testState, testUpstreamCode, testProxyCode)
	require.NoError(t, err)
	first.UpstreamCode = "mutated"

	taken, err := repo.TakeByCode(testProxyCode)
	require.NoError(t, err)
	require.Equal(t, testUpstreamCode, taken.UpstreamCode)
}
