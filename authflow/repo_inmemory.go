package authflow

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adamgrzybowski/google-task-mcp/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of Repo. Records
// live in two indexes, by client state and by proxy code; every mutation
// keeps the two views pointing at the same record. Pending authorizations
// are never persisted: losing an in-flight login attempt on restart only
// forces the user back through /authorize.
type InMemoryRepo struct {
	mu      sync.Mutex
	byState map[string]*PendingAuthorization
	byCode  map[string]*PendingAuthorization

	ttl         time.Duration
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewInMemoryRepo creates a repository whose Sweep evicts records older than
// ttl.
func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		byState:     make(map[string]*PendingAuthorization),
		byCode:      make(map[string]*PendingAuthorization),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}
}

// Create registers a new pending authorization keyed by state.
func (r *InMemoryRepo) Create(state string, pending *PendingAuthorization) error {
	if state == "" {
		return errors.ErrMissingState
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byState[state]; exists {
		return errors.ErrDuplicateState
	}

	stored := *pending
	stored.ClientState = state
	r.byState[state] = &stored
	return nil
}

// Attach fills in the upstream and proxy codes and indexes the record by the
// proxy code, all under one lock. A record can only be completed once: a
// replayed callback on an already-completed state is rejected, so it can
// never mint a second live proxy code or leave a stale byCode entry behind.
func (r *InMemoryRepo) Attach(state, upstreamCode, proxyCode string) (*PendingAuthorization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, exists := r.byState[state]
	if !exists {
		return nil, errors.ErrStateNotFound
	}
	if pending.ProxyCode != "" {
		return nil, errors.ErrStateNotFound
	}

	pending.UpstreamCode = upstreamCode
	pending.ProxyCode = proxyCode
	r.byCode[proxyCode] = pending

	copied := *pending
	return &copied, nil
}

// TakeByCode atomically removes and returns the record for a proxy code.
func (r *InMemoryRepo) TakeByCode(proxyCode string) (*PendingAuthorization, error) {
	if proxyCode == "" {
		return nil, errors.ErrMissingCode
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pending, exists := r.byCode[proxyCode]
	if !exists {
		return nil, errors.ErrCodeNotFound
	}

	delete(r.byCode, proxyCode)
	delete(r.byState, pending.ClientState)

	copied := *pending
	return &copied, nil
}

// Sweep evicts records older than the TTL from both indexes.
func (r *InMemoryRepo) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for state, pending := range r.byState {
		if now.Sub(pending.CreatedAt) > r.ttl {
			delete(r.byState, state)
			if pending.ProxyCode != "" {
				delete(r.byCode, pending.ProxyCode)
			}
			removed++
		}
	}
	return removed
}

// Start launches the background sweep at the given interval. Callers must
// Stop the repo to release the goroutine.
func (r *InMemoryRepo) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := r.Sweep(time.Now()); removed > 0 {
					log.Debug().Int("removed", removed).Msg("swept expired pending authorizations")
				}
			case <-r.stopCleanup:
				return
			}
		}
	}()
}

// Stop terminates the background sweep.
func (r *InMemoryRepo) Stop() {
	r.stopOnce.Do(func() { close(r.stopCleanup) })
}
