package clients

import (
	"sync"

	"github.com/adamgrzybowski/google-task-mcp/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface.
type InMemoryRepo struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewInMemoryRepo creates a new in-memory registered client repository.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		clients: make(map[string]*Client),
	}
}

// Upsert stores a registered client.
func (r *InMemoryRepo) Upsert(client *Client) error {
	if client == nil || client.ID == "" {
		return errors.ErrClientNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy to prevent external modifications
	stored := *client
	stored.RedirectURIs = append([]string(nil), client.RedirectURIs...)
	r.clients[client.ID] = &stored
	return nil
}

// Get retrieves a registered client by ID.
func (r *InMemoryRepo) Get(clientID string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.clients[clientID]
	if !exists {
		return nil, errors.ErrClientNotFound
	}

	copied := *client
	copied.RedirectURIs = append([]string(nil), client.RedirectURIs...)
	return &copied, nil
}

