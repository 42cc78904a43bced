package admin

import (
	"context"
	"sync"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/auth"
)

// ClientCache keeps one Clients bundle per user, rebuilt when the
// user's access token changes (after a refresh or re-authorization).
type ClientCache struct {
	mu      sync.RWMutex
	clients map[string]*Clients
}

func NewClientCache() *ClientCache {
	return &ClientCache{clients: make(map[string]*Clients)}
}

// For returns the cached Clients for the credential's user, building
// a fresh bundle when none exists or the token has rotated.
func (c *ClientCache) For(ctx context.Context, cred *auth.Credential) (*Clients, error) {
	c.mu.RLock()
	cached, ok := c.clients[cred.UserID]
	c.mu.RUnlock()
	if ok && cached.AccessToken == cred.AccessToken {
		return cached, nil
	}

	built, err := NewClients(ctx, cred)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.clients[cred.UserID] = built
	c.mu.Unlock()
	return built, nil
}

// Evict drops the cached Clients for a user, typically after a revoke.
func (c *ClientCache) Evict(userID string) {
	c.mu.Lock()
	delete(c.clients, userID)
	c.mu.Unlock()
}

// Len reports the number of cached client bundles.
func (c *ClientCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}
