// Package realtime fans live mood events out to connected /ws clients,
// across instances when Redis is available.
package realtime

import (
	"errors"
	"sync"

	"aura/internal/models"
	"aura/internal/observability"
)

// ErrRegistryFull is returned by Add once the connection limit is reached.
var ErrRegistryFull = errors.New("server connection limit reached")

// Registry is the set of live clients on this instance.
type Registry struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	maxConns int
}

// NewRegistry creates a registry holding at most maxConns clients. maxConns
// <= 0 means no limit.
func NewRegistry(maxConns int) *Registry {
	return &Registry{
		clients:  make(map[*Client]struct{}),
		maxConns: maxConns,
	}
}

func (r *Registry) Add(c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxConns > 0 && len(r.clients) >= r.maxConns {
		return ErrRegistryFull
	}
	r.clients[c] = struct{}{}
	observability.WebSocketConnectionsTotal.Inc()
	return nil
}

// Remove drops the client and closes its Send channel. Removing twice is safe.
func (r *Registry) Remove(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[c]; !ok {
		return
	}
	delete(r.clients, c)
	close(c.Send)
	observability.WebSocketConnectionsTotal.Dec()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Broadcast queues message for every client except the one with exceptID and
// returns how many clients accepted it.
func (r *Registry) Broadcast(message []byte, exceptID string) int {
	return r.deliver(message, exceptID, func(*Client) bool { return true })
}

// BroadcastMood is Broadcast restricted to clients in the mood room and
// clients that joined no room.
func (r *Registry) BroadcastMood(message []byte, mood models.Mood, exceptID string) int {
	return r.deliver(message, exceptID, func(c *Client) bool {
		m := c.Mood()
		return m == "" || m == mood
	})
}

func (r *Registry) deliver(message []byte, exceptID string, match func(*Client) bool) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for c := range r.clients {
		if exceptID != "" && c.ID == exceptID {
			continue
		}
		if !match(c) {
			continue
		}
		if c.TrySend(message) {
			delivered++
		}
	}
	return delivered
}

// Shutdown removes every client. Each WritePump then sends a close frame and exits.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c := range r.clients {
		close(c.Send)
		observability.WebSocketConnectionsTotal.Dec()
	}
	r.clients = make(map[*Client]struct{})
}
