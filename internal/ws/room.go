package ws

import (
	"sync"
	"time"

	"predman/internal/logger"
)

// Room holds every connection watching one project's board.
type Room struct {
	ID      string
	Clients map[*Client]struct{}

	mu        sync.RWMutex
	createdAt time.Time
}

func NewRoom(projectID string) *Room {
	return &Room{
		ID:        projectID,
		Clients:   make(map[*Client]struct{}),
		createdAt: time.Now(),
	}
}

func (r *Room) add(c *Client) {
	r.mu.Lock()
	r.Clients[c] = struct{}{}
	r.mu.Unlock()
}

// remove drops c and reports how many clients are left.
func (r *Room) remove(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Clients, c)
	return len(r.Clients)
}

func (r *Room) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients)
}

// broadcast queues msg for every client. A client whose buffer is full is
// too slow to keep up and gets disconnected.
func (r *Room) broadcast(msg []byte) {
	r.mu.RLock()
	var slow []*Client
	for c := range r.Clients {
		if !c.queue(msg) {
			slow = append(slow, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range slow {
		logger.Warn("ws client too slow, dropping", "user_id", c.UserID, "project_id", r.ID)
		c.close()
	}
}
