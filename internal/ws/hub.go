package ws

import (
	"encoding/json"
	"sync"
	"time"

	"predman/internal/domain"
	"predman/internal/logger"
)

// Hub routes board events to the room of their project.
type Hub struct {
	Rooms map[string]*Room
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{Rooms: make(map[string]*Room)}
}

// Join puts c into the room of its project, creating the room on demand.
func (h *Hub) Join(c *Client) *Room {
	h.mu.Lock()
	room, ok := h.Rooms[c.ProjectID]
	if !ok {
		room = NewRoom(c.ProjectID)
		h.Rooms[c.ProjectID] = room
	}
	// add under h.mu so OnDisconnect cannot drop the room in between
	room.add(c)
	h.mu.Unlock()

	logger.Debug("ws client joined", "user_id", c.UserID, "project_id", c.ProjectID)
	return room
}

func (h *Hub) OnDisconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.Rooms[c.ProjectID]
	if !ok {
		return
	}
	if room.remove(c) == 0 {
		delete(h.Rooms, c.ProjectID)
	}
	logger.Debug("ws client left", "user_id", c.UserID, "project_id", c.ProjectID)
}

// Publish sends ev to everyone watching its project. It never blocks.
func (h *Hub) Publish(ev domain.BoardEvent) {
	h.mu.RLock()
	room, ok := h.Rooms[ev.ProjectID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws: marshal board event", "type", ev.Type, "error", err)
		return
	}
	room.broadcast(msg)
}

// Watchers returns the number of open connections on a project.
func (h *Hub) Watchers(projectID string) int {
	h.mu.RLock()
	room, ok := h.Rooms[projectID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	return room.size()
}

func (h *Hub) StartCleanup() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			h.cleanupEmptyRooms()
		}
	}()
}

func (h *Hub) cleanupEmptyRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, room := range h.Rooms {
		if room.size() == 0 {
			delete(h.Rooms, id)
			logger.Debug("cleaned up empty room", "project_id", id)
		}
	}
}
