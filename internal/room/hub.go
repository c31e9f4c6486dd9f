package room

import (
	"sync"

	"github.com/livegate/livegate/internal/domain"
)

// Hub is the per-channel room registry. Rooms are created lazily on first
// reference and live for the life of the process.
type Hub struct {
	mu    sync.RWMutex
	rooms map[domain.ChannelName]*Room
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[domain.ChannelName]*Room)}
}

func (h *Hub) GetOrCreate(name domain.ChannelName) *Room {
	h.mu.RLock()
	r, ok := h.rooms[name]
	h.mu.RUnlock()
	if ok {
		return r
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok = h.rooms[name]; ok {
		return r
	}
	r = New(name)
	h.rooms[name] = r
	return r
}

// Peek returns the room only if it already exists. Callers use this to fall
// back to the presence store when no room instance is live.
func (h *Hub) Peek(name domain.ChannelName) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[name]
	return r, ok
}

type Info struct {
	Name    domain.ChannelName `json:"channel"`
	Viewers int                `json:"viewerCount"`
}

func (h *Hub) List() []Info {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Info, 0, len(h.rooms))
	for name, r := range h.rooms {
		out = append(out, Info{Name: name, Viewers: r.Count()})
	}
	return out
}
