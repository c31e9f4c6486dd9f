package presence

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback used when no redis address is
// configured. Expired records are dropped lazily on read.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	deadlines map[string]time.Time

	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:       ttl,
		deadlines: make(map[string]time.Time),
		now:       time.Now,
	}
}

func (s *MemoryStore) Heartbeat(_ context.Context, channel, viewerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadlines[recordKey(channel, viewerID)] = s.now().Add(s.ttl)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, channel, viewerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deadlines, recordKey(channel, viewerID))
	return nil
}

func (s *MemoryStore) CountChannel(_ context.Context, channel string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	prefix := channelPrefix(channel)
	n := 0
	for key, deadline := range s.deadlines {
		if now.After(deadline) {
			delete(s.deadlines, key)
			continue
		}
		if strings.HasPrefix(key, prefix) {
			n++
		}
	}
	return n, nil
}
