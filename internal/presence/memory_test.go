package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(ttl time.Duration) (*MemoryStore, *time.Time) {
	s := NewMemoryStore(ttl)
	clock := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestMemoryStoreHeartbeatAndCount(t *testing.T) {
	s, _ := newTestStore(60 * time.Second)
	ctx := context.Background()

	require.NoError(t, s.Heartbeat(ctx, "room1", "v1"))
	require.NoError(t, s.Heartbeat(ctx, "room1", "v2"))
	require.NoError(t, s.Heartbeat(ctx, "room2", "v1"))

	n, err := s.CountChannel(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.CountChannel(ctx, "room2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStoreHeartbeatUpsert(t *testing.T) {
	s, _ := newTestStore(60 * time.Second)
	ctx := context.Background()

	require.NoError(t, s.Heartbeat(ctx, "room1", "v1"))
	require.NoError(t, s.Heartbeat(ctx, "room1", "v1"))

	n, err := s.CountChannel(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStoreRemove(t *testing.T) {
	s, _ := newTestStore(60 * time.Second)
	ctx := context.Background()

	require.NoError(t, s.Heartbeat(ctx, "room1", "v1"))
	require.NoError(t, s.Remove(ctx, "room1", "v1"))
	// absent record, still no error
	require.NoError(t, s.Remove(ctx, "room1", "v1"))

	n, err := s.CountChannel(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s, clock := newTestStore(60 * time.Second)
	ctx := context.Background()

	require.NoError(t, s.Heartbeat(ctx, "room1", "v1"))

	*clock = clock.Add(61 * time.Second)
	n, err := s.CountChannel(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryStoreHeartbeatRefreshesTTL(t *testing.T) {
	s, clock := newTestStore(60 * time.Second)
	ctx := context.Background()

	require.NoError(t, s.Heartbeat(ctx, "room1", "v1"))
	*clock = clock.Add(45 * time.Second)
	require.NoError(t, s.Heartbeat(ctx, "room1", "v1"))
	*clock = clock.Add(45 * time.Second)

	n, err := s.CountChannel(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
