package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livegate/livegate/internal/domain"
)

func TestHubGetOrCreateReturnsSameInstance(t *testing.T) {
	h := NewHub()
	a := h.GetOrCreate("room1")
	b := h.GetOrCreate("room1")
	c := h.GetOrCreate("room2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestHubPeekDoesNotCreate(t *testing.T) {
	h := NewHub()
	_, ok := h.Peek("room1")
	assert.False(t, ok)

	created := h.GetOrCreate("room1")
	peeked, ok := h.Peek("room1")
	require.True(t, ok)
	assert.Same(t, created, peeked)
}

func TestHubList(t *testing.T) {
	h := NewHub()
	h.GetOrCreate("room1").Notify(ViewerJoin, domain.ViewerID("v1"))
	h.GetOrCreate("room2")

	infos := h.List()
	require.Len(t, infos, 2)
	byName := map[domain.ChannelName]int{}
	for _, in := range infos {
		byName[in.Name] = in.Viewers
	}
	assert.Equal(t, 1, byName["room1"])
	assert.Equal(t, 0, byName["room2"])
}
