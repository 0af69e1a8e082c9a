package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srujan5570/Communications-App/internal/cache"
	"github.com/srujan5570/Communications-App/internal/domain"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]domain.Message
	gets    int
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]domain.Message)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return nil, errors.New("redis down")
	}
	msgs, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return msgs, nil
}

func (c *memoryCache) Set(_ context.Context, key string, msgs []domain.Message, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = msgs
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memoryCache) BuildKey(a, b string) string { return "test:" + domain.ConversationKey(a, b) }
func (c *memoryCache) Close() error                { return nil }

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func TestCachedLedger_PopulatesAndInvalidates(t *testing.T) {
	mc := newMemoryCache()
	l := NewCachedLedger(newTestLedger(t), mc, time.Minute)
	ctx := context.Background()
	key := mc.BuildKey("alice", "bob")

	msg, err := l.Append(ctx, "alice", "bob", "hi")
	require.NoError(t, err)

	msgs, err := l.FindConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, mc.has(key))

	_, err = l.UpdateStatus(ctx, msg.ID, domain.StatusDelivered)
	require.NoError(t, err)
	assert.False(t, mc.has(key))

	msgs, err = l.FindConversation(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.StatusDelivered, msgs[0].Status)
}

func TestCachedLedger_AppendInvalidates(t *testing.T) {
	mc := newMemoryCache()
	l := NewCachedLedger(newTestLedger(t), mc, time.Minute)
	ctx := context.Background()

	_, err := l.FindConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, mc.has(mc.BuildKey("alice", "bob")))

	_, err = l.Append(ctx, "bob", "alice", "hey")
	require.NoError(t, err)
	assert.False(t, mc.has(mc.BuildKey("alice", "bob")))

	msgs, err := l.FindConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestCachedLedger_CacheErrorFallsBackToStore(t *testing.T) {
	mc := newMemoryCache()
	mc.failGet = true
	l := NewCachedLedger(newTestLedger(t), mc, time.Minute)
	ctx := context.Background()

	_, err := l.Append(ctx, "alice", "bob", "hi")
	require.NoError(t, err)

	msgs, err := l.FindConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestCachedLedger_NotFoundPassesThrough(t *testing.T) {
	l := NewCachedLedger(newTestLedger(t), newMemoryCache(), time.Minute)

	_, err := l.UpdateStatus(context.Background(), "missing", domain.StatusRead)
	assert.ErrorIs(t, err, ErrNotFound)
}
