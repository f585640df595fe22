package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/cache"
)

func newTestManager(t *testing.T) (*cache.Manager, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return cache.NewManager(rdb, 5*time.Minute), mr
}

type payload struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Labels []string `json:"labels"`
}

func TestManager_SetGetRoundTrip(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	stored := payload{ID: 42, Name: "alpha", Labels: []string{"a", "b"}}
	key := cache.Key(cache.NamespaceTransaction, "single", "42", nil)

	require.True(t, m.Set(ctx, key, stored, 300*time.Second))

	var got payload
	require.True(t, m.Get(ctx, key, &got))
	assert.Equal(t, stored, got)

	// The value disappears once the ttl elapses.
	mr.FastForward(301 * time.Second)

	var expired payload
	assert.False(t, m.Get(ctx, key, &expired))
}

func TestManager_GetMiss(t *testing.T) {
	m, _ := newTestManager(t)

	var got payload
	assert.False(t, m.Get(context.Background(), "transaction:single:999", &got))
}

func TestManager_InvalidateNamespace(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.True(t, m.Set(ctx, "transaction:single:1", payload{ID: 1}, time.Minute))
	require.True(t, m.Set(ctx, "transaction:list:limit_20", []payload{{ID: 1}}, time.Minute))
	require.True(t, m.Set(ctx, "user:single:1", payload{ID: 1}, time.Minute))

	removed := m.Invalidate(ctx, cache.NamespaceTransaction, "")
	assert.Equal(t, 2, removed)

	var got payload
	assert.False(t, m.Get(ctx, "transaction:single:1", &got))

	// Other namespaces survive.
	assert.True(t, m.Get(ctx, "user:single:1", &got))
}

func TestManager_InvalidateByIdentifier(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	// The identifier match is loose: it also clears list entries that embed
	// the identifier as a filter parameter.
	require.True(t, m.Set(ctx, "transaction:single:42", payload{ID: 42}, time.Minute))
	require.True(t, m.Set(ctx, "transaction:user:42:limit_20", []payload{}, time.Minute))
	require.True(t, m.Set(ctx, "transaction:single:7", payload{ID: 7}, time.Minute))

	removed := m.Invalidate(ctx, cache.NamespaceTransaction, "42")
	assert.Equal(t, 2, removed)

	var got payload
	assert.False(t, m.Get(ctx, "transaction:single:42", &got))
	assert.False(t, m.Get(ctx, "transaction:user:42:limit_20", &got))
	assert.True(t, m.Get(ctx, "transaction:single:7", &got))
}

func TestManager_InvalidateEmptyNamespace(t *testing.T) {
	m, _ := newTestManager(t)

	assert.Equal(t, 0, m.Invalidate(context.Background(), cache.NamespaceAnalytics, ""))
}

// Every operation degrades to a miss when the store is unreachable; nothing
// panics and nothing errors out to the caller.
func TestManager_StorageErrorsSwallowed(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	require.True(t, m.Set(ctx, "transaction:single:1", payload{ID: 1}, time.Minute))

	mr.Close()

	var got payload
	assert.False(t, m.Get(ctx, "transaction:single:1", &got))
	assert.False(t, m.Set(ctx, "transaction:single:2", payload{ID: 2}, time.Minute))
	assert.Equal(t, 0, m.Invalidate(ctx, cache.NamespaceTransaction, ""))
}
