package redisstore

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/kv"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client, mr
}

func newStore(t *testing.T, client *redis.Client) *Store {
	t.Helper()
	s, err := New(context.Background(), client, Options{Prefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	s := newStore(t, client)

	_, ok, err := s.Get(ctx, "accounts")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "accounts", "[]"))
	v, ok, err := s.Get(ctx, "accounts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
	assert.Equal(t, "[]", mr.HGet("test:kv:accounts", "value"))
	assert.Equal(t, kv.Digest("[]"), mr.HGet("test:kv:accounts", "digest"))

	require.NoError(t, s.Set(ctx, "active_account", `"a"`))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"accounts", "active_account"}, keys)

	require.NoError(t, s.Delete(ctx, "accounts"))
	_, ok, err = s.Get(ctx, "accounts")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)
	s := newStore(t, client)

	ok, err := s.CompareAndSwap(ctx, "global_collabs", "", "[]")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CompareAndSwap(ctx, "global_collabs", "", "[1]")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.CompareAndSwap(ctx, "global_collabs", kv.Digest("[]"), "[1]")
	require.NoError(t, err)
	assert.True(t, ok)

	v, _, _ := s.Get(ctx, "global_collabs")
	assert.Equal(t, "[1]", v)
}

func TestStore_SetMany(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)
	s := newStore(t, client)

	require.NoError(t, s.SetMany(ctx, map[string]string{"a": "1", "b": "2"}))
	v, ok, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestStore_ExternalChanges(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)
	replicaA := newStore(t, client)
	replicaB := newStore(t, client)

	var (
		mu    sync.Mutex
		seenA []kv.Change
		seenB []kv.Change
	)
	replicaA.OnExternalChange("global_collabs", func(c kv.Change) {
		mu.Lock()
		defer mu.Unlock()
		seenA = append(seenA, c)
	})
	replicaB.OnExternalChange("global_collabs", func(c kv.Change) {
		mu.Lock()
		defer mu.Unlock()
		seenB = append(seenB, c)
	})

	require.NoError(t, replicaB.Set(ctx, "global_collabs", "[]"))
	require.NoError(t, replicaB.Delete(ctx, "global_collabs"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seenA) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "[]", seenA[0].Value)
	assert.Equal(t, replicaB.Origin(), seenA[0].Origin)
	assert.True(t, seenA[1].Deleted)
	assert.Empty(t, seenB)
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)
	s, err := New(ctx, client, Options{})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, _, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrStoreClosed)
}

func TestOpen_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := Open(ctx, "127.0.0.1:1", Options{})
	require.Error(t, err)
}

func TestOpen_OwnsClient(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := Open(context.Background(), mr.Addr(), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "k", "v"))
	assert.Equal(t, "v", mr.HGet(DefaultPrefix+"kv:k", "value"))
	require.NoError(t, s.Close())
}
