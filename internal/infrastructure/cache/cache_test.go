package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/billing/internal/infrastructure/testutil"
	"github.com/orris-inc/billing/internal/shared/logger"
)

type payload struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

func newRedisCache(t *testing.T, prefix string) (*Cache, *RedisStore) {
	t.Helper()
	_, client := testutil.NewTestRedis(t)
	store := NewRedisStore(client, 10)
	return New(store, prefix, Options{DeleteBatchSize: 3}, logger.Nop()), store
}

func TestCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCache(t, "subscription:plans:")

	var miss payload
	assert.False(t, c.Get(ctx, "plan:1", &miss))

	require.True(t, c.Set(ctx, "plan:1", payload{Name: "Pro", Price: "29.99"}, time.Minute))

	var got payload
	require.True(t, c.Get(ctx, "plan:1", &got))
	assert.Equal(t, "Pro", got.Name)

	assert.True(t, c.Delete(ctx, "plan:1"))
	assert.False(t, c.Delete(ctx, "plan:1"))
	assert.False(t, c.Get(ctx, "plan:1", &got))
}

func TestCache_NamespacesDoNotCollide(t *testing.T) {
	ctx := context.Background()
	_, client := testutil.NewTestRedis(t)
	store := NewRedisStore(client, 10)
	plans := New(store, "subscription:plans:", Options{}, logger.Nop())
	promos := New(store, "subscription:promo:", Options{}, logger.Nop())

	require.True(t, plans.Set(ctx, "list:a", "plans", 0))
	require.True(t, promos.Set(ctx, "list:a", "promos", 0))

	assert.Equal(t, 1, plans.DeleteByPattern(ctx, "list:*", 0))

	var v string
	assert.False(t, plans.Get(ctx, "list:a", &v))
	require.True(t, promos.Get(ctx, "list:a", &v))
	assert.Equal(t, "promos", v)
}

func TestRedisStore_DeleteByPatternBatches(t *testing.T) {
	ctx := context.Background()
	c, store := newRedisCache(t, "ns:")

	for i := 0; i < 25; i++ {
		require.True(t, c.Set(ctx, fmt.Sprintf("plans:list:%d", i), i, time.Minute))
	}
	require.True(t, c.Set(ctx, "plan:keep", 1, time.Minute))

	n, err := store.DeleteByPattern(ctx, "ns:plans:*", 4)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	var v int
	assert.True(t, c.Get(ctx, "plan:keep", &v))
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewTestRedis(t)
	c := New(NewRedisStore(client, 10), "ns:", Options{}, logger.Nop())

	require.True(t, c.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	var v string
	assert.False(t, c.Get(ctx, "k", &v))
}

func TestCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(time.Minute), "subscription:plans:", Options{}, logger.Nop())

	for _, k := range []string{"plan:1", "plan:2", "plans:list:x", "plans:list:y", "app:A1:dropdown"} {
		require.True(t, c.Set(ctx, k, k, 0))
	}

	c.Invalidate(ctx, "plan:1", "plans:*", "app:A1:dropdown")

	var v string
	assert.False(t, c.Get(ctx, "plan:1", &v))
	assert.False(t, c.Get(ctx, "plans:list:x", &v))
	assert.False(t, c.Get(ctx, "app:A1:dropdown", &v))
	assert.True(t, c.Get(ctx, "plan:2", &v))
}

func TestMemoryStore_DeleteByPattern(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	require.NoError(t, s.Set(ctx, "p:validation:SAVE10:u1:p1", []byte("1"), 0))
	require.NoError(t, s.Set(ctx, "p:validation:SAVE10:u2:p1", []byte("1"), 0))
	require.NoError(t, s.Set(ctx, "p:validation:OTHER:u1:p1", []byte("1"), 0))

	n, err := s.DeleteByPattern(ctx, "p:validation:SAVE10:*", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, found, err := s.Get(ctx, "p:validation:OTHER:u1:p1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestEscapePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user1", "user1"},
		{"u[1", `u\[1`},
		{"a*b?c", `a\*b\?c`},
		{`x\y]`, `x\\y\]`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapePattern(tt.in))
			key, ok := literalKey(tt.want)
			assert.True(t, ok)
			assert.Equal(t, tt.in, key)
		})
	}

	_, ok := literalKey("user:" + EscapePattern("u[1") + ":app:*")
	assert.False(t, ok)
}

func TestCache_InvalidateEscapedParts(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(time.Minute), "subscriptions:", Options{}, logger.Nop())

	for _, k := range []string{"user:u[1:app:A1", "user:u1:app:A1", "sub:s*1", "sub:s21"} {
		require.True(t, c.Set(ctx, k, k, 0))
	}

	c.Invalidate(ctx,
		"user:"+EscapePattern("u[1")+":app:*",
		EscapePattern("sub:s*1"),
	)

	var v string
	assert.False(t, c.Get(ctx, "user:u[1:app:A1", &v))
	assert.False(t, c.Get(ctx, "sub:s*1", &v))
	assert.True(t, c.Get(ctx, "user:u1:app:A1", &v))
	assert.True(t, c.Get(ctx, "sub:s21", &v))
}

// failingStore fails every call and counts attempts.
type failingStore struct {
	calls atomic.Int32
}

var errBackend = errors.New("backend unavailable")

func (s *failingStore) Get(context.Context, string) ([]byte, bool, error) {
	s.calls.Add(1)
	return nil, false, errBackend
}

func (s *failingStore) Set(context.Context, string, []byte, time.Duration) error {
	s.calls.Add(1)
	return errBackend
}

func (s *failingStore) Delete(context.Context, string) (bool, error) {
	s.calls.Add(1)
	return false, errBackend
}

func (s *failingStore) DeleteByPattern(context.Context, string, int) (int, error) {
	s.calls.Add(1)
	return 0, errBackend
}

func TestCache_FailOpen(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}
	c := New(store, "ns:", Options{DeleteRetries: 2}, logger.Nop())

	var v string
	assert.False(t, c.Get(ctx, "k", &v))
	assert.False(t, c.Set(ctx, "k", "v", 0))
	assert.False(t, c.Delete(ctx, "k"))
	assert.Equal(t, 0, c.DeleteByPattern(ctx, "*", 0))

	// get + set once each, delete and pattern delete with two retries each
	assert.Equal(t, int32(1+1+3+3), store.calls.Load())
}

func TestCache_FailOpenWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	c := New(NewRedisStore(client, 10), "ns:", Options{OperationTimeout: 100 * time.Millisecond}, logger.Nop())
	mr.Close()

	var v string
	assert.False(t, c.Get(ctx, "k", &v))
	assert.False(t, c.Set(ctx, "k", "v", 0))
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(time.Minute), "ns:", Options{}, logger.Nop())

	loads := 0
	load := func(context.Context) (*payload, error) {
		loads++
		return &payload{Name: "Pro"}, nil
	}

	first, err := GetOrLoad(ctx, c, "plan:1", 0, load)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, c, "plan:1", 0, load)
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Equal(t, first.Name, second.Name)

	_, err = GetOrLoad(ctx, c, "plan:2", 0, func(context.Context) (*payload, error) {
		return nil, errBackend
	})
	assert.ErrorIs(t, err, errBackend)
}
