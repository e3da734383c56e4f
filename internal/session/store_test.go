package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTripAndExpiry(t *testing.T) {
	m := NewMemoryStore(0)
	defer m.Close()
	now := time.Now()
	m.now = func() time.Time { return now }

	ctx := context.Background()
	s := &State{ID: "01HZX5V3JQ4Z9S6P8C2M1K7R0A", Flash: "hi"}
	s.Login("admin", "pw")
	require.NoError(t, m.Save(ctx, s, time.Minute))

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAuthenticated())
	assert.Equal(t, "hi", got.Flash)

	got.Flash = "changed"
	again, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", again.Flash)

	now = now.Add(2 * time.Minute)
	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSweepAndDelete(t *testing.T) {
	m := NewMemoryStore(0)
	defer m.Close()
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, &State{ID: "a"}, time.Second))
	require.NoError(t, m.Save(ctx, &State{ID: "b"}, time.Hour))
	require.NoError(t, m.Delete(ctx, "b"))
	assert.Equal(t, 1, m.Len())

	now = now.Add(time.Minute)
	m.sweep()
	assert.Equal(t, 0, m.Len())
}

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStore(t *testing.T) {
	fake := newFakeRedis()
	store := NewRedisStore(fake)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	s := &State{ID: "sid-1"}
	s.CompleteSignIn(Identity{Username: "u"}, "id", "acc", time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, s, 30*time.Minute))
	assert.Equal(t, 30*time.Minute, fake.ttl["estate:session:sid-1"])

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "acc", got.AccessToken())

	require.NoError(t, store.Delete(ctx, "sid-1"))
	_, err = store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreSurfacesBackendErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	store := NewRedisStore(fake)

	_, err := store.Get(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Error(t, store.Save(context.Background(), &State{ID: "x"}, time.Minute))
}
