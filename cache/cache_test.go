package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	store.SetBytes("/", []byte("page one"), time.Minute)
	body, ok := store.GetBytes("/")
	assert.True(t, ok)
	assert.Equal(t, []byte("page one"), body)

	_, ok = store.GetBytes("/?page=2")
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()

	store.SetBytes("/", []byte("stale soon"), 30*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	_, ok := store.GetBytes("/")
	assert.False(t, ok)
}

func TestMemoryStoreFlush(t *testing.T) {
	store := NewMemoryStore()
	store.SetBytes("/", []byte("a"), time.Minute)
	store.SetBytes("/?page=2", []byte("b"), time.Minute)

	store.Flush()

	_, ok := store.GetBytes("/")
	assert.False(t, ok)
	_, ok = store.GetBytes("/?page=2")
	assert.False(t, ok)
}

func TestRedisStoreRoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	store.SetBytes("/", []byte("page one"), 20*time.Second)
	body, ok := store.GetBytes("/")
	assert.True(t, ok)
	assert.Equal(t, []byte("page one"), body)

	mr.FastForward(21 * time.Second)
	_, ok = store.GetBytes("/")
	assert.False(t, ok)
}

func TestRedisStoreFlushOnlyTouchesPageKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client)

	store.SetBytes("/", []byte("a"), time.Minute)
	mr.Set("unrelated", "keep me")

	store.Flush()

	_, ok := store.GetBytes("/")
	assert.False(t, ok)
	val, err := mr.Get("unrelated")
	assert.NoError(t, err)
	assert.Equal(t, "keep me", val)
}

func TestServiceAppliesConfiguredTTL(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, 30*time.Millisecond)

	svc.Set("/", []byte("cached"))
	_, ok := svc.Get("/")
	assert.True(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, ok = svc.Get("/")
	assert.False(t, ok)
}
