package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dibaisales/central/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_GetSet(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "5511999990000", `{"status":"valid"}`, time.Hour))
	v, ok, err := s.Get(ctx, "5511999990000")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"status":"valid"}`, v)
}

func TestInMemoryStore_Expiry(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, s.Set(ctx, "forever", "v", 0))

	now = now.Add(2 * time.Minute)
	_, ok, _ := s.Get(ctx, "k")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "forever")
	assert.True(t, ok)

	s.cleanup()
	assert.Equal(t, 1, s.Size())
}

func TestInMemoryStore_CloseIdempotent(t *testing.T) {
	s := NewInMemoryStore()
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestStoreFactory_DisabledRedis(t *testing.T) {
	store, err := NewStoreFactory(config.RedisConfig{Enabled: false}).CreateStore()
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &InMemoryStore{}, store)
}

func TestStoreFactory_Fallback(t *testing.T) {
	cfg := config.RedisConfig{Enabled: true, Addr: "127.0.0.1:1"}

	store, err := NewStoreFactory(cfg).CreateStore()
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &InMemoryStore{}, store)

	_, err = NewStoreFactory(cfg, WithInMemoryFallback(false)).CreateStore()
	assert.Error(t, err)
}
