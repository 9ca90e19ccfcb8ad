package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datara/scholarhub/internal/domain"
)

type draft struct {
	Step  int    `json:"step"`
	Email string `json:"email"`
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test:"), mr
}

func TestStores_RoundTrip(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	memStore := NewMemoryStore(0)
	t.Cleanup(memStore.Close)

	for name, s := range map[string]Store{"redis": redisStore, "memory": memStore} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.Set(ctx, "draft:1", draft{Step: 3, Email: "ana@example.org"}, time.Hour))

			var got draft
			require.NoError(t, s.Get(ctx, "draft:1", &got))
			assert.Equal(t, draft{Step: 3, Email: "ana@example.org"}, got)

			require.NoError(t, s.Delete(ctx, "draft:1"))
			assert.ErrorIs(t, s.Get(ctx, "draft:1", &got), domain.ErrNotFound)

			assert.ErrorIs(t, s.Set(ctx, "", draft{}, time.Hour), domain.ErrInvalidInput)
			assert.ErrorIs(t, s.Set(ctx, "k", draft{}, 0), domain.ErrInvalidInput)
		})
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "otp", draft{Step: 7}, time.Minute))
	assert.True(t, mr.Exists("test:otp"))

	mr.FastForward(2 * time.Minute)

	var got draft
	assert.ErrorIs(t, s.Get(ctx, "otp", &got), domain.ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "otp", draft{Step: 7}, time.Minute))

	now = now.Add(59 * time.Second)
	var got draft
	require.NoError(t, s.Get(ctx, "otp", &got))

	now = now.Add(time.Second)
	assert.ErrorIs(t, s.Get(ctx, "otp", &got), domain.ErrNotFound)

	s.sweep()
	assert.Empty(t, s.entries)
}

func TestGetOrSet(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []string{"Manila", "Cebu"}, nil
	}

	var first, second []string
	require.NoError(t, GetOrSet(ctx, s, "provinces", &first, time.Hour, fetch))
	require.NoError(t, GetOrSet(ctx, s, "provinces", &second, time.Hour, fetch))

	assert.Equal(t, []string{"Manila", "Cebu"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	err := GetOrSet(ctx, s, "broken", &first, time.Hour, func() (interface{}, error) {
		return nil, errors.New("upstream down")
	})
	assert.Error(t, err)
}
