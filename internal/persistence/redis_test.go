package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, RedisConfig{Prefix: "session:42:"})
	ctx := context.Background()

	_, ok, err := store.Load(ctx, KeyAppointments)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, KeyAppointments, `[]`))
	raw, err := mr.Get("session:42:" + KeyAppointments)
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)

	v, ok, err := store.Load(ctx, KeyAppointments)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)

	require.NoError(t, store.Delete(ctx, KeyAppointments))
	assert.False(t, mr.Exists("session:42:"+KeyAppointments))
}

func TestRedisStoreAppliesPerKeyTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, RedisConfig{TTLs: map[string]time.Duration{KeyBookingDraft: 30 * time.Minute}})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, KeyBookingDraft, `{}`))
	require.NoError(t, store.Save(ctx, KeyAppointments, `[]`))

	assert.Equal(t, 30*time.Minute, mr.TTL(KeyBookingDraft))
	assert.Equal(t, time.Duration(0), mr.TTL(KeyAppointments))

	mr.FastForward(31 * time.Minute)
	_, ok, err := store.Load(ctx, KeyBookingDraft)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreSurfacesErrors(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, RedisConfig{})
	mr.Close()

	_, _, err := store.Load(context.Background(), KeyAppointments)
	assert.Error(t, err)
	assert.Error(t, store.Save(context.Background(), KeyAppointments, "[]"))
}
