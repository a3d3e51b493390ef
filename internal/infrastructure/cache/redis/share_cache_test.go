package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"json-share-api/config"
	"json-share-api/internal/domain/share"
)

func newTestCache(t *testing.T, cfg config.Redis, now time.Time) (*ShareCache, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewShareCache(client, zap.NewNop(), cfg)
	c.now = func() time.Time { return now }
	return c, m
}

func TestShareCache_SetGetDelete(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, m := newTestCache(t, config.Redis{TTL: time.Hour, MaxBytes: 1 << 10}, now)
	ctx := context.Background()

	s := &share.Share{
		ID:        3,
		ShareID:   "abc1234",
		Content:   json.RawMessage(`{"k":["v"]}`),
		OwnerID:   "owner-1",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, c.Set(ctx, s))
	assert.Equal(t, time.Hour, m.TTL(defaultPrefix+"abc1234"))

	got, err := c.Get(ctx, "abc1234")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.ShareID, got.ShareID)
	assert.Equal(t, s.OwnerID, got.OwnerID)
	assert.JSONEq(t, string(s.Content), string(got.Content))
	assert.Nil(t, got.ExpiresAt)

	require.NoError(t, c.Delete(ctx, "abc1234"))
	got, err = c.Get(ctx, "abc1234")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestShareCache_TTLBoundedByExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, m := newTestCache(t, config.Redis{TTL: time.Hour}, now)
	ctx := context.Background()

	soon := now.Add(10 * time.Second)
	require.NoError(t, c.Set(ctx, &share.Share{ShareID: "soon1234", Content: json.RawMessage(`1`), ExpiresAt: &soon}))
	assert.Equal(t, 10*time.Second, m.TTL(defaultPrefix+"soon1234"))

	m.FastForward(11 * time.Second)
	got, err := c.Get(ctx, "soon1234")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestShareCache_SkipsExpiredAndOversized(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, m := newTestCache(t, config.Redis{TTL: time.Hour, MaxBytes: 8}, now)
	ctx := context.Background()

	past := now.Add(-time.Second)
	require.NoError(t, c.Set(ctx, &share.Share{ShareID: "past1234", Content: json.RawMessage(`1`), ExpiresAt: &past}))
	require.NoError(t, c.Set(ctx, &share.Share{ShareID: "huge1234", Content: json.RawMessage(`"0123456789"`)}))

	assert.False(t, m.Exists(defaultPrefix+"past1234"))
	assert.False(t, m.Exists(defaultPrefix+"huge1234"))
}

func TestShareCache_CorruptEntryIsMiss(t *testing.T) {
	c, m := newTestCache(t, config.Redis{TTL: time.Hour}, time.Now())
	require.NoError(t, m.Set(defaultPrefix+"bad12345", "{not json"))

	got, err := c.Get(context.Background(), "bad12345")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, m.Exists(defaultPrefix+"bad12345"))
}
