package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"json-share-api/config"
	"json-share-api/internal/domain/share"
)

const (
	defaultPrefix = "jsonshare:share:"
	minTTL        = time.Second
)

// ShareCache is a read-through cache of share records keyed by share id.
// Entries never outlive the share's expiry; expiry itself is still decided
// by the lifecycle service.
type ShareCache struct {
	client   *redis.Client
	logger   *zap.Logger
	prefix   string
	ttl      time.Duration
	maxBytes int
	now      func() time.Time
}

type entry struct {
	ID        uint64          `json:"id"`
	ShareID   string          `json:"share_id"`
	Content   json.RawMessage `json:"content"`
	OwnerID   string          `json:"owner_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	ExpiresAt *time.Time      `json:"expires_at"`
}

func NewClient(ctx context.Context, logger *zap.Logger, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis connected successfully", zap.String("addr", cfg.Addr))

	return client, nil
}

func NewShareCache(client *redis.Client, logger *zap.Logger, cfg config.Redis) *ShareCache {
	return &ShareCache{
		client:   client,
		logger:   logger,
		prefix:   defaultPrefix,
		ttl:      cfg.TTL,
		maxBytes: cfg.MaxBytes,
		now:      time.Now,
	}
}

func (c *ShareCache) key(shareID string) string { return c.prefix + shareID }

func (c *ShareCache) Get(ctx context.Context, shareID string) (*share.Share, error) {
	b, err := c.client.Get(ctx, c.key(shareID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var e entry
	if err = json.Unmarshal(b, &e); err != nil {
		// a corrupt entry is a miss; drop it so the next read repopulates
		c.logger.Warn("dropping corrupt cache entry", zap.String("share_id", shareID), zap.Error(err))
		_ = c.client.Del(ctx, c.key(shareID)).Err()
		return nil, nil
	}

	return &share.Share{
		ID:        share.ID(e.ID),
		ShareID:   e.ShareID,
		Content:   e.Content,
		OwnerID:   e.OwnerID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		ExpiresAt: e.ExpiresAt,
	}, nil
}

func (c *ShareCache) Set(ctx context.Context, s *share.Share) error {
	if s == nil || (c.maxBytes > 0 && len(s.Content) > c.maxBytes) {
		return nil
	}

	ttl := c.ttl
	if s.ExpiresAt != nil {
		left := s.ExpiresAt.Sub(c.now())
		if left <= 0 {
			return nil
		}
		if ttl <= 0 || left < ttl {
			ttl = left
		}
	}
	if ttl > 0 && ttl < minTTL {
		ttl = minTTL
	}

	b, err := json.Marshal(entry{
		ID:        uint64(s.ID),
		ShareID:   s.ShareID,
		Content:   s.Content,
		OwnerID:   s.OwnerID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		ExpiresAt: s.ExpiresAt,
	})
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.key(s.ShareID), b, ttl).Err()
}

func (c *ShareCache) Delete(ctx context.Context, shareIDs ...string) error {
	if len(shareIDs) == 0 {
		return nil
	}
	keys := make([]string, len(shareIDs))
	for i, id := range shareIDs {
		keys[i] = c.key(id)
	}

	return c.client.Del(ctx, keys...).Err()
}
