package share

import (
	"context"
	"time"
)

type Repository interface {
	CreateShare(ctx context.Context, req Draft) (*Share, error)
	FetchShareByShareID(ctx context.Context, shareID string) (*Share, error)
	FetchActiveSharesByOwner(ctx context.Context, ownerID string, now time.Time) (Summaries, error)
	DeleteShareByShareIDAndOwner(ctx context.Context, shareID, ownerID string) (bool, error)
	DeleteExpiredShares(ctx context.Context, before time.Time) ([]string, error)
}
