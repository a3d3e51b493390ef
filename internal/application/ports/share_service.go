package ports

import (
	"context"

	"json-share-api/internal/domain/share"
)

// CreateShareInput is the raw, unvalidated creation request.
type CreateShareInput struct {
	Content    []byte
	ExpiryDays string
	FileName   string
}

type ShareService interface {
	CreateShare(ctx context.Context, ownerID string, in CreateShareInput) (*share.Receipt, error)
	GetShare(ctx context.Context, shareID string) (*share.View, error)
	ListMyShares(ctx context.Context, ownerID string) (share.Summaries, error)
	DeleteShare(ctx context.Context, shareID, ownerID string) error
}
