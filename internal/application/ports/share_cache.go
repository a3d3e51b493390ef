package ports

import (
	"context"

	"json-share-api/internal/domain/share"
)

type ShareCache interface {
	Get(ctx context.Context, shareID string) (*share.Share, error)
	Set(ctx context.Context, s *share.Share) error
	Delete(ctx context.Context, shareIDs ...string) error
}
