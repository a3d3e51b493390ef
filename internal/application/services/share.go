package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"json-share-api/internal/application/apperr"
	"json-share-api/internal/application/ports"
	"json-share-api/internal/application/validator"
	"json-share-api/internal/domain/share"
	"json-share-api/internal/infrastructure/metrics"
)

type ShareService struct {
	shareRepository share.Repository
	cache           ports.ShareCache
	links           ports.LinkBuilder
	events          ports.EventPublisher
	mCounter        *prometheus.CounterVec
	logger          *zap.Logger
	storeTimeout    time.Duration
	now             func() time.Time
}

// NewShareService wires the share lifecycle. cache may be nil.
func NewShareService(
	shareRepository share.Repository,
	cache ports.ShareCache,
	links ports.LinkBuilder,
	events ports.EventPublisher,
	mCounter *prometheus.CounterVec,
	logger *zap.Logger,
	storeTimeout time.Duration,
) *ShareService {
	return &ShareService{
		shareRepository: shareRepository,
		cache:           cache,
		links:           links,
		events:          events,
		mCounter:        mCounter,
		logger:          logger,
		storeTimeout:    storeTimeout,
		now:             time.Now,
	}
}

func (ss *ShareService) CreateShare(ctx context.Context, ownerID string, in ports.CreateShareInput) (*share.Receipt, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, apperr.Unauthorized("user ID is required")
	}

	content, err := validator.ValidateJSONContent(in.Content)
	if err != nil {
		return nil, err
	}
	days, err := validator.ValidateExpiryDays(in.ExpiryDays)
	if err != nil {
		return nil, err
	}

	// postgres keeps microseconds; truncating keeps createdAt+N days exact after a round trip
	now := ss.now().UTC().Truncate(time.Microsecond)
	var expiresAt *time.Time
	if days > 0 {
		exp := ExpiryFrom(now, days)
		expiresAt = &exp
	}

	storeCtx, cancel := ss.storeContext(ctx)
	defer cancel()

	created, err := ss.shareRepository.CreateShare(storeCtx, share.Draft{
		Content:   content,
		OwnerID:   ownerID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		if errors.Is(err, share.ErrShareIDConflict) {
			return nil, apperr.Wrap(apperr.CodeConflict, "duplicate share ID generated, please try again", err)
		}
		return nil, apperr.Store("database operation failed", err)
	}

	fileName := validator.SanitizeFileName(in.FileName)
	ss.logger.Info("share created",
		zap.String("share_id", created.ShareID),
		zap.String("owner_id", ownerID),
		zap.String("file_name", fileName),
		zap.Int("size_bytes", len(content)),
		zap.Bool("permanent", created.IsPermanent()),
	)

	e := share.NewEvent(share.EventCreated, created.ShareID, now)
	e.OwnerID = ownerID
	e.FileName = fileName
	e.SizeBytes = len(content)
	e.ExpiresAt = created.ExpiresAt
	ss.events.Publish(e)

	ss.inc(metrics.ShareCreated)

	return &share.Receipt{
		ShareID:   created.ShareID,
		ShareURL:  ss.links.ShareURL(created.ShareID),
		ExpiresAt: created.ExpiresAt,
		CreatedAt: created.CreatedAt,
	}, nil
}

func (ss *ShareService) GetShare(ctx context.Context, shareID string) (*share.View, error) {
	if err := validator.ValidateShareID(shareID); err != nil {
		return nil, err
	}

	s, err := ss.lookup(ctx, shareID)
	if err != nil {
		return nil, apperr.Store("database query failed", err)
	}
	if s == nil {
		return nil, apperr.NotFound("share not found or has been deleted")
	}

	if s.IsExpired(ss.now()) {
		ss.inc(metrics.ShareExpired)
		return nil, apperr.Expired("share has expired and is no longer available")
	}

	if len(s.Content) == 0 || string(s.Content) == "null" {
		ss.logger.Error("share content is empty", zap.String("share_id", shareID))
		return nil, apperr.New(apperr.CodeServer, "share content is corrupted")
	}

	return &share.View{
		Content:   s.Content,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}, nil
}

func (ss *ShareService) ListMyShares(ctx context.Context, ownerID string) (share.Summaries, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, apperr.Unauthorized("user ID is required")
	}

	storeCtx, cancel := ss.storeContext(ctx)
	defer cancel()

	shares, err := ss.shareRepository.FetchActiveSharesByOwner(storeCtx, ownerID, ss.now().UTC())
	if err != nil {
		return nil, apperr.Store("failed to retrieve shares", err)
	}
	if shares == nil {
		shares = share.Summaries{}
	}

	return shares, nil
}

func (ss *ShareService) DeleteShare(ctx context.Context, shareID, ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return apperr.Unauthorized("user ID is required")
	}
	if shareID == "" {
		return apperr.Validation("share ID is required")
	}

	storeCtx, cancel := ss.storeContext(ctx)
	defer cancel()

	deleted, err := ss.shareRepository.DeleteShareByShareIDAndOwner(storeCtx, shareID, ownerID)
	if err != nil {
		return apperr.Store("failed to delete share", err)
	}
	// a share owned by someone else is reported exactly like a missing one
	if !deleted {
		return apperr.NotFound("share not found or access denied")
	}

	if ss.cache != nil {
		if err = ss.cache.Delete(storeCtx, shareID); err != nil {
			ss.logger.Warn("cache invalidation failed", zap.String("share_id", shareID), zap.Error(err))
		}
	}

	e := share.NewEvent(share.EventDeleted, shareID, ss.now().UTC())
	e.OwnerID = ownerID
	ss.events.Publish(e)

	ss.inc(metrics.ShareDeleted)

	return nil
}

// lookup reads through the cache when one is configured. Cache failures are
// logged and fall back to the store.
func (ss *ShareService) lookup(ctx context.Context, shareID string) (*share.Share, error) {
	storeCtx, cancel := ss.storeContext(ctx)
	defer cancel()

	if ss.cache != nil {
		cached, err := ss.cache.Get(storeCtx, shareID)
		if err != nil {
			ss.logger.Warn("cache read failed", zap.String("share_id", shareID), zap.Error(err))
		}
		if cached != nil {
			ss.inc(metrics.ShareCacheHit)
			return cached, nil
		}
		ss.inc(metrics.ShareCacheMiss)
	}

	s, err := ss.shareRepository.FetchShareByShareID(storeCtx, shareID)
	if err != nil || s == nil {
		return s, err
	}

	if ss.cache != nil {
		if err = ss.cache.Set(storeCtx, s); err != nil {
			ss.logger.Warn("cache write failed", zap.String("share_id", shareID), zap.Error(err))
		}
	}

	return s, nil
}

func (ss *ShareService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ss.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, ss.storeTimeout)
}

func (ss *ShareService) inc(result string) {
	if ss.mCounter != nil {
		ss.mCounter.WithLabelValues(result).Inc()
	}
}
