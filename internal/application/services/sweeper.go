package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"json-share-api/internal/application/ports"
	"json-share-api/internal/domain/share"
	"json-share-api/internal/infrastructure/metrics"
)

// Sweeper periodically removes shares whose expiry is older than grace.
// Expired shares are already invisible to readers, so sweeping is storage
// housekeeping only.
type Sweeper struct {
	shareRepository share.Repository
	cache           ports.ShareCache
	events          ports.EventPublisher
	mCounter        *prometheus.CounterVec
	logger          *zap.Logger
	interval        time.Duration
	grace           time.Duration
	storeTimeout    time.Duration
	now             func() time.Time
}

func NewSweeper(
	shareRepository share.Repository,
	cache ports.ShareCache,
	events ports.EventPublisher,
	mCounter *prometheus.CounterVec,
	logger *zap.Logger,
	interval, grace, storeTimeout time.Duration,
) *Sweeper {
	return &Sweeper{
		shareRepository: shareRepository,
		cache:           cache,
		events:          events,
		mCounter:        mCounter,
		logger:          logger,
		interval:        interval,
		grace:           grace,
		storeTimeout:    storeTimeout,
		now:             time.Now,
	}
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("expiry sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("grace", s.grace),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce deletes every share that expired before now minus grace and
// returns how many were removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.now().UTC()
	cutoff := now.Add(-s.grace)

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	ids, err := s.shareRepository.DeleteExpiredShares(storeCtx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if s.cache != nil {
		if err = s.cache.Delete(storeCtx, ids...); err != nil {
			s.logger.Warn("cache invalidation failed", zap.Int("count", len(ids)), zap.Error(err))
		}
	}

	for _, id := range ids {
		s.events.Publish(share.NewEvent(share.EventSwept, id, now))
	}
	if s.mCounter != nil {
		s.mCounter.WithLabelValues(metrics.ShareSwept).Add(float64(len(ids)))
	}

	s.logger.Info("expired shares swept", zap.Int("count", len(ids)), zap.Time("cutoff", cutoff))

	return len(ids), nil
}

func (s *Sweeper) timeout() time.Duration {
	if s.storeTimeout <= 0 {
		return time.Minute
	}
	return s.storeTimeout
}
