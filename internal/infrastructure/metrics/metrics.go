package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ShareCreated   = "share_created_total"
	ShareDeleted   = "share_deleted_total"
	ShareExpired   = "share_expired_total"
	ShareSwept     = "share_swept_total"
	ShareCacheHit  = "share_cache_hit_total"
	ShareCacheMiss = "share_cache_miss_total"
	AppRequests    = "app_requests_total"
	RateLimited    = "rate_limited_total"
	EventsDropped  = "events_dropped_total"
)

func NewCounter() *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jsonshare",
			Name:      "general_counters",
		},
		[]string{"result"})
}

// NewUnregisteredCounter is NewCounter without the default registry, for tests.
func NewUnregisteredCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jsonshare",
			Name:      "general_counters",
		},
		[]string{"result"})
}
