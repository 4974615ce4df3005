package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fittlyfans_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fittlyfans_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// DomainEvents counts successful writes by entity and action.
	DomainEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fittlyfans_domain_events_total",
		Help: "Total number of domain writes by entity and action",
	}, []string{"entity", "action"})

	// CacheLookups counts cache-aside lookups by key family and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fittlyfans_cache_lookups_total",
		Help: "Cache lookups by key family and result (hit, miss)",
	}, []string{"family", "result"})

	// WebSocketConnectionsTotal is the gauge of open conversation streams.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fittlyfans_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// MediaUploadBytes records accepted upload sizes by media kind.
	MediaUploadBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fittlyfans_media_upload_bytes",
		Help:    "Size of accepted media uploads in bytes",
		Buckets: prometheus.ExponentialBuckets(64*1024, 4, 8),
	}, []string{"kind"})
)

// ObserveQuery records the latency of a database query started at start.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// RecordDomainEvent increments the domain write counter.
func RecordDomainEvent(entity, action string) {
	DomainEvents.WithLabelValues(entity, action).Inc()
}
