package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request handling duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Active WebSocket connections",
		},
	)

	roomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rooms_active",
			Help: "Room actors currently resident",
		},
	)

	// The wire contract drops invalid frames with no nack; this
	// counter is the only place those drops become visible.
	framesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frames_dropped_total",
			Help: "Inbound frames dropped, by reason",
		},
		[]string{"reason"},
	)

	deadSinksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_dead_sinks_total",
			Help: "Sessions pruned after a failed delivery",
		},
	)

	directorySyncFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_sync_failures_total",
			Help: "Best-effort directory store calls that failed, by operation",
		},
		[]string{"op"},
	)
)

// RecordHTTPMetrics records one finished HTTP request.
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func IncrementWSActiveConnections() { wsActiveConnections.Inc() }
func DecrementWSActiveConnections() { wsActiveConnections.Dec() }

func IncrementActiveRooms() { roomsActive.Inc() }
func DecrementActiveRooms() { roomsActive.Dec() }

func FrameDropped(reason string) { framesDroppedTotal.WithLabelValues(reason).Inc() }

func DeadSinkPruned() { deadSinksTotal.Inc() }

func DirectorySyncFailed(op string) { directorySyncFailures.WithLabelValues(op).Inc() }
