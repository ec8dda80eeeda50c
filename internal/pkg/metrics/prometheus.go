package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smmpanel",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smmpanel",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "smmpanel",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Sync engine metrics
	syncOrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smmpanel",
			Subsystem: "sync",
			Name:      "orders_total",
			Help:      "Orders processed by sync runs, by trigger action and outcome",
		},
		[]string{"action", "outcome"},
	)

	syncRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smmpanel",
			Subsystem: "sync",
			Name:      "run_duration_seconds",
			Help:      "Duration of a whole sync run in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"action"},
	)

	syncRunsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "smmpanel",
			Subsystem: "sync",
			Name:      "runs_in_flight",
			Help:      "Number of sync runs currently executing",
		},
	)

	providerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smmpanel",
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound provider status requests in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "outcome"},
	)

	// Realtime bus metrics
	realtimeSubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "smmpanel",
			Subsystem: "realtime",
			Name:      "subscribers",
			Help:      "Number of live realtime subscribers per pool",
		},
		[]string{"pool"},
	)

	realtimeDeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smmpanel",
			Subsystem: "realtime",
			Name:      "delivery_failures_total",
			Help:      "Events a subscriber failed to accept",
		},
		[]string{"pool", "event"},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smmpanel",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streams working behind the middleware
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			routePattern = rctx.RoutePattern()
		}
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordSyncRun records the outcome counts and duration of one sync run
func RecordSyncRun(action string, synced, failed, skipped int, duration time.Duration) {
	syncOrdersTotal.WithLabelValues(action, "synced").Add(float64(synced))
	syncOrdersTotal.WithLabelValues(action, "failed").Add(float64(failed))
	syncOrdersTotal.WithLabelValues(action, "skipped").Add(float64(skipped))
	syncRunDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// SyncRunStarted marks a run as in flight and returns the matching completion func
func SyncRunStarted() func() {
	syncRunsInFlight.Inc()
	return syncRunsInFlight.Dec
}

// RecordProviderRequest records one outbound provider call
func RecordProviderRequest(providerID int64, outcome string, duration time.Duration) {
	providerRequestDuration.WithLabelValues(strconv.FormatInt(providerID, 10), outcome).Observe(duration.Seconds())
}

// SetRealtimeSubscribers sets the live subscriber gauge for a pool
func SetRealtimeSubscribers(pool string, count int) {
	realtimeSubscribers.WithLabelValues(pool).Set(float64(count))
}

// RecordRealtimeDeliveryFailure counts an event a subscriber could not accept
func RecordRealtimeDeliveryFailure(pool, event string) {
	realtimeDeliveryFailures.WithLabelValues(pool, event).Inc()
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation, table string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}
