package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_refreshes_total",
			Help: "Lead list refreshes by the source the list was served from",
		},
		[]string{"source"},
	)

	leadRefreshesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_refreshes_discarded_total",
			Help: "Lead refresh responses dropped because a newer refresh was dispatched",
		},
	)

	leadsCached = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leads_cached",
			Help: "Number of leads currently held in memory",
		},
	)

	conversationsBuilt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversations_built",
			Help: "Number of conversations produced by the last rebuild",
		},
	)

	messagesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_messages_skipped_total",
			Help: "Messages that could not be attached to a conversation",
		},
		[]string{"reason"},
	)

	backendRecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_records_skipped_total",
			Help: "List elements from the backend that could not be decoded",
		},
		[]string{"list"},
	)

	backendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_errors_total",
			Help: "Total number of failed calls to the remote backend",
		},
		[]string{"operation"},
	)

	followUps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "follow_ups_total",
			Help: "Follow-up emails by outcome",
		},
		[]string{"status"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps path params out of label values.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func RecordLeadRefresh(source string, discarded bool, leads int) {
	if discarded {
		leadRefreshesDiscarded.Inc()
		return
	}
	leadRefreshes.WithLabelValues(source).Inc()
	leadsCached.Set(float64(leads))
}

func RecordConversations(built, skippedNoLead, skippedUnresolved int) {
	conversationsBuilt.Set(float64(built))
	messagesSkipped.WithLabelValues("no_lead_id").Add(float64(skippedNoLead))
	messagesSkipped.WithLabelValues("unresolved").Add(float64(skippedUnresolved))
}

func RecordBackendError(operation string) {
	backendErrors.WithLabelValues(operation).Inc()
}

func RecordSkippedRecords(list string, n int) {
	backendRecordsSkipped.WithLabelValues(list).Add(float64(n))
}

func RecordFollowUp(status string) {
	followUps.WithLabelValues(status).Inc()
}
