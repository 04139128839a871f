package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeMerged = "merged"
	OutcomeNoop   = "noop"
	OutcomeFailed = "failed"
)

// Metrics holds the storefront's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry            *prometheus.Registry
	CartReconciliations *prometheus.CounterVec
	CartMergeConflicts  prometheus.Counter
	CartItemsAdded      prometheus.Counter
	WishlistToggles     *prometheus.CounterVec
	Logins              *prometheus.CounterVec
	APIErrors           *prometheus.CounterVec
	HTTPLatency         *prometheus.HistogramVec
}

func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		CartReconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_reconciliations_total",
			Help:      "Login-time cart reconciliations by outcome.",
		}, []string{"outcome"}),
		CartMergeConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_merge_conflicts_total",
			Help:      "User cart saves rejected by a concurrent modification.",
		}),
		CartItemsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_items_added_total",
			Help:      "Units added to carts.",
		}),
		WishlistToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wishlist_toggles_total",
			Help:      "Wishlist changes by action.",
		}, []string{"action"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		APIErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "HTTP responses with status >= 400 by route and status.",
		}, []string{"route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.CartReconciliations,
		m.CartMergeConflicts,
		m.CartItemsAdded,
		m.WishlistToggles,
		m.Logins,
		m.APIErrors,
		m.HTTPLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveReconciliation(outcome string) {
	if m == nil {
		return
	}
	m.CartReconciliations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveMergeConflict() {
	if m == nil {
		return
	}
	m.CartMergeConflicts.Inc()
}

func (m *Metrics) ObserveItemsAdded(quantity int) {
	if m == nil {
		return
	}
	m.CartItemsAdded.Add(float64(quantity))
}

func (m *Metrics) ObserveWishlistToggle(added bool) {
	if m == nil {
		return
	}
	action := "removed"
	if added {
		action = "added"
	}
	m.WishlistToggles.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveLogin(success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
	if status >= http.StatusBadRequest {
		m.APIErrors.WithLabelValues(route, http.StatusText(status)).Inc()
	}
}

// NewServer returns the HTTP server exposing /metrics. The caller owns its lifecycle.
func NewServer(port string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
