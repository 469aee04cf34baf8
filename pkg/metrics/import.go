package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics records metadata for supplier feed imports.
type ImportMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	listings *prometheus.CounterVec
}

// NewImportMetrics registers the feed import metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feed_import_duration_seconds",
		Help:    "Duration of supplier feed imports in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"shop"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_import_success",
		Help: "Successful supplier feed imports.",
	}, []string{"shop"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_import_failure",
		Help: "Failed supplier feed imports.",
	}, []string{"shop"})
	listings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_import_listings_total",
		Help: "Listings written by supplier feed imports.",
	}, []string{"shop"})
	reg.MustRegister(duration, success, failure, listings)
	return &ImportMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		listings: listings,
	}
}

// ObserveDuration records the duration of an import for the named shop.
func (m *ImportMetrics) ObserveDuration(shop string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeShop(shop)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named shop.
func (m *ImportMetrics) IncSuccess(shop string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeShop(shop)).Inc()
}

// IncFailure increments the failure counter for the named shop.
func (m *ImportMetrics) IncFailure(shop string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeShop(shop)).Inc()
}

// AddListings adds to the written-listings counter for the named shop.
func (m *ImportMetrics) AddListings(shop string, count int) {
	if m == nil || m.listings == nil || count <= 0 {
		return
	}
	m.listings.WithLabelValues(normalizeShop(shop)).Add(float64(count))
}

func normalizeShop(shop string) string {
	if shop == "" {
		return "unknown"
	}
	return shop
}
