package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Domain
	RecipeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Recipe create/update/delete operations by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: success, invalid, error
	)

	ShoppingListDownloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Total number of shopping list downloads",
		},
	)

	// Catalog cache
	CatalogCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_catalog_cache_hits_total",
			Help: "Catalog cache hits by key kind",
		},
		[]string{"kind"},
	)

	CatalogCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_catalog_cache_misses_total",
			Help: "Catalog cache misses by key kind",
		},
		[]string{"kind"},
	)

	LoginRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_login_rate_limited_total",
			Help: "Login attempts rejected by the rate limiter",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordRecipeWrite(operation, outcome string) {
	RecipeWrites.WithLabelValues(operation, outcome).Inc()
}

func RecordCacheLookup(kind string, hit bool) {
	if hit {
		CatalogCacheHits.WithLabelValues(kind).Inc()
	} else {
		CatalogCacheMisses.WithLabelValues(kind).Inc()
	}
}
