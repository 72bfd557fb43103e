// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupefinder_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dupefinder_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"route", "method"},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupefinder_llm_requests_total",
			Help: "Total number of LLM requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dupefinder_llm_request_duration_seconds",
			Help:    "LLM request duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"operation"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupefinder_searches_total",
			Help: "Total number of searches by query type and whether an original was identified",
		},
		[]string{"query_type", "identified"},
	)
	DupesReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dupefinder_dupes_returned",
			Help:    "Number of dupes returned per search",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	ScrapesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupefinder_scrapes_total",
			Help: "Total number of retailer page fetches by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	PriceCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupefinder_price_cache_total",
			Help: "Price cache lookups by result",
		},
		[]string{"result"},
	)

	PriceRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupefinder_price_refresh_total",
			Help: "Background price refreshes by outcome",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			LLMRequestsTotal,
			LLMRequestDuration,
			SearchesTotal,
			DupesReturned,
			ScrapesTotal,
			PriceCacheTotal,
			PriceRefreshTotal,
		)
	})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveLLM records one LLM call.
func ObserveLLM(operation string, started time.Time, err error) {
	LLMRequestsTotal.WithLabelValues(operation, outcome(err)).Inc()
	LLMRequestDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ObserveSearch records a completed search.
func ObserveSearch(queryType string, identified bool, dupes int) {
	label := "false"
	if identified {
		label = "true"
	}
	SearchesTotal.WithLabelValues(queryType, label).Inc()
	DupesReturned.Observe(float64(dupes))
}

// ObserveScrape records a page fetch.
func ObserveScrape(kind string, err error) {
	ScrapesTotal.WithLabelValues(kind, outcome(err)).Inc()
}

// ObservePriceCache records a cache hit or miss.
func ObservePriceCache(hit bool) {
	if hit {
		PriceCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	PriceCacheTotal.WithLabelValues("miss").Inc()
}

// ObservePriceRefresh records one background refresh.
func ObservePriceRefresh(err error) {
	PriceRefreshTotal.WithLabelValues(outcome(err)).Inc()
}
