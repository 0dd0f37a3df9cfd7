// Package metrics exposes Prometheus instrumentation for the dataset load,
// dashboard renders and the HTTP layer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DatasetRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orders_dataset_rows",
		Help: "Number of order rows held in memory",
	})

	DatasetSkippedRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orders_dataset_skipped_rows",
		Help: "Number of rows rejected while loading the dataset",
	})

	DatasetLoadDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orders_dataset_load_duration_seconds",
		Help: "Duration of the last dataset load in seconds",
	})

	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_renders_total",
			Help: "Total number of dashboard evaluations by view and outcome",
		},
		[]string{"view", "outcome"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_render_duration_seconds",
			Help:    "Duration of dashboard evaluations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"view"},
	)

	FilteredRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_filtered_rows",
		Help:    "Rows left after the geography filter",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	})
)

func RecordDatasetLoad(rows int, skipped int64, duration time.Duration) {
	DatasetRows.Set(float64(rows))
	DatasetSkippedRows.Set(float64(skipped))
	DatasetLoadDuration.Set(duration.Seconds())
}

func RecordRender(view string, filtered int, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	RendersTotal.WithLabelValues(view, outcome).Inc()
	RenderDuration.WithLabelValues(view).Observe(duration.Seconds())
	FilteredRows.Observe(float64(filtered))
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
