package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RefreshesTotal          prometheus.Counter
	RefreshFailuresTotal    prometheus.Counter
	RemoteFetchDuration     prometheus.Histogram
	CachedCurrencies        prometheus.Gauge
	ConversionRequestsTotal prometheus.Counter
}

// NewMetrics registers the service instruments on the given registerer.
// Tests pass a fresh prometheus.NewRegistry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		RefreshesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_refreshes_total",
				Help: "Total number of attempted rate refreshes",
			},
		),

		RefreshFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_refresh_failures_total",
				Help: "Total number of failed rate refreshes",
			},
		),

		RemoteFetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "remote_fetch_duration_seconds",
				Help:    "Duration of remote rate API calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		CachedCurrencies: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cached_currencies",
				Help: "Number of currencies in the current cached snapshot",
			},
		),

		ConversionRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "conversion_requests_total",
				Help: "Total number of currency conversion requests",
			},
		),
	}
}
