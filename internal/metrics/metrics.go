// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route pattern.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horror_api_http_requests_total",
			Help: "Total HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "horror_api_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPActiveRequests tracks in-flight requests.
	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "horror_api_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// LinkBuildFailures counts requests that failed while reversing routes.
	LinkBuildFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horror_api_link_build_failures_total",
			Help: "Hypermedia link generation failures by resource",
		},
		[]string{"resource"},
	)
)

// RecordHTTPRequest records one completed request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// poolCollector exposes pgxpool statistics at scrape time.
type poolCollector struct {
	stat func() *pgxpool.Stat

	total    *prometheus.Desc
	idle     *prometheus.Desc
	acquired *prometheus.Desc
	max      *prometheus.Desc
	acquires *prometheus.Desc
}

// NewPoolCollector returns a collector reading stats from stat on every scrape.
func NewPoolCollector(stat func() *pgxpool.Stat) prometheus.Collector {
	return &poolCollector{
		stat:     stat,
		total:    prometheus.NewDesc("horror_api_db_pool_total_conns", "Connections currently in the pool", nil, nil),
		idle:     prometheus.NewDesc("horror_api_db_pool_idle_conns", "Idle connections in the pool", nil, nil),
		acquired: prometheus.NewDesc("horror_api_db_pool_acquired_conns", "Connections currently checked out", nil, nil),
		max:      prometheus.NewDesc("horror_api_db_pool_max_conns", "Maximum pool size", nil, nil),
		acquires: prometheus.NewDesc("horror_api_db_pool_acquires_total", "Cumulative successful acquires", nil, nil),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.idle
	ch <- c.acquired
	ch <- c.max
	ch <- c.acquires
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stat()
	if s == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(s.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.AcquireCount()))
}

// RegisterPoolStats registers a pool collector with the default registry.
// Registering a second time is a no-op.
func RegisterPoolStats(stat func() *pgxpool.Stat) error {
	err := prometheus.Register(NewPoolCollector(stat))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}
