package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const namespace = "mintverse"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	approvals    *prometheus.CounterVec
	pending      *prometheus.GaugeVec
	mintingFee   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "path"},
		),
		approvals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "approvals_total",
				Help:      "Administrator decisions on pending requests, by outcome.",
			},
			[]string{"kind", "action", "outcome"},
		),
		pending: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pending_requests",
				Help:      "Requests currently waiting for an administrator.",
			},
			[]string{"kind"},
		),
		mintingFee: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "minting_fee_eth",
				Help:      "Last minting fee charged, in ETH.",
			},
		),
	}

	m.Registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.approvals,
		m.pending,
		m.mintingFee,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies. Paths are the route
// templates (/v1/listings/:id) so ids do not explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// ApprovalOutcome counts one administrator decision.
func (m *Metrics) ApprovalOutcome(kind, action, outcome string) {
	m.approvals.WithLabelValues(kind, action, outcome).Inc()
}

// MintingFeeCharged records the fee of the latest approved mint.
func (m *Metrics) MintingFeeCharged(eth float64) {
	m.mintingFee.Set(eth)
}

// PendingSource reports the number of pending requests per kind.
type PendingSource interface {
	PendingCounts(ctx context.Context) (map[string]int64, error)
}

// RefreshPending updates the pending gauges from src. It is run by the
// scheduler; failures are logged and the previous values kept.
func (m *Metrics) RefreshPending(ctx context.Context, src PendingSource, log *logrus.Entry) {
	counts, err := src.PendingCounts(ctx)
	if err != nil {
		log.WithError(err).Warn("refresh pending gauges")
		return
	}
	for kind, n := range counts {
		m.pending.WithLabelValues(kind).Set(float64(n))
	}
}
