// Package metrics exposes Prometheus instruments for report builds and HTTP traffic.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"carbonyx/internal/core/apperror"
	"carbonyx/internal/domain/emissions"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Failure reasons, kept low cardinality.
const (
	ReasonTimeout    = "timeout"
	ReasonCanceled   = "canceled"
	ReasonValidation = "validation"
	ReasonDatabase   = "database"
	ReasonUnknown    = "unknown"
)

var _ emissions.Recorder = (*Metrics)(nil)

// Metrics holds the service instruments.
type Metrics struct {
	reportDuration *prometheus.HistogramVec
	reportFailures *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers the instruments on registerer, or the default registerer when nil.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		reportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carbonyx_report_build_duration_seconds",
			Help:    "Emission report build latency by outcome.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
		reportFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carbonyx_report_build_failures_total",
			Help: "Emission report build failures by reason.",
		}, []string{"reason"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carbonyx_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	registerer.MustRegister(m.reportDuration, m.reportFailures, m.httpDuration)
	return m
}

// ObserveReport records one report build.
func (m *Metrics) ObserveReport(d time.Duration, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
		m.reportFailures.WithLabelValues(Classify(err)).Inc()
	}
	m.reportDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Classify maps an error to a failure reason.
func Classify(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), apperror.HasCode(err, apperror.CodeTimeout):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case apperror.HasCode(err, apperror.CodeValidation):
		return ReasonValidation
	case apperror.HasCode(err, apperror.CodeDatabase), apperror.HasCode(err, apperror.CodeInternal):
		return ReasonDatabase
	default:
		return ReasonUnknown
	}
}

// GinMiddleware observes request latency. Unmatched routes share one label.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.
			WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
