// Package metrics exposes Prometheus collectors for decisions and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

// Metrics holds the collectors registered for one server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	decisionsCreated *prometheus.CounterVec
	decisionsDeleted prometheus.Counter
	requestDuration  *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decisionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "decisions_created_total",
			Help: "Number of decisions recorded, by source.",
		}, []string{"source"}),
		decisionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decisions_deleted_total",
			Help: "Number of decisions deleted.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.decisionsCreated,
		m.decisionsDeleted,
		m.requestDuration,
	)
	return m
}

// DecisionCreated counts a stored decision.
func (m *Metrics) DecisionCreated(source domain.Source) {
	if m == nil {
		return
	}
	m.decisionsCreated.WithLabelValues(string(source)).Inc()
}

// DecisionDeleted counts a deleted decision.
func (m *Metrics) DecisionDeleted() {
	if m == nil {
		return
	}
	m.decisionsDeleted.Inc()
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware observes the latency of every request, labelled by route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			m.requestDuration.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
