package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/tandem/internal/core/domain"
)

const metricsNamespace = "tandem"

// metrics is the per-service registry. Each entry point owns one so that two services in
// the same process never share series.
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	state    prometheus.Gauge
	packages prometheus.Gauge
}

func newMetrics(role domain.Role) *metrics {
	labels := prometheus.Labels{"role": string(role)}
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "http_requests_total",
			Help:        "HTTP requests handled by the entry point.",
			ConstLabels: labels,
		}, []string{"method", "route", "code"}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "service_state",
			Help:        "Service state: 0 starting, 1 serving, 2 stopped.",
			ConstLabels: labels,
		}),
		packages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "installed_packages",
			Help:        "Packages in the image's dependency environment.",
			ConstLabels: labels,
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.state,
		m.packages,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// middleware counts every request by matched route and final status code.
func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)

		code := c.Response().Status
		if err != nil {
			code = http.StatusInternalServerError
			var he *echo.HTTPError
			if errors.As(err, &he) {
				code = he.Code
			}
		}
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(code)).Inc()
		return err
	}
}
