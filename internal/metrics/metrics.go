// Package metrics exposes the application's prometheus instruments.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics holds HTTP and billing instruments.
type Metrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	PlanUpgrades  prometheus.Counter
	OrdersCreated prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fatura",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fatura",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PlanUpgrades: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "fatura",
			Subsystem: "billing",
			Name:      "plan_upgrades_total",
			Help:      "Completed prorated plan upgrades.",
		}),
		OrdersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "fatura",
			Subsystem: "billing",
			Name:      "orders_created_total",
			Help:      "Orders created through the API or upgrade flow.",
		}),
	}
}

// GinMiddleware records request totals and latencies per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
