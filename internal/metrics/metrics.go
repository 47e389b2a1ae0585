package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	OrdersCreated     prometheus.Counter
	PaymentsConfirmed prometheus.Counter
	StockConflicts    prometheus.Counter
	DesignsReviewed   *prometheus.CounterVec
	ReturnsProcessed  *prometheus.CounterVec
}

// New registers the collectors on the given registry
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fashionmart_http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fashionmart_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fashionmart_orders_created_total",
			Help: "Orders successfully created.",
		}),
		PaymentsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fashionmart_payments_confirmed_total",
			Help: "Payments confirmed, internal and webhook triggers combined.",
		}),
		StockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fashionmart_stock_conflicts_total",
			Help: "Checkouts aborted by the stock floor check.",
		}),
		DesignsReviewed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fashionmart_designs_reviewed_total",
			Help: "Design reviews by outcome.",
		}, []string{"outcome"}),
		ReturnsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fashionmart_returns_processed_total",
			Help: "Returns processed by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.OrdersCreated,
		m.PaymentsConfirmed,
		m.StockConflicts,
		m.DesignsReviewed,
		m.ReturnsProcessed,
	)
	return m
}

// Middleware records request counts and latency. The route template is used
// as the path label to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.requestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}
