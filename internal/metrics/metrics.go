// Package metrics exposes Prometheus collectors for the HTTP layer and for the
// order and stock operations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeMC777/storefront-orders/internal/order"
)

const namespace = "storefront"

type Recorder struct {
	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	OrdersCreated prometheus.Counter
	Transitions   *prometheus.CounterVec
	StockAdjusts  *prometheus.CounterVec
}

// New registers the collectors of one service on reg.
func New(reg prometheus.Registerer, service string) *Recorder {
	r := &Recorder{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "orders_created_total",
			Help:      "Orders committed at checkout.",
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "order_status_transitions_total",
			Help:      "Committed order status transitions.",
		}, []string{"from", "to"}),
		StockAdjusts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "stock_adjustments_total",
			Help:      "Administrative stock adjustments by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.Requests, r.LatencyMS, r.OrdersCreated, r.Transitions, r.StockAdjusts)
	return r
}

// ObserveRequest records one finished HTTP request.
func (r *Recorder) ObserveRequest(handler, method string, status int, d time.Duration) {
	r.Requests.WithLabelValues(handler, method, strconv.Itoa(status)).Inc()
	r.LatencyMS.WithLabelValues(handler).Observe(float64(d.Microseconds()) / 1000)
}

func (r *Recorder) OrderCreated() { r.OrdersCreated.Inc() }

func (r *Recorder) StatusChanged(from, to order.Status) {
	r.Transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (r *Recorder) StockAdjusted(outcome string) { r.StockAdjusts.WithLabelValues(outcome).Inc() }

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
