package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives one observation per flushed exchange.
type Recorder interface {
	ObserveExchange(method string, status int, bytes int, elapsed time.Duration)
	ConnectionOpened()
	ConnectionClosed()
}

type Metrics struct {
	registry    *prometheus.Registry
	exchanges   *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	bytes       prometheus.Counter
	connections prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mars_aio",
			Name:      "exchanges_total",
			Help:      "Exchanges flushed, by method and status class.",
		}, []string{"method", "class"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mars_aio",
			Name:      "exchange_duration_seconds",
			Help:      "Time from parsed request head to flushed response.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mars_aio",
			Name:      "response_payload_bytes_total",
			Help:      "Response payload bytes written.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mars_aio",
			Name:      "open_connections",
			Help:      "Connections currently being served.",
		}),
	}
	m.registry.MustRegister(m.exchanges, m.duration, m.bytes, m.connections)
	return m
}

func (m *Metrics) ObserveExchange(method string, status int, bytes int, elapsed time.Duration) {
	m.exchanges.WithLabelValues(method, statusClass(status)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
	m.bytes.Add(float64(bytes))
}

func (m *Metrics) ConnectionOpened() {
	m.connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	m.connections.Dec()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}

type nop struct{}

// Nop discards every observation.
var Nop Recorder = nop{}

func (nop) ObserveExchange(string, int, int, time.Duration) {}
func (nop) ConnectionOpened()                               {}
func (nop) ConnectionClosed()                               {}
