package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Chative-shop-assistant/server/internal/agent/model"
)

// Metrics counts chat outcomes on a private registry served at /metrics.
type Metrics struct {
	registry   *prometheus.Registry
	intents    *prometheus.CounterVec
	degraded   prometheus.Counter
	checkouts  prometheus.Counter
	orderValue prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		intents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shopbot_intents_total",
			Help: "Chat messages handled, by classified intent.",
		}, []string{"intent"}),
		degraded: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopbot_fallback_degraded_total",
			Help: "Fallback replies replaced by the fixed apology.",
		}),
		checkouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopbot_checkouts_total",
			Help: "Completed checkouts.",
		}),
		orderValue: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopbot_order_value_total",
			Help: "Sum of checkout totals in catalog currency units.",
		}),
	}
}

func (m *Metrics) Observe(res model.Reply) {
	m.intents.WithLabelValues(res.Intent.String()).Inc()
	if res.Degraded {
		m.degraded.Inc()
	}
	if res.Intent == model.IntentCheckout && res.OrderTotal > 0 {
		m.checkouts.Inc()
		m.orderValue.Add(float64(res.OrderTotal))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
