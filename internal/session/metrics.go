package session

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks map instance lifecycles. A nil *Metrics records nothing.
type Metrics struct {
	live    prometheus.Gauge
	created prometheus.Counter
	closed  *prometheus.CounterVec
}

// NewMetrics registers the instance metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storemap_map_instances",
			Help: "Map instances currently mounted.",
		}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storemap_map_instances_created_total",
			Help: "Map instances mounted since start.",
		}),
		closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storemap_map_instances_closed_total",
			Help: "Map instances unmounted, by reason (closed or evicted).",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.live, m.created, m.closed)
	return m
}

func (m *Metrics) add() {
	if m != nil {
		m.created.Inc()
		m.live.Inc()
	}
}

func (m *Metrics) remove(reason string) {
	if m != nil {
		m.closed.WithLabelValues(reason).Inc()
		m.live.Dec()
	}
}
