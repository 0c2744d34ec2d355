package icon

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts icon cache lookups. A nil *Metrics records nothing.
type Metrics struct {
	lookups *prometheus.CounterVec
}

// NewMetrics registers the icon cache counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storemap_icon_cache_lookups_total",
			Help: "Icon pair lookups by result (hit or miss).",
		}, []string{"result"}),
	}
	reg.MustRegister(m.lookups)
	return m
}

func (m *Metrics) hit() {
	if m != nil {
		m.lookups.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.lookups.WithLabelValues("miss").Inc()
	}
}
