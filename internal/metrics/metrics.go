// Package metrics exposes Prometheus metrics for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BuildInfo struct {
	Version string
	Commit  string
}

type Provider struct {
	reg       *prometheus.Registry
	buildInfo *prometheus.GaugeVec
	catalog   *prometheus.GaugeVec
}

func Init(build BuildInfo) *Provider {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storemap_build_info",
			Help: "Build info for this binary (value is always 1).",
		},
		[]string{"version", "commit"},
	)
	if build.Version == "" {
		build.Version = "dev"
	}
	info.WithLabelValues(build.Version, build.Commit).Set(1)

	catalog := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storemap_catalog_records",
			Help: "Catalog records loaded at startup, by kind (stores, enseignes, rejected).",
		},
		[]string{"kind"},
	)
	reg.MustRegister(info, catalog)

	return &Provider{reg: reg, buildInfo: info, catalog: catalog}
}

// ObserveCatalog records the size of the loaded catalog.
func (p *Provider) ObserveCatalog(stores, enseignes, rejected int) {
	p.catalog.WithLabelValues("stores").Set(float64(stores))
	p.catalog.WithLabelValues("enseignes").Set(float64(enseignes))
	p.catalog.WithLabelValues("rejected").Set(float64(rejected))
}

func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func (p *Provider) Registerer() prometheus.Registerer { return p.reg }
