package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/rmcloud-go/internal/infra/buildinfo"
)

// NewBuildInfoCollector returns a constant gauge set to 1 whose labels
// describe the running binary.
func NewBuildInfoCollector(info buildinfo.Info) prometheus.Collector {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rmcloud",
		Name:      "build_info",
		Help:      "Build information of the running binary",
		ConstLabels: prometheus.Labels{
			"version":    info.Version,
			"commit":     info.Commit,
			"go_version": info.GoVersion,
		},
	})
	g.Set(1)
	return g
}
