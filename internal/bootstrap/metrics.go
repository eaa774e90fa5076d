package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cnts-sn/sgi-cnts/config"
	"github.com/cnts-sn/sgi-cnts/internal/observability/metrics"
)

// MetricsContainer groups the metric recorders and their scrape handler.
type MetricsContainer struct {
	Auth *metrics.AuthMetrics
	// Handler is nil when exposition is disabled.
	Handler http.Handler
	Path    string
}

// BuildMetrics creates a dedicated registry with runtime collectors and the auth
// counters. Counters are recorded even when the scrape endpoint is disabled.
func BuildMetrics(cfg config.ObservabilityMetricsConfig) (MetricsContainer, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	auth, err := metrics.NewAuthMetrics(reg)
	if err != nil {
		return MetricsContainer{}, fmt.Errorf("register auth metrics: %w", err)
	}

	out := MetricsContainer{Auth: auth, Path: cfg.Path}
	if cfg.IsEnabled() {
		out.Handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}
	return out, nil
}
