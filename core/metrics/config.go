package metrics

import "github.com/kilianp07/fieldroute/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr enables the /metrics HTTP endpoint when set.
	PrometheusAddr string `json:"prometheus_addr"`
}
