package metrics

import "github.com/kilianp07/classloader/core/factory"

// Config defines settings for metrics recorders.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr, when set, exposes /metrics on this address.
	PrometheusAddr string `json:"prometheus_addr"`
}
