package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/classloader/core/factory"
	coremetrics "github.com/kilianp07/classloader/core/metrics"
)

// init registers the Prometheus and InfluxDB recorders.
func init() {
	_ = coremetrics.RegisterRecorder("prometheus", func(conf map[string]any) (coremetrics.Recorder, error) {
		var c struct {
			Namespace string `json:"namespace"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPromRecorderWithRegistry(c.Namespace, prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterRecorder("influx", func(conf map[string]any) (coremetrics.Recorder, error) {
		var c InfluxConfig
		if err := factory.DecodeArgs(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxRecorderWithFallback(c), nil
	})
}
