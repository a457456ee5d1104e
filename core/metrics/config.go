package metrics

import "github.com/kilianp07/greetd/core/factory"

// Config is the "metrics" section of greetd.yaml.
type Config struct {
	// Sinks receive a DeliveryEvent per contact and a RunEvent per dispatch.
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPort serves /metrics when set, e.g. ":9090".
	PrometheusPort string `json:"prometheus_port"`
}
