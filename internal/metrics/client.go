package metrics

import (
	"fmt"
	"log/slog"

	"github.com/DataDog/datadog-go/statsd"
)

var Metrics statsd.ClientInterface
var StatsEnabled bool

// Configure points the statsd client at addr. An empty address leaves statsd disabled.
func Configure(addr string) error {
	if addr == "" {
		StatsEnabled = false
		return nil
	}
	client, err := statsd.New(addr, statsd.WithNamespace("mopeka."))
	if err != nil {
		return err
	}
	Metrics = client
	StatsEnabled = true
	return nil
}

func FormatTag(key, value string) string {
	return fmt.Sprintf("%s:%s", key, value)
}

func SendGaugeMetric(name string, tags []string, value float64) {
	if StatsEnabled {
		err := Metrics.Gauge(name, value, tags, 1)
		if err != nil {
			slog.Warn("got error trying to send metric", "metric", name, "error", err)
		}
	}
}

func SendCountMetric(name string, tags []string, value int64) {
	if StatsEnabled {
		err := Metrics.Count(name, value, tags, 1)
		if err != nil {
			slog.Warn("got error trying to send metric", "metric", name, "error", err)
		}
	}
}
