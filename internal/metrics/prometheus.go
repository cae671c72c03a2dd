package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Exposes the newest registry values as prometheus gauges.
// Interval counters are reported as-is (value over the last window).
type Collector struct {
	registry *Registry
	prefix   string
}

func NewCollector(registry *Registry, prefix string) (collector *Collector) {
	collector = &Collector{
		registry: registry,
		prefix:   sanitizeName(prefix),
	}
	return
}

// Unchecked collector: metric set changes as channels come and go
func (collector *Collector) Describe(ch chan<- *prometheus.Desc) {}

func (collector *Collector) Collect(ch chan<- prometheus.Metric) {
	descs := make(map[string]*prometheus.Desc)

	for _, metric := range collector.registry.Latest() {
		value, err := metric.Value.Float()
		if err != nil {
			continue
		}

		fqName := collector.prefix + "_" + sanitizeName(metric.Name)
		desc, ok := descs[fqName]
		if !ok {
			help := metric.Description
			if help == "" {
				help = metric.Name
			}
			desc = prometheus.NewDesc(fqName, help, []string{"namespace", "unit"}, nil)
			descs[fqName] = desc
		}

		promMetric, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, value,
			strings.Join(metric.Namespace, "/"), metric.Value.Unit)
		if err != nil {
			continue
		}
		ch <- promMetric
	}
}

// Prometheus registry carrying the metric registry plus runtime collectors
func NewPrometheusRegistry(registry *Registry, prefix string) (promRegistry *prometheus.Registry, err error) {
	promRegistry = prometheus.NewRegistry()

	err = promRegistry.Register(NewCollector(registry, prefix))
	if err != nil {
		return
	}
	err = promRegistry.Register(collectors.NewGoCollector())
	if err != nil {
		return
	}
	err = promRegistry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return
}

// Lowercase, only [a-z0-9_]
func sanitizeName(name string) (clean string) {
	var builder strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}
	clean = builder.String()
	return
}
