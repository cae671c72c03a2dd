package beats

import (
	"smcp/internal/metrics"
	"time"
)

func (mod *OutModule) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	sent := mod.metrics.EventsSent.Swap(0)
	failures := mod.metrics.SendErrors.Swap(0)
	redials := mod.metrics.Redials.Swap(0)

	recordTime := time.Now()

	metric := func(name, description string, raw uint64) metrics.Metric {
		return metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   mod.Namespace,
			Value:       metrics.MetricValue{Raw: raw, Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		}
	}

	collection = []metrics.Metric{
		metric("events_sent", "Event documents acknowledged by the beats server in the interval", sent),
		metric("send_errors", "Event documents lost after a failed redial in the interval", failures),
		metric("redials", "Beats connections re-established in the interval", redials),
	}
	return
}
