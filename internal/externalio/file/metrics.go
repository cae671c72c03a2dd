package file

import (
	"smcp/internal/metrics"
	"time"
)

func (mod *OutModule) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear
	lines := mod.metrics.LinesWritten.Swap(0)
	failures := mod.metrics.WriteErrors.Swap(0)
	reopens := mod.metrics.Reopens.Swap(0)

	// Record read time
	recordTime := time.Now()

	collection = []metrics.Metric{
		{
			Name:        "lines_written",
			Description: "Transcript lines appended in the interval",
			Namespace:   mod.Namespace,
			Value: metrics.MetricValue{
				Raw:      lines,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "write_errors",
			Description: "Transcript appends that failed in the interval",
			Namespace:   mod.Namespace,
			Value: metrics.MetricValue{
				Raw:      failures,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "reopens",
			Description: "Transcript file reopen requests handled in the interval",
			Namespace:   mod.Namespace,
			Value: metrics.MetricValue{
				Raw:      reopens,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
	}
	return
}
