package metrics

import (
	"sort"
	"strings"
	"time"
)

// Exact or prefix match, empty query matches all
func matchesNamespace(metricNS, queryNS []string) (matches bool) {
	// Trailing empty element from a "/"-suffixed URL path
	for len(queryNS) > 0 && queryNS[len(queryNS)-1] == "" {
		queryNS = queryNS[:len(queryNS)-1]
	}
	if len(metricNS) < len(queryNS) {
		return
	}
	for i := range queryNS {
		if metricNS[i] != queryNS[i] {
			return
		}
	}
	matches = true
	return
}

// Returns all metrics matching given name and namespace prefix, oldest first.
// Empty name or prefix matches everything. Zero start/end disables that bound.
func (registry *Registry) Search(name string, namespacePrefix []string, start, end time.Time) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	var timestamps []time.Time
	for ts := range registry.metrics {
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		if !end.IsZero() && ts.After(end) {
			continue
		}
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i].Before(timestamps[j])
	})

	for _, ts := range timestamps {
		var slice []Metric
		for nsStr, metricsMap := range registry.metrics[ts] {
			if !matchesNamespace(strings.Split(nsStr, "/"), namespacePrefix) {
				continue
			}
			for metricName, metric := range metricsMap {
				if name == "" || metricName == name {
					slice = append(slice, metric)
				}
			}
		}
		sortMetrics(slice)
		results = append(results, slice...)
	}
	return
}

// Finds distinct metric definitions matching the filters (time-independent).
// Returned metrics carry no value or timestamp.
func (registry *Registry) Discover(name, description string, namespacePrefix []string, unit string, metricType MetricType) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	seen := make(map[string]Metric)
	for _, nsMap := range registry.metrics {
		for nsStr, metricsMap := range nsMap {
			if !matchesNamespace(strings.Split(nsStr, "/"), namespacePrefix) {
				continue
			}

			for _, metric := range metricsMap {
				if name != "" && !strings.Contains(metric.Name, name) {
					continue
				}
				if description != "" && !strings.Contains(metric.Description, description) {
					continue
				}
				if unit != "" && metric.Value.Unit != unit {
					continue
				}
				if metricType != "" && metric.Type != metricType {
					continue
				}

				key := strings.Join([]string{nsStr, metric.Name, string(metric.Type), metric.Value.Unit}, "|")
				if _, exists := seen[key]; exists {
					continue
				}
				seen[key] = Metric{
					Name:        metric.Name,
					Description: metric.Description,
					Namespace:   metric.Namespace,
					Type:        metric.Type,
					Value:       MetricValue{Unit: metric.Value.Unit},
				}
			}
		}
	}

	results = make([]Metric, 0, len(seen))
	for _, metric := range seen {
		results = append(results, metric)
	}
	sortMetrics(results)
	return
}
