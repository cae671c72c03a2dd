// Central registry for storing time-based metrics and their associated data
package metrics

import (
	"sort"
	"strings"
	"time"
)

func New() (new *Registry) {
	new = &Registry{
		metrics: make(map[time.Time]map[string]map[string]Metric),
	}
	return
}

// Setup metrics map for this collection interval
func (registry *Registry) NewTimeSlice(now time.Time, interval time.Duration) (timeSlice time.Time) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	timeSlice = now
	if interval > 0 {
		timeSlice = now.Truncate(interval)
	}
	if registry.metrics[timeSlice] == nil {
		registry.metrics[timeSlice] = make(map[string]map[string]Metric)
	}
	return
}

// Adds batch of metrics to an existing time slice
func (registry *Registry) Add(timeSlice time.Time, metrics []Metric) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	slice := registry.metrics[timeSlice]
	if slice == nil {
		return
	}

	for _, metric := range metrics {
		namespace := strings.Join(metric.Namespace, "/")
		if slice[namespace] == nil {
			slice[namespace] = make(map[string]Metric)
		}
		slice[namespace][metric.Name] = metric
	}
}

// Deletes time slices older than maxAge relative to currentTime
func (registry *Registry) Prune(currentTime time.Time, maxAge time.Duration) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for timeSlice := range registry.metrics {
		if currentTime.Sub(timeSlice) > maxAge {
			delete(registry.metrics, timeSlice)
		}
	}
}

// Newest recorded value of every namespace+name pair
func (registry *Registry) Latest() (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	newest := make(map[string]Metric)
	newestSlice := make(map[string]time.Time)
	for timeSlice, nsMap := range registry.metrics {
		for nsStr, metricsMap := range nsMap {
			for metricName, metric := range metricsMap {
				key := nsStr + "|" + metricName
				if last, seen := newestSlice[key]; seen && !timeSlice.After(last) {
					continue
				}
				newestSlice[key] = timeSlice
				newest[key] = metric
			}
		}
	}

	results = make([]Metric, 0, len(newest))
	for _, metric := range newest {
		results = append(results, metric)
	}
	sortMetrics(results)
	return
}

func sortMetrics(results []Metric) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return strings.Join(results[i].Namespace, "/") < strings.Join(results[j].Namespace, "/")
	})
}
