package metrics

import (
	"testing"
	"time"
)

func setupRegistryWithData(t *testing.T) (mockRegistry *Registry, mockedTimeSlices map[string]time.Time) {
	t.Helper()

	mockRegistry = New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	interval := time.Minute

	ts1 := mockRegistry.NewTimeSlice(base, interval)
	ts2 := mockRegistry.NewTimeSlice(base.Add(1*time.Minute), interval)
	ts3 := mockRegistry.NewTimeSlice(base.Add(2*time.Minute), interval)

	channelNS := []string{"Chat", "Channel", "224.1.2.3:5000"}
	replayNS := []string{"Chat", "Replay"}

	metric := func(name string, ns []string, kind MetricType, ts time.Time, raw any, unit string) Metric {
		return Metric{
			Name:        name,
			Description: name + " description",
			Namespace:   ns,
			Type:        kind,
			Timestamp:   ts,
			Value:       MetricValue{Raw: raw, Unit: unit, Interval: interval},
		}
	}

	mockRegistry.Add(ts1, []Metric{
		metric("datagrams_accepted", channelNS, Counter, ts1, uint64(10), "count"),
		metric("replay_nonces", replayNS, Gauge, ts1, uint64(5), "count"),
		metric("receive_time_avg_ns", channelNS, Summary, ts1, 100.0, "ns"),
	})
	mockRegistry.Add(ts2, []Metric{
		metric("datagrams_accepted", channelNS, Counter, ts2, uint64(20), "count"),
		metric("replay_nonces", replayNS, Gauge, ts2, uint64(8), "count"),
		metric("receive_time_avg_ns", channelNS, Summary, ts2, "150", "us"),
	})
	mockRegistry.Add(ts3, []Metric{
		metric("datagrams_accepted", channelNS, Counter, ts3, uint64(2), "count"),
		metric("bad_metric", replayNS, Gauge, ts3, struct{}{}, "count"),
	})

	mockedTimeSlices = map[string]time.Time{
		"ts1": ts1,
		"ts2": ts2,
		"ts3": ts3,
	}
	return
}
