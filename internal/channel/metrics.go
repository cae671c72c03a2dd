package channel

import (
	"smcp/internal/metrics"
	"sync/atomic"
	"time"
)

// Drop reasons beyond the protocol error classes
const (
	reasonRateLimited string = "rate_limited"
	reasonOwn         string = "own_datagram"
	reasonReadError   string = "read_error"
)

var dropReasons = []string{
	"malformed", "protocol_mismatch", "auth_failure",
	"duplicate_nonce", "stale_sequence", "replay_capacity",
	reasonRateLimited, reasonOwn, reasonReadError, "other",
}

type MetricStorage struct {
	Sent          atomic.Uint64 // datagrams written
	SendFailures  atomic.Uint64 // sends that returned an error
	Received      atomic.Uint64 // datagrams read from the socket
	Delivered     atomic.Uint64 // events handed to the handler
	HandlerPanics atomic.Uint64
	BusyNs        atomic.Uint64 // sum of ns spent processing received datagrams
	MaxNs         atomic.Uint64 // slowest datagram in the interval
	dropped       map[string]*atomic.Uint64
}

func newMetricStorage() (storage MetricStorage) {
	storage.dropped = make(map[string]*atomic.Uint64, len(dropReasons))
	for _, reason := range dropReasons {
		storage.dropped[reason] = new(atomic.Uint64)
	}
	return
}

func (storage *MetricStorage) drop(reason string) {
	counter, ok := storage.dropped[reason]
	if !ok {
		counter = storage.dropped["other"]
	}
	counter.Add(1)
}

// Dropped count for one reason (tests and status output)
func (storage *MetricStorage) Dropped(reason string) (count uint64) {
	if counter, ok := storage.dropped[reason]; ok {
		count = counter.Load()
	}
	return
}

func (storage *MetricStorage) observe(elapsed time.Duration) {
	ns := uint64(elapsed.Nanoseconds())
	storage.BusyNs.Add(ns)
	for {
		current := storage.MaxNs.Load()
		if ns <= current || storage.MaxNs.CompareAndSwap(current, ns) {
			return
		}
	}
}

func (channel *Channel) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	sent := channel.Metrics.Sent.Swap(0)
	sendFailures := channel.Metrics.SendFailures.Swap(0)
	received := channel.Metrics.Received.Swap(0)
	delivered := channel.Metrics.Delivered.Swap(0)
	panics := channel.Metrics.HandlerPanics.Swap(0)
	busyNs := channel.Metrics.BusyNs.Swap(0)
	maxNs := channel.Metrics.MaxNs.Swap(0)

	recordTime := time.Now()

	var busyPct float64
	if interval > 0 {
		busyPct = (float64(busyNs) / float64(interval.Nanoseconds())) * 100
	}
	var avgNs uint64
	if received > 0 {
		avgNs = busyNs / received
	}

	metric := func(name, description string, raw any, unit string, kind metrics.MetricType) metrics.Metric {
		return metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   channel.Namespace,
			Value:       metrics.MetricValue{Raw: raw, Unit: unit, Interval: interval},
			Type:        kind,
			Timestamp:   recordTime,
		}
	}

	collection = []metrics.Metric{
		metric("datagrams_sent", "Datagrams multicast in the interval", sent, "count", metrics.Counter),
		metric("send_failures", "Send or terminate calls that failed in the interval", sendFailures, "count", metrics.Counter),
		metric("datagrams_received", "Datagrams read from the socket in the interval", received, "count", metrics.Counter),
		metric("events_delivered", "Events handed to the application in the interval", delivered, "count", metrics.Counter),
		metric("handler_panics", "Recovered application handler panics in the interval", panics, "count", metrics.Counter),
		metric("busy_time_percent", "Time spent processing received datagrams in the interval", busyPct, "%", metrics.Summary),
		metric("receive_time_avg_ns", "Average processing time per received datagram", avgNs, "ns", metrics.Summary),
		metric("receive_time_max_ns", "Slowest received datagram in the interval", maxNs, "ns", metrics.Summary),
		metric("channel_state", "Channel state (0 joining, 1 active, 2 leaving, 3 closed)", uint64(channel.State()), "state", metrics.Gauge),
	}
	for _, reason := range dropReasons {
		count := channel.Metrics.dropped[reason].Swap(0)
		collection = append(collection, metric("dropped_"+reason,
			"Datagrams dropped as "+reason+" in the interval", count, "count", metrics.Counter))
	}
	return
}
