package replay

import (
	"smcp/internal/metrics"
	"time"
)

func (guard *Guard) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	accepted := guard.Metrics.Accepted.Swap(0)
	duplicates := guard.Metrics.DuplicateNonces.Swap(0)
	stale := guard.Metrics.StaleSequences.Swap(0)
	full := guard.Metrics.CapacityRejects.Swap(0)
	purgedNonces := guard.Metrics.PurgedNonces.Swap(0)
	purgedPeers := guard.Metrics.PurgedPeers.Swap(0)
	nonces, peers := guard.Size()

	recordTime := time.Now()

	counter := func(name, description string, value uint64) metrics.Metric {
		return metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   guard.Namespace,
			Value:       metrics.MetricValue{Raw: value, Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		}
	}

	collection = []metrics.Metric{
		counter("replay_accepted", "Messages that passed nonce and sequence checks in the interval", accepted),
		counter("replay_duplicate_nonce", "Messages rejected for a previously seen nonce in the interval", duplicates),
		counter("replay_stale_sequence", "Messages rejected for a non-increasing sequence number in the interval", stale),
		counter("replay_capacity_rejects", "Messages rejected because a registry was full in the interval", full),
		counter("replay_purged_nonces", "Nonce records removed by expiry in the interval", purgedNonces),
		counter("replay_purged_peers", "Peer sequence records removed by expiry in the interval", purgedPeers),
		{
			Name:        "replay_nonce_records",
			Description: "Live nonce records",
			Namespace:   guard.Namespace,
			Value:       metrics.MetricValue{Raw: nonces, Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "replay_peer_records",
			Description: "Live peer sequence records",
			Namespace:   guard.Namespace,
			Value:       metrics.MetricValue{Raw: peers, Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
	}
	return
}
