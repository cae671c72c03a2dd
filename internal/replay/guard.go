// Anti-replay registries: nonce first-sight and per-peer sequence high-water marks with expiry
package replay

import (
	"encoding/binary"
	"fmt"
	"smcp/internal/atomics"
	"smcp/internal/global"
	"smcp/pkg/protocol"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cespare/xxhash/v2"
	"github.com/pbnjay/memory"
)

const (
	// Approximate heap cost of one map entry including overhead
	approxEntryBytes uint64 = 96
	minCapacity      uint64 = 4096
	maxCapacity      uint64 = 1 << 24
	casRetries       int    = 16
)

func New(cfg Config) (guard *Guard) {
	if cfg.Expiry <= 0 {
		cfg.Expiry = global.DefaultReplayExpiry
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = global.DefaultSweepInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = DefaultCapacity()
	}

	guard = &Guard{
		Namespace:     append(append([]string(nil), cfg.Namespace...), global.NSReplay),
		expiry:        cfg.Expiry,
		sweepInterval: cfg.SweepInterval,
		capacity:      cfg.MaxEntries,
		clock:         cfg.Clock,
	}
	for i := range shardCount {
		guard.nonceShards[i].seen = make(map[uint32]time.Time)
		guard.peerShards[i].peers = make(map[string]sequenceRecord)
	}
	return
}

// Record limit sized to a sixteenth of currently free memory
func DefaultCapacity() (capacity uint64) {
	capacity = memory.FreeMemory() / 16 / approxEntryBytes
	capacity = max(capacity, minCapacity)
	capacity = min(capacity, maxCapacity)
	return
}

// Accepts the (nonce, peer, sequence) triple or returns why it is a replay.
// Nonce check runs first and records the nonce even if the sequence check then fails.
func (guard *Guard) CheckAndRecord(nonce uint32, peerID string, sequence uint32, now time.Time) (err error) {
	err = guard.recordNonce(nonce, now)
	if err != nil {
		return
	}
	err = guard.recordSequence(peerID, sequence, now)
	if err != nil {
		return
	}
	guard.Metrics.Accepted.Add(1)
	return
}

func (guard *Guard) recordNonce(nonce uint32, now time.Time) (err error) {
	shard := &guard.nonceShards[nonceShardIndex(nonce)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	firstSeen, present := shard.seen[nonce]
	if present && now.Sub(firstSeen) < guard.expiry {
		guard.Metrics.DuplicateNonces.Add(1)
		err = fmt.Errorf("%w: nonce %08x first seen %s ago", protocol.ErrDuplicateNonce, nonce, now.Sub(firstSeen))
		return
	}

	if !present {
		if !atomics.AddCapped(&guard.nonceCount, 1, guard.capacity) {
			guard.Metrics.CapacityRejects.Add(1)
			err = fmt.Errorf("%w: %d nonce records", protocol.ErrReplayCapacity, guard.capacity)
			return
		}
	}
	shard.seen[nonce] = now
	return
}

func (guard *Guard) recordSequence(peerID string, sequence uint32, now time.Time) (err error) {
	shard := &guard.peerShards[peerShardIndex(peerID)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	record, present := shard.peers[peerID]
	if present && now.Sub(record.lastSeen) < guard.expiry && record.last >= sequence {
		guard.Metrics.StaleSequences.Add(1)
		err = fmt.Errorf("%w: peer %q sequence %d not above %d", protocol.ErrStaleSequence, peerID, sequence, record.last)
		return
	}

	if !present {
		if !atomics.AddCapped(&guard.peerCount, 1, guard.capacity) {
			guard.Metrics.CapacityRejects.Add(1)
			err = fmt.Errorf("%w: %d peer records", protocol.ErrReplayCapacity, guard.capacity)
			return
		}
	}
	shard.peers[peerID] = sequenceRecord{last: sequence, lastSeen: now}
	return
}

// Removes nonce records first seen at or before now-expiry
func (guard *Guard) PurgeNonces(now time.Time) (purged uint64) {
	for i := range shardCount {
		shard := &guard.nonceShards[i]
		shard.mu.Lock()
		for nonce, firstSeen := range shard.seen {
			if now.Sub(firstSeen) >= guard.expiry {
				delete(shard.seen, nonce)
				purged++
			}
		}
		shard.mu.Unlock()
	}
	atomics.Subtract(&guard.nonceCount, purged, casRetries)
	guard.Metrics.PurgedNonces.Add(purged)
	return
}

// Removes peer sequence records last updated at or before now-expiry
func (guard *Guard) PurgeSequences(now time.Time) (purged uint64) {
	for i := range shardCount {
		shard := &guard.peerShards[i]
		shard.mu.Lock()
		for peerID, record := range shard.peers {
			if now.Sub(record.lastSeen) >= guard.expiry {
				delete(shard.peers, peerID)
				purged++
			}
		}
		shard.mu.Unlock()
	}
	atomics.Subtract(&guard.peerCount, purged, casRetries)
	guard.Metrics.PurgedPeers.Add(purged)
	return
}

// Both registries in one pass
func (guard *Guard) PurgeExpired(now time.Time) (nonces uint64, peers uint64) {
	nonces = guard.PurgeNonces(now)
	peers = guard.PurgeSequences(now)
	return
}

// Live record counts
func (guard *Guard) Size() (nonces uint64, peers uint64) {
	nonces = guard.nonceCount.Load()
	peers = guard.peerCount.Load()
	return
}

func nonceShardIndex(nonce uint32) (index int) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], nonce)
	index = int(xxhash.Sum64(b[:]) % shardCount)
	return
}

func peerShardIndex(peerID string) (index int) {
	index = int(xxhash.Sum64String(peerID) % shardCount)
	return
}
