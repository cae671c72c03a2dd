package replay

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

const shardCount = 32

type Config struct {
	Expiry        time.Duration // record lifetime, default 10m
	SweepInterval time.Duration // purge period, default 10s
	MaxEntries    uint64        // nonce and peer record limit each, 0 derives from free memory
	Clock         clock.Clock   // nil uses the wall clock
	Namespace     []string
}

// Nonce and per-peer sequence registries for one session
type Guard struct {
	Namespace []string
	Metrics   MetricStorage

	expiry        time.Duration
	sweepInterval time.Duration
	capacity      uint64
	clock         clock.Clock

	nonceShards [shardCount]nonceShard
	peerShards  [shardCount]peerShard
	nonceCount  atomic.Uint64
	peerCount   atomic.Uint64

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

type nonceShard struct {
	mu   sync.Mutex
	seen map[uint32]time.Time
}

type peerShard struct {
	mu    sync.Mutex
	peers map[string]sequenceRecord
}

type sequenceRecord struct {
	last     uint32
	lastSeen time.Time
}

type MetricStorage struct {
	Accepted        atomic.Uint64
	DuplicateNonces atomic.Uint64
	StaleSequences  atomic.Uint64
	CapacityRejects atomic.Uint64
	PurgedNonces    atomic.Uint64
	PurgedPeers     atomic.Uint64
}
