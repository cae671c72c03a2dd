package beats

import (
	"sync"
	"sync/atomic"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

type OutModule struct {
	Namespace []string
	address   string
	mu        sync.Mutex
	sink      *lumberjack.SyncClient
	metrics   MetricStorage
}

type MetricStorage struct {
	EventsSent atomic.Uint64 // documents acknowledged by the beats server
	SendErrors atomic.Uint64 // sends that failed even after a redial
	Redials    atomic.Uint64 // connections re-established after a failed send
}
