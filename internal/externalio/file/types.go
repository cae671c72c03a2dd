package file

import (
	"os"
	"sync"
	"sync/atomic"
)

type OutModule struct {
	Namespace []string
	path      string
	mu        sync.Mutex
	sink      *os.File
	metrics   MetricStorage
}

type MetricStorage struct {
	LinesWritten atomic.Uint64 // transcript lines appended
	WriteErrors  atomic.Uint64 // failed appends
	Reopens      atomic.Uint64 // successful reopen (log rotation) requests
}
