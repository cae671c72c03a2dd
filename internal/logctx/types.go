package logctx

import (
	"io"
	"sync"
	"time"
)

// Log Event Structure
type Event struct {
	Timestamp time.Time
	Severity  string
	Tags      []string
	Message   string
}

// Logger Struct
type Logger struct {
	ID         string
	CreatedAt  time.Time
	queue      []Event    // event buffer
	mutex      sync.Mutex // protects buffer, level and sinks
	cond       *sync.Cond // signals new events to the watcher
	sinks      []io.Writer
	Done       <-chan struct{}
	PrintLevel int             // Level at which the message should be recorded
	wg         *sync.WaitGroup // Holds main execution threads until log watchers are done handling events
}

// Repeat suppression bookkeeping for the watcher
type repeatFilter struct {
	lastMsg      string
	repeatCount  int
	lastSummary  time.Time
	window       time.Duration
	minRepeats   int
	summaryEvery time.Duration
}
