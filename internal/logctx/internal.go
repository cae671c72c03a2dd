package logctx

import (
	"smcp/internal/global"
	"time"
)

// Queues event for the watcher if the level allows it (errors are always queued)
func (logger *Logger) log(eventLevel int, eventSeverity string, tags []string, fullMessage string) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	if eventLevel > logger.PrintLevel && eventSeverity != global.ErrorLog {
		return
	}

	logger.queue = append(logger.queue, Event{
		Timestamp: time.Now(),
		Tags:      tags,
		Severity:  eventSeverity,
		Message:   fullMessage,
	})
	logger.cond.Signal()
}

// Removes and returns the oldest event. Blocks until an event arrives or done is closed.
// Caller must not hold the mutex.
func (logger *Logger) next() (event Event, ok bool) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	for len(logger.queue) == 0 {
		select {
		case <-logger.Done:
			return
		default:
		}
		logger.cond.Wait()
	}

	event = logger.queue[0]
	logger.queue = logger.queue[1:]
	ok = true
	return
}
