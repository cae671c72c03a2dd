package logctx

import (
	"fmt"
	"io"
	"smcp/internal/global"
	"strings"
	"time"
)

// Starts a go routine that reads events and writes formatted output to every writer
// (plus any sink added later). Stops once logger.Done is closed and the queue is drained.
func StartWatcher(logger *Logger, outputs ...io.Writer) {
	for _, output := range outputs {
		logger.AddSink(output)
	}

	logger.wg.Add(1)
	go func() {
		defer logger.wg.Done()

		filter := newRepeatFilter()
		for {
			event, ok := logger.next()
			if !ok {
				return
			}

			summary, suppress := filter.observe(event, time.Now())
			if summary != "" {
				logger.write(summary)
			}
			if suppress {
				continue
			}
			logger.write(event.Format())
		}
	}()
}

// Writes text to every sink, sink errors are ignored
func (logger *Logger) write(text string) {
	logger.mutex.Lock()
	sinks := append([]io.Writer(nil), logger.sinks...)
	logger.mutex.Unlock()

	for _, sink := range sinks {
		fmt.Fprint(sink, text)
	}
}

func newRepeatFilter() (filter *repeatFilter) {
	filter = &repeatFilter{
		window:       5 * time.Second,
		minRepeats:   10,
		summaryEvery: 1 * time.Minute,
	}
	return
}

// Decides whether an event is a noisy repeat. Returns a summary line when enough
// repeats accumulated since the last summary.
func (filter *repeatFilter) observe(event Event, now time.Time) (summary string, suppress bool) {
	repeated := event.Message != "" &&
		event.Message == filter.lastMsg &&
		now.Sub(event.Timestamp) <= filter.window
	if !repeated {
		filter.lastMsg = event.Message
		filter.repeatCount = 1
		return
	}

	filter.repeatCount++
	suppress = true

	if filter.repeatCount >= filter.minRepeats && now.Sub(filter.lastSummary) >= filter.summaryEvery {
		summary = fmt.Sprintf("[%s] [%s] [%s] Suppressed %d repeated messages: %s",
			padTimestamp(event.Timestamp),
			strings.Join(event.Tags, "/"),
			global.InfoLog,
			filter.repeatCount,
			filter.lastMsg)
		if !strings.HasSuffix(summary, "\n") {
			summary += "\n"
		}
		filter.lastSummary = now
		filter.repeatCount = 0
	}
	return
}
