package logctx

import (
	"bytes"
	"smcp/internal/global"
	"strings"
	"sync"
	"testing"
	"time"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatcherDrainsQueueAndSuppressesRepeats(t *testing.T) {
	done := make(chan struct{})
	logger := NewLogger(global.NSTest, 5, done)

	primary := &lockedBuffer{}
	secondary := &lockedBuffer{}
	StartWatcher(logger, primary)
	logger.AddSink(secondary)

	// Waking an idle watcher writes nothing
	logger.Wake()

	ctx := WithLogger(t.Context(), logger)
	const repeats = 11
	for i := 0; i < repeats; i++ {
		LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "duplicate-message\n")
	}
	LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "final-message\n")

	close(done)
	logger.Wake()
	logger.Wait()

	out := primary.String()
	if strings.Count(out, "duplicate-message") < 1 {
		t.Fatalf("expected original message in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Suppressed") {
		t.Fatalf("expected suppression summary, got:\n%s", out)
	}
	if !strings.Contains(out, "final-message") {
		t.Fatalf("expected queue to drain before exit, got:\n%s", out)
	}
	if !strings.Contains(secondary.String(), "final-message") {
		t.Fatalf("expected late sink to receive output, got:\n%s", secondary.String())
	}
}

func TestRepeatFilter(t *testing.T) {
	now := time.Now()
	filter := newRepeatFilter()

	first := Event{Timestamp: now, Message: "same"}
	if summary, suppress := filter.observe(first, now); suppress || summary != "" {
		t.Fatalf("first occurrence must print")
	}

	var summaries int
	for i := 0; i < 9; i++ {
		summary, suppress := filter.observe(first, now)
		if !suppress {
			t.Fatalf("repeat %d was not suppressed", i)
		}
		if summary != "" {
			summaries++
		}
	}
	if summaries != 1 {
		t.Fatalf("expected one summary after ten occurrences, got %d", summaries)
	}

	// Outside the window counts as new
	old := Event{Timestamp: now.Add(-time.Minute), Message: "same"}
	if _, suppress := filter.observe(old, now); suppress {
		t.Fatalf("event older than window must not be suppressed")
	}

	// Different message resets
	if _, suppress := filter.observe(Event{Timestamp: now, Message: "other"}, now); suppress {
		t.Fatalf("new message must not be suppressed")
	}
}
