package metrics

import (
	"context"
	"runtime/debug"
	"smcp/internal/global"
	"smcp/internal/logctx"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Periodically pulls metrics from every registered source into the registry
type Gatherer struct {
	Registry  *Registry     // Storage for metric data
	Interval  time.Duration // Polling interval to gather metrics at
	Retention time.Duration // Maximum time to maintain metrics for
	Clock     clock.Clock

	mu      sync.Mutex
	sources []Source
}

func NewGatherer(interval, retention time.Duration, clk clock.Clock) (new *Gatherer) {
	if clk == nil {
		clk = clock.New()
	}
	new = &Gatherer{
		Registry:  New(),
		Interval:  interval,
		Retention: retention,
		Clock:     clk,
	}
	return
}

// Adds a component to the collection set
func (gatherer *Gatherer) Register(source Source) {
	if source == nil {
		return
	}
	gatherer.mu.Lock()
	defer gatherer.mu.Unlock()
	gatherer.sources = append(gatherer.sources, source)
}

// Blocks collecting every interval until ctx is cancelled
func (gatherer *Gatherer) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)

	ticker := gatherer.Clock.Ticker(gatherer.Interval)
	defer ticker.Stop()

	var tickCount int
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			gatherer.CollectOnce(ctx, now)

			tickCount++
			if tickCount >= 30 {
				gatherer.Registry.Prune(now, gatherer.Retention)
				tickCount = 0
			}
		}
	}
}

// Single collection pass stored under the time slice for now
func (gatherer *Gatherer) CollectOnce(ctx context.Context, now time.Time) {
	// Record panics and continue on next interval
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in metric collector: %v\n%s", fatalError, stack)
		}
	}()

	timeSlice := gatherer.Registry.NewTimeSlice(now, gatherer.Interval)

	gatherer.mu.Lock()
	sources := append([]Source(nil), gatherer.sources...)
	gatherer.mu.Unlock()

	for _, source := range sources {
		gatherer.Registry.Add(timeSlice, source.CollectMetrics(gatherer.Interval))
	}
}
