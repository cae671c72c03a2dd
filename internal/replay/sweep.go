package replay

import (
	"context"
	"runtime/debug"
	"smcp/internal/global"
	"smcp/internal/logctx"
	"time"
)

// Starts the nonce and sequence sweep tasks. Calling Start twice is a no-op.
func (guard *Guard) Start(ctx context.Context) {
	guard.lifecycle.Lock()
	defer guard.lifecycle.Unlock()
	if guard.cancel != nil {
		return
	}

	ctx = logctx.AppendCtxTag(ctx, global.NSReplay)
	ctx, guard.cancel = context.WithCancel(ctx)

	guard.wg.Add(2)
	go guard.sweep(ctx, "nonce", guard.PurgeNonces)
	go guard.sweep(ctx, "sequence", guard.PurgeSequences)
}

// Cancels the sweep tasks and waits for them to return
func (guard *Guard) Stop() {
	guard.lifecycle.Lock()
	cancel := guard.cancel
	guard.cancel = nil
	guard.lifecycle.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	guard.wg.Wait()
}

func (guard *Guard) sweep(ctx context.Context, registry string, purge func(now time.Time) uint64) {
	defer guard.wg.Done()

	ticker := guard.clock.Ticker(guard.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			guard.runPurge(ctx, registry, purge, now)
		}
	}
}

func (guard *Guard) runPurge(ctx context.Context, registry string, purge func(now time.Time) uint64, now time.Time) {
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in %s sweep: %v\n%s", registry, fatalError, stack)
		}
	}()

	purged := purge(now)
	if purged > 0 {
		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
			"purged %d expired %s records\n", purged, registry)
	}
}
