package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"smcp/internal/global"
	"smcp/internal/logctx"
	"syscall"
)

type DaemonLike interface {
	Reopen(ctx context.Context) (err error)
	Shutdown()
}

// Handles all incoming signals from external sources.
// SIGHUP reopens outputs; anything else shuts the daemon down and returns.
func SignalHandler(ctx context.Context, daemonManager DaemonLike) {
	// Channel for handling interrupt signals
	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	HandleSignals(ctx, daemonManager, sigChan)
}

// Signal loop separated from registration. Returns after shutdown or when ctx ends.
func HandleSignals(ctx context.Context, daemonManager DaemonLike, sigChan <-chan os.Signal) {
	for {
		// Blocking
		var sig os.Signal
		select {
		case <-ctx.Done():
			return
		case sig = <-sigChan:
		}
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Received signal: %v\n", sig)

		if sig == syscall.SIGHUP {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Reopening outputs...\n")
			err := NotifyReload(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify reload failed: %v\n", err)
			}

			err = daemonManager.Reopen(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Reopen failed: %v\n", err)
				err = NotifyStatus(ctx, "Reopen of outputs failed. Check daemon logs.")
				if err != nil {
					logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify status failed: %v\n", err)
				}
			}

			err = NotifyReady(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
			}
			continue
		}

		// Initiate daemon shutdown
		daemonManager.Shutdown()

		if logger := logctx.GetLogger(ctx); logger != nil {
			logger.Wake()
		}
		return
	}
}
