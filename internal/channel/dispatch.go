package channel

import (
	"runtime/debug"
	"smcp/internal/global"
	"smcp/internal/logctx"
)

// Delivers accepted events to the handler in arrival order until the stop signal
func (channel *Channel) dispatchLoop() {
	defer close(channel.dispatchDone)

	ctx := logctx.AppendCtxTag(channel.ctx, global.NSDispatch)
	for {
		select {
		case event := <-channel.events:
			channel.deliver(event)
		case <-channel.recvDone:
			// Receive loop is gone, drain what it queued
			for {
				select {
				case event := <-channel.events:
					channel.deliver(event)
				default:
					logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "event dispatcher stopped\n")
					return
				}
			}
		}
	}
}

// One misbehaving handler must not stop protocol processing
func (channel *Channel) deliver(event Event) {
	defer func() {
		if fatalError := recover(); fatalError != nil {
			channel.Metrics.HandlerPanics.Add(1)
			logctx.LogEvent(channel.ctx, global.VerbosityStandard, global.ErrorLog,
				"event handler panicked: %v\n%s\n", fatalError, debug.Stack())
		}
	}()

	channel.cfg.Handler(event)
	channel.Metrics.Delivered.Add(1)
}
