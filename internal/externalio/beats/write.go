package beats

import (
	"context"
	"fmt"
	"os"
	"smcp/internal/global"
	"smcp/internal/logctx"
)

// Sends one event document per accepted channel event.
// A failed send redials once before giving up on the event.
func (mod *OutModule) Write(ctx context.Context, entry global.Transcript) (eventsSent int, err error) {
	if mod == nil {
		return
	}

	events := []interface{}{Document(entry)}

	mod.mu.Lock()
	defer mod.mu.Unlock()

	if mod.sink != nil {
		eventsSent, err = mod.sink.Send(events)
		if err == nil {
			mod.metrics.EventsSent.Add(uint64(eventsSent))
			return
		}
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"beats send to %s failed, redialing: %v\n", mod.address, err)
		mod.sink.Close()
		mod.sink = nil
	}

	client, err := dial(mod.address)
	if err != nil {
		mod.metrics.SendErrors.Add(1)
		return
	}
	mod.sink = client
	mod.metrics.Redials.Add(1)

	eventsSent, err = mod.sink.Send(events)
	if err != nil {
		mod.metrics.SendErrors.Add(1)
		err = fmt.Errorf("failed sending event to beats server: %w", err)
		return
	}
	mod.metrics.EventsSent.Add(uint64(eventsSent))
	return
}

// ECS-style document for one transcript entry
func Document(entry global.Transcript) (fields map[string]interface{}) {
	fields = map[string]interface{}{
		// Minimum required fields
		"@timestamp": entry.Timestamp,
		"message":    entry.Text,

		"event": map[string]interface{}{
			"kind":   "event",
			"action": entry.Kind,
		},
		"user": map[string]interface{}{
			"name": entry.Username,
		},
		"source": map[string]interface{}{
			"ip":   entry.Address,
			"port": entry.Port,
		},
		"smcp": map[string]interface{}{
			"session":  entry.Session,
			"endpoint": entry.Endpoint,
		},
		"agent": map[string]interface{}{
			// Meta fields identifying the local participant daemon
			"name":    global.Hostname,
			"program": global.ProgBaseName,
			"version": global.ProgVersion,
			"type":    "filebeat",
			"pid":     os.Getpid(),
		},
	}
	return
}
