package file

import (
	"context"
	"fmt"
	"smcp/internal/global"
	"smcp/internal/logctx"
	"strconv"
	"strings"
	"time"
)

// Appends one transcript line for an accepted event
func (mod *OutModule) Write(ctx context.Context, entry global.Transcript) (linesWritten int, err error) {
	if mod == nil {
		return
	}

	line := FormatLine(entry)

	mod.mu.Lock()
	defer mod.mu.Unlock()
	if mod.sink == nil {
		err = fmt.Errorf("transcript file is closed")
		return
	}

	data := []byte(line)
	for len(data) > 0 {
		var n int
		n, err = mod.sink.Write(data)
		if err != nil {
			mod.metrics.WriteErrors.Add(1)
			err = fmt.Errorf("failed writing transcript line: %w", err)
			return
		}
		data = data[n:] // remove the bytes that were successfully written
	}
	linesWritten = 1
	mod.metrics.LinesWritten.Add(1)

	logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog, "transcript: %s", line)
	return
}

// Single line: timestamp, session, kind, user@addr:port and the quoted text for messages.
// Quoting keeps peer-supplied newlines from forging extra lines.
func FormatLine(entry global.Transcript) (line string) {
	var builder strings.Builder
	builder.WriteString(entry.Timestamp.UTC().Format(time.RFC3339Nano))
	builder.WriteByte(' ')
	builder.WriteString(entry.Session)
	builder.WriteByte(' ')
	builder.WriteString(entry.Kind)
	builder.WriteByte(' ')
	builder.WriteString(strconv.Quote(entry.Username))
	builder.WriteByte('@')
	builder.WriteString(entry.Address)
	builder.WriteByte(':')
	builder.WriteString(strconv.Itoa(entry.Port))
	if entry.Text != "" {
		builder.WriteByte(' ')
		builder.WriteString(strconv.Quote(entry.Text))
	}
	builder.WriteByte('\n')
	line = builder.String()
	return
}
