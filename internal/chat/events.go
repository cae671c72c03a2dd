package chat

import (
	"fmt"
	"smcp/internal/channel"
	"smcp/internal/global"
	"smcp/internal/logctx"
	"strconv"
	"strings"
	"unicode"
)

// Channel handler: fans one accepted event out to every enabled output
func (daemon *Daemon) handleEvent(event channel.Event) {
	entry := daemon.transcript(event)

	daemon.outMu.Lock()
	defer daemon.outMu.Unlock()

	_, err := daemon.fileOut.Write(daemon.ctx, entry)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.ErrorLog, "transcript write failed: %v\n", err)
	}
	_, err = daemon.beatsOut.Write(daemon.ctx, entry)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.ErrorLog, "beats write failed: %v\n", err)
	}
	if daemon.console != nil {
		fmt.Fprint(daemon.console, renderEvent(entry))
	}
}

func (daemon *Daemon) transcript(event channel.Event) (entry global.Transcript) {
	entry = global.Transcript{
		Timestamp: event.ReceivedAt,
		Session:   daemon.Params.ID,
		Endpoint:  daemon.Params.Endpoint,
		Kind:      kindName(event.Kind),
		Username:  event.Username,
		Address:   event.Address,
		Port:      event.Port,
	}
	if event.Kind == channel.MessageReceived {
		entry.Text = string(event.Payload)
	}
	return
}

func kindName(kind channel.EventKind) (name string) {
	switch kind {
	case channel.Joined:
		name = "join"
	case channel.Left:
		name = "leave"
	case channel.MessageReceived:
		name = "message"
	default:
		name = "unknown"
	}
	return
}

// Human readable console line. Control characters from peers are escaped so they cannot drive the terminal.
func renderEvent(entry global.Transcript) (line string) {
	stamp := entry.Timestamp.Local().Format("15:04:05")
	user := printable(entry.Username)
	source := entry.Address + ":" + strconv.Itoa(entry.Port)

	switch entry.Kind {
	case "join":
		line = fmt.Sprintf("[%s] * %s joined from %s\n", stamp, user, source)
	case "leave":
		line = fmt.Sprintf("[%s] * %s left\n", stamp, user)
	default:
		line = fmt.Sprintf("[%s] <%s> %s\n", stamp, user, printable(entry.Text))
	}
	return
}

func printable(text string) (clean string) {
	if strings.IndexFunc(text, func(r rune) bool { return !unicode.IsPrint(r) }) < 0 {
		clean = text
		return
	}
	quoted := strconv.Quote(text)
	clean = quoted[1 : len(quoted)-1]
	return
}
