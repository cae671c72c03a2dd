package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"smcp/internal/global"
	"smcp/internal/logctx"
	"strings"
)

const (
	maxLineLen  int    = 60000
	quitCommand string = "/quit"
	helpCommand string = "/help"
)

type lineAction uint8

const (
	actionSkip lineAction = iota
	actionSend
	actionQuit
	actionHelp
)

// Reads chat lines until EOF or /quit, then shuts the daemon down
func (daemon *Daemon) readConsole(input io.Reader) {
	ctx := logctx.AppendCtxTag(daemon.ctx, global.NSConsole)

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 4096), maxLineLen)

	for scanner.Scan() {
		action, text := parseLine(scanner.Text())
		switch action {
		case actionSkip:
			continue
		case actionHelp:
			daemon.printConsole("commands: /quit leaves the session, //text sends a line starting with '/'\n")
			continue
		case actionQuit:
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "quit requested from console\n")
			daemon.Shutdown()
			return
		}

		err := daemon.Channel.Send([]byte(text))
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "message not sent: %v\n", err)
			daemon.printConsole(fmt.Sprintf("! message not sent: %v\n", err))
		}
	}

	err := scanner.Err()
	if err != nil && !errors.Is(err, io.EOF) {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "console input failed: %v\n", err)
	}
	daemon.Shutdown()
}

// Classifies one console line. A leading "//" escapes a literal '/'.
func parseLine(raw string) (action lineAction, text string) {
	line := strings.TrimRight(raw, "\r\n")
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		action = actionSkip
	case trimmed == quitCommand:
		action = actionQuit
	case trimmed == helpCommand:
		action = actionHelp
	case strings.HasPrefix(trimmed, "//"):
		action = actionSend
		text = trimmed[1:]
	case strings.HasPrefix(trimmed, "/"):
		action = actionHelp
	default:
		action = actionSend
		text = line
	}
	return
}

func (daemon *Daemon) printConsole(text string) {
	daemon.outMu.Lock()
	defer daemon.outMu.Unlock()
	if daemon.console != nil {
		fmt.Fprint(daemon.console, text)
	}
}
