// Lumberjack (beats protocol) transcript output
package beats

import (
	"fmt"
	"smcp/internal/global"
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

const dialTimeout time.Duration = 3 * time.Second

// Creates new beats (lumberjack) output module. Returns nil nil if no address.
func NewOutput(namespace []string, endpoint string) (module *OutModule, err error) {
	if endpoint == "" {
		return
	}

	ljClient, err := dial(endpoint)
	if err != nil {
		return
	}

	module = &OutModule{
		Namespace: append(append([]string(nil), namespace...), global.NSoBeats),
		address:   endpoint,
		sink:      ljClient,
	}
	return
}

func dial(endpoint string) (client *lumberjack.SyncClient, err error) {
	compression := lumberjack.CompressionLevel(0)
	timeout := lumberjack.Timeout(dialTimeout)

	client, err = lumberjack.SyncDial(endpoint, compression, timeout)
	if err != nil {
		err = fmt.Errorf("failed connection to beats server: %w", err)
		return
	}
	return
}
