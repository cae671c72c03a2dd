package integration

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"smcp/internal/channel"
	"smcp/internal/externalio/file"
	"smcp/internal/global"
	"smcp/internal/keystore"
	"smcp/internal/replay"
	"smcp/internal/session"
	"smcp/internal/storage"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	lobbyEndpoint = "239.10.10.10:5000" // first session in the generated template
	waitTimeout   = 3 * time.Second
	waitTick      = 10 * time.Millisecond
)

// Shared session material every participant loads from disk
type sessionFixture struct {
	dir    string
	params session.Parameters
	key    []byte
}

func newSessionFixture(t *testing.T) (fixture sessionFixture) {
	t.Helper()
	fixture.dir = t.TempDir()

	template, err := session.Template()
	require.NoError(t, err)
	sessionPath := filepath.Join(fixture.dir, "sessions.toml")
	require.NoError(t, os.WriteFile(sessionPath, template, 0644))

	provider, err := session.LoadFile(sessionPath)
	require.NoError(t, err)
	fixture.params, err = provider.Lookup(lobbyEndpoint)
	require.NoError(t, err)

	password := []byte("integration")
	keystorePath := filepath.Join(fixture.dir, "keystore.smks")
	store, err := keystore.Create(keystorePath, password)
	require.NoError(t, err)
	require.NoError(t, store.Generate(fixture.params.KeyAlias, 256))
	require.NoError(t, store.Save())
	store.Close()

	// Reopen the way the daemon does
	store, err = keystore.Open(keystorePath, password)
	require.NoError(t, err)
	fixture.key, err = store.Key(fixture.params.KeyAlias)
	require.NoError(t, err)
	store.Close()
	return
}

func listenLoopback(t *testing.T) (conn *net.UDPConn) {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	return
}

// Transcript file plus the handler feeding it
type transcriptSink struct {
	out  *file.OutModule
	path string

	mu    sync.Mutex
	kinds []channel.EventKind
}

func newTranscriptSink(t *testing.T, dir, name string) (sink *transcriptSink) {
	t.Helper()
	path := filepath.Join(dir, name+".log")
	out, err := file.NewOutput([]string{global.NSTest, name}, path)
	require.NoError(t, err)
	t.Cleanup(func() { out.Shutdown() })
	sink = &transcriptSink{out: out, path: path}
	return
}

func (sink *transcriptSink) handle(endpoint string, params session.Parameters) channel.Handler {
	return func(event channel.Event) {
		entry := global.Transcript{
			Timestamp: event.ReceivedAt,
			Session:   params.ID,
			Endpoint:  endpoint,
			Username:  event.Username,
			Address:   event.Address,
			Port:      event.Port,
		}
		switch event.Kind {
		case channel.Joined:
			entry.Kind = "join"
		case channel.Left:
			entry.Kind = "leave"
		case channel.MessageReceived:
			entry.Kind = "message"
			entry.Text = string(event.Payload)
		}
		sink.out.Write(context.Background(), entry)

		sink.mu.Lock()
		sink.kinds = append(sink.kinds, event.Kind)
		sink.mu.Unlock()
	}
}

func (sink *transcriptSink) count() int {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	return len(sink.kinds)
}

func (sink *transcriptSink) lines(t *testing.T) (lines []string) {
	t.Helper()
	data, err := os.ReadFile(sink.path)
	require.NoError(t, err)
	lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	return
}

// Starts a channel on conn that sends to peer
func startParticipant(t *testing.T, fixture sessionFixture, username string, conn *net.UDPConn, peer net.Addr, sequences storage.Reserver, handler channel.Handler) (ch *channel.Channel) {
	t.Helper()
	ch, err := channel.New(context.Background(), channel.Config{
		Username:    username,
		Params:      fixture.params,
		MasterKey:   fixture.key,
		Conn:        conn,
		Group:       peer,
		Handler:     handler,
		PollTimeout: 25 * time.Millisecond,
		Replay:      replay.Config{MaxEntries: 4096},
		Sequences:   sequences,
		IsLocal: func(addr net.Addr) bool {
			return addr != nil && addr.String() == conn.LocalAddr().String()
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { stopParticipant(ch) })
	return
}

func stopParticipant(ch *channel.Channel) error {
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	return ch.Terminate(ctx)
}

// Send destination for a participant that only records (discard port)
var discardAddr = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}

func rebind(addr net.Addr) (conn *net.UDPConn, err error) {
	udpAddr, err := net.ResolveUDPAddr("udp4", addr.String())
	if err != nil {
		return
	}
	conn, err = net.ListenUDP("udp4", udpAddr)
	return
}
