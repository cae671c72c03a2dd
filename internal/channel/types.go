package channel

import (
	"context"
	"net"
	"smcp/internal/crypto/wrappers"
	"smcp/internal/replay"
	"smcp/internal/session"
	"smcp/internal/storage"
	"smcp/pkg/protocol"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"
)

// Datagram socket the channel drives (multicast UDP in production, in-memory in tests)
type PacketConn interface {
	ReadFrom(p []byte) (n int, addr net.Addr, err error)
	WriteTo(p []byte, addr net.Addr) (n int, err error)
	SetReadDeadline(t time.Time) error
	Close() error
}

type EventKind uint8

const (
	Joined EventKind = iota + 1
	Left
	MessageReceived
)

// Accepted peer activity delivered to the application
type Event struct {
	Kind       EventKind
	Username   string
	Address    string
	Port       int
	Payload    []byte
	ReceivedAt time.Time
}

// Called from the single dispatcher goroutine, one event at a time
type Handler func(event Event)

type State uint32

const (
	StateJoining State = iota
	StateActive
	StateLeaving
	StateClosed
)

type Config struct {
	Username       string             // peer identity carried in every payload
	Params         session.Parameters // ciphersuite and session identity
	MasterKey      []byte             // session key from the keystore, copied
	Conn           PacketConn         // owned by the channel after New
	Group          net.Addr           // send destination
	Handler        Handler
	Listen         bool          // receive only, no JOIN/LEAVE
	PollTimeout    time.Duration // read deadline used to re-check shutdown
	MaxDatagram    int           // refuse to send larger datagrams
	MaxInboundRate float64       // datagrams per second before crypto work, 0 disables
	EventQueueSize int
	Replay         replay.Config
	Sequences      storage.Reserver // nil keeps reservations in memory
	SequenceBlock  uint32
	IsLocal        func(addr net.Addr) bool // source belongs to this host
	Clock          clock.Clock
}

// One participant's membership in one secure session
type Channel struct {
	Namespace []string
	Metrics   MetricStorage

	cfg     Config
	attrs   protocol.Attributes
	engine  *wrappers.Engine
	guard   *replay.Guard
	limiter *rate.Limiter
	clock   clock.Clock

	state    atomic.Uint32
	inflight atomic.Int64

	seqMu      sync.Mutex
	nextSeq    uint32
	seqCeiling uint32

	events       chan Event
	stop         chan struct{}
	recvDone     chan struct{}
	dispatchDone chan struct{}
	terminate    sync.Once

	ctx    context.Context
	cancel context.CancelFunc
}
