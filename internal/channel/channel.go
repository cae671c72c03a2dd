// Secure group channel: JOIN/LEAVE/TEXT over a multicast socket with per-datagram
// encryption, authentication and replay rejection
package channel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"smcp/internal/atomics"
	"smcp/internal/crypto/wrappers"
	"smcp/internal/global"
	"smcp/internal/logctx"
	"smcp/internal/network"
	"smcp/internal/replay"
	"smcp/internal/storage"
	"smcp/pkg/protocol"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"
)

const (
	maxUsernameLen     int = 255
	defaultMaxDatagram int = 65507
)

var ErrNotActive = errors.New("channel is not active")

// Joins the session: starts the receive loop and dispatcher, then announces with JOIN.
// The channel owns cfg.Conn from here on, including on error.
func New(ctx context.Context, cfg Config) (channel *Channel, err error) {
	err = cfg.setDefaults()
	if err != nil {
		if cfg.Conn != nil {
			cfg.Conn.Close()
		}
		return
	}

	engine, err := wrappers.NewEngine(cfg.Params.Suite, cfg.Params.ID, cfg.MasterKey)
	if err != nil {
		cfg.Conn.Close()
		return
	}

	namespace := []string{global.NSChannel, cfg.Params.Endpoint}
	cfg.Replay.Namespace = namespace
	cfg.Replay.Clock = cfg.Clock

	channel = &Channel{
		Namespace:    namespace,
		Metrics:      newMetricStorage(),
		cfg:          cfg,
		attrs:        cfg.Params.Attributes(),
		engine:       engine,
		guard:        replay.New(cfg.Replay),
		clock:        cfg.Clock,
		events:       make(chan Event, cfg.EventQueueSize),
		stop:         make(chan struct{}),
		recvDone:     make(chan struct{}),
		dispatchDone: make(chan struct{}),
	}
	if cfg.MaxInboundRate > 0 {
		channel.limiter = rate.NewLimiter(rate.Limit(cfg.MaxInboundRate), max(1, int(cfg.MaxInboundRate)))
	}
	channel.state.Store(uint32(StateJoining))

	channel.ctx, channel.cancel = context.WithCancel(context.WithoutCancel(ctx))
	channel.ctx = logctx.AppendCtxTag(channel.ctx, global.NSChannel)

	channel.guard.Start(channel.ctx)
	go channel.dispatchLoop()
	go channel.receiveLoop()

	if !cfg.Listen {
		err = channel.send(protocol.MsgJoin, []byte(cfg.Username))
		if err != nil {
			channel.shutdown()
			channel = nil
			err = fmt.Errorf("failed sending JOIN: %w", err)
			return
		}
	}

	channel.state.Store(uint32(StateActive))
	logctx.LogEvent(channel.ctx, global.VerbosityStandard, global.InfoLog,
		"joined session %q (%s) as %q using %s\n", cfg.Params.ID, cfg.Params.Endpoint, cfg.Username, cfg.Params.Suite)
	return
}

func (cfg *Config) setDefaults() (err error) {
	if cfg.Username == "" || len(cfg.Username) > maxUsernameLen {
		err = fmt.Errorf("%w: username must be 1..%d bytes", protocol.ErrConfiguration, maxUsernameLen)
		return
	}
	if cfg.Conn == nil || cfg.Group == nil {
		err = fmt.Errorf("%w: channel needs a socket and a group address", protocol.ErrConfiguration)
		return
	}
	if cfg.Handler == nil {
		err = fmt.Errorf("%w: channel needs an event handler", protocol.ErrConfiguration)
		return
	}
	if len(cfg.MasterKey) == 0 {
		err = fmt.Errorf("%w: no master key for session %q", protocol.ErrConfiguration, cfg.Params.ID)
		return
	}
	if cfg.Params.Suite.Cipher.Name == "" {
		err = cfg.Params.Validate()
		if err != nil {
			return
		}
		cfg.Params = cfg.Params.Canonical()
	}

	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = global.DefaultPollTimeout
	}
	if cfg.MaxDatagram <= 0 {
		cfg.MaxDatagram = defaultMaxDatagram
	}
	if cfg.EventQueueSize <= 0 {
		cfg.EventQueueSize = global.DefaultEventQueueSize
	}
	if cfg.SequenceBlock == 0 {
		cfg.SequenceBlock = global.DefaultSequenceBlock
	}
	if cfg.Sequences == nil {
		cfg.Sequences = storage.NewMemoryReserver()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.IsLocal == nil {
		cfg.IsLocal = func(addr net.Addr) bool {
			udpAddr, ok := addr.(*net.UDPAddr)
			return ok && network.IsLocalAddress(udpAddr.IP)
		}
	}
	return
}

func (channel *Channel) State() (state State) {
	state = State(channel.state.Load())
	return
}

// Replay registry, exposed for metric collection
func (channel *Channel) ReplayGuard() (guard *replay.Guard) {
	guard = channel.guard
	return
}

// Leaves the session: sends LEAVE, stops the receive loop, closes the socket.
// Waits for in-flight sends and the loops until ctx ends. Only the first call does work.
func (channel *Channel) Terminate(ctx context.Context) (err error) {
	if !channel.state.CompareAndSwap(uint32(StateActive), uint32(StateLeaving)) {
		return
	}

	var leaveErr error
	if !channel.cfg.Listen {
		leaveErr = channel.send(protocol.MsgLeave, []byte(channel.cfg.Username))
		if leaveErr != nil {
			logctx.LogEvent(channel.ctx, global.VerbosityStandard, global.WarnLog,
				"failed sending LEAVE: %v\n", leaveErr)
		}
	}

	drained, pending := atomics.WaitUntilZero(ctx, &channel.inflight)
	if !drained {
		logctx.LogEvent(channel.ctx, global.VerbosityStandard, global.WarnLog,
			"closing with %d sends still in flight\n", pending)
	}

	closeErr := channel.shutdownWait(ctx)
	err = errors.Join(leaveErr, closeErr)

	logctx.LogEvent(channel.ctx, global.VerbosityStandard, global.InfoLog,
		"left session %q\n", channel.cfg.Params.ID)
	return
}

// Teardown for a channel that never became active
func (channel *Channel) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), global.ChannelShutdownTimeout)
	defer cancel()
	channel.shutdownWait(ctx)
}

func (channel *Channel) shutdownWait(ctx context.Context) (err error) {
	channel.terminate.Do(func() {
		close(channel.stop)
	})

	select {
	case <-channel.recvDone:
	case <-ctx.Done():
		logctx.LogEvent(channel.ctx, global.VerbosityStandard, global.WarnLog,
			"receive loop did not stop before deadline\n")
	}

	closeErr := channel.cfg.Conn.Close()
	if closeErr != nil {
		err = fmt.Errorf("%w: failed closing socket: %w", protocol.ErrIOFailure, closeErr)
	}

	select {
	case <-channel.dispatchDone:
	case <-ctx.Done():
		logctx.LogEvent(channel.ctx, global.VerbosityStandard, global.WarnLog,
			"event dispatcher did not drain before deadline\n")
	}

	channel.guard.Stop()
	channel.engine.Close()
	if reserverErr := channel.cfg.Sequences.Close(); reserverErr != nil {
		err = errors.Join(err, fmt.Errorf("failed closing sequence store: %w", reserverErr))
	}
	channel.cancel()
	channel.state.Store(uint32(StateClosed))
	return
}
