// Participant daemon: joins one secure multicast session, relays console input and
// records accepted peer activity to the configured outputs
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"smcp/internal/channel"
	"smcp/internal/externalio/beats"
	"smcp/internal/externalio/file"
	"smcp/internal/externalio/server"
	"smcp/internal/global"
	"smcp/internal/keystore"
	"smcp/internal/lifecycle"
	"smcp/internal/logctx"
	"smcp/internal/metrics"
	"smcp/internal/network"
	"smcp/internal/replay"
	"smcp/internal/session"
	"smcp/internal/storage"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
)

// Create new participant daemon instance. input feeds chat lines (ignored in listen mode), console receives rendered events.
func NewDaemon(cfg Config, input io.Reader, console io.Writer) (new *Daemon) {
	ctx, cancel := context.WithCancel(context.Background())
	new = &Daemon{
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		input:   input,
		console: console,
	}
	return
}

// Joins the session and starts background workers - gracefully shuts down if startup error is encountered
func (daemon *Daemon) Start(globalCtx context.Context, keystorePassword []byte) (err error) {
	// New context for the daemon
	daemon.ctx, daemon.cancel = context.WithCancel(context.Background())
	daemon.ctx = logctx.WithLogger(daemon.ctx, logctx.GetLogger(globalCtx))

	// Top level tag for daemon logs
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSChat)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	// Pre-startup
	daemon.cfg.setDefaults()
	err = daemon.cfg.validate()
	if err != nil {
		return
	}

	global.Hostname, err = os.Hostname()
	if err != nil {
		err = fmt.Errorf("failed to determine local hostname: %w", err)
		return
	}
	global.PID = os.Getpid()

	// Session parameters and key
	provider, err := session.LoadFile(daemon.cfg.SessionFile)
	if err != nil {
		return
	}
	daemon.Params, err = provider.Lookup(daemon.cfg.Endpoint)
	if err != nil {
		return
	}

	masterKey, err := loadMasterKey(daemon.cfg.KeystoreFile, keystorePassword, daemon.Params.KeyAlias)
	if err != nil {
		return
	}

	// Outputs before the channel so no early event is missed
	err = daemon.startOutputs()
	if err != nil {
		daemon.Shutdown()
		return
	}

	channelCfg, err := daemon.channelConfig(masterKey)
	if err != nil {
		daemon.Shutdown()
		return
	}

	daemon.Channel, err = channel.New(daemon.ctx, channelCfg)
	if err != nil {
		err = fmt.Errorf("failed joining session: %w", err)
		daemon.Shutdown()
		return
	}

	daemon.startMetrics()

	// Console input (chat mode only). Not tracked by wg: a blocked stdin read cannot be interrupted.
	if !daemon.cfg.Listen && daemon.input != nil {
		go daemon.readConsole(daemon.input)
	}

	err = lifecycle.NotifyReady(daemon.ctx)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
	}
	err = lifecycle.NotifyStatus(daemon.ctx, fmt.Sprintf("joined %s (%s) as %s", daemon.Params.Name, daemon.Params.Endpoint, daemon.cfg.Username))
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify status failed: %v\n", err)
		err = nil
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Startup complete.\n")
	return
}

// Unlocks the keystore only long enough to copy out one key
func loadMasterKey(path string, password []byte, alias string) (key []byte, err error) {
	store, err := keystore.Open(path, password)
	if err != nil {
		return
	}
	defer store.Close()

	key, err = store.Key(alias)
	if err != nil {
		err = fmt.Errorf("keystore '%s': %w", path, err)
		return
	}
	return
}

func (daemon *Daemon) startOutputs() (err error) {
	namespace := []string{global.NSChat, global.NSOut}

	daemon.fileOut, err = file.NewOutput(namespace, daemon.cfg.OutputFilePath)
	if err != nil {
		err = fmt.Errorf("failed creating transcript output: %w", err)
		return
	}
	daemon.beatsOut, err = beats.NewOutput(namespace, daemon.cfg.BeatsAddress)
	if err != nil {
		err = fmt.Errorf("failed creating beats output: %w", err)
		return
	}
	if !daemon.cfg.Stdout {
		daemon.console = nil
	}
	return
}

// Socket, sequence store and limits for the channel
func (daemon *Daemon) channelConfig(masterKey []byte) (cfg channel.Config, err error) {
	group, err := net.ResolveUDPAddr("udp", daemon.Params.Endpoint)
	if err != nil {
		err = fmt.Errorf("failed to resolve multicast group: %w", err)
		return
	}

	var reserver storage.Reserver
	if daemon.cfg.StateFile != "" {
		reserver, err = storage.Open(daemon.cfg.StateFile)
		if err != nil {
			return
		}
	}

	conn, err := network.ListenMulticast(daemon.ctx, group, daemon.cfg.Interface, daemon.cfg.TTL)
	if err != nil {
		if reserver != nil {
			reserver.Close()
		}
		return
	}

	maxDatagram, mtuErr := network.FindSendingMaxUDPPayload(daemon.Params.Endpoint, conn.Interface)
	if mtuErr != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"could not determine path MTU, large messages may fragment: %v\n", mtuErr)
		maxDatagram = 0
	}

	cfg = channel.Config{
		Username:       daemon.cfg.Username,
		Params:         daemon.Params,
		MasterKey:      masterKey,
		Conn:           conn,
		Group:          group,
		Handler:        daemon.handleEvent,
		Listen:         daemon.cfg.Listen,
		PollTimeout:    daemon.cfg.PollTimeout,
		MaxDatagram:    maxDatagram,
		MaxInboundRate: daemon.cfg.MaxInboundRate,
		EventQueueSize: global.DefaultEventQueueSize,
		Replay: replay.Config{
			Expiry:        daemon.cfg.ReplayExpiry,
			SweepInterval: daemon.cfg.SweepInterval,
		},
		Sequences:     reserver,
		SequenceBlock: global.DefaultSequenceBlock,
		Clock:         clock.New(),
	}
	return
}

// Metric gatherer plus the optional local query server
func (daemon *Daemon) startMetrics() {
	if !daemon.cfg.MetricsEnabled {
		return
	}

	daemon.metricsCollector = metrics.NewGatherer(daemon.cfg.MetricCollectionInterval, daemon.cfg.MetricMaxAge, clock.New())
	daemon.metricsCollector.Register(daemon.Channel)
	daemon.metricsCollector.Register(daemon.Channel.ReplayGuard())
	if daemon.fileOut != nil {
		daemon.metricsCollector.Register(daemon.fileOut)
	}
	if daemon.beatsOut != nil {
		daemon.metricsCollector.Register(daemon.beatsOut)
	}

	workerCtx := logctx.AppendCtxTag(daemon.ctx, global.NSMetric)
	daemon.wg.Add(1)
	go func() {
		defer daemon.wg.Done()
		daemon.metricsCollector.Run(workerCtx)
	}()
	daemon.MetricDataSearcher = daemon.metricsCollector.Registry.Search
	daemon.MetricDiscoverer = daemon.metricsCollector.Registry.Discover

	// Top level tag for metric server logs
	serverCtx := logctx.AppendCtxTag(workerCtx, global.NSMetricSrv)

	var gatherer prometheus.Gatherer
	promRegistry, err := metrics.NewPrometheusRegistry(daemon.metricsCollector.Registry, global.ProgBaseName)
	if err != nil {
		logctx.LogEvent(serverCtx, global.VerbosityStandard, global.WarnLog,
			"prometheus endpoint disabled: %v\n", err)
	} else {
		gatherer = promRegistry
	}

	daemon.MetricServer, err = server.SetupListener(serverCtx, daemon.cfg.MetricQueryServerPort,
		daemon.MetricDataSearcher, daemon.MetricDiscoverer, gatherer)
	if err != nil {
		logctx.LogEvent(serverCtx, global.VerbosityStandard, global.ErrorLog,
			"metric query server disabled: %v\n", err)
		daemon.MetricServer = nil
		return
	}
	daemon.wg.Add(1)
	go func() {
		defer daemon.wg.Done()
		server.Start(serverCtx, daemon.MetricServer)
	}()
}

// Blocking daemon waiter
func (daemon *Daemon) Run() {
	<-daemon.ctx.Done()
}

// Closes and reopens the transcript file (log rotation)
func (daemon *Daemon) Reopen(ctx context.Context) (err error) {
	err = daemon.fileOut.Reopen()
	if err != nil {
		return
	}
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Transcript output reopened\n")
	return
}

// Leaves the session and stops workers. Safe to call more than once.
func (daemon *Daemon) Shutdown() {
	daemon.shutdownOnce.Do(daemon.shutdown)
}

func (daemon *Daemon) shutdown() {
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Daemon shutdown started...\n")

	err := lifecycle.NotifyStopping(daemon.ctx)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify stopping failed: %v\n", err)
	}

	// Leave first so peers see LEAVE while outputs still record
	if daemon.Channel != nil {
		leaveCtx, cancel := context.WithTimeout(daemon.ctx, global.ChannelShutdownTimeout)
		err := daemon.Channel.Terminate(leaveCtx)
		cancel()
		if err != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"leaving session did not complete cleanly: %v\n", err)
		}
	}

	// Stop metric server
	if daemon.MetricServer != nil {
		serverCtx, cancel := context.WithTimeout(daemon.ctx, global.HTTPWriteTimeout)
		err := daemon.MetricServer.Shutdown(serverCtx)
		cancel()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"metric HTTP server did not shutdown gracefully: %v\n", err)
		}
	}

	// Outputs
	daemon.outMu.Lock()
	if err := daemon.fileOut.Shutdown(); err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "transcript output close failed: %v\n", err)
	}
	if err := daemon.beatsOut.Shutdown(); err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "beats output close failed: %v\n", err)
	}
	daemon.outMu.Unlock()

	// Stop the run loop after the channel is closed
	daemon.cancel()

	// Wait for all workers to finish (with timeout)
	done := make(chan struct{})
	go func() {
		daemon.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Daemon shutdown completed successfully\n")
	case <-time.After(global.DaemonShutdownTimeout):
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Timeout: daemon did not shutdown within %.0f seconds\n",
			global.DaemonShutdownTimeout.Seconds())
	}
}
