package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgBaseName string = "smcp"
	ProgVersion  string = "v0.3.1"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultBinaryPath   string = "/usr/local/bin/smcp"
	DefaultConfigDir    string = "/etc/smcp"
	DefaultConfigPath   string = "/etc/smcp/smcp.json"
	DefaultSessionPath  string = "/etc/smcp/sessions.toml"
	DefaultKeystorePath string = "/etc/smcp/keystore.smks"
	DefaultStateFile    string = "/var/lib/smcp/state.db"
	DefaultServiceUnit  string = "/etc/systemd/system/smcp-listen.service"

	// Environment fallback when no terminal is attached for the password prompt
	EnvKeystorePassword string = "SMCP_KEYSTORE_PASSWORD"

	// Protocol runtime defaults
	DefaultMulticastTTL   int           = 1
	DefaultPollTimeout    time.Duration = 500 * time.Millisecond
	DefaultReplayExpiry   time.Duration = 10 * time.Minute
	DefaultSweepInterval  time.Duration = 10 * time.Second
	DefaultEventQueueSize int           = 256
	DefaultSequenceBlock  uint32        = 128

	// Timeout values
	ChannelShutdownTimeout time.Duration = 5 * time.Second
	DaemonShutdownTimeout  time.Duration = 10 * time.Second

	// Metric HTTP server
	DefaultMetricPort int           = 9470
	HTTPListenAddr    string        = "localhost" // Metric queries only exposed to local machine
	HTTPReadTimeout   time.Duration = 30 * time.Second
	HTTPWriteTimeout  time.Duration = 10 * time.Second
	HTTPIdleTimeout   time.Duration = 180 * time.Second
	DataPath          string        = "/data/"
	DiscoveryPath     string        = "/discover"
	PrometheusPath    string        = "/metrics"

	// Namespacing Name Components
	NSMetric    string = "Metrics"
	NSMetricSrv string = "Server"
	NSTest      string = "Test"
	NSCLI       string = "CLI"
	NSChat      string = "Chat"
	NSChannel   string = "Channel"
	NSListen    string = "Listener"
	NSSend      string = "Sender"
	NSDispatch  string = "Dispatch"
	NSReplay    string = "Replay"
	NSWatcher   string = "Watcher"
	NSConsole   string = "Console"
	NSOut       string = "Output"
	NSoFile     string = "File"
	NSoBeats    string = "Beats"
)
