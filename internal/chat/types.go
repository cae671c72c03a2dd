package chat

import (
	"context"
	"io"
	"net/http"
	"smcp/internal/channel"
	"smcp/internal/externalio/beats"
	"smcp/internal/externalio/file"
	"smcp/internal/metrics"
	"smcp/internal/session"
	"sync"
	"time"
)

// Runtime configuration after parsing and defaults
type Config struct {
	// Identity and session
	Username     string
	Endpoint     string
	Interface    string
	SessionFile  string
	KeystoreFile string
	StateFile    string
	Listen       bool // receive only, no JOIN/LEAVE or console input

	// Network
	TTL            int
	PollTimeout    time.Duration
	MaxInboundRate float64

	// Replay
	ReplayExpiry  time.Duration
	SweepInterval time.Duration

	// Outputs
	OutputFilePath string
	BeatsAddress   string
	Stdout         bool

	// Metrics
	MetricsEnabled           bool
	MetricQueryServerPort    int
	MetricCollectionInterval time.Duration
	MetricMaxAge             time.Duration
}

// Participant daemon: one channel plus its console, outputs and metrics
type Daemon struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	shutdownOnce sync.Once

	Params  session.Parameters
	Channel *channel.Channel

	// Outputs (nil when disabled)
	fileOut  *file.OutModule
	beatsOut *beats.OutModule
	console  io.Writer
	outMu    sync.Mutex

	// Console input (chat mode)
	input io.Reader

	metricsCollector   *metrics.Gatherer
	MetricServer       *http.Server
	MetricDataSearcher func(name string, namespacePrefix []string, start, end time.Time) []metrics.Metric
	MetricDiscoverer   func(name, description string, namespacePrefix []string, unit string, metricType metrics.MetricType) []metrics.Metric
}
