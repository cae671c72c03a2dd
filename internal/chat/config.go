package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"smcp/internal/global"
	"time"
)

// Loads JSON config from file
func LoadConfig(path string) (cfg global.ChatConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %w", path, err)
		return
	}

	return
}

// Parses JSON config into daemon config
func NewDaemonConf(cfg global.ChatConfig) (config Config, err error) {
	// Identity and session settings
	config.Username = cfg.Username
	config.Endpoint = cfg.Endpoint
	config.Interface = cfg.Interface
	config.SessionFile = cfg.SessionFile
	config.KeystoreFile = cfg.KeystoreFile
	config.StateFile = cfg.StateFile

	// Network settings
	config.TTL = cfg.Network.TTL
	config.MaxInboundRate = cfg.Network.MaxInboundRate
	config.PollTimeout, err = parseOptionalDuration(cfg.Network.PollTimeout)
	if err != nil {
		err = fmt.Errorf("failed to parse poll timeout: %w", err)
		return
	}

	// Replay settings
	config.ReplayExpiry, err = parseOptionalDuration(cfg.Replay.Expiry)
	if err != nil {
		err = fmt.Errorf("failed to parse replay expiry: %w", err)
		return
	}
	config.SweepInterval, err = parseOptionalDuration(cfg.Replay.SweepInterval)
	if err != nil {
		err = fmt.Errorf("failed to parse replay sweep interval: %w", err)
		return
	}

	// Output settings
	config.OutputFilePath = cfg.Outputs.FilePath
	config.BeatsAddress = cfg.Outputs.BeatsAddress
	config.Stdout = cfg.Outputs.Stdout

	// Metric settings
	config.MetricsEnabled = cfg.Metrics.Enabled
	config.MetricQueryServerPort = cfg.Metrics.QueryServerPort
	config.MetricMaxAge, err = parseOptionalDuration(cfg.Metrics.MaxAge)
	if err != nil {
		err = fmt.Errorf("failed to parse metric max age time: %w", err)
		return
	}
	config.MetricCollectionInterval, err = parseOptionalDuration(cfg.Metrics.Interval)
	if err != nil {
		err = fmt.Errorf("failed to parse metric collection interval time: %w", err)
		return
	}
	return
}

// Empty means "use the default"
func parseOptionalDuration(raw string) (duration time.Duration, err error) {
	if raw == "" {
		return
	}
	duration, err = time.ParseDuration(raw)
	if err != nil {
		return
	}
	if duration < 0 {
		err = fmt.Errorf("duration %q cannot be negative", raw)
		return
	}
	return
}

// Sets defaults for any missing/invalid values
func (cfg *Config) setDefaults() {
	// Files
	if cfg.SessionFile == "" {
		cfg.SessionFile = global.DefaultSessionPath
	}
	if cfg.KeystoreFile == "" {
		cfg.KeystoreFile = global.DefaultKeystorePath
	}

	// Network
	if cfg.TTL <= 0 {
		cfg.TTL = global.DefaultMulticastTTL
	}
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = global.DefaultPollTimeout
	}
	if cfg.MaxInboundRate < 0 {
		cfg.MaxInboundRate = 0
	}

	// Replay
	if cfg.ReplayExpiry == 0 {
		cfg.ReplayExpiry = global.DefaultReplayExpiry
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = global.DefaultSweepInterval
	}

	// Metrics
	if cfg.MetricMaxAge == 0 {
		cfg.MetricMaxAge = 1 * time.Hour
	}
	if cfg.MetricQueryServerPort == 0 {
		cfg.MetricQueryServerPort = global.DefaultMetricPort
	}
	if cfg.MetricCollectionInterval == 0 {
		cfg.MetricCollectionInterval = 15 * time.Second
	}
}

// Checks the settings nothing can default
func (cfg Config) validate() (err error) {
	if cfg.Username == "" {
		err = fmt.Errorf("username is required")
		return
	}
	if cfg.Endpoint == "" {
		err = fmt.Errorf("endpoint (multicast ip:port) is required")
		return
	}
	return
}
