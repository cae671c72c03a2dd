package global

import "time"

type CommandSet struct {
	CommandName     string                 // Exact name of cli command
	UsageOption     string                 // Expected command value in usage top line
	Description     string                 // Short text displayed on parent command
	FullDescription string                 // Long text displayed on current command
	ChildCommands   map[string]*CommandSet // Available subcommands
}

type CtxKey string

// Participant daemon (JSON)

type ChatConfig struct {
	Username     string      `json:"username"`
	Endpoint     string      `json:"endpoint"` // multicast ip:port, also the session lookup key
	Interface    string      `json:"interface,omitempty"`
	SessionFile  string      `json:"sessionFile"`
	KeystoreFile string      `json:"keystoreFile"`
	StateFile    string      `json:"stateFile,omitempty"`
	Network      ChatNetwork `json:"network"`
	Replay       ReplayConf  `json:"replay"`
	Outputs      ChatOutputs `json:"outputs"`
	Metrics      MetricConf  `json:"metrics"`
	Logging      LoggingConf `json:"logging"`
}

type ChatNetwork struct {
	TTL            int     `json:"ttl"`
	PollTimeout    string  `json:"pollTimeout"`
	MaxInboundRate float64 `json:"maxInboundRate"` // datagrams per second, 0 disables
}

type ReplayConf struct {
	Expiry        string `json:"expiry"`
	SweepInterval string `json:"sweepInterval"`
}

type ChatOutputs struct {
	FilePath     string `json:"filePath,omitempty"`
	BeatsAddress string `json:"beatsAddress,omitempty"`
	Stdout       bool   `json:"stdout"`
}

type MetricConf struct {
	Enabled         bool   `json:"enabled"`
	Interval        string `json:"interval"`
	MaxAge          string `json:"maxAge"`
	QueryServerPort int    `json:"queryServerPort"`
}

type LoggingConf struct {
	Level   int    `json:"logLevel"`
	LogFile string `json:"logFile,omitempty"`
}

// One accepted channel event as handed to transcript outputs
type Transcript struct {
	Timestamp time.Time
	Session   string // session identifier
	Endpoint  string // multicast ip:port
	Kind      string // join, leave, message
	Username  string
	Address   string
	Port      int
	Text      string
}
