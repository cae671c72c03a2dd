package install

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"smcp/internal/global"
)

func installConfig(configFilePath string) (err error) {
	err = os.MkdirAll(filepath.Dir(configFilePath), 0755)
	if err != nil {
		err = fmt.Errorf("failed to create configuration directory: %w", err)
		return
	}

	// Don't overwrite existing
	_, err = os.Stat(configFilePath)
	if err == nil {
		if !confirm(fmt.Sprintf("Configuration file already exists at '%s'. Are you SURE you want to overwrite it? (yes/no): ", configFilePath)) {
			fmt.Printf("Not overwriting configuration file\n")
			return
		}
	}

	err = CreateTemplateConfig(configFilePath)
	if err != nil {
		return
	}

	fmt.Printf("Successfully wrote template configuration file to '%s'\n", configFilePath)
	return
}

// Populated participant configuration with every section present
func TemplateConfig() (cfg global.ChatConfig) {
	cfg.Username = "alice"
	cfg.Endpoint = "239.0.0.1:4000"
	cfg.SessionFile = global.DefaultSessionPath
	cfg.KeystoreFile = global.DefaultKeystorePath
	cfg.StateFile = global.DefaultStateFile

	cfg.Network.TTL = global.DefaultMulticastTTL
	cfg.Network.PollTimeout = global.DefaultPollTimeout.String()
	cfg.Network.MaxInboundRate = 0

	cfg.Replay.Expiry = global.DefaultReplayExpiry.String()
	cfg.Replay.SweepInterval = global.DefaultSweepInterval.String()

	cfg.Outputs.FilePath = "/var/log/smcp/transcript.log"
	cfg.Outputs.Stdout = false

	cfg.Metrics.Enabled = true
	cfg.Metrics.MaxAge = "1h"
	cfg.Metrics.Interval = "15s"
	cfg.Metrics.QueryServerPort = global.DefaultMetricPort

	cfg.Logging.Level = global.VerbosityStandard
	return
}

// Writes the template configuration as indented JSON
func CreateTemplateConfig(filepath string) (err error) {
	if filepath == "" {
		err = fmt.Errorf("specify template file path via the --config/-c arguments")
		return
	}

	confBytes, err := json.MarshalIndent(TemplateConfig(), "", "  ")
	if err != nil {
		err = fmt.Errorf("error marshaling new config: %w", err)
		return
	}
	confBytes = append(confBytes, '\n')

	err = os.WriteFile(filepath, confBytes, 0600)
	if err != nil {
		err = fmt.Errorf("failed to write config to file: %w", err)
		return
	}
	return
}
