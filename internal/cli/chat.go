package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"smcp/internal/chat"
	"smcp/internal/crypto"
	"smcp/internal/global"
	"smcp/internal/keystore"
	"smcp/internal/lifecycle"
	"smcp/internal/logctx"
)

// Interactive participant: joins, prints peer activity, sends stdin lines
func ChatMode(ctx context.Context, cliOpts *global.CommandSet, commandname string, args []string) {
	runParticipant(ctx, cliOpts, commandname, args, false)
}

// Passive participant: never sends, records the transcript
func ListenMode(ctx context.Context, cliOpts *global.CommandSet, commandname string, args []string) {
	runParticipant(ctx, cliOpts, commandname, args, true)
}

// Command line values that take precedence over the config file
type participantFlags struct {
	configPath string
	username   string
	endpoint   string
	iface      string
}

func newParticipantFlags(commandname string) (commandFlags *flag.FlagSet, opts *participantFlags) {
	opts = &participantFlags{}
	commandFlags = flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &opts.configPath)
	commandFlags.StringVar(&opts.username, "u", "", "Username announced to peers (overrides config)")
	commandFlags.StringVar(&opts.username, "username", "", "Username announced to peers (overrides config)")
	commandFlags.StringVar(&opts.endpoint, "e", "", "Session multicast endpoint ip:port (overrides config)")
	commandFlags.StringVar(&opts.endpoint, "endpoint", "", "Session multicast endpoint ip:port (overrides config)")
	commandFlags.StringVar(&opts.iface, "i", "", "Network interface for multicast membership (overrides config)")
	commandFlags.StringVar(&opts.iface, "interface", "", "Network interface for multicast membership (overrides config)")
	return
}

// Loads the config file and layers command line overrides on top
func buildParticipantConfig(commandFlags *flag.FlagSet, opts *participantFlags, listen bool) (jsonCfg global.ChatConfig, daemonConfig chat.Config, err error) {
	jsonCfg, err = chat.LoadConfig(opts.configPath)
	if err != nil {
		return
	}

	if opts.username != "" {
		jsonCfg.Username = opts.username
	}
	if opts.endpoint != "" {
		jsonCfg.Endpoint = opts.endpoint
	}
	if opts.iface != "" {
		jsonCfg.Interface = opts.iface
	}
	// Config log level applies only when not given on the command line
	if !flagPassed(commandFlags, "v", "verbosity") && jsonCfg.Logging.Level > 0 {
		global.Verbosity = jsonCfg.Logging.Level
	}

	daemonConfig, err = chat.NewDaemonConf(jsonCfg)
	if err != nil {
		return
	}
	daemonConfig.Listen = listen
	if !listen {
		// Interactive users always see the conversation
		daemonConfig.Stdout = true
	}
	return
}

func runParticipant(ctx context.Context, cliOpts *global.CommandSet, commandname string, args []string, listen bool) {
	commandFlags, opts := newParticipantFlags(commandname)
	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	commandFlags.Parse(args)

	jsonCfg, daemonConfig, err := buildParticipantConfig(commandFlags, opts, listen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logctx.SetLogLevel(ctx, global.Verbosity)

	if jsonCfg.Logging.LogFile != "" {
		var logFile io.WriteCloser
		logFile, err = openLogFile(jsonCfg.Logging.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logFile.Close()
		logctx.GetLogger(ctx).AddSink(logFile)
	}

	password, err := keystore.ReadPassword("Keystore password: ", false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading keystore password: %v\n", err)
		os.Exit(1)
	}

	var input io.Reader
	if !listen {
		input = os.Stdin
	}

	daemon := chat.NewDaemon(daemonConfig, input, os.Stdout)
	err = daemon.Start(ctx, password)
	crypto.Memzero(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting %s: %v\n", commandname, err)
		os.Exit(1)
	}

	go lifecycle.SignalHandler(ctx, daemon)

	daemon.Run()
}

func openLogFile(path string) (file io.WriteCloser, err error) {
	err = os.MkdirAll(filepath.Dir(path), 0750)
	if err != nil {
		err = fmt.Errorf("failed to create log directory: %w", err)
		return
	}
	file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return
	}
	return
}
