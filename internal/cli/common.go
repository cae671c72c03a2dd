package cli

import (
	"flag"
	"smcp/internal/global"
)

func SetGlobalArguments(fs *flag.FlagSet) (level *int) {
	fs.IntVar(&global.Verbosity, "v", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	fs.IntVar(&global.Verbosity, "verbosity", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	level = &global.Verbosity
	return
}

func SetCommon(fs *flag.FlagSet, configPath *string) {
	fs.StringVar(configPath, "c", global.DefaultConfigPath, "Path to the configuration file")
	fs.StringVar(configPath, "config", global.DefaultConfigPath, "Path to the configuration file")
}

// Reports whether any of the named flags was given on the command line
func flagPassed(fs *flag.FlagSet, names ...string) (passed bool) {
	fs.Visit(func(arg *flag.Flag) {
		for _, name := range names {
			if arg.Name == name {
				passed = true
			}
		}
	})
	return
}
