package cli

import "smcp/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "Secure Multicast Chat Protocol (smcp)",
		FullDescription: "  Authenticated, encrypted group messaging over multicast UDP",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	// Interactive participant
	root.ChildCommands["chat"] = &global.CommandSet{
		CommandName:     "chat",
		Description:     "Join a Session",
		FullDescription: "Joins the configured session, prints peer activity and sends each line typed on stdin",
		ChildCommands:   nil,
	}

	// Passive participant
	root.ChildCommands["listen"] = &global.CommandSet{
		CommandName:     "listen",
		Description:     "Record a Session",
		FullDescription: "Receives and authenticates session traffic without announcing itself, writing a transcript to configured outputs",
		ChildCommands:   nil,
	}

	// Setup
	root.ChildCommands["configure"] = &global.CommandSet{
		CommandName:     "configure",
		Description:     "Setup Actions",
		FullDescription: "Manage keystores, generate templates and install the listen service",
		ChildCommands:   nil,
	}

	// Version Info
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
