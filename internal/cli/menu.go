package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"smcp/internal/global"
	"sort"
	"strings"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
Keystore password is read from the terminal, or from SMCP_KEYSTORE_PASSWORD when no terminal is attached.
Send SIGHUP to reopen the transcript file after rotation.
`
)

// Full standardized help menu (wraps option printer as well)
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	writeHelpMenu(os.Stdout, fs, command, rootCmd)
}

func writeHelpMenu(out io.Writer, fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	const baseIndentSpaces = 2

	var curCmdSet *global.CommandSet
	var parentStack []*global.CommandSet

	// Find the command in tree
	if command == "" || command == RootCLICommand {
		curCmdSet = rootCmd
	} else if cmd, ok := rootCmd.ChildCommands[command]; ok {
		curCmdSet = cmd
		parentStack = append(parentStack, rootCmd)
	} else {
		// Search in all subcommands
		found := false
		for _, topCmd := range rootCmd.ChildCommands {
			if sub, ok := topCmd.ChildCommands[command]; ok {
				curCmdSet = sub
				parentStack = append(parentStack, rootCmd, topCmd)
				found = true
				break
			}
		}
		if !found {
			fmt.Fprintf(out, "Unknown command: %s\n", command)
			return
		}
	}

	// Build full usage path
	usageParts := []string{os.Args[0]}
	// Append parent commands
	for _, p := range parentStack {
		usageParts = append(usageParts, p.CommandName)
	}
	usageParts = append(usageParts, curCmdSet.CommandName)

	// Don't actually include the root name
	if len(usageParts) > 1 && usageParts[1] == RootCLICommand {
		usageParts = append(usageParts[:1], usageParts[2:]...)
	}

	// Add child commands or usage options
	if len(curCmdSet.ChildCommands) > 1 {
		usageParts = append(usageParts, "[subcommand]")
	} else if len(curCmdSet.ChildCommands) == 1 {
		for name := range curCmdSet.ChildCommands {
			usageParts = append(usageParts, name)
		}
	}
	if curCmdSet.UsageOption != "" {
		usageParts = append(usageParts, curCmdSet.UsageOption)
	}

	fmt.Fprintf(out, "Usage: %s\n\n", strings.Join(usageParts, " "))

	// Description
	if curCmdSet == rootCmd {
		fmt.Fprintln(out, curCmdSet.Description)
		fmt.Fprintln(out, curCmdSet.FullDescription)
		fmt.Fprintln(out)
	} else if curCmdSet.FullDescription != "" {
		fmt.Fprintln(out, "  Description:")
		fmt.Fprintf(out, "    %s\n\n", curCmdSet.FullDescription)
	}

	// Subcommands
	if len(curCmdSet.ChildCommands) > 0 {
		indent := strings.Repeat(" ", baseIndentSpaces)
		fmt.Fprintf(out, "%sSubcommands:\n", indent)

		// Compute max length for padding
		maxLen := 0
		for name := range curCmdSet.ChildCommands {
			if len(name) > maxLen {
				maxLen = len(name)
			}
		}

		// Sort subcommand names
		subNames := make([]string, 0, len(curCmdSet.ChildCommands))
		for name := range curCmdSet.ChildCommands {
			subNames = append(subNames, name)
		}
		sort.Strings(subNames)

		cmdIndent := strings.Repeat(" ", baseIndentSpaces+2)
		for _, name := range subNames {
			sub := curCmdSet.ChildCommands[name]
			padding := strings.Repeat(" ", maxLen-len(name)+2)
			fmt.Fprintf(out, "%s%s%s - %s\n", cmdIndent, name, padding, sub.Description)
		}
		fmt.Fprintln(out)
	}

	// Flag
	printFlagOptions(out, fs, baseIndentSpaces)

	// Top-level trailer
	if curCmdSet == rootCmd {
		fmt.Fprint(out, helpMenuTrailer)
	}
}

// Custom printer to deduplicate short/long usages and indent automatically
func printFlagOptions(out io.Writer, fs *flag.FlagSet, baseIndentSpaces int) {
	const shortArgPrefix string = "-"      // like "  [-]t, --test  Some usage text"
	const shortLongArgJoiner string = ", " // like "  -t[, ]--test  Some usage text"
	const longArgPrefix string = "--"      // like "  -t, [--]test  Some usage text"
	const argToUsageSpaces int = 2         // like "  -t, --test[  ]Some usage text"

	type optInfo struct {
		names      []string
		usage      string
		defaultVal string
		hasShort   bool
	}

	seen := make(map[string]*optInfo)

	// Deduplicate usages by exact usage text match
	fs.VisitAll(func(arg *flag.Flag) {
		name := arg.Name
		var shortArgName, longArgName string
		if len(name) == 1 {
			shortArgName = name
		} else {
			longArgName = name
		}

		usageText := arg.Usage

		hasShort := shortArgName != ""

		// Add formatted arg text
		usage, seenUsage := seen[usageText]
		if seenUsage {
			if shortArgName != "" {
				usage.names = append(usage.names, shortArgPrefix+shortArgName)
				usage.hasShort = true
			}
			if longArgName != "" {
				usage.names = append(usage.names, longArgPrefix+longArgName)
			}
		} else {
			names := []string{}
			if shortArgName != "" {
				names = append(names, shortArgPrefix+shortArgName)
			}
			if longArgName != "" {
				names = append(names, longArgPrefix+longArgName)
			}
			seen[usageText] = &optInfo{
				names:      names,
				usage:      arg.Usage,
				defaultVal: arg.DefValue,
				hasShort:   hasShort,
			}
		}
	})

	// Deduplicated option list
	opts := []*optInfo{}
	for _, opt := range seen {
		opts = append(opts, opt)
	}

	// Ensure short args come before long args
	for _, opt := range seen {
		if len(opt.names) <= 1 {
			continue
		}

		sort.Slice(opt.names, func(indexA, indexB int) bool {
			flagNameA := opt.names[indexA]
			flagNameB := opt.names[indexB]

			return len(flagNameA) < len(flagNameB)
		})
	}

	// Sort list to group long/short args
	sort.Slice(opts, func(indexA, indexB int) bool {
		flagA := opts[indexA]
		flagB := opts[indexB]

		firstNameA := strings.ToLower(flagA.names[0])
		firstNameB := strings.ToLower(flagB.names[0])

		return firstNameA < firstNameB
	})

	// accounts for short arg prefix length, short arg default len (1), and joiner length
	longShortArgOffset := len(shortLongArgJoiner) + len(shortArgPrefix) + 1

	// Calculate max length flags for alignment
	maxLen := 0
	for _, opt := range opts {
		left := strings.Join(opt.names, shortLongArgJoiner)
		if !opt.hasShort {
			leftLen := len(left) + longShortArgOffset
			if leftLen > maxLen {
				maxLen = leftLen
			}
		} else {
			if len(left) > maxLen {
				maxLen = len(left)
			}
		}
	}

	// Print option list
	fmt.Fprintf(out, "%sOptions:\n", strings.Repeat(" ", baseIndentSpaces))
	for _, opt := range opts {
		left := strings.Join(opt.names, shortLongArgJoiner)

		// Indent based on short/long
		indentSpaces := baseIndentSpaces
		if !opt.hasShort {
			indentSpaces += longShortArgOffset
		}
		indent := strings.Repeat(" ", indentSpaces)

		// Padding for this line to offset usage text
		leftLen := len(left) + (0)
		if !opt.hasShort {
			leftLen += longShortArgOffset
		}
		paddingSpaces := maxLen - leftLen + argToUsageSpaces
		if paddingSpaces < argToUsageSpaces {
			paddingSpaces = argToUsageSpaces
		}
		padding := strings.Repeat(" ", paddingSpaces)

		// Skip printing any "empty" defaults
		desc := opt.usage
		if opt.defaultVal != "" && opt.defaultVal != "false" && opt.defaultVal != "0" {
			desc += fmt.Sprintf(" [default: %s]", opt.defaultVal)
		}

		fmt.Fprintf(out, "%s%s%s%s\n", indent, left, padding, desc)
	}

}
