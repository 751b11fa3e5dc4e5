package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagGroup defines a named group of flags for help output.
type flagGroup struct {
	title string
	flags []string
}

// flagGroups defines the logical groupings for CLI flags.
// Flags not listed here appear under "Other Flags".
var flagGroups = []flagGroup{
	{
		title: "Harbormaster",
		flags: []string{"phabricator-uri", "conduit-token", "build-phid", "message-type", "publish-timeout"},
	},
	{
		title: "Cargo",
		flags: []string{"cargo", "timeout", "test-jobs"},
	},
	{
		title: "Filtering",
		flags: []string{"exclude-pattern", "no-config"},
	},
	{
		title: "Logging",
		flags: []string{"verbose", "log-file"},
	},
}

// setGroupedUsage configures the command to display flags in logical groups.
// Subcommands inherit it and list the persistent flags the same way.
func setGroupedUsage(cmd *cobra.Command) {
	cmd.SetUsageFunc(func(c *cobra.Command) error {
		out := c.OutOrStderr()
		fmt.Fprintf(out, "Usage:\n  %s\n", c.UseLine())

		if c.HasAvailableSubCommands() {
			fmt.Fprintf(out, "\nCommands:\n")
			for _, sub := range c.Commands() {
				if sub.IsAvailableCommand() {
					fmt.Fprintf(out, "  %-10s %s\n", sub.Name(), sub.Short)
				}
			}
		}

		all := pflag.NewFlagSet("all", pflag.ContinueOnError)
		all.AddFlagSet(c.LocalFlags())
		all.AddFlagSet(c.InheritedFlags())

		grouped := make(map[string]bool)
		for _, group := range flagGroups {
			fs := pflag.NewFlagSet(group.title, pflag.ContinueOnError)
			for _, name := range group.flags {
				if f := all.Lookup(name); f != nil {
					fs.AddFlag(f)
					grouped[name] = true
				}
			}
			if usages := fs.FlagUsages(); strings.TrimSpace(usages) != "" {
				fmt.Fprintf(out, "\n%s:\n%s", group.title, usages)
			}
		}

		// help, version, and anything not yet categorized
		other := pflag.NewFlagSet("other", pflag.ContinueOnError)
		all.VisitAll(func(f *pflag.Flag) {
			if !grouped[f.Name] {
				other.AddFlag(f)
			}
		})
		if usages := other.FlagUsages(); strings.TrimSpace(usages) != "" {
			fmt.Fprintf(out, "\nOther Flags:\n%s", usages)
		}

		return nil
	})
}
