// Package main provides the cargo-phabricator CLI entry point.
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/richhaase/cargo-phabricator/internal/domain"
)

// cargoSubcommandName is the word cargo passes as the first argument when it
// runs `cargo phabricator ...` as an external subcommand.
const cargoSubcommandName = "phabricator"

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(stripCargoArg(args))

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(exitCodeError); ok {
			return exitErr.code.Int()
		}
		printError(stderr, err)
		return exitCodeFor(err).Int()
	}
	return domain.ExitNoFindings.Int()
}

// stripCargoArg drops the subcommand name cargo inserts in front of the
// user's arguments.
func stripCargoArg(args []string) []string {
	if len(args) > 0 && args[0] == cargoSubcommandName {
		return args[1:]
	}
	return args
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "cargo-phabricator",
		Short: "Report cargo diagnostics and test results to Phabricator Harbormaster",
		Long: `Run a cargo subcommand, stream its JSON output, and submit the lints and
test results it produced to a Harbormaster build target.

Invoke as "cargo phabricator <subcommand> [-- cargo arguments]".

Exit codes:
  0 - No findings
  1 - Findings reported, or cargo failed
  2 - Error
  130 - Interrupted`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	opts.bindFlags(rootCmd)
	setGroupedUsage(rootCmd)

	for _, sub := range pipelineCommands {
		rootCmd.AddCommand(newPipelineCmd(opts, sub))
	}
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}
