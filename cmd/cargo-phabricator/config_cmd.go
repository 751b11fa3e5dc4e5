package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/richhaase/cargo-phabricator/internal/arcconfig"
	"github.com/richhaase/cargo-phabricator/internal/config"
	"github.com/richhaase/cargo-phabricator/internal/domain"
	"github.com/richhaase/cargo-phabricator/internal/terminal"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cargo-phabricator configuration",
		Long:  "View, initialize, and validate the " + config.ConfigFileName + " file and environment variables.",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigValidateCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display resolved configuration",
		Long:  "Show the configuration resolved from defaults, the config file, and environment variables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := config.LoadWithWarnings()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			envState, _ := config.LoadEnvState()
			resolved := config.Resolve(result.Config, envState, config.FlagState{}, config.Defaults)

			arcURI := ""
			if arc, err := arcconfig.FindFromWorkingDir(); err == nil {
				arcURI = arc.PhabricatorURI
			}
			conn := config.ResolveConnection(config.Connection{}, arcURI)

			timeout := "none"
			if resolved.Timeout > 0 {
				timeout = resolved.Timeout.String()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Resolved configuration:")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %-22s %s\n", "cargo:", resolved.Cargo)
			fmt.Fprintf(out, "  %-22s %s\n", "timeout:", timeout)
			fmt.Fprintf(out, "  %-22s %s\n", "publish_timeout:", resolved.PublishTimeout)
			fmt.Fprintf(out, "  %-22s %d\n", "test_jobs:", resolved.TestJobs)
			fmt.Fprintf(out, "  %-22s %s\n", "message_type:", resolved.MessageType)
			fmt.Fprintf(out, "  %-22s %d\n", "exclude_patterns:", len(result.Config.Filters.ExcludePatterns))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %-22s %s\n", "phabricator_uri:", orUnset(conn.PhabricatorURI))
			fmt.Fprintf(out, "  %-22s %s\n", "conduit_token:", maskSecret(conn.ConduitToken))
			fmt.Fprintf(out, "  %-22s %s\n", "build_phid:", orUnset(conn.BuildPHID))

			return nil
		},
	}
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "(set)"
}

const starterConfig = `# cargo-phabricator configuration file

# Cargo executable (default: cargo)
# cargo: cargo

# Deadline for the cargo run, Go duration format (default: none)
# timeout: 30m

# Deadline for submitting results to Harbormaster (default: 30s)
# publish_timeout: 30s

# Test binaries run at once by "cargo phabricator test" (default: 1)
# test_jobs: 1

# Harbormaster message type: work, pass, fail (default: work)
# message_type: work

# Filtering configuration
# filters:
#   exclude_patterns:
#     - "^CHECKdead_code$"
`

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a starter " + config.ConfigFileName + " file",
		Long:  "Create a commented " + config.ConfigFileName + " next to the repository's .arcconfig.",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Write where runtime loading looks.
			arc, err := arcconfig.FindFromWorkingDir()
			if err != nil {
				return &findArcConfigError{err: err}
			}
			configPath := filepath.Join(arc.Location, config.ConfigFileName)

			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists; remove it first or edit it directly", configPath)
			}

			if err := os.WriteFile(configPath, []byte(starterConfig), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", configPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with default settings (commented out).\n", configPath)
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and environment variables",
		Long:  "Load and validate the config file and environment variables, reporting any warnings or errors.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !terminal.IsStdoutTTY() {
				terminal.SetColorsEnabled(false)
			}
			logger := terminal.NewLoggerTo(cmd.ErrOrStderr())
			var problems []string
			var warnings []string

			// Keep going after a file error so env var issues are also reported.
			cfg := &config.Config{}
			result, err := config.LoadWithWarnings()
			if err != nil {
				problems = append(problems, fmt.Sprintf("config file: %v", err))
			} else {
				cfg = result.Config
				warnings = append(warnings, result.Warnings...)
			}

			// Ignored at runtime, but worth fixing.
			envState, envWarnings := config.LoadEnvState()
			problems = append(problems, envWarnings...)

			resolved := config.Resolve(cfg, envState, config.FlagState{}, config.Defaults)
			if err := resolved.Validate(); err != nil {
				problems = append(problems, err.Error())
			}

			arc, err := arcconfig.FindFromWorkingDir()
			switch {
			case errors.Is(err, arcconfig.ErrNotFound):
				warnings = append(warnings, "no .arcconfig with repository.callsign above the working directory")
			case err != nil:
				problems = append(problems, err.Error())
			default:
				conn := config.ResolveConnection(config.Connection{}, arc.PhabricatorURI)
				if err := conn.Validate(); err != nil {
					warnings = append(warnings, err.Error())
				}
			}

			for _, w := range warnings {
				logger.Logf(terminal.StyleWarning, "warning: %s", w)
			}
			for _, p := range problems {
				logger.Logf(terminal.StyleError, "error: %s", p)
			}

			if len(problems) > 0 {
				return exitCode(domain.ExitError)
			}

			if len(warnings) > 0 {
				logger.Log("configuration is valid (with warnings)", terminal.StyleSuccess)
			} else {
				logger.Log("configuration is valid", terminal.StyleSuccess)
			}
			return nil
		},
	}
}
