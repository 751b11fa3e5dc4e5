package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/richhaase/cargo-phabricator/internal/arcconfig"
	"github.com/richhaase/cargo-phabricator/internal/cargo"
	"github.com/richhaase/cargo-phabricator/internal/config"
	"github.com/richhaase/cargo-phabricator/internal/phab"
	"github.com/richhaase/cargo-phabricator/internal/runner"
	"github.com/richhaase/cargo-phabricator/internal/terminal"
)

// pipelineCommand describes one cargo subcommand this tool wraps.
type pipelineCommand struct {
	name    string
	short   string
	collect func(c *cargo.Cargo, args []string) runner.CollectFunc
}

var pipelineCommands = []pipelineCommand{
	{
		name:  "fmt",
		short: "Report rustfmt mismatches as lints",
		collect: func(c *cargo.Cargo, args []string) runner.CollectFunc {
			return c.Fmt(args)
		},
	},
	{
		name:  "check",
		short: "Report `cargo check` diagnostics as lints",
		collect: func(c *cargo.Cargo, args []string) runner.CollectFunc {
			return c.Check("check", args)
		},
	},
	{
		name:  "build",
		short: "Report `cargo build` diagnostics as lints",
		collect: func(c *cargo.Cargo, args []string) runner.CollectFunc {
			return c.Check("build", args)
		},
	},
	{
		name:  "clippy",
		short: "Report `cargo clippy` diagnostics as lints",
		collect: func(c *cargo.Cargo, args []string) runner.CollectFunc {
			return c.Check("clippy", args)
		},
	},
	{
		name:  "test",
		short: "Build and run the test binaries and report their results",
		collect: func(c *cargo.Cargo, args []string) runner.CollectFunc {
			return c.Test(args)
		},
	},
}

func newPipelineCmd(opts *rootOptions, p pipelineCommand) *cobra.Command {
	return &cobra.Command{
		Use:   p.name + " [-- cargo arguments]",
		Short: p.short,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts, p, args)
		},
	}
}

// findArcConfigError reports that no repository root could be located.
type findArcConfigError struct{ err error }

func (e *findArcConfigError) Error() string { return "could not find the .arcconfig" }
func (e *findArcConfigError) Unwrap() error { return e.err }

func runPipeline(cmd *cobra.Command, opts *rootOptions, p pipelineCommand, args []string) error {
	if !terminal.IsStdoutTTY() {
		terminal.SetColorsEnabled(false)
	}
	logger := terminal.NewLogger()

	zlog, err := newZapLogger(opts.verbose, opts.logFile)
	if err != nil {
		return err
	}
	defer func() { _ = zlog.Sync() }()
	zlog = zlog.With(zap.String("pipeline", p.name))

	arc, err := arcconfig.FindFromWorkingDir()
	if err != nil {
		return &findArcConfigError{err: err}
	}

	var cfg *config.Config
	if !opts.noConfig {
		result, err := config.LoadFromDirWithWarnings(arc.Location)
		if err != nil {
			return err
		}
		cfg = result.Config
		for _, warning := range result.Warnings {
			logger.Logf(terminal.StyleWarning, "warning: %s", warning)
		}
	}

	envState, envWarnings := config.LoadEnvState()
	for _, warning := range envWarnings {
		logger.Logf(terminal.StyleWarning, "warning: %s", warning)
	}
	resolved := config.Resolve(cfg, envState, opts.flagState(cmd), opts.flagValues())
	if err := resolved.Validate(); err != nil {
		return err
	}

	conn := config.ResolveConnection(opts.connectionFlags(), arc.PhabricatorURI)
	if err := conn.Validate(); err != nil {
		return err
	}

	publisher := &phab.Client{
		BaseURL:         conn.PhabricatorURI,
		Token:           conn.ConduitToken,
		BuildTargetPHID: conn.BuildPHID,
		MessageType:     resolved.MessageType,
		HTTPClient:      http.DefaultClient,
		Logger:          zlog,
	}

	r, err := runner.New(runner.Config{
		PublishTimeout:  resolved.PublishTimeout,
		ExcludePatterns: config.Merge(cfg, opts.excludePatterns),
	}, publisher, logger, zlog)
	if err != nil {
		return err
	}

	c := &cargo.Cargo{
		Program:  resolved.Cargo,
		Root:     arc.Location,
		TestJobs: resolved.TestJobs,
		Stderr:   os.Stderr,
		Logger:   logger,
		Log:      zlog,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if resolved.Timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, resolved.Timeout)
		defer timeoutCancel()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	done := ctx.Done()
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr)
			logger.Log("interrupted, submitting what was collected", terminal.StyleWarning)
			cancel()
		case <-done:
		}
	}()

	zlog.Debug("starting pipeline",
		zap.String("root", arc.Location),
		zap.String("cargo", resolved.Cargo),
		zap.Strings("args", args),
		zap.Int("test_jobs", resolved.TestJobs))

	err = r.Run(ctx, p.name, p.collect(c, args))
	if err != nil && !errors.Is(err, context.Canceled) {
		zlog.Warn("pipeline failed", zap.Error(err))
	}
	return err
}
