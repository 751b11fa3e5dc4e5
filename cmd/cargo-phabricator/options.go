package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/richhaase/cargo-phabricator/internal/config"
)

// rootOptions holds the values of the persistent flags. It is resolved
// against the environment and the config file once per invocation.
type rootOptions struct {
	// Harbormaster connection
	phabricatorURI string
	conduitToken   string
	buildPHID      string

	// Settings that participate in config.Resolve
	cargo          string
	timeout        time.Duration
	publishTimeout time.Duration
	testJobs       int
	messageType    string

	// CLI-only
	excludePatterns []string
	noConfig        bool
	verbose         bool
	logFile         string
}

func (o *rootOptions) bindFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()

	f.StringVar(&o.phabricatorURI, "phabricator-uri", "",
		"Address of Phabricator (env: "+config.EnvPhabricatorURI+", default: phabricator.uri from .arcconfig)")
	f.StringVar(&o.conduitToken, "conduit-token", "",
		"API token used to contact Phabricator (env: "+config.EnvConduitToken+")")
	f.StringVar(&o.buildPHID, "build-phid", "",
		"PHID of the Harbormaster build target that receives the results (env: "+config.EnvBuildPHID+")")

	f.StringVar(&o.cargo, "cargo", "",
		"Cargo executable (default: cargo, env: "+config.EnvCargo+")")
	f.DurationVarP(&o.timeout, "timeout", "t", 0,
		"Deadline for the cargo run, 0 for none (default: none, env: "+config.EnvTimeout+")")
	f.DurationVar(&o.publishTimeout, "publish-timeout", 0,
		"Deadline for submitting results (default: 30s, env: "+config.EnvPublishTimeout+")")
	f.IntVarP(&o.testJobs, "test-jobs", "j", 0,
		"Test binaries to run at once (default: 1, env: "+config.EnvTestJobs+")")
	f.StringVar(&o.messageType, "message-type", "",
		"Harbormaster message type: work, pass, fail (default: work, env: "+config.EnvMessageType+")")

	f.StringArrayVar(&o.excludePatterns, "exclude-pattern", nil,
		"Drop lints whose code, name, path or description match the regex (repeatable)")
	f.BoolVar(&o.noConfig, "no-config", false,
		"Skip loading "+config.ConfigFileName)

	f.BoolVarP(&o.verbose, "verbose", "v", false,
		"Emit debug logs")
	f.StringVar(&o.logFile, "log-file", "",
		"Write structured logs to this file instead of stderr")
}

func (o *rootOptions) flagState(cmd *cobra.Command) config.FlagState {
	changed := cmd.Flags().Changed
	return config.FlagState{
		CargoSet:          changed("cargo"),
		TimeoutSet:        changed("timeout"),
		PublishTimeoutSet: changed("publish-timeout"),
		TestJobsSet:       changed("test-jobs"),
		MessageTypeSet:    changed("message-type"),
	}
}

func (o *rootOptions) flagValues() config.ResolvedConfig {
	return config.ResolvedConfig{
		Cargo:          o.cargo,
		Timeout:        o.timeout,
		PublishTimeout: o.publishTimeout,
		TestJobs:       o.testJobs,
		MessageType:    o.messageType,
	}
}

func (o *rootOptions) connectionFlags() config.Connection {
	return config.Connection{
		PhabricatorURI: o.phabricatorURI,
		ConduitToken:   o.conduitToken,
		BuildPHID:      o.buildPHID,
	}
}
