package cargo

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/richhaase/cargo-phabricator/internal/jsonl"
	"github.com/richhaase/cargo-phabricator/internal/runner"
)

// CheckSubcommands are the cargo subcommands Check accepts.
var CheckSubcommands = []string{"check", "build", "clippy"}

// Check runs `cargo <sub> --message-format json <args>` and records every
// coded compiler diagnostic as a lint.
func (c *Cargo) Check(sub string, args []string) runner.CollectFunc {
	return func(ctx context.Context, sink runner.Sink) error {
		if !slices.Contains(CheckSubcommands, sub) {
			return fmt.Errorf("unsupported cargo subcommand %q", sub)
		}

		cmd := c.command(append([]string{sub, "--message-format", "json"}, args...)...)
		values := jsonl.Stream[json.RawMessage](ctx, cmd)
		diagnostics := jsonl.FilterReported(jsonl.FilterReason[Diagnostic](values, ReasonCompilerMessage), c.warn)

		for d, err := range diagnostics {
			if err != nil {
				return err
			}
			if lint, ok := DiagnosticLint(d, c.Root); ok {
				sink.AddLint(lint)
			}
		}
		return nil
	}
}
