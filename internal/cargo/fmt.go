package cargo

import (
	"context"

	"github.com/richhaase/cargo-phabricator/internal/arcconfig"
	"github.com/richhaase/cargo-phabricator/internal/jsonl"
	"github.com/richhaase/cargo-phabricator/internal/runner"
)

// Fmt runs `cargo fmt --message-format json <args>` and records every
// formatting mismatch as a lint.
func (c *Cargo) Fmt(args []string) runner.CollectFunc {
	return func(ctx context.Context, sink runner.Sink) error {
		cmd := c.command(append([]string{"fmt", "--message-format", "json"}, args...)...)

		for files, err := range jsonl.FilterReported(jsonl.Stream[[]FmtFile](ctx, cmd), c.warn) {
			if err != nil {
				return err
			}
			for _, f := range files {
				path := arcconfig.RelativeTo(c.Root, f.Name)
				for _, m := range f.Mismatches {
					sink.AddLint(MismatchLint(path, m))
				}
			}
		}
		return nil
	}
}
