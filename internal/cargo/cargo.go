// Package cargo runs cargo subcommands and turns their JSON output into
// Harbormaster records.
//
// Every operation returns a runner.CollectFunc. The cargo child is consumed
// through internal/jsonl, so bad lines become warnings and a failing cargo
// ends the collection with a KindExitStatus error after everything it
// printed has been recorded.
package cargo

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/richhaase/cargo-phabricator/internal/jsonl"
	"github.com/richhaase/cargo-phabricator/internal/terminal"
)

// Cargo holds what every operation needs to spawn cargo.
type Cargo struct {
	// Program is the cargo executable.
	Program string
	// Root is the repository root. Reported paths are made relative to it.
	Root string
	// TestJobs bounds how many test binaries run at once. Values below 1
	// mean 1.
	TestJobs int
	// Stderr receives the children's stderr. Nil discards it.
	Stderr io.Writer
	Logger *terminal.Logger
	Log    *zap.Logger
}

func (c *Cargo) program() string {
	if c.Program == "" {
		return "cargo"
	}
	return c.Program
}

func (c *Cargo) command(args ...string) jsonl.Command {
	return jsonl.Command{
		Name:   c.program(),
		Args:   args,
		Stderr: c.Stderr,
		Logger: c.Log,
	}
}

func (c *Cargo) logger() *terminal.Logger {
	if c.Logger == nil {
		return terminal.NewLogger()
	}
	return c.Logger
}

func (c *Cargo) zlog() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// warn reports a value cargo printed that could not be parsed.
func (c *Cargo) warn(err *jsonl.Error) {
	cause := err.Err
	if cause == nil {
		cause = err
	}
	logger := c.logger()
	logger.Logf(terminal.StyleWarning, "warning: `%s` output a value that couldn't be parsed: %v", c.program(), cause)
	if len(err.Line) > 0 {
		logger.Log(string(err.Line), terminal.StyleDim)
	}
	c.zlog().Warn("unparseable cargo output",
		zap.Stringer("kind", err.Kind),
		zap.ByteString("line", err.Line),
		zap.NamedError("cause", cause))
}

func (c *Cargo) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.logger().Log("warning: "+msg, terminal.StyleWarning)
	c.zlog().Warn(msg)
}
