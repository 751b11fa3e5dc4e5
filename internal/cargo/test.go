package cargo

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/richhaase/cargo-phabricator/internal/domain"
	"github.com/richhaase/cargo-phabricator/internal/jsonl"
	"github.com/richhaase/cargo-phabricator/internal/runner"
)

// Test builds the test binaries with `cargo test --no-run --message-format
// json <args>` and runs each of them, recording one result per test.
// Results are recorded in artifact order however the binaries are
// scheduled.
func (c *Cargo) Test(args []string) runner.CollectFunc {
	return func(ctx context.Context, sink runner.Sink) error {
		artifacts, err := c.testArtifacts(ctx, args)
		if err != nil {
			return err
		}

		results := make([][]domain.Test, len(artifacts))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(c.TestJobs, 1))
		for i, a := range artifacts {
			g.Go(func() error {
				tests, err := c.runTestBinary(gctx, a)
				results[i] = tests
				return err
			})
		}
		err = g.Wait()

		for _, tests := range results {
			sink.AddTest(tests...)
		}
		return err
	}
}

// testArtifacts builds the tests and returns the test binaries cargo
// reported.
func (c *Cargo) testArtifacts(ctx context.Context, args []string) ([]Artifact, error) {
	cmd := c.command(append([]string{"test", "--no-run", "--message-format", "json"}, args...)...)
	values := jsonl.Stream[json.RawMessage](ctx, cmd)

	var artifacts []Artifact
	for a, err := range jsonl.FilterReported(jsonl.FilterReason[Artifact](values, ReasonCompilerArtifact), c.warn) {
		if err != nil {
			return nil, err
		}
		if !a.Profile.Test {
			continue
		}
		if a.Executable == nil || *a.Executable == "" {
			c.warnf("test target %s of %s has no executable", a.Target.Name, a.PackageID)
			continue
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// runTestBinary runs one libtest harness. A binary that exits unsuccessfully
// without reporting a failed test yields a single broken record.
func (c *Cargo) runTestBinary(ctx context.Context, a Artifact) ([]domain.Test, error) {
	cmd := jsonl.Command{
		Name:   *a.Executable,
		Stderr: c.Stderr,
		Logger: c.Log,
	}
	if dir, ok := manifestDir(a.Target.SrcPath); ok {
		cmd.Dir = dir
		cmd.Env = []string{"CARGO_MANIFEST_DIR=" + dir}
	} else {
		c.warnf("could not discover the working directory for the test built from %s", a.Target.SrcPath)
	}

	start := time.Now()
	p, err := jsonl.Start(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	parser := newLibtestParser(a.Target.Name)
	var exitErr *jsonl.Error
	for line, err := range p.Lines() {
		if err != nil {
			if ctx.Err() != nil || !errors.As(err, &exitErr) || exitErr.Kind != jsonl.KindExitStatus {
				return parser.results(), err
			}
			break
		}
		parser.feed(string(line))
	}
	elapsed := time.Since(start)

	tests := parser.results()
	c.zlog().Debug("test binary finished",
		zap.String("target", a.Target.Name),
		zap.Int("tests", len(tests)),
		zap.Duration("elapsed", elapsed),
		zap.Bool("success", exitErr == nil))

	if exitErr != nil && !anyFailed(tests) {
		tests = append(tests, domain.Test{
			Name:      a.Target.Name,
			Result:    domain.TestBroken,
			Namespace: a.Target.Name,
			Duration:  domain.Ptr(elapsed.Seconds()),
			Details:   exitErr.Error(),
			Format:    "text",
		})
	}
	return tests, nil
}

// manifestDir returns the nearest ancestor of srcPath holding a Cargo.toml.
func manifestDir(srcPath string) (string, bool) {
	if srcPath == "" {
		return "", false
	}
	dir := filepath.Dir(srcPath)
	for {
		if _, err := os.Stat(filepath.Join(dir, "Cargo.toml")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
