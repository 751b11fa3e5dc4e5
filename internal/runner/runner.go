// Package runner collects the records of one cargo invocation and submits
// them to Harbormaster.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/richhaase/cargo-phabricator/internal/domain"
	"github.com/richhaase/cargo-phabricator/internal/filter"
	"github.com/richhaase/cargo-phabricator/internal/terminal"
)

// Config holds the runner configuration.
type Config struct {
	// PublishTimeout bounds submission. Zero means no bound.
	PublishTimeout  time.Duration
	ExcludePatterns []string
	// Out receives the rendered lints. Defaults to stdout.
	Out io.Writer
}

// Publisher submits a batch of records.
type Publisher interface {
	Publish(ctx context.Context, batch domain.Batch) error
}

// Sink receives records as a pipeline produces them. *domain.Batch
// satisfies it.
type Sink interface {
	AddLint(l domain.Lint)
	AddTest(t ...domain.Test)
}

// CollectFunc runs one pipeline, feeding its records into sink. It returns
// the pipeline's terminal error, if any.
type CollectFunc func(ctx context.Context, sink Sink) error

// Runner executes a pipeline and publishes what it collected.
type Runner struct {
	config    Config
	publisher Publisher
	filter    *filter.Filter
	logger    *terminal.Logger
	log       *zap.Logger
}

// New creates a runner. It fails when an exclude pattern is not a valid
// regex.
func New(config Config, publisher Publisher, logger *terminal.Logger, log *zap.Logger) (*Runner, error) {
	if publisher == nil {
		return nil, errors.New("a publisher is required")
	}
	f, err := filter.New(config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if logger == nil {
		logger = terminal.NewLogger()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		config:    config,
		publisher: publisher,
		filter:    f,
		logger:    logger,
		log:       log,
	}, nil
}

// Run runs collect and then, whatever its outcome, publishes a non-empty
// batch exactly once. Publication is detached from ctx cancellation so an
// interrupted run still submits what it gathered.
//
// A publication failure is returned as *PublishError, which also carries
// the pipeline error. Otherwise the pipeline error is returned, or
// *FindingsError when the batch holds findings.
func (r *Runner) Run(ctx context.Context, name string, collect CollectFunc) error {
	start := time.Now()
	rec := &recorder{out: r.config.Out, filter: r.filter, logger: r.logger}

	pipelineErr := collect(ctx, rec)
	batch := rec.batch

	r.log.Debug("pipeline finished",
		zap.String("pipeline", name),
		zap.Int("lints", len(batch.Lints)),
		zap.Int("tests", len(batch.Tests)),
		zap.Int("excluded", rec.excluded),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(pipelineErr))

	r.logger.Log(Summary(name, &batch, rec.excluded, time.Since(start)), summaryStyle(&batch, pipelineErr))

	if !batch.Empty() {
		if err := r.publish(ctx, batch); err != nil {
			return &PublishError{Err: err, Pipeline: pipelineErr}
		}
		r.logger.Logf(terminal.StyleSuccess, "submitted %s and %s to Harbormaster",
			terminal.Plural(len(batch.Lints), "lint"), terminal.Plural(len(batch.Tests), "test"))
	}

	if pipelineErr != nil {
		return pipelineErr
	}
	if batch.HasFindings() {
		return &FindingsError{Lints: len(batch.Lints), FailedTests: batch.FailedTests()}
	}
	return nil
}

func (r *Runner) publish(ctx context.Context, batch domain.Batch) error {
	ctx = context.WithoutCancel(ctx)
	if r.config.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.PublishTimeout)
		defer cancel()
	}
	return r.publisher.Publish(ctx, batch)
}

func summaryStyle(b *domain.Batch, pipelineErr error) terminal.Style {
	switch {
	case pipelineErr != nil:
		return terminal.StyleError
	case b.HasFindings():
		return terminal.StyleWarning
	default:
		return terminal.StyleSuccess
	}
}

// recorder is the Sink handed to pipelines. It drops excluded lints, renders
// the rest and accumulates everything into a batch. Pipelines feed it from a
// single goroutine.
type recorder struct {
	out      io.Writer
	filter   *filter.Filter
	logger   *terminal.Logger
	batch    domain.Batch
	excluded int
}

func (r *recorder) AddLint(l domain.Lint) {
	if r.filter.Excludes(l) {
		r.excluded++
		r.logger.Logf(terminal.StyleDim, "excluded %s[%s] at %s", l.Severity, l.Code, l.Location())
		return
	}
	RenderLint(r.out, l)
	r.batch.AddLint(l)
}

func (r *recorder) AddTest(t ...domain.Test) {
	r.batch.AddTest(t...)
}
