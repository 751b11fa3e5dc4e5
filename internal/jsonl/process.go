package jsonl

import (
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// Command describes a child process whose stdout is consumed as a stream.
type Command struct {
	// Name is the executable, resolved through PATH.
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is appended to the parent's environment when non-nil.
	Env []string
	// Stdin and Stderr are connected to the null device when nil.
	Stdin  io.Reader
	Stderr io.Writer
	// Logger receives debug events about the child. Nil disables them.
	Logger *zap.Logger
}

// String renders the command line for diagnostics.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, s := range append([]string{c.Name}, c.Args...) {
		if s == "" || strings.ContainsAny(s, " \t\n\"'") {
			s = strconv.Quote(s)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// Process is a running child whose stdout is read through Lines.
// It owns the child: Close kills and reaps it unless it already finished.
type Process struct {
	cmd       *exec.Cmd
	ctx       context.Context
	stdout    io.ReadCloser
	command   string
	logger    *zap.Logger
	closeOnce sync.Once
	waitErr   error
}

// Start spawns c with its stdout captured. The child runs in its own process
// group so that the whole group can be killed when the stream is abandoned
// or ctx is canceled. A spawn failure is returned as a KindSpawn *Error.
func Start(ctx context.Context, c Command) (*Process, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rendered := c.String()

	// #nosec G204 - the executable is the configured build tool or a test
	// binary it produced, not arbitrary user input.
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if c.Env != nil {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = c.Stdin
	cmd.Stderr = c.Stderr

	// Set process group for proper signal handling
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return killGroup(cmd.Process)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &Error{Kind: KindSpawn, Command: rendered, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &Error{Kind: KindSpawn, Command: rendered, Err: err}
	}

	logger.Debug("spawned child",
		zap.String("command", rendered),
		zap.Int("pid", cmd.Process.Pid),
		zap.String("dir", c.Dir))

	return &Process{
		cmd:     cmd,
		ctx:     ctx,
		stdout:  stdout,
		command: rendered,
		logger:  logger,
	}, nil
}

// Pid returns the child's process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Lines returns the child's stdout as a sequence of lines.
//
// When the output is exhausted the child is waited on, and an unsuccessful
// exit is yielded as a final KindExitStatus error after every line. When the
// consumer stops early, the process group is killed and reaped before the
// loop exits. Lines must be ranged over at most once.
func (p *Process) Lines() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		drained := false
		defer func() {
			if !drained {
				_ = p.Close()
			}
		}()

		for line, err := range Lines(p.stdout) {
			if !yield(line, err) || err != nil {
				return
			}
		}

		// stdout must be drained before Wait, which closes the pipe.
		drained = true
		if err := p.finish(); err != nil {
			yield(nil, err)
		}
	}
}

// Close kills the child's process group if it is still running and reaps
// it. It is safe to call more than once and after the output was drained.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		p.logger.Debug("killing child", zap.String("command", p.command), zap.Int("pid", p.Pid()))
		_ = killGroup(p.cmd.Process)
		p.waitErr = p.wait()
	})
	return nil
}

// finish waits for a child whose output has been fully read.
func (p *Process) finish() error {
	p.closeOnce.Do(func() {
		p.waitErr = p.wait()
	})
	return p.waitErr
}

func (p *Process) wait() error {
	err := p.cmd.Wait()
	state := p.cmd.ProcessState
	if state != nil {
		p.logger.Debug("child exited",
			zap.String("command", p.command),
			zap.Int("pid", state.Pid()),
			zap.String("state", state.String()))
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return &Error{Kind: KindExitStatus, Command: p.command, State: exitErr.ProcessState, Err: context.Cause(p.ctx)}
	case state != nil && !state.Success():
		return &Error{Kind: KindExitStatus, Command: p.command, State: state, Err: context.Cause(p.ctx)}
	case state != nil:
		// The child exited cleanly; err came from the context watcher.
		return nil
	default:
		return &Error{Kind: KindWait, Command: p.command, Err: err}
	}
}

// killGroup sends SIGKILL to the process group led by proc.
// Errors are ignored because the group may already be gone.
func killGroup(proc *os.Process) error {
	if proc == nil {
		return nil
	}
	if err := syscall.Kill(-proc.Pid, syscall.SIGKILL); err != nil {
		return os.ErrProcessDone
	}
	return nil
}

// Stream spawns c and yields its stdout lines decoded into T, followed by a
// KindExitStatus error if the child exits unsuccessfully. A spawn failure
// is yielded as the only item.
func Stream[T any](ctx context.Context, c Command) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		p, err := Start(ctx, c)
		if err != nil {
			var zero T
			yield(zero, err)
			return
		}
		defer p.Close()

		for v, err := range Values[T](p.Lines()) {
			if !yield(v, err) {
				return
			}
		}
	}
}
