package jsonl

import (
	"errors"
	"fmt"
	"os"
)

// Kind classifies a stream error.
type Kind int

const (
	// KindRead is an I/O failure while reading the child's output.
	KindRead Kind = iota + 1
	// KindDecode is a line that is not valid JSON for the target type.
	KindDecode
	// KindSpawn is a child that could not be started.
	KindSpawn
	// KindWait is a failure to collect the child's exit status.
	KindWait
	// KindExitStatus is a child that exited unsuccessfully.
	KindExitStatus
	// KindUpstreamDecode is a value whose reason matched but whose body did
	// not decode into the target type.
	KindUpstreamDecode
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindDecode:
		return "decode"
	case KindSpawn:
		return "spawn"
	case KindWait:
		return "wait"
	case KindExitStatus:
		return "exit status"
	case KindUpstreamDecode:
		return "upstream decode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the error type yielded by every stage in this package.
// Error() describes only this layer; the cause is available through Unwrap.
type Error struct {
	Kind Kind
	// Line holds a copy of the offending bytes for KindDecode and
	// KindUpstreamDecode.
	Line []byte
	// Command is the rendered command line for process errors.
	Command string
	// State is the child's final state for KindExitStatus.
	State *os.ProcessState
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRead:
		return "could not read a line from the reader"
	case KindDecode:
		return fmt.Sprintf("could not parse a line as json: %q", e.Line)
	case KindSpawn:
		return fmt.Sprintf("could not spawn command: %s", e.Command)
	case KindWait:
		return fmt.Sprintf("could not obtain the exit code of %s", e.Command)
	case KindExitStatus:
		if e.State != nil {
			return fmt.Sprintf("command failed with %s: %s", e.State, e.Command)
		}
		return fmt.Sprintf("command failed: %s", e.Command)
	case KindUpstreamDecode:
		return "could not parse a value as json"
	default:
		return fmt.Sprintf("jsonl error (%s)", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the stream continues after this error.
func (e *Error) Recoverable() bool {
	return e.Kind == KindDecode || e.Kind == KindUpstreamDecode
}

// ExitCode returns the child's exit code for KindExitStatus errors, or -1
// when the child was terminated by a signal or no state is available.
func (e *Error) ExitCode() int {
	if e.State == nil {
		return -1
	}
	return e.State.ExitCode()
}

// IsRecoverable reports whether err is a recoverable *Error.
func IsRecoverable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Recoverable()
}

// kindTarget lets errors.Is match a *Error by kind anywhere in a tree.
type kindTarget Kind

func (k kindTarget) Error() string { return Kind(k).String() }

// Is matches targets created by IsKind.
func (e *Error) Is(target error) bool {
	k, ok := target.(kindTarget)
	return ok && e.Kind == Kind(k)
}

// IsKind reports whether any error in err's tree is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, kindTarget(kind))
}
