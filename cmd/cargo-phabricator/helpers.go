package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/richhaase/cargo-phabricator/internal/domain"
	"github.com/richhaase/cargo-phabricator/internal/jsonl"
	"github.com/richhaase/cargo-phabricator/internal/runner"
)

// exitCodeError is a wrapper type for returning exit codes via error interface.
// It is not printed.
type exitCodeError struct {
	code domain.ExitCode
}

func (e exitCodeError) Error() string {
	switch e.code {
	case domain.ExitFindings:
		return "findings were reported"
	case domain.ExitError:
		return "cargo-phabricator failed with error"
	case domain.ExitInterrupted:
		return "cargo-phabricator was interrupted"
	default:
		return fmt.Sprintf("exit code %d", e.code)
	}
}

func exitCode(code domain.ExitCode) error {
	if code == domain.ExitNoFindings {
		return nil
	}
	return exitCodeError{code: code}
}

// exitCodeFor maps an error returned by a command onto the process exit
// code.
func exitCodeFor(err error) domain.ExitCode {
	var findings *runner.FindingsError
	var publish *runner.PublishError
	switch {
	case err == nil:
		return domain.ExitNoFindings
	case errors.Is(err, context.Canceled):
		return domain.ExitInterrupted
	case errors.As(err, &publish), errors.Is(err, context.DeadlineExceeded):
		return domain.ExitError
	case errors.As(err, &findings), jsonl.IsKind(err, jsonl.KindExitStatus):
		return domain.ExitFindings
	default:
		return domain.ExitError
	}
}

// printError writes err and then every error below it, depth first:
//
//	error: could not submit results to Harbormaster
//	  caused by: harbormaster.sendmessage returned ERR-CONDUIT-CORE
//	  caused by: command failed with exit status 101: cargo check
//
// A message that ends with the message of its single cause, as produced by
// fmt.Errorf with %w, is printed without that suffix.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %s\n", ownMessage(err))
	walkCauses(err, func(cause error) {
		fmt.Fprintf(w, "  caused by: %s\n", ownMessage(cause))
	})
}

func walkCauses(err error, visit func(error)) {
	for _, cause := range causes(err) {
		visit(cause)
		walkCauses(cause, visit)
	}
}

func causes(err error) []error {
	switch e := err.(type) {
	case interface{ Unwrap() []error }:
		return e.Unwrap()
	case interface{ Unwrap() error }:
		if cause := e.Unwrap(); cause != nil {
			return []error{cause}
		}
	}
	return nil
}

func ownMessage(err error) string {
	msg := err.Error()
	if cs := causes(err); len(cs) == 1 {
		if trimmed, ok := strings.CutSuffix(msg, ": "+cs[0].Error()); ok && trimmed != "" {
			return trimmed
		}
	}
	return msg
}
