// Package domain provides the report records shared by the cargo runners,
// the publisher and the terminal report.
package domain

// ExitCode represents the exit status of cargo-phabricator.
type ExitCode int

const (
	// ExitNoFindings indicates the build tool succeeded and reported nothing.
	ExitNoFindings ExitCode = 0
	// ExitFindings indicates lints or failing tests were reported, or the
	// build tool itself exited unsuccessfully.
	ExitFindings ExitCode = 1
	// ExitError indicates an infrastructure failure (spawn, I/O, submission).
	ExitError ExitCode = 2
	// ExitInterrupted indicates the run was interrupted by a signal.
	ExitInterrupted ExitCode = 130
)

// Int returns the exit code as an int for use with os.Exit.
func (e ExitCode) Int() int {
	return int(e)
}
