package runner

import (
	"fmt"

	"github.com/richhaase/cargo-phabricator/internal/terminal"
)

// PublishError reports that collected records could not be submitted.
// Pipeline holds the pipeline's own error, which may be nil.
type PublishError struct {
	Err      error
	Pipeline error
}

func (e *PublishError) Error() string {
	return "could not submit results to Harbormaster"
}

// Unwrap returns the publication error followed by the pipeline error.
func (e *PublishError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Pipeline != nil {
		errs = append(errs, e.Pipeline)
	}
	return errs
}

// FindingsError reports a clean run that produced lints or failing tests.
type FindingsError struct {
	Lints       int
	FailedTests int
}

func (e *FindingsError) Error() string {
	return fmt.Sprintf("found %s and %s",
		terminal.Plural(e.Lints, "lint"), terminal.Plural(e.FailedTests, "failed test"))
}
