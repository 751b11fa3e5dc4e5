package domain

import "fmt"

// Severity is a Harbormaster lint severity.
type Severity string

const (
	SeverityAdvice   Severity = "advice"
	SeverityAutofix  Severity = "autofix"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityDisabled Severity = "disabled"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityAdvice, SeverityAutofix, SeverityWarning, SeverityError, SeverityDisabled:
		return true
	}
	return false
}

// Lint is a single lint finding destined for Harbormaster.
// Line and Column are nil when the finding has no precise location.
type Lint struct {
	Name        string
	Code        string
	Severity    Severity
	Path        string
	Line        *int
	Column      *int
	Description string
}

// Location renders path[:line[:column]].
func (l Lint) Location() string {
	switch {
	case l.Line != nil && l.Column != nil:
		return fmt.Sprintf("%s:%d:%d", l.Path, *l.Line, *l.Column)
	case l.Line != nil:
		return fmt.Sprintf("%s:%d", l.Path, *l.Line)
	default:
		return l.Path
	}
}

// Ptr returns a pointer to v. It is used for the optional record fields.
func Ptr[T any](v T) *T {
	return &v
}
