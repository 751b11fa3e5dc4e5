package cargo

import (
	"encoding/json"
	"fmt"

	"github.com/richhaase/cargo-phabricator/internal/domain"
)

// Discriminants of the cargo messages this package consumes.
const (
	ReasonCompilerMessage  = "compiler-message"
	ReasonCompilerArtifact = "compiler-artifact"
)

// Level is a rustc diagnostic level. Decoding rejects levels outside the
// known set.
type Level string

const (
	LevelError       Level = "error"
	LevelWarning     Level = "warning"
	LevelNote        Level = "note"
	LevelHelp        Level = "help"
	LevelFailureNote Level = "failure-note"
)

func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch v := Level(s); v {
	case LevelError, LevelWarning, LevelNote, LevelHelp, LevelFailureNote:
		*l = v
		return nil
	default:
		return fmt.Errorf("unknown diagnostic level %q", s)
	}
}

// Severity maps the level onto a Harbormaster severity.
func (l Level) Severity() domain.Severity {
	switch l {
	case LevelWarning:
		return domain.SeverityWarning
	case LevelNote, LevelHelp:
		return domain.SeverityAdvice
	default:
		return domain.SeverityError
	}
}

// Diagnostic is a compiler-message record.
type Diagnostic struct {
	Message DiagnosticMessage `json:"message"`
	Target  Target            `json:"target"`
}

type DiagnosticMessage struct {
	Message  string          `json:"message"`
	Rendered string          `json:"rendered"`
	Level    Level           `json:"level"`
	Code     *DiagnosticCode `json:"code"`
	Spans    []Span          `json:"spans"`
}

type DiagnosticCode struct {
	Code string `json:"code"`
}

type Span struct {
	FileName    string `json:"file_name"`
	LineStart   int    `json:"line_start"`
	ColumnStart int    `json:"column_start"`
	IsPrimary   bool   `json:"is_primary"`
}

// Target is the crate target a message or artifact belongs to.
type Target struct {
	Name    string   `json:"name"`
	Kind    []string `json:"kind"`
	SrcPath string   `json:"src_path"`
}

// Artifact is a compiler-artifact record.
type Artifact struct {
	PackageID  string  `json:"package_id"`
	Target     Target  `json:"target"`
	Profile    Profile `json:"profile"`
	Executable *string `json:"executable"`
}

type Profile struct {
	Test bool `json:"test"`
}

// FmtFile is one file entry of rustfmt's JSON report. Every line of
// `cargo fmt --message-format json` is an array of them.
type FmtFile struct {
	Name       string     `json:"name"`
	Mismatches []Mismatch `json:"mismatches"`
}

type Mismatch struct {
	OriginalBeginLine int    `json:"original_begin_line"`
	OriginalEndLine   int    `json:"original_end_line"`
	ExpectedBeginLine int    `json:"expected_begin_line"`
	ExpectedEndLine   int    `json:"expected_end_line"`
	Original          string `json:"original"`
	Expected          string `json:"expected"`
}
