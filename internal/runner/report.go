package runner

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/richhaase/cargo-phabricator/internal/domain"
	"github.com/richhaase/cargo-phabricator/internal/terminal"
)

// RenderLint writes a lint in compiler style:
//
//	error[CHECKE0308]: mismatched types
//	   --> src/lib.rs:10:4
//	<description>
//
// Disabled lints are not rendered.
func RenderLint(w io.Writer, l domain.Lint) {
	if l.Severity == domain.SeverityDisabled {
		return
	}

	fmt.Fprintf(w, "%s[%s]: %s\n", severityLabel(l.Severity), l.Code, terminal.Paint(terminal.Bold, l.Name))
	fmt.Fprintf(w, "   %s %s\n", terminal.Paint(terminal.Blue, "-->"), l.Location())
	if l.Description != "" {
		fmt.Fprintf(w, "%s\n\n", strings.TrimRight(l.Description, "\n"))
	}
}

func severityLabel(s domain.Severity) string {
	var c string
	switch s {
	case domain.SeverityError:
		c = terminal.Red + terminal.Bold
	case domain.SeverityWarning:
		c = terminal.Yellow + terminal.Bold
	case domain.SeverityAutofix:
		c = terminal.Green
	default:
		c = terminal.Cyan
	}
	return terminal.Paint(c, string(s))
}

// Summary renders the one-line outcome of a pipeline.
func Summary(name string, b *domain.Batch, excluded int, elapsed time.Duration) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", name, terminal.Plural(len(b.Lints), "lint"))
	if len(b.Tests) > 0 {
		fmt.Fprintf(&sb, ", %s (%d failed)", terminal.Plural(len(b.Tests), "test"), b.FailedTests())
	}
	if excluded > 0 {
		fmt.Fprintf(&sb, ", %d excluded", excluded)
	}
	fmt.Fprintf(&sb, " in %s", terminal.FormatDuration(elapsed))
	return sb.String()
}
