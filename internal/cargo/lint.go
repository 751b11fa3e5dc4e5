package cargo

import (
	"fmt"
	"strings"

	"github.com/richhaase/cargo-phabricator/internal/arcconfig"
	"github.com/richhaase/cargo-phabricator/internal/domain"
)

// Lint codes.
const (
	CheckCodePrefix = "CHECK"
	RustfmtCode     = "RUSTFMT"
)

// DiagnosticLint converts a compiler diagnostic into a lint. Paths are made
// relative to root. ok is false for diagnostics without a code, which are
// summaries such as "N warnings emitted".
func DiagnosticLint(d Diagnostic, root string) (lint domain.Lint, ok bool) {
	if d.Message.Code == nil {
		return domain.Lint{}, false
	}

	lint = domain.Lint{
		Name:        d.Message.Message,
		Code:        CheckCodePrefix + d.Message.Code.Code,
		Severity:    d.Message.Level.Severity(),
		Description: "```\n" + strings.TrimSpace(d.Message.Rendered) + "\n```",
	}

	if span, found := primarySpan(d.Message.Spans); found {
		lint.Path = arcconfig.RelativeTo(root, span.FileName)
		lint.Line = domain.Ptr(span.LineStart)
		lint.Column = domain.Ptr(span.ColumnStart)
	} else {
		lint.Path = arcconfig.RelativeTo(root, d.Target.SrcPath)
	}
	return lint, true
}

func primarySpan(spans []Span) (Span, bool) {
	for _, s := range spans {
		if s.IsPrimary {
			return s, true
		}
	}
	return Span{}, false
}

// MismatchLint converts one rustfmt mismatch into a lint on path. The
// description is a diff of the original and expected text.
func MismatchLint(path string, m Mismatch) domain.Lint {
	var b strings.Builder
	b.Grow(len(m.Original) + len(m.Expected) + 64)
	b.WriteString("```lang=diff\n")
	if m.Original != "" {
		for _, line := range strings.Split(m.Original, "\n") {
			fmt.Fprintf(&b, "-%s\n", line)
		}
	}
	if m.Expected != "" {
		for _, line := range strings.Split(m.Expected, "\n") {
			fmt.Fprintf(&b, "+%s\n", line)
		}
	}
	b.WriteString("```")

	return domain.Lint{
		Name:        "format mismatch",
		Code:        RustfmtCode,
		Severity:    domain.SeverityError,
		Path:        path,
		Line:        domain.Ptr(m.OriginalEndLine),
		Description: b.String(),
	}
}
