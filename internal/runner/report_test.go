package runner

import (
	"bytes"
	"testing"
	"time"

	"github.com/richhaase/cargo-phabricator/internal/domain"
	"github.com/richhaase/cargo-phabricator/internal/terminal"
)

func TestRenderLint(t *testing.T) {
	prev := terminal.SetColorsEnabled(false)
	defer terminal.SetColorsEnabled(prev)

	tests := []struct {
		name string
		lint domain.Lint
		want string
	}{
		{
			name: "full location with description",
			lint: domain.Lint{
				Name: "mismatched types", Code: "CHECKE0308", Severity: domain.SeverityError,
				Path: "src/a.rs", Line: domain.Ptr(10), Column: domain.Ptr(4),
				Description: "```\nexpected u32\n```\n",
			},
			want: "error[CHECKE0308]: mismatched types\n   --> src/a.rs:10:4\n```\nexpected u32\n```\n\n",
		},
		{
			name: "line only",
			lint: domain.Lint{Name: "format mismatch", Code: "RUSTFMT", Severity: domain.SeverityError, Path: "src/b.rs", Line: domain.Ptr(3)},
			want: "error[RUSTFMT]: format mismatch\n   --> src/b.rs:3\n",
		},
		{
			name: "path only",
			lint: domain.Lint{Name: "unused crate", Code: "CHECKunused", Severity: domain.SeverityAdvice, Path: "src/lib.rs"},
			want: "advice[CHECKunused]: unused crate\n   --> src/lib.rs\n",
		},
		{
			name: "disabled is silent",
			lint: domain.Lint{Name: "x", Code: "Y", Severity: domain.SeverityDisabled, Path: "z"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			RenderLint(&buf, tt.lint)
			if got := buf.String(); got != tt.want {
				t.Errorf("RenderLint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	b := &domain.Batch{}
	if got, want := Summary("fmt", b, 0, 1500*time.Millisecond), "fmt: 0 lints in 1.5s"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}

	b.AddLint(sampleLint)
	b.AddTest(domain.Test{Result: domain.TestPass}, domain.Test{Result: domain.TestFail})
	if got, want := Summary("test", b, 2, 0), "test: 1 lint, 2 tests (1 failed), 2 excluded in 0.0s"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
