package domain

import "testing"

func TestLint_Location(t *testing.T) {
	tests := []struct {
		name string
		lint Lint
		want string
	}{
		{"line and column", Lint{Path: "src/a.rs", Line: Ptr(10), Column: Ptr(4)}, "src/a.rs:10:4"},
		{"line only", Lint{Path: "src/a.rs", Line: Ptr(10)}, "src/a.rs:10"},
		{"path only", Lint{Path: "src/a.rs"}, "src/a.rs"},
		{"column without line", Lint{Path: "src/a.rs", Column: Ptr(4)}, "src/a.rs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.lint.Location(); got != tt.want {
				t.Errorf("Location() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeverity_Valid(t *testing.T) {
	for _, s := range []Severity{SeverityAdvice, SeverityAutofix, SeverityWarning, SeverityError, SeverityDisabled} {
		if !s.Valid() {
			t.Errorf("%q.Valid() = false, want true", s)
		}
	}
	if Severity("fatal").Valid() {
		t.Error(`"fatal".Valid() = true, want false`)
	}
}

func TestTestResult_Failed(t *testing.T) {
	tests := map[TestResult]bool{
		TestPass:    false,
		TestSkip:    false,
		TestFail:    true,
		TestBroken:  true,
		TestUnsound: true,
	}
	for result, want := range tests {
		if got := result.Failed(); got != want {
			t.Errorf("%q.Failed() = %v, want %v", result, got, want)
		}
	}
}

func TestExitCode_Int(t *testing.T) {
	if got := ExitInterrupted.Int(); got != 130 {
		t.Errorf("ExitInterrupted.Int() = %d, want 130", got)
	}
}
