package cargo

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/richhaase/cargo-phabricator/internal/domain"
)

const libtestOutput = `
running 5 tests
test tests::adds ... ok
test tests::divides ... FAILED
test tests::slow ... ignored, takes minutes
test tests::parses - should panic ... ok
test tests::overflows - should panic ... FAILED

failures:

---- tests::divides stdout ----
thread 'tests::divides' panicked at src/lib.rs:20:9:
attempt to divide by zero
note: run with ` + "`RUST_BACKTRACE=1`" + ` environment variable to display a backtrace

---- tests::overflows stdout ----
note: test did not panic as expected

failures:
    tests::divides
    tests::overflows

test result: FAILED. 2 passed; 2 failed; 1 ignored; 0 measured; 0 filtered out; finished in 0.00s
`

func TestLibtestParser(t *testing.T) {
	p := newLibtestParser("mycrate")
	for _, line := range strings.Split(libtestOutput, "\n") {
		p.feed(line)
	}

	want := []domain.Test{
		{Name: "tests::adds", Result: domain.TestPass, Namespace: "mycrate"},
		{
			Name:      "tests::divides",
			Result:    domain.TestFail,
			Namespace: "mycrate",
			Details: "thread 'tests::divides' panicked at src/lib.rs:20:9:\n" +
				"attempt to divide by zero\n" +
				"note: run with `RUST_BACKTRACE=1` environment variable to display a backtrace",
			Format: "text",
		},
		{Name: "tests::slow", Result: domain.TestSkip, Namespace: "mycrate"},
		{Name: "tests::parses", Result: domain.TestPass, Namespace: "mycrate"},
		{
			Name:      "tests::overflows",
			Result:    domain.TestFail,
			Namespace: "mycrate",
			Details:   "note: test did not panic as expected",
			Format:    "text",
		},
	}
	if diff := cmp.Diff(want, p.results()); diff != "" {
		t.Errorf("results() mismatch (-want +got):\n%s", diff)
	}
}

func TestLibtestParser_NoTests(t *testing.T) {
	p := newLibtestParser("empty")
	p.feed("running 0 tests")
	p.feed("test result: ok. 0 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out; finished in 0.00s")

	if got := p.results(); len(got) != 0 {
		t.Errorf("results() = %v, want none", got)
	}
}

func TestAnyFailed(t *testing.T) {
	if anyFailed([]domain.Test{{Result: domain.TestPass}, {Result: domain.TestSkip}}) {
		t.Error("anyFailed() = true for passing tests")
	}
	if !anyFailed([]domain.Test{{Result: domain.TestPass}, {Result: domain.TestFail}}) {
		t.Error("anyFailed() = false with a failed test")
	}
}
