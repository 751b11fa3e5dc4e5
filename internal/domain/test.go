package domain

// TestResult is a Harbormaster unit test result.
type TestResult string

const (
	TestPass    TestResult = "pass"
	TestFail    TestResult = "fail"
	TestSkip    TestResult = "skip"
	TestBroken  TestResult = "broken"
	TestUnsound TestResult = "unsound"
)

// Failed reports whether the result counts as a finding.
func (r TestResult) Failed() bool {
	return r != TestPass && r != TestSkip
}

// Test is a single unit test result destined for Harbormaster.
type Test struct {
	Name      string
	Result    TestResult
	Namespace string
	// Duration is in seconds; nil when unknown.
	Duration *float64
	Details  string
	// Format is the markup of Details ("text" or "remarkup"); empty means text.
	Format string
}
