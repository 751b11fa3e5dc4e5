package domain

// Batch accumulates the records of one invocation in emission order.
// It is owned by a single goroutine and is not safe for concurrent use.
type Batch struct {
	Lints []Lint
	Tests []Test
}

// AddLint appends a lint.
func (b *Batch) AddLint(l Lint) {
	b.Lints = append(b.Lints, l)
}

// AddTest appends test results.
func (b *Batch) AddTest(t ...Test) {
	b.Tests = append(b.Tests, t...)
}

// Empty reports whether nothing was collected.
func (b *Batch) Empty() bool {
	return len(b.Lints) == 0 && len(b.Tests) == 0
}

// FailedTests returns the number of tests whose result is a failure.
func (b *Batch) FailedTests() int {
	n := 0
	for _, t := range b.Tests {
		if t.Result.Failed() {
			n++
		}
	}
	return n
}

// HasFindings reports whether the batch should fail the command: any lint,
// or any test that did not pass or skip.
func (b *Batch) HasFindings() bool {
	return len(b.Lints) > 0 || b.FailedTests() > 0
}
