package cargo

import (
	"regexp"
	"strings"

	"github.com/richhaase/cargo-phabricator/internal/domain"
)

var (
	libtestResult  = regexp.MustCompile(`^test (.+?)(?: - should panic)? \.\.\. (ok|FAILED|ignored)(?:,.*)?$`)
	libtestSection = regexp.MustCompile(`^---- (.+?) std(?:out|err) ----$`)
)

// libtestParser reads the plain-text output of a libtest harness line by
// line. Failure sections ("---- name stdout ----") become the details of
// the matching failed test.
type libtestParser struct {
	namespace string
	tests     []domain.Test
	details   map[string]*strings.Builder
	section   string
}

func newLibtestParser(namespace string) *libtestParser {
	return &libtestParser{namespace: namespace, details: make(map[string]*strings.Builder)}
}

func (p *libtestParser) feed(line string) {
	if m := libtestSection.FindStringSubmatch(line); m != nil {
		p.section = m[1]
		if _, ok := p.details[p.section]; !ok {
			p.details[p.section] = &strings.Builder{}
		}
		return
	}

	if m := libtestResult.FindStringSubmatch(line); m != nil {
		p.section = ""
		p.tests = append(p.tests, domain.Test{
			Name:      m[1],
			Result:    libtestOutcome(m[2]),
			Namespace: p.namespace,
		})
		return
	}

	switch {
	case line == "failures:" || line == "successes:" || strings.HasPrefix(line, "test result: "):
		p.section = ""
	case p.section != "":
		b := p.details[p.section]
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

func libtestOutcome(s string) domain.TestResult {
	switch s {
	case "ok":
		return domain.TestPass
	case "ignored":
		return domain.TestSkip
	default:
		return domain.TestFail
	}
}

// results returns the tests in the order the harness reported them.
func (p *libtestParser) results() []domain.Test {
	for i := range p.tests {
		t := &p.tests[i]
		if t.Result != domain.TestFail {
			continue
		}
		if b, ok := p.details[t.Name]; ok && b.Len() > 0 {
			t.Details = strings.TrimRight(b.String(), "\n")
			t.Format = "text"
		}
	}
	return p.tests
}

func anyFailed(tests []domain.Test) bool {
	for _, t := range tests {
		if t.Result == domain.TestFail {
			return true
		}
	}
	return false
}
