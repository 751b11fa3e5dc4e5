// Package filter provides exclude-pattern filtering of lints.
package filter

import (
	"regexp"

	"github.com/richhaase/cargo-phabricator/internal/domain"
)

// Filter holds compiled regex patterns for excluding lints.
type Filter struct {
	excludePatterns []*regexp.Regexp
}

// New creates a Filter from pattern strings.
// Returns an error if any pattern is an invalid regex.
func New(patterns []string) (*Filter, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &Filter{excludePatterns: compiled}, nil
}

// Len returns the number of patterns.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.excludePatterns)
}

// Excludes reports whether any pattern matches the lint's code, name,
// path or description. A nil Filter excludes nothing.
func (f *Filter) Excludes(l domain.Lint) bool {
	if f == nil {
		return false
	}
	for _, re := range f.excludePatterns {
		for _, field := range [...]string{l.Code, l.Name, l.Path, l.Description} {
			if re.MatchString(field) {
				return true
			}
		}
	}
	return false
}

// Apply returns the lints that are not excluded.
// Does not mutate the original.
func (f *Filter) Apply(lints []domain.Lint) []domain.Lint {
	if f.Len() == 0 {
		return lints
	}

	filtered := make([]domain.Lint, 0, len(lints))
	for _, l := range lints {
		if !f.Excludes(l) {
			filtered = append(filtered, l)
		}
	}
	return filtered
}
