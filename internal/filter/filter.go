package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bgricker/utest/pkg/utest"
)

// Pattern represents a compiled filter condition supporting substring and regex matching.
type Pattern struct {
	raw   string
	regex *regexp.Regexp
	lower string
}

// Compile transforms raw pattern strings into Pattern values.
func Compile(patterns []string) ([]Pattern, error) {
	result := make([]Pattern, 0, len(patterns))
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") && len(raw) >= 2 {
			expr := raw[1 : len(raw)-1]
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("compile regexp %q: %w", raw, err)
			}
			result = append(result, Pattern{raw: raw, regex: re})
			continue
		}
		result = append(result, Pattern{raw: raw, lower: strings.ToLower(raw)})
	}
	return result, nil
}

// String returns the pattern as written.
func (p Pattern) String() string {
	return p.raw
}

// Match reports whether the pattern matches the supplied string.
func (p Pattern) Match(s string) bool {
	if s == "" {
		return false
	}
	if p.regex != nil {
		return p.regex.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), p.lower)
}

// Selection groups the compiled patterns applied to a registry.
type Selection struct {
	Suites []Pattern
	Groups []Pattern
	Only   []Pattern
	Skip   []Pattern
}

// NewSelection compiles the raw suite, group, only and skip patterns.
func NewSelection(suites, groups, only, skip []string) (Selection, error) {
	var sel Selection
	var err error
	if sel.Suites, err = Compile(suites); err != nil {
		return Selection{}, err
	}
	if sel.Groups, err = Compile(groups); err != nil {
		return Selection{}, err
	}
	if sel.Only, err = Compile(only); err != nil {
		return Selection{}, err
	}
	if sel.Skip, err = Compile(skip); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

// FilterSuites applies suite, group and test filters, returning copies that
// keep only matching cases. Groups and suites left empty are dropped.
func FilterSuites(suites []utest.Suite, sel Selection) []utest.Suite {
	if len(suites) == 0 {
		return nil
	}

	result := make([]utest.Suite, 0, len(suites))
	for _, s := range suites {
		if len(sel.Suites) > 0 && !matchesAny(sel.Suites, s.Name) {
			continue
		}
		groups := make([]utest.Group, 0, len(s.Groups))
		for _, g := range s.Groups {
			if len(sel.Groups) > 0 && !matchesAny(sel.Groups, g.Name) {
				continue
			}
			cases := filterCases(g.Cases, sel.Only, sel.Skip)
			if len(cases) == 0 {
				continue
			}
			groupCopy := g
			groupCopy.Cases = cases
			groups = append(groups, groupCopy)
		}
		if len(groups) == 0 {
			continue
		}
		suiteCopy := s
		suiteCopy.Groups = groups
		result = append(result, suiteCopy)
	}
	return result
}

func filterCases(cases []utest.Case, onlyPatterns, skipPatterns []Pattern) []utest.Case {
	if len(cases) == 0 {
		return nil
	}
	result := make([]utest.Case, 0, len(cases))
	for _, c := range cases {
		if len(onlyPatterns) > 0 && !matchesAny(onlyPatterns, c.Name) {
			continue
		}
		if len(skipPatterns) > 0 && matchesAny(skipPatterns, c.Name) {
			continue
		}
		result = append(result, c)
	}
	return result
}

func matchesAny(patterns []Pattern, s string) bool {
	for _, pattern := range patterns {
		if pattern.Match(s) {
			return true
		}
	}
	return false
}
