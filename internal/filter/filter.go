package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/benchrig/rigcheck/internal/harness"
)

// Pattern represents a compiled filter condition supporting substring and
// regex matching. Patterns wrapped in slashes compile as regular expressions;
// anything else matches case-insensitively as a substring.
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

// MatchAny reports whether any pattern matches.
func MatchAny(patterns []Pattern, s string) bool {
	for _, p := range patterns {
		if p.Match(s) {
			return true
		}
	}
	return false
}

// Sections narrows each section's checks to those passing the only/skip
// patterns, preserving order. Sections left with zero checks are dropped from
// the returned set. With no patterns the input is returned unchanged.
func Sections(sections []*harness.Section, only, skip []Pattern) []*harness.Section {
	if len(only) == 0 && len(skip) == 0 {
		return sections
	}

	result := make([]*harness.Section, 0, len(sections))
	for _, sec := range sections {
		kept := make([]harness.Check, 0, sec.Len())
		for _, chk := range sec.Checks() {
			if len(only) > 0 && !MatchAny(only, chk.Name()) {
				continue
			}
			if len(skip) > 0 && MatchAny(skip, chk.Name()) {
				continue
			}
			kept = append(kept, chk)
		}
		if len(kept) == 0 {
			continue
		}
		if len(kept) == sec.Len() {
			result = append(result, sec)
			continue
		}
		narrowed := harness.NewSection(sec.ID(), sec.Title(),
			harness.WithDescription(sec.Description()),
			harness.WithTimeout(sec.Timeout()))
		for _, chk := range kept {
			narrowed.AddCheck(chk)
		}
		result = append(result, narrowed)
	}
	return result
}
