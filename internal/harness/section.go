package harness

import (
	"context"
	"time"
)

// Section groups an ordered sequence of checks under a stable id. The check
// list is fixed after construction; only the advisory timeout may change
// later. Enablement is tracked by the Registry, not the section itself.
type Section struct {
	id          string
	title       string
	description string
	timeout     time.Duration
	checks      []Check
}

// SectionOption customizes a section at construction time.
type SectionOption func(*Section)

// WithDescription sets the human-readable description shown by list output.
func WithDescription(desc string) SectionOption {
	return func(s *Section) { s.description = desc }
}

// WithTimeout records an advisory time budget for the section. The runner does
// not enforce it; gates and reports may compare against it.
func WithTimeout(d time.Duration) SectionOption {
	return func(s *Section) { s.timeout = d }
}

// NewSection creates a section with the given id and title.
func NewSection(id, title string, opts ...SectionOption) *Section {
	s := &Section{id: id, title: title}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a named check built from fn. Returns the section for chaining.
func (s *Section) Add(name string, fn func(ctx context.Context) (bool, string)) *Section {
	s.checks = append(s.checks, NewCheck(name, fn))
	return s
}

// AddCheck appends an existing check.
func (s *Section) AddCheck(c Check) *Section {
	s.checks = append(s.checks, c)
	return s
}

// ID returns the section's stable identifier.
func (s *Section) ID() string { return s.id }

// Title returns the section's display title.
func (s *Section) Title() string { return s.title }

// Description returns the section's description, possibly empty.
func (s *Section) Description() string { return s.description }

// Timeout returns the advisory time budget, zero when unset.
func (s *Section) Timeout() time.Duration { return s.timeout }

// SetTimeout replaces the advisory time budget. Unlike the check list the
// timeout stays adjustable after registration, so config overrides can apply
// to already-built suites.
func (s *Section) SetTimeout(d time.Duration) { s.timeout = d }

// Checks returns the section's checks in registration order.
func (s *Section) Checks() []Check {
	return append([]Check{}, s.checks...)
}

// Len returns the number of checks.
func (s *Section) Len() int { return len(s.checks) }
