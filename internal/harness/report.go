package harness

import "time"

// CheckResult captures the outcome of a single check. Results are immutable
// once produced; duration is measured by the runner, not the check.
type CheckResult struct {
	Name       string        `json:"name"`
	Passed     bool          `json:"passed"`
	Message    string        `json:"message,omitempty"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
}

// Section report status values.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// SectionReport aggregates the outcome of one section execution. A skipped
// report (disabled section) carries no results and is distinct from a passed
// report over zero checks.
type SectionReport struct {
	SectionID  string        `json:"section_id"`
	Title      string        `json:"title"`
	Status     string        `json:"status"`
	Results    []CheckResult `json:"results,omitempty"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
}

// Total returns the number of executed checks.
func (r SectionReport) Total() int { return r.Passed + r.Failed }

// SuccessRate returns the percentage of passing checks. An empty run reports 0
// rather than dividing by zero.
func (r SectionReport) SuccessRate() float64 {
	total := r.Total()
	if total == 0 {
		return 0
	}
	return float64(r.Passed) * 100.0 / float64(total)
}

// Summary aggregates section reports for a whole run.
type Summary struct {
	TotalSections   int           `json:"total_sections"`
	SkippedSections int           `json:"skipped_sections"`
	TotalChecks     int           `json:"total_checks"`
	Passed          int           `json:"passed"`
	Failed          int           `json:"failed"`
	Duration        time.Duration `json:"-"`
	DurationMS      int64         `json:"duration_ms"`
	ExitCode        int           `json:"exit_code"`
}

// Summarize folds section reports into an overall summary. The exit code is 1
// when any executed check failed.
func Summarize(reports []SectionReport) Summary {
	s := Summary{TotalSections: len(reports)}
	for _, rep := range reports {
		if rep.Status == StatusSkipped {
			s.SkippedSections++
			continue
		}
		s.TotalChecks += rep.Total()
		s.Passed += rep.Passed
		s.Failed += rep.Failed
		s.Duration += rep.Duration
	}
	s.DurationMS = s.Duration.Milliseconds()
	if s.Failed > 0 {
		s.ExitCode = 1
	}
	return s
}

// SuccessRate returns the percentage of passing checks across the run.
func (s Summary) SuccessRate() float64 {
	if s.TotalChecks == 0 {
		return 0
	}
	return float64(s.Passed) * 100.0 / float64(s.TotalChecks)
}
