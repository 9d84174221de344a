package harness

import (
	"context"
	"fmt"
	"time"
)

// Progress receives run lifecycle callbacks. Implementations render live
// output; a non-nil error aborts the run.
type Progress interface {
	SectionStarted(sec *Section, index, total int) error
	CheckCompleted(sec *Section, index, total int, result CheckResult) error
	SectionCompleted(report SectionReport) error
}

// Options configure how the runner executes sections.
type Options struct {
	// Now supplies timestamps for duration measurement. Defaults to time.Now.
	Now func() time.Time
	// Progress, when set, is notified as sections and checks complete.
	Progress Progress
	// Aggregator, when set, records every produced check result.
	Aggregator *Aggregator
	// StopOnFailure stops the run after the first failed section. Checks
	// within a section always run to completion.
	StopOnFailure bool
}

// Runner executes section checks sequentially.
type Runner struct {
	opts Options
}

// New creates a runner with the supplied options.
func New(opts Options) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{opts: opts}
}

// Run resolves the request against the registry and executes each section in
// order, returning per-section reports and an overall summary.
func (r *Runner) Run(ctx context.Context, reg *Registry, req RunRequest) ([]SectionReport, Summary, error) {
	sections, err := reg.ResolveRunSet(req)
	if err != nil {
		return nil, Summary{}, err
	}
	return r.RunSections(ctx, reg, sections)
}

// RunSections executes an already-resolved ordered set of sections. Callers
// that narrow the run set further (check filters) use this directly.
func (r *Runner) RunSections(ctx context.Context, reg *Registry, sections []*Section) ([]SectionReport, Summary, error) {
	reports := make([]SectionReport, 0, len(sections))
	total := len(sections)
	for i, sec := range sections {
		if r.opts.Progress != nil {
			if err := r.opts.Progress.SectionStarted(sec, i+1, total); err != nil {
				return reports, Summarize(reports), err
			}
		}

		rep, err := r.RunSection(ctx, reg, sec)
		if err != nil {
			return reports, Summarize(reports), err
		}
		reports = append(reports, rep)

		if r.opts.Progress != nil {
			if err := r.opts.Progress.SectionCompleted(rep); err != nil {
				return reports, Summarize(reports), err
			}
		}

		if r.opts.StopOnFailure && rep.Status == StatusFailed {
			break
		}
	}

	return reports, Summarize(reports), nil
}

// RunSection executes all checks of one section sequentially. A disabled
// section yields a skipped report with zero results. Check panics are
// converted into failed results; later checks in the section still run.
func (r *Runner) RunSection(ctx context.Context, reg *Registry, sec *Section) (SectionReport, error) {
	rep := SectionReport{SectionID: sec.ID(), Title: sec.Title()}

	if !reg.IsEnabled(sec.ID()) {
		rep.Status = StatusSkipped
		return rep, nil
	}

	checks := sec.Checks()
	total := len(checks)
	for i, chk := range checks {
		start := r.opts.Now()
		passed, msg := runCheck(ctx, chk)
		elapsed := r.opts.Now().Sub(start)
		if elapsed < 0 {
			elapsed = 0
		}

		res := CheckResult{
			Name:       chk.Name(),
			Passed:     passed,
			Message:    msg,
			Duration:   elapsed,
			DurationMS: elapsed.Milliseconds(),
		}
		rep.Results = append(rep.Results, res)
		if passed {
			rep.Passed++
		} else {
			rep.Failed++
		}
		rep.Duration += elapsed

		if r.opts.Aggregator != nil {
			r.opts.Aggregator.Record(res)
		}
		if r.opts.Progress != nil {
			if err := r.opts.Progress.CheckCompleted(sec, i+1, total, res); err != nil {
				return rep, err
			}
		}
	}

	rep.DurationMS = rep.Duration.Milliseconds()
	if rep.Failed > 0 {
		rep.Status = StatusFailed
	} else {
		rep.Status = StatusPassed
	}
	return rep, nil
}

// runCheck invokes a check, converting a panic into a failed outcome so one
// faulty check cannot abort the section.
func runCheck(ctx context.Context, chk Check) (passed bool, message string) {
	defer func() {
		if rec := recover(); rec != nil {
			passed = false
			message = fmt.Sprintf("check panicked: %v", rec)
		}
	}()
	return chk.Run(ctx)
}
