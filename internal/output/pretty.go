package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/benchrig/rigcheck/internal/gate"
	"github.com/benchrig/rigcheck/internal/harness"
)

// SectionInfo describes a registered section for list output.
type SectionInfo struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Enabled        bool   `json:"enabled"`
	Checks         int    `json:"checks"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// Sections snapshots the registry in registration order for listing.
func Sections(reg *harness.Registry) []SectionInfo {
	sections := reg.Sections()
	infos := make([]SectionInfo, 0, len(sections))
	for _, sec := range sections {
		infos = append(infos, SectionInfo{
			ID:             sec.ID(),
			Title:          sec.Title(),
			Description:    sec.Description(),
			Enabled:        reg.IsEnabled(sec.ID()),
			Checks:         sec.Len(),
			TimeoutSeconds: int(sec.Timeout().Seconds()),
		})
	}
	return infos
}

// PrettyRenderer renders run progress and summaries in a human-friendly
// format. It implements harness.Progress so check lines appear as they
// complete.
type PrettyRenderer struct {
	out     io.Writer
	verbose bool
}

// NewPretty creates a PrettyRenderer writing to the provided writer.
func NewPretty(out io.Writer, verbose bool) *PrettyRenderer {
	return &PrettyRenderer{out: out, verbose: verbose}
}

// RenderList renders registered sections with enablement and check counts.
func (p *PrettyRenderer) RenderList(sections []SectionInfo) error {
	for _, info := range sections {
		marker := "enabled"
		if !info.Enabled {
			marker = "disabled"
		}
		if _, err := fmt.Fprintf(p.out, "%-14s %s (%d checks, %s)\n", info.ID, info.Title, info.Checks, marker); err != nil {
			return err
		}
		if p.verbose && info.Description != "" {
			if _, err := fmt.Fprintf(p.out, "    %s\n", info.Description); err != nil {
				return err
			}
		}
	}
	return nil
}

// SectionStarted prints the section header.
func (p *PrettyRenderer) SectionStarted(sec *harness.Section, index, total int) error {
	if _, err := fmt.Fprintf(p.out, "=== %s (%s) ===\n", sec.Title(), sec.ID()); err != nil {
		return err
	}
	if p.verbose && sec.Description() != "" {
		if _, err := fmt.Fprintf(p.out, "%s\n", sec.Description()); err != nil {
			return err
		}
	}
	return nil
}

// CheckCompleted prints one progress line per finished check.
func (p *PrettyRenderer) CheckCompleted(sec *harness.Section, index, total int, res harness.CheckResult) error {
	return p.checkLine(index, total, res)
}

func (p *PrettyRenderer) checkLine(index, total int, res harness.CheckResult) error {
	verdict := "PASS"
	if !res.Passed {
		verdict = "FAIL"
	}
	line := fmt.Sprintf("Running check %d/%d: %s ... %s (%d ms)", index, total, res.Name, verdict, res.DurationMS)
	if res.Message != "" && (!res.Passed || p.verbose) {
		line += ": " + res.Message
	}
	_, err := fmt.Fprintln(p.out, line)
	return err
}

// SectionCompleted prints the per-section summary block, or the skip marker
// for disabled sections.
func (p *PrettyRenderer) SectionCompleted(rep harness.SectionReport) error {
	if rep.Status == harness.StatusSkipped {
		_, err := fmt.Fprintf(p.out, "Section %s is disabled, skipping\n", rep.SectionID)
		return err
	}
	_, err := fmt.Fprintf(p.out, "Total: %d  Passed: %d  Failed: %d  Success rate: %.1f%%  Time: %s\n",
		rep.Total(), rep.Passed, rep.Failed, rep.SuccessRate(), formatDuration(rep.Duration))
	return err
}

// RenderReports re-renders completed section reports in the same shape the
// live run streams. Report file export uses this after the run finishes.
func (p *PrettyRenderer) RenderReports(reports []harness.SectionReport) error {
	for _, rep := range reports {
		if rep.Status != harness.StatusSkipped {
			if _, err := fmt.Fprintf(p.out, "=== %s (%s) ===\n", rep.Title, rep.SectionID); err != nil {
				return err
			}
			total := len(rep.Results)
			for i, res := range rep.Results {
				if err := p.checkLine(i+1, total, res); err != nil {
					return err
				}
			}
		}
		if err := p.SectionCompleted(rep); err != nil {
			return err
		}
	}
	return nil
}

// RenderEnabled renders only the enabled sections, always with descriptions
// and advisory timeouts.
func (p *PrettyRenderer) RenderEnabled(sections []SectionInfo) error {
	for _, info := range sections {
		if !info.Enabled {
			continue
		}
		line := fmt.Sprintf("%-14s %s (%d checks", info.ID, info.Title, info.Checks)
		if info.TimeoutSeconds > 0 {
			line += fmt.Sprintf(", timeout %ds", info.TimeoutSeconds)
		}
		line += ")"
		if _, err := fmt.Fprintln(p.out, line); err != nil {
			return err
		}
		if info.Description != "" {
			if _, err := fmt.Fprintf(p.out, "    %s\n", info.Description); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderSummary prints the overall trailer for a run.
func (p *PrettyRenderer) RenderSummary(summary harness.Summary) error {
	_, err := fmt.Fprintf(p.out, "SUMMARY: %d passed, %d failed, %d skipped (%s)\n",
		summary.Passed, summary.Failed, summary.SkippedSections, formatDuration(summary.Duration))
	return err
}

// RenderViolations prints gate violations, one line each.
func (p *PrettyRenderer) RenderViolations(violations []gate.Violation) error {
	for _, v := range violations {
		line := fmt.Sprintf("gate failed for %s: %s", v.SectionID, v.Expression)
		if v.Reason != "" {
			line += " (" + v.Reason + ")"
		}
		if _, err := fmt.Fprintln(p.out, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderStats prints aggregate totals across recorded runs.
func (p *PrettyRenderer) RenderStats(totals harness.Totals) error {
	lines := []string{
		fmt.Sprintf("Total checks: %d", totals.Total),
		fmt.Sprintf("Passed: %d", totals.Passed),
		fmt.Sprintf("Failed: %d", totals.Failed),
		fmt.Sprintf("Success rate: %.1f%%", totals.SuccessRate()),
		fmt.Sprintf("Total time: %s", formatDuration(totals.TotalDuration)),
		fmt.Sprintf("Average time: %s", formatDuration(totals.AverageDuration)),
	}
	_, err := fmt.Fprintln(p.out, strings.Join(lines, "\n"))
	return err
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Truncate(time.Millisecond).String()
}
