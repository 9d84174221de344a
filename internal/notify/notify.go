// Package notify delivers completed run outcomes to external sinks.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benchrig/rigcheck/internal/harness"
)

// Event describes one completed run.
type Event struct {
	Rig       string    `json:"rig"`
	Request   string    `json:"request"`
	StartedAt time.Time `json:"started_at"`

	Summary harness.Summary         `json:"summary"`
	Reports []harness.SectionReport `json:"reports,omitempty"`
}

// Failed reports whether any check in the run failed.
func (e Event) Failed() bool { return e.Summary.Failed > 0 }

// Status returns the overall run status for subject lines.
func (e Event) Status() string {
	if e.Failed() {
		return harness.StatusFailed
	}
	return harness.StatusPassed
}

// Notifier delivers one event to one sink.
type Notifier interface {
	ID() string
	Notify(ctx context.Context, event Event) error
}

// renderBody produces the plain-text run digest shared by text sinks.
func renderBody(event Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bench run %s on %s (%s)\n\n", event.Status(), event.Rig, event.Request)
	for _, rep := range event.Reports {
		if rep.Status == harness.StatusSkipped {
			fmt.Fprintf(&b, "%-14s skipped\n", rep.SectionID)
			continue
		}
		fmt.Fprintf(&b, "%-14s %s  %d/%d passed\n", rep.SectionID, rep.Status, rep.Passed, rep.Total())
		for _, res := range rep.Results {
			if !res.Passed {
				fmt.Fprintf(&b, "  FAIL %s: %s\n", res.Name, res.Message)
			}
		}
	}
	fmt.Fprintf(&b, "\n%d checks, %d failed, %s total\n",
		event.Summary.TotalChecks, event.Summary.Failed, event.Summary.Duration.Round(time.Millisecond))
	return b.String()
}
