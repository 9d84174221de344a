package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/benchrig/rigcheck/internal/harness"
)

// handleMetrics writes Prometheus-formatted metrics for the most recent run
// and the session aggregate.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")

	w.Write([]byte("# HELP rigcheck_section_checks_passed Passing checks in the section's last run.\n"))
	w.Write([]byte("# TYPE rigcheck_section_checks_passed gauge\n"))
	w.Write([]byte("# HELP rigcheck_section_checks_failed Failing checks in the section's last run.\n"))
	w.Write([]byte("# TYPE rigcheck_section_checks_failed gauge\n"))
	w.Write([]byte("# HELP rigcheck_section_duration_ms Wall time of the section's last run.\n"))
	w.Write([]byte("# TYPE rigcheck_section_duration_ms gauge\n"))
	w.Write([]byte("# HELP rigcheck_section_skipped Whether the section was skipped as disabled (1=skipped).\n"))
	w.Write([]byte("# TYPE rigcheck_section_skipped gauge\n"))

	reports, summary, _ := s.snapshot()
	for _, rep := range reports {
		name := sanitizeLabel(rep.SectionID)
		skipped := 0
		if rep.Status == harness.StatusSkipped {
			skipped = 1
		}
		w.Write(fmt.Appendf([]byte{},
			"rigcheck_section_checks_passed{section=\"%s\"} %d\n", name, rep.Passed))
		w.Write(fmt.Appendf([]byte{},
			"rigcheck_section_checks_failed{section=\"%s\"} %d\n", name, rep.Failed))
		w.Write(fmt.Appendf([]byte{},
			"rigcheck_section_duration_ms{section=\"%s\"} %d\n", name, rep.DurationMS))
		w.Write(fmt.Appendf([]byte{},
			"rigcheck_section_skipped{section=\"%s\"} %d\n", name, skipped))
	}

	if summary != nil {
		w.Write([]byte("# HELP rigcheck_last_run_failed Whether the last run failed (1=failed).\n"))
		w.Write([]byte("# TYPE rigcheck_last_run_failed gauge\n"))
		failed := 0
		if summary.ExitCode != 0 {
			failed = 1
		}
		w.Write(fmt.Appendf([]byte{}, "rigcheck_last_run_failed %d\n", failed))
	}

	totals := s.agg.Totals()
	w.Write([]byte("# HELP rigcheck_session_checks_total Checks executed since the agent started.\n"))
	w.Write([]byte("# TYPE rigcheck_session_checks_total counter\n"))
	w.Write(fmt.Appendf([]byte{}, "rigcheck_session_checks_total %d\n", totals.Total))
	w.Write([]byte("# HELP rigcheck_session_checks_failed_total Failed checks since the agent started.\n"))
	w.Write([]byte("# TYPE rigcheck_session_checks_failed_total counter\n"))
	w.Write(fmt.Appendf([]byte{}, "rigcheck_session_checks_failed_total %d\n", totals.Failed))
}

// sanitizeLabel escapes the characters the Prometheus exposition format does
// not allow raw inside label values.
func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
