package output

import (
	"encoding/json"
	"io"

	"github.com/benchrig/rigcheck/internal/gate"
	"github.com/benchrig/rigcheck/internal/harness"
)

// JSONRenderer emits structured execution data.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// Report captures the JSON output schema shared by run, list and stats, and
// by the report file written after a run.
type Report struct {
	Sections   []SectionInfo           `json:"sections,omitempty"`
	Reports    []harness.SectionReport `json:"reports,omitempty"`
	Summary    *harness.Summary        `json:"summary,omitempty"`
	Totals     *harness.Totals         `json:"totals,omitempty"`
	Violations []gate.Violation        `json:"gate_violations,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
}

// Render encodes the report as indented JSON.
func (j *JSONRenderer) Render(report Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
