package gate

import (
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/benchrig/rigcheck/internal/harness"
)

// Gate is a compiled acceptance expression for one section. Expressions see
// the variables total, passed, failed, success_rate, duration_ms and skipped,
// e.g. "success_rate >= 90 && duration_ms < 5000".
type Gate struct {
	SectionID  string
	Expression string
	expr       *govaluate.EvaluableExpression
}

// New compiles a gate expression for the given section id.
func New(sectionID, expression string) (Gate, error) {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return Gate{}, fmt.Errorf("gate for %q: parse expression %q: %w", sectionID, expression, err)
	}
	return Gate{SectionID: sectionID, Expression: expression, expr: expr}, nil
}

// Evaluate applies the gate to a section report. A non-boolean expression
// result is an error.
func (g Gate) Evaluate(rep harness.SectionReport) (bool, error) {
	value, err := g.expr.Evaluate(reportVars(rep))
	if err != nil {
		return false, fmt.Errorf("gate for %q: evaluate: %w", g.SectionID, err)
	}
	ok, isBool := value.(bool)
	if !isBool {
		return false, fmt.Errorf("gate for %q: expression %q is not boolean", g.SectionID, g.Expression)
	}
	return ok, nil
}

func reportVars(rep harness.SectionReport) map[string]any {
	return map[string]any{
		"total":        float64(rep.Total()),
		"passed":       float64(rep.Passed),
		"failed":       float64(rep.Failed),
		"success_rate": rep.SuccessRate(),
		"duration_ms":  float64(rep.DurationMS),
		"skipped":      rep.Status == harness.StatusSkipped,
	}
}

// Set holds compiled gates keyed by section id.
type Set map[string]Gate

// Compile builds a Set from raw expressions keyed by section id.
func Compile(exprs map[string]string) (Set, error) {
	set := make(Set, len(exprs))
	for id, expression := range exprs {
		g, err := New(id, expression)
		if err != nil {
			return nil, err
		}
		set[id] = g
	}
	return set, nil
}

// Violation records a section whose report did not satisfy its gate.
type Violation struct {
	SectionID  string `json:"section_id"`
	Expression string `json:"expression"`
	Reason     string `json:"reason,omitempty"`
}

// Failed reports whether the run fails once gates are applied. A gated
// section fails only when its gate is violated, so a satisfied gate can
// absorb individual check failures; ungated sections fail on any failed
// check.
func (s Set) Failed(reports []harness.SectionReport, violations []Violation) bool {
	if len(violations) > 0 {
		return true
	}
	for _, rep := range reports {
		if _, gated := s[rep.SectionID]; gated {
			continue
		}
		if rep.Status == harness.StatusFailed {
			return true
		}
	}
	return false
}

// Check evaluates every gate against its matching report. Sections without a
// gate pass; evaluation errors fail closed and surface in the reason.
func (s Set) Check(reports []harness.SectionReport) []Violation {
	if len(s) == 0 {
		return nil
	}
	var violations []Violation
	for _, rep := range reports {
		g, ok := s[rep.SectionID]
		if !ok {
			continue
		}
		passed, err := g.Evaluate(rep)
		if err != nil {
			violations = append(violations, Violation{SectionID: rep.SectionID, Expression: g.Expression, Reason: err.Error()})
			continue
		}
		if !passed {
			violations = append(violations, Violation{SectionID: rep.SectionID, Expression: g.Expression})
		}
	}
	return violations
}
