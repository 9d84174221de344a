package harness

import (
	"sync"
	"time"
)

// Aggregator collects every check result produced across runs until cleared.
// It grows without bound; callers decide when to Clear.
type Aggregator struct {
	mu      sync.Mutex
	results []CheckResult
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record appends a result. Results are never deduplicated.
func (a *Aggregator) Record(res CheckResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, res)
}

// Clear drops all recorded results.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = nil
}

// Results returns a copy of all recorded results in record order.
func (a *Aggregator) Results() []CheckResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]CheckResult{}, a.results...)
}

// Totals holds aggregate counts folded over recorded results. All fields are
// derived; the aggregator keeps no separate counters that could drift.
type Totals struct {
	Total             int           `json:"total"`
	Passed            int           `json:"passed"`
	Failed            int           `json:"failed"`
	TotalDuration     time.Duration `json:"-"`
	TotalDurationMS   int64         `json:"total_duration_ms"`
	AverageDuration   time.Duration `json:"-"`
	AverageDurationMS int64         `json:"average_duration_ms"`
}

// SuccessRate returns the percentage of passing results, 0 when empty.
func (t Totals) SuccessRate() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Passed) * 100.0 / float64(t.Total)
}

// Totals folds the recorded results into aggregate counts.
func (a *Aggregator) Totals() Totals {
	a.mu.Lock()
	defer a.mu.Unlock()

	t := Totals{Total: len(a.results)}
	for _, res := range a.results {
		if res.Passed {
			t.Passed++
		} else {
			t.Failed++
		}
		t.TotalDuration += res.Duration
	}
	if t.Total > 0 {
		t.AverageDuration = t.TotalDuration / time.Duration(t.Total)
	}
	t.TotalDurationMS = t.TotalDuration.Milliseconds()
	t.AverageDurationMS = t.AverageDuration.Milliseconds()
	return t
}

// HasFailures reports whether any recorded result failed.
func (a *Aggregator) HasFailures() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, res := range a.results {
		if !res.Passed {
			return true
		}
	}
	return false
}
