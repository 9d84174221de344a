package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/benchrig/rigcheck/internal/harness"
)

func openTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), opts)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func sampleReports() []harness.SectionReport {
	return []harness.SectionReport{
		{
			SectionID: "gpio-basic",
			Status:    harness.StatusFailed,
			Results: []harness.CheckResult{
				{Name: "direction flip", Passed: true, DurationMS: 10},
				{Name: "pull latch", Passed: false, Message: "stuck", DurationMS: 30},
			},
			Passed: 1,
			Failed: 1,
		},
		{SectionID: "pwm-basic", Status: harness.StatusSkipped},
	}
}

func TestRecordRunAndTotals(t *testing.T) {
	store := openTestStore(t, Options{})
	ctx := context.Background()

	runID, err := store.RecordRun(ctx, "all", time.Now(), sampleReports())
	if err != nil {
		t.Fatalf("record run: %v", err)
	}
	if runID == 0 {
		t.Fatalf("expected run id assigned")
	}

	totals, err := store.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Total != 2 || totals.Passed != 1 || totals.Failed != 1 {
		t.Fatalf("totals mismatch: %+v", totals)
	}
	if totals.TotalDurationMS != 40 {
		t.Fatalf("expected 40ms recorded, got %d", totals.TotalDurationMS)
	}
	if totals.AverageDurationMS != 20 {
		t.Fatalf("expected 20ms average, got %d", totals.AverageDurationMS)
	}
}

func TestTotalsAccumulateAcrossRuns(t *testing.T) {
	store := openTestStore(t, Options{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.RecordRun(ctx, "gpio-basic", time.Now(), sampleReports()); err != nil {
			t.Fatalf("record run %d: %v", i, err)
		}
	}

	totals, err := store.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Total != 6 {
		t.Fatalf("expected 6 results across runs, got %d", totals.Total)
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t, Options{})
	ctx := context.Background()

	if _, err := store.RecordRun(ctx, "all", time.Now(), sampleReports()); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	totals, err := store.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Total != 0 {
		t.Fatalf("expected empty totals after clear, got %+v", totals)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs after clear, got %d", len(runs))
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := openTestStore(t, Options{})
	ctx := context.Background()

	if _, err := store.RecordRun(ctx, "first", time.Now(), sampleReports()); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if _, err := store.RecordRun(ctx, "second", time.Now(), sampleReports()); err != nil {
		t.Fatalf("record second: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Request != "second" || runs[1].Request != "first" {
		t.Fatalf("expected newest first, got %v", runs)
	}
	if runs[0].Total != 2 || runs[0].Passed != 1 || runs[0].Failed != 1 {
		t.Fatalf("per-run aggregates mismatch: %+v", runs[0])
	}
}

func TestRunRetention(t *testing.T) {
	store := openTestStore(t, Options{RunRetention: 2})
	ctx := context.Background()

	for _, req := range []string{"one", "two", "three"} {
		if _, err := store.RecordRun(ctx, req, time.Now(), sampleReports()); err != nil {
			t.Fatalf("record %s: %v", req, err)
		}
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected retention to keep 2 runs, got %d", len(runs))
	}
	if runs[0].Request != "three" || runs[1].Request != "two" {
		t.Fatalf("expected oldest pruned, got %v", runs)
	}

	totals, err := store.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Total != 4 {
		t.Fatalf("pruned run results must not count, got %d", totals.Total)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("", Options{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
