package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/benchrig/rigcheck/internal/output"
)

func TestRunSingleSectionPasses(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := runRigcheck(t, "run", "pio-program")
	if err != nil {
		t.Fatalf("command execute: %v", err)
	}

	if !strings.Contains(out, "=== PIO Program Descriptors (pio-program) ===") {
		t.Fatalf("expected section header, got:\n%s", out)
	}
	if !strings.Contains(out, "Running check 1/4: programs fit instruction memory ... PASS") {
		t.Fatalf("expected check progress, got:\n%s", out)
	}
	if !strings.Contains(out, "SUMMARY: 4 passed, 0 failed, 0 skipped") {
		t.Fatalf("expected clean summary, got:\n%s", out)
	}
}

func TestRunFailureSetsExitError(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := runRigcheck(t, "run", "gpio-basic", "--probe-root", t.TempDir())
	if err == nil {
		t.Fatal("expected a non-nil error for a failing run")
	}
	if err.Error() != "one or more checks failed" {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "FAIL") {
		t.Fatalf("expected failing checks, got:\n%s", out)
	}
	if !strings.Contains(out, "SUMMARY: 0 passed, 4 failed, 0 skipped") {
		t.Fatalf("expected failure summary, got:\n%s", out)
	}
}

func TestRunJSONDocument(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := runRigcheck(t, "run", "pio-fifo", "--format", "json")
	if err != nil {
		t.Fatalf("command execute: %v", err)
	}

	var doc output.Report
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Reports) != 1 || doc.Reports[0].SectionID != "pio-fifo" {
		t.Fatalf("unexpected reports: %+v", doc.Reports)
	}
	if len(doc.Reports[0].Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(doc.Reports[0].Results))
	}
	if doc.Summary == nil || doc.Summary.ExitCode != 0 {
		t.Fatalf("expected clean summary, got %+v", doc.Summary)
	}
}

func TestRunWritesReportFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if _, err := runRigcheck(t, "run", "pio-program", "--report", "out.txt"); err != nil {
		t.Fatalf("command execute: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "SUMMARY: 4 passed, 0 failed, 0 skipped") {
		t.Fatalf("expected rendered report, got:\n%s", data)
	}
}

func TestRunRecordsHistoryAndStats(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := runRigcheck(t, "run", "pio-program"); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, err := runRigcheck(t, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "Total checks: 4") || !strings.Contains(out, "Passed: 4") {
		t.Fatalf("expected recorded totals, got:\n%s", out)
	}

	out, err = runRigcheck(t, "clear")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !strings.Contains(out, "History cleared") {
		t.Fatalf("expected confirmation, got:\n%s", out)
	}

	out, err = runRigcheck(t, "stats")
	if err != nil {
		t.Fatalf("stats after clear: %v", err)
	}
	if !strings.Contains(out, "Total checks: 0") {
		t.Fatalf("expected empty totals, got:\n%s", out)
	}
}

func TestRunGateAbsorbsFailures(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "gates:\n  gpio-basic: \"success_rate >= 0\"\n")
	chdir(t, dir)

	out, err := runRigcheck(t, "run", "gpio-basic", "--probe-root", t.TempDir())
	if err != nil {
		t.Fatalf("satisfied gate must absorb check failures, got: %v", err)
	}
	if !strings.Contains(out, "FAIL") {
		t.Fatalf("expected failing checks in output, got:\n%s", out)
	}
	if strings.Contains(out, "gate failed") {
		t.Fatalf("gate should be satisfied, got:\n%s", out)
	}
}

func TestRunGateViolationFailsRun(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "gates:\n  pio-program: \"success_rate >= 101\"\n")
	chdir(t, dir)

	out, err := runRigcheck(t, "run", "pio-program")
	if err == nil {
		t.Fatal("expected violated gate to fail the run")
	}
	if !strings.Contains(out, "gate failed for pio-program: success_rate >= 101") {
		t.Fatalf("expected violation line, got:\n%s", out)
	}
}

func TestRunDisabledSectionSkips(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "sections:\n  pio-program: false\n")
	chdir(t, dir)

	out, err := runRigcheck(t, "run", "pio-program")
	if err != nil {
		t.Fatalf("skipped run must not error: %v", err)
	}
	if !strings.Contains(out, "Section pio-program is disabled, skipping") {
		t.Fatalf("expected skip marker, got:\n%s", out)
	}
	if !strings.Contains(out, "SUMMARY: 0 passed, 0 failed, 1 skipped") {
		t.Fatalf("expected skip summary, got:\n%s", out)
	}
}

func TestRunStopOnFailure(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := runRigcheck(t, "run", "gpio-basic", "pio-program", "--probe-root", t.TempDir(), "--stop-on-failure")
	if err == nil {
		t.Fatal("expected a non-nil error for a failing run")
	}
	if !strings.Contains(out, "(gpio-basic)") {
		t.Fatalf("expected the failing section to run, got:\n%s", out)
	}
	if strings.Contains(out, "pio-program") {
		t.Fatalf("later sections must not run after a failure, got:\n%s", out)
	}
}

func TestRunOnlyCheckFilter(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := runRigcheck(t, "run", "pio-program", "--only-check", "wrap")
	if err != nil {
		t.Fatalf("command execute: %v", err)
	}
	if !strings.Contains(out, "Running check 1/1: wrap bounds ordered ... PASS") {
		t.Fatalf("expected the single filtered check, got:\n%s", out)
	}
	if !strings.Contains(out, "SUMMARY: 1 passed, 0 failed, 0 skipped") {
		t.Fatalf("expected filtered summary, got:\n%s", out)
	}
}

func TestRunNoMatchingChecks(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := runRigcheck(t, "run", "pio-program", "--only-check", "zzz")
	if err != nil {
		t.Fatalf("command execute: %v", err)
	}
	if !strings.Contains(out, "No matching sections or checks") {
		t.Fatalf("expected empty-run notice, got:\n%s", out)
	}
}

func TestRunUnknownSection(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := runRigcheck(t, "run", "warp-core"); err == nil {
		t.Fatal("expected an error for an unknown section id")
	}
}

func TestConfigFormatApplied(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "format: json\n")
	chdir(t, dir)

	out, err := runRigcheck(t, "list")
	if err != nil {
		t.Fatalf("command execute: %v", err)
	}
	var doc output.Report
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("config format should switch list to json: %v\n%s", err, out)
	}
}

func TestRunWarnsOnOldKernelRequirement(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("kernel detection requires uname")
	}
	dir := t.TempDir()
	writeConfig(t, dir, "min_kernel: \"999.0\"\n")
	chdir(t, dir)

	out, err := runRigcheck(t, "run", "pio-program")
	if err != nil {
		t.Fatalf("command execute: %v", err)
	}
	if !strings.Contains(out, "older than required 999.0") {
		t.Fatalf("expected kernel warning, got:\n%s", out)
	}
}
