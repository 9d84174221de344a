package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/benchrig/rigcheck/internal/config"
	"github.com/benchrig/rigcheck/internal/filter"
	"github.com/benchrig/rigcheck/internal/gate"
	"github.com/benchrig/rigcheck/internal/harness"
	"github.com/benchrig/rigcheck/internal/output"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [section-id...]",
		Short: "Run bench check sections",
		Long:  "Run the named sections in the given order, or every enabled section when none are named.",
		RunE:  runExecute,
	}
}

func runExecute(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)

	if cfg.MinKernel != "" {
		if warn := kernelWarning(cfg.MinKernel); warn != "" {
			log.Warnf("%s", warn)
		}
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	gates, err := gate.Compile(cfg.Gates)
	if err != nil {
		return err
	}

	req := harness.AllEnabled()
	switch {
	case len(args) == 1:
		req = harness.Single(args[0])
	case len(args) > 1:
		req = harness.Explicit(args...)
	}

	sections, err := reg.ResolveRunSet(req)
	if err != nil {
		return err
	}

	onlyPatterns, err := filter.Compile(cfg.OnlyChecks)
	if err != nil {
		return err
	}
	skipPatterns, err := filter.Compile(cfg.SkipChecks)
	if err != nil {
		return err
	}
	sections = filter.Sections(sections, onlyPatterns, skipPatterns)

	if len(sections) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching sections or checks")
		return nil
	}

	runOpts := harness.Options{
		Aggregator:    harness.NewAggregator(),
		StopOnFailure: cfg.StopOnFailure,
	}

	var pretty *output.PrettyRenderer
	format := strings.ToLower(cfg.Format)
	switch format {
	case config.FormatPretty:
		pretty = output.NewPretty(cmd.OutOrStdout(), cfg.Verbose)
		runOpts.Progress = pretty
	case config.FormatJSON:
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}

	started := time.Now()
	reports, summary, err := harness.New(runOpts).RunSections(cmd.Context(), reg, sections)
	if err != nil {
		return err
	}

	violations := gates.Check(reports)
	if gates.Failed(reports, violations) {
		summary.ExitCode = 1
	} else {
		summary.ExitCode = 0
	}

	switch format {
	case config.FormatPretty:
		if err := pretty.RenderSummary(summary); err != nil {
			return err
		}
		if err := pretty.RenderViolations(violations); err != nil {
			return err
		}
	case config.FormatJSON:
		doc := output.Report{Reports: reports, Summary: &summary, Violations: violations}
		if err := output.NewJSON(cmd.OutOrStdout()).Render(doc); err != nil {
			return err
		}
	}

	if store := openHistory(root, cfg, log); store != nil {
		defer store.Close()
		if _, err := store.RecordRun(cmd.Context(), req.String(), started, reports); err != nil {
			log.Warnf("record run: %v", err)
		}
	}

	if cfg.ReportFile != "" {
		if err := writeReportFile(root, cfg, reports, summary, violations); err != nil {
			return err
		}
	}

	if summary.ExitCode != 0 {
		return fmt.Errorf("one or more checks failed")
	}
	return nil
}

// writeReportFile renders the finished run again, to a file, regardless of
// the terminal format.
func writeReportFile(root string, cfg config.Config, reports []harness.SectionReport, summary harness.Summary, violations []gate.Violation) error {
	buf := &bytes.Buffer{}
	renderer := output.NewPretty(buf, cfg.Verbose)
	if err := renderer.RenderReports(reports); err != nil {
		return err
	}
	if err := renderer.RenderSummary(summary); err != nil {
		return err
	}
	if err := renderer.RenderViolations(violations); err != nil {
		return err
	}

	path := cfg.ReportFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report %q: %w", path, err)
	}
	return nil
}
