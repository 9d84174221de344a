package main

import (
	"fmt"

	"github.com/benchrig/rigcheck/internal/config"
	"github.com/spf13/cobra"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	if flags.Changed("probe-root") {
		v, err := flags.GetString("probe-root")
		if err != nil {
			return values, fmt.Errorf("parse --probe-root: %w", err)
		}
		values.ProbeRoot = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("format") {
		v, err := flags.GetString("format")
		if err != nil {
			return values, fmt.Errorf("parse --format: %w", err)
		}
		values.Format = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("verbose") {
		v, err := flags.GetBool("verbose")
		if err != nil {
			return values, fmt.Errorf("parse --verbose: %w", err)
		}
		values.Verbose = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("stop-on-failure") {
		v, err := flags.GetBool("stop-on-failure")
		if err != nil {
			return values, fmt.Errorf("parse --stop-on-failure: %w", err)
		}
		values.StopOnFailure = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("report") {
		v, err := flags.GetString("report")
		if err != nil {
			return values, fmt.Errorf("parse --report: %w", err)
		}
		values.ReportFile = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("history") {
		v, err := flags.GetString("history")
		if err != nil {
			return values, fmt.Errorf("parse --history: %w", err)
		}
		values.HistoryPath = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("only-check") {
		v, err := flags.GetStringArray("only-check")
		if err != nil {
			return values, fmt.Errorf("parse --only-check: %w", err)
		}
		values.OnlyChecks = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("skip-check") {
		v, err := flags.GetStringArray("skip-check")
		if err != nil {
			return values, fmt.Errorf("parse --skip-check: %w", err)
		}
		values.SkipChecks = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("addr") {
		v, err := flags.GetString("addr")
		if err != nil {
			return values, fmt.Errorf("parse --addr: %w", err)
		}
		values.ServeAddr = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("schedule") {
		v, err := flags.GetString("schedule")
		if err != nil {
			return values, fmt.Errorf("parse --schedule: %w", err)
		}
		values.Schedule = config.StringFlag{Value: v, Set: true}
	}

	return values, nil
}
