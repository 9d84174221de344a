package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benchrig/rigcheck/internal/config"
	"github.com/benchrig/rigcheck/internal/history"
	"github.com/benchrig/rigcheck/internal/output"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate check statistics across recorded runs",
		RunE:  runStats,
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the recorded run history",
		RunE:  runClear,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := history.Open(historyPath(root, cfg), history.Options{})
	if err != nil {
		return err
	}
	defer store.Close()

	totals, err := store.Totals(cmd.Context())
	if err != nil {
		return err
	}

	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		return output.NewPretty(cmd.OutOrStdout(), cfg.Verbose).RenderStats(totals)
	case config.FormatJSON:
		return output.NewJSON(cmd.OutOrStdout()).Render(output.Report{Totals: &totals})
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := history.Open(historyPath(root, cfg), history.Options{})
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
	return nil
}
