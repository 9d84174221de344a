package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rigcheck",
		Short:         "Rigcheck verifies bench rig peripherals from the host side",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.String("probe-root", "", "filesystem root the suites probe (default /)")
	persistent.String("format", "pretty", "output format (pretty|json)")
	persistent.BoolP("verbose", "v", false, "show passing-check messages and debug logs")
	persistent.Bool("stop-on-failure", false, "stop after the first failed section")
	persistent.String("report", "", "write the rendered run report to this file")
	persistent.String("history", "", "run history database path")
	persistent.StringArray("only-check", nil, "include only matching checks")
	persistent.StringArray("skip-check", nil, "exclude matching checks")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newEnabledCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newEnableCmd())
	cmd.AddCommand(newDisableCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newClearCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
