package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benchrig/rigcheck/internal/config"
)

func newEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <section-id>...",
		Short: "Enable sections and persist the change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleSections(cmd, args, true)
		},
	}
}

func newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <section-id>...",
		Short: "Disable sections and persist the change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleSections(cmd, args, false)
		},
	}
}

// toggleSections flips enablement for the named sections and persists the
// result into the config file. Unknown ids are silently ignored, so a stale
// script cannot fail the bench.
func toggleSections(cmd *cobra.Command, args []string, enabled bool) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	word := "disabled"
	if enabled {
		word = "enabled"
	}

	update := map[string]bool{}
	for _, id := range args {
		var known bool
		if enabled {
			known = reg.Enable(id)
		} else {
			known = reg.Disable(id)
		}
		if !known {
			continue
		}
		update[id] = enabled
		fmt.Fprintf(cmd.OutOrStdout(), "Section %s %s\n", id, word)
	}

	return config.UpdateSections(root, update)
}
