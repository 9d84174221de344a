package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benchrig/rigcheck/internal/config"
	"github.com/benchrig/rigcheck/internal/output"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered sections",
		RunE:  runList,
	}
}

func newEnabledCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enabled",
		Short: "List enabled sections with descriptions and timeouts",
		RunE:  runEnabled,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	infos := output.Sections(reg)
	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		return output.NewPretty(cmd.OutOrStdout(), cfg.Verbose).RenderList(infos)
	case config.FormatJSON:
		return output.NewJSON(cmd.OutOrStdout()).Render(output.Report{Sections: infos})
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
}

func runEnabled(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	infos := output.Sections(reg)
	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		return output.NewPretty(cmd.OutOrStdout(), cfg.Verbose).RenderEnabled(infos)
	case config.FormatJSON:
		enabled := make([]output.SectionInfo, 0, len(infos))
		for _, info := range infos {
			if info.Enabled {
				enabled = append(enabled, info)
			}
		}
		return output.NewJSON(cmd.OutOrStdout()).Render(output.Report{Sections: enabled})
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
}
