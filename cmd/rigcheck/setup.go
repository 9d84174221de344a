package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/benchrig/rigcheck/internal/config"
	"github.com/benchrig/rigcheck/internal/harness"
	"github.com/benchrig/rigcheck/internal/history"
	"github.com/benchrig/rigcheck/internal/probe"
	"github.com/benchrig/rigcheck/internal/suite"
	"github.com/benchrig/rigcheck/internal/version"
)

func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	root, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("determine working directory: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return config.Config{}, "", err
	}

	flags, err := gatherFlags(cmd)
	if err != nil {
		return config.Config{}, "", err
	}
	config.ApplyFlags(&cfg, flags)

	return cfg, root, nil
}

// newLogger builds the diagnostics logger. Report output goes to stdout via
// the renderers; everything else goes through logrus on stderr.
func newLogger(cmd *cobra.Command, cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// buildRegistry registers the built-in suites against the configured probe
// root, then applies persisted enablement and timeout overrides. Unknown
// section ids in the overrides are ignored.
func buildRegistry(cfg config.Config) (*harness.Registry, error) {
	reg := harness.NewRegistry()
	params := suite.Params{
		Prober:         probe.New(cfg.ProbeRoot),
		Options:        cfg.Suites,
		DefaultTimeout: cfg.DefaultTimeout(),
	}
	if err := suite.Register(reg, params); err != nil {
		return nil, err
	}

	for id, enabled := range cfg.Sections {
		if enabled {
			reg.Enable(id)
		} else {
			reg.Disable(id)
		}
	}
	for id, secs := range cfg.Timeouts {
		sec, err := reg.Get(id)
		if err != nil {
			continue
		}
		sec.SetTimeout(time.Duration(secs) * time.Second)
	}

	return reg, nil
}

func historyPath(root string, cfg config.Config) string {
	if cfg.HistoryPath == "" || filepath.IsAbs(cfg.HistoryPath) {
		return cfg.HistoryPath
	}
	return filepath.Join(root, cfg.HistoryPath)
}

// openHistory opens the run history store, tolerating failure: a run must
// not die because the stats db is unavailable.
func openHistory(root string, cfg config.Config, log *logrus.Logger) *history.Store {
	path := historyPath(root, cfg)
	if path == "" {
		return nil
	}
	store, err := history.Open(path, history.Options{})
	if err != nil {
		log.Warnf("history unavailable: %v", err)
		return nil
	}
	return store
}

func kernelWarning(required string) string {
	info, err := version.DetectKernel()
	if err != nil {
		if version.Missing(err) {
			return fmt.Sprintf("uname not found; cannot verify kernel >= %s", required)
		}
		return fmt.Sprintf("unable to detect kernel version: %v", err)
	}
	if !version.AtLeast(required, info.Version) {
		return fmt.Sprintf("kernel %s is older than required %s; sysfs probes may misreport", info.Version, required)
	}
	return ""
}
