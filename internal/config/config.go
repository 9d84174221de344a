package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the per-rig configuration file looked up in the working
// directory.
const FileName = ".rigcheck.yml"

const (
	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"
)

// Config captures CLI options sourced from the config file or flags.
type Config struct {
	ProbeRoot string `yaml:"probe_root,omitempty"`
	Format    string `yaml:"format,omitempty"`
	Verbose   bool   `yaml:"verbose,omitempty"`

	StopOnFailure         bool   `yaml:"stop_on_failure,omitempty"`
	ReportFile            string `yaml:"report_file,omitempty"`
	DefaultTimeoutSeconds int    `yaml:"default_timeout_seconds,omitempty"`

	OnlyChecks []string `yaml:"only_check,omitempty"`
	SkipChecks []string `yaml:"skip_check,omitempty"`

	// MinKernel, when set, warns at run start if the host kernel's
	// major.minor is older. Suites probe sysfs paths that moved across
	// kernel lines.
	MinKernel string `yaml:"min_kernel,omitempty"`

	// Sections holds persisted enablement overrides applied after suite
	// registration: id -> enabled.
	Sections map[string]bool `yaml:"sections,omitempty"`

	// Timeouts holds per-section advisory budget overrides in seconds.
	Timeouts map[string]int `yaml:"timeouts,omitempty"`

	// Gates holds per-section acceptance expressions: id -> expression.
	Gates map[string]string `yaml:"gates,omitempty"`

	// Suites holds per-suite option maps decoded by each suite.
	Suites map[string]map[string]any `yaml:"suites,omitempty"`

	HistoryPath string `yaml:"history_path,omitempty"`

	Serve  ServeConfig  `yaml:"serve,omitempty"`
	Notify NotifyConfig `yaml:"notify,omitempty"`
}

// ServeConfig controls the long-running bench service.
type ServeConfig struct {
	Addr             string   `yaml:"addr,omitempty"`
	Schedule         string   `yaml:"schedule,omitempty"`
	ScheduleSections []string `yaml:"schedule_sections,omitempty"`
}

// NotifyConfig selects where run outcomes are delivered.
type NotifyConfig struct {
	OnlyOnFailure bool           `yaml:"only_on_failure,omitempty"`
	Email         *EmailConfig   `yaml:"email,omitempty"`
	Webhook       *WebhookConfig `yaml:"webhook,omitempty"`
}

// EmailConfig carries SMTP delivery settings.
type EmailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// WebhookConfig posts run summaries to an HTTP endpoint.
type WebhookConfig struct {
	URL string `yaml:"url"`
}

// Default returns the baseline configuration used when no flags or config
// file specify values.
func Default() Config {
	return Config{
		ProbeRoot:             "/",
		Format:                FormatPretty,
		DefaultTimeoutSeconds: 30,
		HistoryPath:           filepath.Join(".rigcheck", "history.db"),
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// DefaultTimeout returns the advisory per-section time budget.
func (c Config) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutSeconds) * time.Second
}

// Load reads .rigcheck.yml from root when present. Missing files are ignored.
func Load(root string) (Config, error) {
	cfg := Default()
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	cfg = merge(cfg, fileCfg)
	return cfg, nil
}

func merge(base, override Config) Config {
	out := base

	if override.ProbeRoot != "" {
		out.ProbeRoot = override.ProbeRoot
	}
	if override.Format != "" {
		out.Format = override.Format
	}
	if override.Verbose {
		out.Verbose = true
	}
	if override.StopOnFailure {
		out.StopOnFailure = true
	}
	if override.ReportFile != "" {
		out.ReportFile = override.ReportFile
	}
	if override.DefaultTimeoutSeconds > 0 {
		out.DefaultTimeoutSeconds = override.DefaultTimeoutSeconds
	}
	if len(override.OnlyChecks) > 0 {
		out.OnlyChecks = append([]string{}, override.OnlyChecks...)
	}
	if len(override.SkipChecks) > 0 {
		out.SkipChecks = append([]string{}, override.SkipChecks...)
	}
	if override.MinKernel != "" {
		out.MinKernel = override.MinKernel
	}
	if len(override.Sections) > 0 {
		out.Sections = make(map[string]bool, len(override.Sections))
		for id, enabled := range override.Sections {
			out.Sections[id] = enabled
		}
	}
	if len(override.Timeouts) > 0 {
		out.Timeouts = make(map[string]int, len(override.Timeouts))
		for id, secs := range override.Timeouts {
			out.Timeouts[id] = secs
		}
	}
	if len(override.Gates) > 0 {
		out.Gates = make(map[string]string, len(override.Gates))
		for id, expr := range override.Gates {
			out.Gates[id] = expr
		}
	}
	if len(override.Suites) > 0 {
		out.Suites = override.Suites
	}
	if override.HistoryPath != "" {
		out.HistoryPath = override.HistoryPath
	}
	if override.Serve.Addr != "" {
		out.Serve.Addr = override.Serve.Addr
	}
	if override.Serve.Schedule != "" {
		out.Serve.Schedule = override.Serve.Schedule
	}
	if len(override.Serve.ScheduleSections) > 0 {
		out.Serve.ScheduleSections = append([]string{}, override.Serve.ScheduleSections...)
	}
	if override.Notify.OnlyOnFailure {
		out.Notify.OnlyOnFailure = true
	}
	if override.Notify.Email != nil {
		out.Notify.Email = override.Notify.Email
	}
	if override.Notify.Webhook != nil {
		out.Notify.Webhook = override.Notify.Webhook
	}

	return out
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are
// present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.ProbeRoot.Set {
		cfg.ProbeRoot = flags.ProbeRoot.Value
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
	if flags.Verbose.Set {
		cfg.Verbose = flags.Verbose.Value
	}
	if flags.StopOnFailure.Set {
		cfg.StopOnFailure = flags.StopOnFailure.Value
	}
	if flags.ReportFile.Set {
		cfg.ReportFile = flags.ReportFile.Value
	}
	if flags.HistoryPath.Set {
		cfg.HistoryPath = flags.HistoryPath.Value
	}
	if len(flags.OnlyChecks.Values) > 0 {
		cfg.OnlyChecks = append([]string{}, flags.OnlyChecks.Values...)
	}
	if len(flags.SkipChecks.Values) > 0 {
		cfg.SkipChecks = append([]string{}, flags.SkipChecks.Values...)
	}
	if flags.ServeAddr.Set {
		cfg.Serve.Addr = flags.ServeAddr.Value
	}
	if flags.Schedule.Set {
		cfg.Serve.Schedule = flags.Schedule.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was
// set explicitly.
type FlagValues struct {
	ProbeRoot     StringFlag
	Format        StringFlag
	Verbose       BoolFlag
	StopOnFailure BoolFlag
	ReportFile    StringFlag
	HistoryPath   StringFlag
	OnlyChecks    SliceFlag
	SkipChecks    SliceFlag
	ServeAddr     StringFlag
	Schedule      StringFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// SliceFlag represents a slice flag and whether it captured values via CLI.
type SliceFlag struct {
	Values []string
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}

// UpdateSections rewrites the sections block of the config file, preserving
// everything else in it. The file is created when missing so enable/disable
// survive across invocations.
func UpdateSections(root string, update map[string]bool) error {
	if len(update) == 0 {
		return nil
	}
	path := filepath.Join(root, FileName)

	raw := map[string]any{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	sections := map[string]bool{}
	if existing, ok := raw["sections"].(map[string]any); ok {
		for id, v := range existing {
			if b, ok := v.(bool); ok {
				sections[id] = b
			}
		}
	}
	for id, enabled := range update {
		sections[id] = enabled
	}
	raw["sections"] = sections

	out, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}
	return nil
}
