package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bgricker/utest/pkg/utest"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".utest.yml"

// Config captures CLI options sourced from config files or flags.
type Config struct {
	NoColor        bool  `yaml:"no_color"`
	NoTiming       bool  `yaml:"no_timing"`
	TicksPerSecond int64 `yaml:"ticks_per_second"`
	CRLF           bool  `yaml:"crlf"`

	Suites    []string `yaml:"suites"`
	Groups    []string `yaml:"groups"`
	OnlyTests []string `yaml:"only_test"`
	SkipTests []string `yaml:"skip_test"`

	Transcripts []string `yaml:"transcripts"`

	Exec ExecConfig `yaml:"exec"`

	LogLevel string `yaml:"log_level"`
	Verbose  bool   `yaml:"verbose"`
}

// ExecConfig controls how `utest exec` launches the target.
type ExecConfig struct {
	Shell     string            `yaml:"shell"`
	Timeout   time.Duration     `yaml:"timeout"`
	TailLines int               `yaml:"tail_lines"`
	Env       map[string]string `yaml:"env"`
}

// Default returns the baseline configuration used when no flags or config file specify values.
func Default() Config {
	return Config{
		TicksPerSecond: utest.DefaultTicksPerSecond,
		LogLevel:       LogLevelWarn,
		Exec: ExecConfig{
			TailLines: 20,
		},
	}
}

const (
	// LogLevelWarn keeps diagnostics quiet unless something goes wrong.
	LogLevelWarn = "warn"
	// LogLevelDebug is selected by --verbose when no level is configured.
	LogLevelDebug = "debug"
)

// Load reads .utest.yml from the repository root when present. Missing files are ignored.
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
	if fileCfg.TicksPerSecond < 0 {
		return cfg, fmt.Errorf("parse config %q: ticks_per_second must be positive", path)
	}

	cfg = merge(cfg, fileCfg)
	return cfg, nil
}

func merge(base, override Config) Config {
	out := base

	if override.NoColor {
		out.NoColor = true
	}
	if override.NoTiming {
		out.NoTiming = true
	}
	if override.TicksPerSecond > 0 {
		out.TicksPerSecond = override.TicksPerSecond
	}
	if override.CRLF {
		out.CRLF = true
	}
	if len(override.Suites) > 0 {
		out.Suites = append([]string{}, override.Suites...)
	}
	if len(override.Groups) > 0 {
		out.Groups = append([]string{}, override.Groups...)
	}
	if len(override.OnlyTests) > 0 {
		out.OnlyTests = append([]string{}, override.OnlyTests...)
	}
	if len(override.SkipTests) > 0 {
		out.SkipTests = append([]string{}, override.SkipTests...)
	}
	if len(override.Transcripts) > 0 {
		out.Transcripts = append([]string{}, override.Transcripts...)
	}
	if override.Exec.Shell != "" {
		out.Exec.Shell = override.Exec.Shell
	}
	if override.Exec.Timeout > 0 {
		out.Exec.Timeout = override.Exec.Timeout
	}
	if override.Exec.TailLines > 0 {
		out.Exec.TailLines = override.Exec.TailLines
	}
	if len(override.Exec.Env) > 0 {
		out.Exec.Env = make(map[string]string, len(override.Exec.Env))
		for k, v := range override.Exec.Env {
			out.Exec.Env[k] = v
		}
	}
	if override.LogLevel != "" {
		out.LogLevel = override.LogLevel
	}
	if override.Verbose {
		out.Verbose = true
	}

	return out
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.NoColor.Set {
		cfg.NoColor = flags.NoColor.Value
	}
	if flags.NoTiming.Set {
		cfg.NoTiming = flags.NoTiming.Value
	}
	if flags.TicksPerSecond.Set {
		cfg.TicksPerSecond = flags.TicksPerSecond.Value
	}
	if flags.CRLF.Set {
		cfg.CRLF = flags.CRLF.Value
	}
	if len(flags.Suites.Values) > 0 {
		cfg.Suites = append([]string{}, flags.Suites.Values...)
	}
	if len(flags.Groups.Values) > 0 {
		cfg.Groups = append([]string{}, flags.Groups.Values...)
	}
	if len(flags.OnlyTests.Values) > 0 {
		cfg.OnlyTests = append([]string{}, flags.OnlyTests.Values...)
	}
	if len(flags.SkipTests.Values) > 0 {
		cfg.SkipTests = append([]string{}, flags.SkipTests.Values...)
	}
	if flags.Shell.Set {
		cfg.Exec.Shell = flags.Shell.Value
	}
	if flags.Timeout.Set {
		cfg.Exec.Timeout = flags.Timeout.Value
	}
	if flags.LogLevel.Set {
		cfg.LogLevel = flags.LogLevel.Value
	}
	if flags.Verbose.Set {
		cfg.Verbose = flags.Verbose.Value
		if cfg.Verbose && !flags.LogLevel.Set {
			cfg.LogLevel = LogLevelDebug
		}
	}
}

// HarnessOptions translates the configuration into run options.
func (c Config) HarnessOptions() utest.Options {
	return utest.Options{
		Color:          !c.NoColor,
		Timing:         !c.NoTiming,
		TicksPerSecond: c.TicksPerSecond,
		CRLF:           c.CRLF,
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	NoColor        BoolFlag
	NoTiming       BoolFlag
	TicksPerSecond Int64Flag
	CRLF           BoolFlag
	Suites         SliceFlag
	Groups         SliceFlag
	OnlyTests      SliceFlag
	SkipTests      SliceFlag
	Shell          StringFlag
	Timeout        DurationFlag
	LogLevel       StringFlag
	Verbose        BoolFlag
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

// Int64Flag represents an integer flag and whether it was set.
type Int64Flag struct {
	Value int64
	Set   bool
}

// DurationFlag represents a duration flag and whether it was set.
type DurationFlag struct {
	Value time.Duration
	Set   bool
}
