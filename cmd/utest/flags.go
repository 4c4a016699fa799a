package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgricker/utest/internal/config"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	for name, target := range map[string]*config.BoolFlag{
		"no-color":  &values.NoColor,
		"no-timing": &values.NoTiming,
		"crlf":      &values.CRLF,
		"verbose":   &values.Verbose,
	} {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", name, err)
		}
		*target = config.BoolFlag{Value: v, Set: true}
	}

	for name, target := range map[string]*config.SliceFlag{
		"suite":     &values.Suites,
		"group":     &values.Groups,
		"only-test": &values.OnlyTests,
		"skip-test": &values.SkipTests,
	} {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetStringArray(name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", name, err)
		}
		*target = config.SliceFlag{Values: append([]string{}, v...)}
	}

	for name, target := range map[string]*config.StringFlag{
		"log-level": &values.LogLevel,
		"shell":     &values.Shell,
	} {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", name, err)
		}
		*target = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("ticks-per-second") {
		v, err := flags.GetInt64("ticks-per-second")
		if err != nil {
			return values, fmt.Errorf("parse --ticks-per-second: %w", err)
		}
		if v <= 0 {
			return values, fmt.Errorf("parse --ticks-per-second: must be positive, got %d", v)
		}
		values.TicksPerSecond = config.Int64Flag{Value: v, Set: true}
	}

	if flags.Changed("timeout") {
		v, err := flags.GetDuration("timeout")
		if err != nil {
			return values, fmt.Errorf("parse --timeout: %w", err)
		}
		values.Timeout = config.DurationFlag{Value: v, Set: true}
	}

	return values, nil
}
