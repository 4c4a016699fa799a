package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "utest",
		Short:         "utest runs, lists and scrapes embedded unit-test transcripts",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.Bool("no-color", false, "print status labels without ANSI colors")
	persistent.Bool("no-timing", false, "do not measure or print test durations")
	persistent.Int64("ticks-per-second", 0, "tick rate of the timing clock (default 1000)")
	persistent.Bool("crlf", false, "terminate transcript lines with \\r\\n")
	persistent.StringArray("suite", nil, "suite filter (repeatable)")
	persistent.StringArray("group", nil, "group filter (repeatable)")
	persistent.StringArray("only-test", nil, "include only matching tests")
	persistent.StringArray("skip-test", nil, "exclude matching tests")
	persistent.String("log-level", "", "diagnostic log level (trace|debug|info|warn|error)")
	persistent.BoolP("verbose", "v", false, "stream target output and enable debug logs")

	cmd.AddCommand(newSelftestCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newExecCmd())

	return cmd
}
