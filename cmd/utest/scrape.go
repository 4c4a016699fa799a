package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgricker/utest/internal/output"
	"github.com/bgricker/utest/internal/report"
)

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape [transcript...]",
		Short: "Summarize captured test transcripts",
		Long: "Scrape reads transcripts printed by a utest run, typically captured from a\n" +
			"serial console, and reports each test. Use - to read standard input.",
		RunE: runScrape,
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	transcripts, err := loadTranscripts(cmd, s, args)
	if err != nil {
		return err
	}

	renderer := output.NewPretty(cmd.OutOrStdout(), !s.cfg.NoColor)
	if err := renderer.RenderTranscripts(transcripts); err != nil {
		return err
	}

	var total report.Summary
	for _, tr := range transcripts {
		total.Add(tr.Summary)
	}
	if total.ExitCode != 0 {
		return fmt.Errorf("one or more transcripts reported failures")
	}
	return nil
}
