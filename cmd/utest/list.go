package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgricker/utest/internal/output"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List suites, groups and tests",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	suites, err := selectSuites(s.cfg)
	if err != nil {
		return err
	}
	if len(suites) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching tests")
		return nil
	}

	renderer := output.NewPretty(cmd.OutOrStdout(), !s.cfg.NoColor)
	return renderer.RenderList(suites)
}
