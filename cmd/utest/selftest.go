package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgricker/utest/pkg/utest"
)

func newSelftestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run the built-in harness suites",
		Args:  cobra.NoArgs,
		RunE:  runSelftest,
	}
}

func runSelftest(cmd *cobra.Command, args []string) error {
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

	out := bufio.NewWriter(cmd.OutOrStdout())
	r := utest.Start(out, s.harnessOptions())
	for _, suite := range suites {
		suite.Execute(r)
	}
	status := r.End()
	if err := r.Err(); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	if status != 0 {
		return fmt.Errorf("one or more tests failed")
	}
	return nil
}
