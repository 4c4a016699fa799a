package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bgricker/utest/internal/output"
	"github.com/bgricker/utest/internal/report"
	"github.com/bgricker/utest/internal/runner"
	"github.com/bgricker/utest/internal/transcript"
)

func newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec [flags] -- command [args...]",
		Short: "Run a target that prints a test transcript and report its results",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runExec,
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().String("shell", "", "run the command through this shell (sh|bash|pwsh|...)")
	cmd.Flags().Duration("timeout", 0, "kill the target after this long")
	cmd.Flags().String("save", "", "write the captured transcript to this file")
	return cmd
}

func runExec(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	execRunner := runner.New(runner.Options{
		Root:      s.root,
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
		Verbose:   s.cfg.Verbose,
		Shell:     s.cfg.Exec.Shell,
		Timeout:   s.cfg.Exec.Timeout,
		TailLines: s.cfg.Exec.TailLines,
		Extra:     s.cfg.Exec.Env,
		Logger:    s.log,
	})
	result, runErr := execRunner.Exec(cmd.Context(), args)
	if runErr != nil && !errors.Is(runErr, runner.ErrTimeout) {
		return runErr
	}

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := saveTranscript(s.root, save, result.Stdout); err != nil {
			return err
		}
		s.log.WithField("path", save).Debug("transcript saved")
	}

	tr, err := transcript.Parse(bytes.NewReader(result.Stdout), displayCommand(args))
	if err != nil {
		return err
	}

	renderer := output.NewPretty(cmd.OutOrStdout(), !s.cfg.NoColor)
	if err := renderer.RenderTranscripts([]report.Transcript{tr}); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}
	if result.ExitCode != 0 {
		s.log.WithFields(logrus.Fields{"exit_code": result.ExitCode, "stderr": result.Stderr}).Warn("target failed")
		return fmt.Errorf("target exited with status %d", result.ExitCode)
	}
	return transcript.Verdict(tr)
}

func saveTranscript(root, path string, data []byte) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

func displayCommand(args []string) string {
	return strings.Join(args, " ")
}
