package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bgricker/utest/internal/config"
	"github.com/bgricker/utest/internal/discovery"
	"github.com/bgricker/utest/internal/filter"
	"github.com/bgricker/utest/internal/logging"
	"github.com/bgricker/utest/internal/report"
	"github.com/bgricker/utest/internal/selftest"
	"github.com/bgricker/utest/internal/transcript"
	"github.com/bgricker/utest/pkg/utest"
)

// session bundles what every command needs after flags and config are merged.
type session struct {
	root string
	cfg  config.Config
	log  *logrus.Logger
}

func loadSession(cmd *cobra.Command) (session, error) {
	root, err := os.Getwd()
	if err != nil {
		return session{}, fmt.Errorf("determine working directory: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return session{}, err
	}

	flags, err := gatherFlags(cmd)
	if err != nil {
		return session{}, err
	}
	config.ApplyFlags(&cfg, flags)

	log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return session{}, fmt.Errorf("configure logging: %w", err)
	}
	log.WithFields(logrus.Fields{"root": root, "command": cmd.Name()}).Debug("configuration loaded")

	return session{root: root, cfg: cfg, log: log}, nil
}

// harnessOptions returns run options wired to the session logger.
func (s session) harnessOptions() utest.Options {
	opts := s.cfg.HarnessOptions()
	opts.Logger = s.log
	return opts
}

func selectSuites(cfg config.Config) ([]utest.Suite, error) {
	reg := utest.NewRegistry()
	if err := selftest.Register(reg); err != nil {
		return nil, err
	}

	sel, err := filter.NewSelection(cfg.Suites, cfg.Groups, cfg.OnlyTests, cfg.SkipTests)
	if err != nil {
		return nil, err
	}
	return filter.FilterSuites(reg.Suites(), sel), nil
}

func loadTranscripts(cmd *cobra.Command, s session, explicit []string) ([]report.Transcript, error) {
	if len(explicit) == 0 {
		explicit = s.cfg.Transcripts
	}
	paths, err := discovery.Transcripts(s.root, explicit)
	if err != nil {
		if errors.Is(err, discovery.ErrNoTranscripts) {
			return nil, fmt.Errorf("no transcripts found in %s; pass files or - for stdin", discovery.DefaultDir)
		}
		return nil, err
	}

	transcripts := make([]report.Transcript, 0, len(paths))
	for _, p := range paths {
		tr, err := parsePath(cmd.InOrStdin(), s.root, p)
		if err != nil {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{
			"source":   tr.Source,
			"tests":    tr.Summary.TotalTests,
			"warnings": len(tr.Warnings),
		}).Debug("transcript scraped")
		transcripts = append(transcripts, tr)
	}
	return transcripts, nil
}

func parsePath(stdin io.Reader, root, path string) (report.Transcript, error) {
	if path == discovery.Stdin {
		return transcript.Parse(stdin, "stdin")
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, full)
	}
	f, err := os.Open(full)
	if err != nil {
		return report.Transcript{}, fmt.Errorf("open transcript %q: %w", path, err)
	}
	defer f.Close()
	return transcript.Parse(f, path)
}
