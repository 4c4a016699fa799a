// Package logging configures the diagnostic logger used by the CLI. Test
// transcripts are never written through it.
package logging

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to out at the named level. Debug and
// trace levels tag each entry with its caller.
func New(out io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}

	log := &logrus.Logger{
		Out: out,
		Formatter: &logrus.TextFormatter{
			FullTimestamp:    true,
			CallerPrettyfier: callerContext,
		},
		Hooks:        make(logrus.LevelHooks),
		Level:        lvl,
		ExitFunc:     logrus.StandardLogger().ExitFunc,
		ReportCaller: lvl >= logrus.DebugLevel,
	}
	return log, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// callerContext trims the caller to file:func:line, as in "exec.go:Exec:124".
func callerContext(frame *runtime.Frame) (string, string) {
	file := frame.File[strings.LastIndex(frame.File, "/")+1:]
	fn := frame.Function[strings.LastIndex(frame.Function, ".")+1:]
	return "", fmt.Sprintf("%s:%s:%d", file, fn, frame.Line)
}
