package utest

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Options configure a Run. They are resolved once by Start.
type Options struct {
	// Color wraps status labels and failure details in ANSI colors.
	Color bool
	// Timing measures each invocation and reports milliseconds.
	Timing bool
	// TicksPerSecond is the rate of Clock, at most one tick per nanosecond.
	// Zero selects DefaultTicksPerSecond.
	TicksPerSecond int64
	// Clock replaces the built-in monotonic clock.
	Clock Clock
	// CRLF terminates transcript lines with "\r\n" for serial consoles.
	CRLF bool
	// Logger receives diagnostic events. It never sees the transcript.
	Logger logrus.FieldLogger
}

// DefaultOptions returns colored, timed output.
func DefaultOptions() Options {
	return Options{
		Color:  true,
		Timing: true,
	}
}

func (o Options) resolve() Options {
	if o.TicksPerSecond <= 0 {
		o.TicksPerSecond = DefaultTicksPerSecond
	}
	if o.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		o.Logger = logger
	}
	return o
}
