package utest

import (
	"fmt"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// MaxMessageLen bounds the failure message carried by an Outcome, in bytes.
const MaxMessageLen = 256

// Outcome describes the most recent failure recorded by a Run. It is only
// meaningful after an invocation failed.
type Outcome struct {
	Message string
	File    string
	Line    int
	Result  int
}

// Failure is the error returned by the assertion helpers. The Run copies it
// into its Outcome when the test function returns it.
type Failure struct {
	Outcome
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s (%s:%d, result %d)", f.Message, f.File, f.Line, f.Result)
}

// AsFailure reports whether err carries a *Failure anywhere in its chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// newFailure builds a Failure located at the caller skip frames above the
// function calling newFailure.
func newFailure(skip, result int, message string) *Failure {
	file, line := "unknown", 0
	if _, path, no, ok := runtime.Caller(skip + 1); ok {
		file = path[strings.LastIndex(path, "/")+1:]
		line = no
	}
	return &Failure{Outcome: Outcome{
		Message: truncate(message),
		File:    file,
		Line:    line,
		Result:  result,
	}}
}

// failureFrom converts whatever a test function returned into a Failure.
// Errors that did not come from the assertion helpers have no location.
func failureFrom(err error) *Failure {
	if f, ok := AsFailure(err); ok {
		return f
	}
	return &Failure{Outcome: Outcome{
		Message: truncate(err.Error()),
		File:    "unknown",
		Line:    0,
		Result:  -1,
	}}
}

func truncate(message string) string {
	if len(message) <= MaxMessageLen {
		return message
	}
	cut := MaxMessageLen
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut]
}
