package utest

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/sirupsen/logrus"
)

// Status labels written to the transcript.
const (
	StatusSetupFailed    = "[SETUP FAILED]"
	StatusSuccess        = "[SUCCESS]"
	StatusFailed         = "[FAILED]"
	StatusTeardownFailed = "[TEARDOWN FAILED]"
)

// Separator precedes the summary line.
const Separator = "----------------------------------------"

// Func is the signature shared by tests, setup and teardown. A nil Func is a
// no-op that succeeds.
type Func func(ctx any) error

// Fixture pairs the setup and teardown run around each test.
type Fixture struct {
	Setup    Func
	Teardown Func
}

// Run sequences test invocations, keeps the pass/fail counters and writes the
// transcript. A Run is not safe for concurrent use; independent Runs share no
// state.
type Run struct {
	id   string
	out  io.Writer
	opts Options
	log  logrus.FieldLogger
	nl   string

	watch   stopwatch
	group   string
	passed  int
	failed  int
	elapsed time.Duration
	outcome Outcome
	err     error
}

// Start begins a run writing its transcript to w.
func Start(w io.Writer, opts Options) *Run {
	if w == nil {
		w = io.Discard
	}
	opts = opts.resolve()

	r := &Run{
		id:   uuid.NewString(),
		out:  w,
		opts: opts,
		nl:   "\n",
	}
	if opts.CRLF {
		r.nl = "\r\n"
	}
	if opts.Timing {
		clock := opts.Clock
		if clock == nil {
			clock = newMonotonicClock(opts.TicksPerSecond)
		}
		r.watch = stopwatch{clock: clock, tps: opts.TicksPerSecond}
	}
	r.log = opts.Logger.WithField("run_id", r.id)
	r.log.WithFields(logrus.Fields{
		"color":  opts.Color,
		"timing": opts.Timing,
		"tps":    opts.TicksPerSecond,
	}).Debug("test run started")
	return r
}

// ID identifies the run in diagnostic logs.
func (r *Run) ID() string { return r.id }

// Passed returns the number of passed tests.
func (r *Run) Passed() int { return r.passed }

// Failed returns the number of failures, including fixture failures.
func (r *Run) Failed() int { return r.failed }

// Elapsed returns the accumulated test time. It is zero when timing is off.
func (r *Run) Elapsed() time.Duration { return r.elapsed }

// Outcome returns the last recorded failure.
func (r *Run) Outcome() Outcome { return r.outcome }

// Err returns the first error hit while writing the transcript.
func (r *Run) Err() error { return r.err }

// Group prints a group header. It does not affect the counters.
func (r *Run) Group(name string) {
	r.group = name
	r.emit("\nTest group: %s\n", name)
}

// Test runs fn between the fixture's setup and teardown and reports whether
// the test passed. A failing setup skips the test and counts nowhere; a
// failing teardown counts as a failure of its own.
func (r *Run) Test(name string, fn Func, ctx any, fx Fixture) bool {
	r.begin(name)

	if err := call(fx.Setup, ctx); err != nil {
		r.record(err)
		r.status(text.FgRed, StatusSetupFailed, 0, false)
		r.emitOutcome()
		r.logResult(name, StatusSetupFailed, 0, err)
		return false
	}

	d, err := r.invoke(fn, ctx)
	if err != nil {
		r.failed++
		r.record(err)
		r.status(text.FgRed, StatusFailed, d, true)
		r.emitOutcome()
		r.logResult(name, StatusFailed, d, err)
		if terr := call(fx.Teardown, ctx); terr != nil {
			r.record(terr)
			r.status(text.FgRed, StatusTeardownFailed, 0, false)
			r.failed++
			r.logResult(name, StatusTeardownFailed, 0, terr)
		}
		return false
	}

	if terr := call(fx.Teardown, ctx); terr != nil {
		r.record(terr)
		r.status(text.FgRed, StatusTeardownFailed, 0, false)
		r.failed++
		r.logResult(name, StatusTeardownFailed, d, terr)
		return false
	}

	r.passed++
	r.status(text.FgGreen, StatusSuccess, d, true)
	r.logResult(name, StatusSuccess, d, nil)
	return true
}

// TestOnly runs fn without any fixture.
func (r *Run) TestOnly(name string, fn Func, ctx any) bool {
	r.begin(name)

	d, err := r.invoke(fn, ctx)
	if err != nil {
		r.failed++
		r.record(err)
		r.status(text.FgRed, StatusFailed, d, true)
		r.emitOutcome()
		r.logResult(name, StatusFailed, d, err)
		return false
	}

	r.passed++
	r.status(text.FgGreen, StatusSuccess, d, true)
	r.logResult(name, StatusSuccess, d, nil)
	return true
}

// End writes the summary and returns 0 when nothing failed, -1 otherwise.
func (r *Run) End() int {
	total := r.passed + r.failed
	r.emit("%s\n", Separator)
	if r.watch.enabled() {
		r.emit("Ran %d tests. %d passed, %d failed in %d ms\n", total, r.passed, r.failed, r.elapsed.Milliseconds())
	} else {
		r.emit("Ran %d tests. %d passed, %d failed\n", total, r.passed, r.failed)
	}
	r.emit("\n")
	r.flush()

	r.log.WithFields(logrus.Fields{
		"passed":  r.passed,
		"failed":  r.failed,
		"elapsed": r.elapsed,
	}).Debug("test run finished")

	if r.failed == 0 {
		return 0
	}
	return -1
}

// Exit ends the run and terminates the process, with status 1 on failure.
func (r *Run) Exit() {
	if r.End() != 0 {
		os.Exit(1)
	}
	os.Exit(0)
}

func (r *Run) begin(name string) {
	r.emit(" - %s\t\t", name)
	r.flush()
}

func (r *Run) invoke(fn Func, ctx any) (time.Duration, error) {
	r.watch.start()
	err := call(fn, ctx)
	d := r.watch.stop()
	r.elapsed += d
	return d, err
}

func (r *Run) record(err error) {
	r.outcome = failureFrom(err).Outcome
}

func (r *Run) status(color text.Color, label string, d time.Duration, timed bool) {
	line := r.paint(color, label)
	if timed && r.watch.enabled() {
		line += fmt.Sprintf(" (%d ms)", d.Milliseconds())
	}
	r.emit("%s\n", line)
}

func (r *Run) emitOutcome() {
	o := r.outcome
	detail := fmt.Sprintf("Error: %d '%s' %s\tin file: %s:%d%s%s", o.Result, o.Message, r.nl, o.File, o.Line, r.nl, r.nl)
	r.write(r.paint(text.FgRed, detail))
}

func (r *Run) paint(color text.Color, s string) string {
	if !r.opts.Color {
		return s
	}
	return color.Sprint(s)
}

// emit formats a transcript fragment, translating "\n" in the format to the
// configured line ending. Arguments are written as given.
func (r *Run) emit(format string, args ...any) {
	if r.nl != "\n" {
		format = strings.ReplaceAll(format, "\n", r.nl)
	}
	r.write(fmt.Sprintf(format, args...))
}

func (r *Run) write(s string) {
	if r.err != nil {
		return
	}
	if _, err := io.WriteString(r.out, s); err != nil {
		r.err = err
		r.log.WithError(err).Warn("transcript write failed")
	}
}

func (r *Run) flush() {
	f, ok := r.out.(interface{ Flush() error })
	if !ok || r.err != nil {
		return
	}
	if err := f.Flush(); err != nil {
		r.err = err
	}
}

func (r *Run) logResult(name, status string, d time.Duration, err error) {
	entry := r.log.WithFields(logrus.Fields{
		"group":    r.group,
		"test":     name,
		"status":   strings.Trim(status, "[]"),
		"duration": d,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Debug("test finished")
}

func call(fn Func, ctx any) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}
