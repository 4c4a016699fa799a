package selftest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bgricker/utest/internal/transcript"
	"github.com/bgricker/utest/pkg/utest"
)

func reportingSuite() utest.Suite {
	return utest.Suite{
		Name: "reporting",
		Groups: []utest.Group{
			{Name: "Transcript", Cases: []utest.Case{
				{Name: "failing example", Func: failingExample},
				{Name: "passing summary", Func: passingSummary},
				{Name: "scraped counts match", Func: scrapedCountsMatch},
				{Name: "crlf line endings", Func: crlfLineEndings},
				{Name: "colored labels", Func: coloredLabels},
			}},
			{Name: "Timing", Cases: []utest.Case{
				{Name: "milliseconds suffix", Func: millisecondsSuffix},
				{Name: "custom tick rate", Func: customTickRate},
				{Name: "disabled timing", Func: disabledTiming},
			}},
		},
	}
}

func fakeTest(any) error {
	return utest.Fail(0, "Error Here")
}

func failingExample(any) error {
	var buf bytes.Buffer
	r := utest.Start(&buf, utest.Options{})
	r.Group("Fake")
	r.TestOnly("Fake Test", fakeTest, nil)
	if err := utest.CheckEqual(-1, r.End()); err != nil {
		return err
	}

	o := r.Outcome()
	want := fmt.Sprintf("\nTest group: Fake\n"+
		" - Fake Test\t\t[FAILED]\n"+
		"Error: 0 'Error Here' \n\tin file: %s:%d\n\n"+
		"%s\nRan 1 tests. 0 passed, 1 failed\n\n", o.File, o.Line, utest.Separator)
	return expect(buf.String() == want, "transcript mismatch:\n%q\nwant\n%q", buf.String(), want)
}

func passingSummary(any) error {
	var buf bytes.Buffer
	r := utest.Start(&buf, utest.Options{})
	r.Group("Pass")
	r.TestOnly("a", pass, nil)
	r.TestOnly("b", pass, nil)
	if err := utest.CheckEqual(0, r.End()); err != nil {
		return err
	}
	return contains(buf.String(), "Ran 2 tests. 2 passed, 0 failed\n")
}

func scrapedCountsMatch(any) error {
	var buf bytes.Buffer
	r := utest.Start(&buf, utest.Options{})
	r.Group("Mixed")
	r.TestOnly("ok", pass, nil)
	r.TestOnly("bad", fakeTest, nil)
	r.Test("no device", pass, nil, utest.Fixture{Setup: func(any) error { return utest.Fail(3, "no device") }})
	r.Test("leaks", fakeTest, nil, utest.Fixture{Teardown: func(any) error { return utest.Fail(2, "leak") }})
	r.End()

	tr, err := transcript.Parse(&buf, "nested run")
	if err != nil {
		return utest.Failf(-1, "parse: %v", err)
	}
	if err := expect(len(tr.Warnings) == 0, "warnings %v", tr.Warnings); err != nil {
		return err
	}
	if err := utest.CheckEqual(r.Passed(), tr.Summary.Passed); err != nil {
		return err
	}
	if err := utest.CheckEqual(r.Failed(), tr.Summary.Failed); err != nil {
		return err
	}
	return utest.CheckEqual(1, tr.Summary.SetupFailed)
}

func crlfLineEndings(any) error {
	var buf bytes.Buffer
	r := utest.Start(&buf, utest.Options{CRLF: true})
	r.Group("Serial")
	r.TestOnly("bad", fakeTest, nil)
	r.End()

	out := buf.String()
	if err := expect(strings.Count(out, "\n") == strings.Count(out, "\r\n"), "bare line feed in %q", out); err != nil {
		return err
	}
	return contains(out, "\tin file: ")
}

func coloredLabels(any) error {
	var buf bytes.Buffer
	r := utest.Start(&buf, utest.Options{Color: true})
	r.TestOnly("ok", pass, nil)
	r.TestOnly("bad", fakeTest, nil)
	r.End()

	out := buf.String()
	if err := contains(out, text.FgGreen.Sprint(utest.StatusSuccess)); err != nil {
		return err
	}
	if err := contains(out, text.FgRed.Sprint(utest.StatusFailed)); err != nil {
		return err
	}
	plain := stripansi.Strip(out)
	return contains(plain, " - bad\t\t[FAILED]\nError: 0 'Error Here' \n")
}

// ticker advances by step on every read.
type ticker struct{ now, step int64 }

func (t *ticker) Ticks() int64 {
	t.now += t.step
	return t.now
}

func millisecondsSuffix(any) error {
	var buf bytes.Buffer
	r := utest.Start(&buf, utest.Options{Timing: true, Clock: &ticker{step: 5}})
	r.TestOnly("fast", pass, nil)
	r.TestOnly("bad", fakeTest, nil)
	r.End()

	out := buf.String()
	for _, want := range []string{"[SUCCESS] (5 ms)\n", "[FAILED] (5 ms)\n", "failed in 10 ms\n"} {
		if err := contains(out, want); err != nil {
			return err
		}
	}
	return utest.CheckEqual(int64(10), r.Elapsed().Milliseconds())
}

func customTickRate(any) error {
	var buf bytes.Buffer
	r := utest.Start(&buf, utest.Options{Timing: true, TicksPerSecond: 32768, Clock: &ticker{step: 8192}})
	r.TestOnly("quarter second", pass, nil)
	r.End()
	return contains(buf.String(), "[SUCCESS] (250 ms)\n")
}

func disabledTiming(any) error {
	var buf bytes.Buffer
	clock := &ticker{step: 5}
	r := utest.Start(&buf, utest.Options{Clock: clock})
	r.TestOnly("ok", pass, nil)
	r.End()
	if err := expect(clock.now == 0, "clock read %d times", clock.now/5); err != nil {
		return err
	}
	return expect(!strings.Contains(buf.String(), " ms"), "timing printed while disabled")
}
