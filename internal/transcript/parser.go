// Package transcript recovers test results from the console output of a
// utest run, typically captured from a device's serial port.
package transcript

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/pkg/errors"

	"github.com/bgricker/utest/internal/report"
	"github.com/bgricker/utest/pkg/utest"
)

var (
	// ErrNoSummary means the capture ended before the run printed its summary.
	ErrNoSummary = errors.New("transcript has no summary line")
	// ErrFailures means the run reported at least one failure.
	ErrFailures = errors.New("transcript reports failures")
)

const maxLineSize = 1 << 20

var (
	groupRegex   = regexp.MustCompile(`^Test group: (.*)$`)
	summaryRegex = regexp.MustCompile(`^Ran (\d+) tests\. (\d+) passed, (\d+) failed(?: in (\d+) ms)?\s*$`)
	errorRegex   = regexp.MustCompile(`^Error: (-?\d+) '(.*)' ?$`)
	fileRegex    = regexp.MustCompile(`^\s*in file: (.*):(\d+)\s*$`)
	statusRegex  = regexp.MustCompile(`\[(SETUP FAILED|SUCCESS|FAILED|TEARDOWN FAILED)\](?: \((\d+) ms\))?\s*$`)
)

// Parse reads a transcript. Only read errors are returned; malformed or
// truncated content is reported through Transcript.Warnings and the summary.
func Parse(r io.Reader, source string) (report.Transcript, error) {
	p := &parser{out: report.Transcript{Source: source}, current: -1}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return report.Transcript{}, errors.Wrapf(err, "read transcript %q", source)
	}

	p.finish()
	return p.out, nil
}

// Verdict returns nil when the transcript describes a complete, passing run.
func Verdict(t report.Transcript) error {
	if t.Device == nil {
		return errors.Wrap(ErrNoSummary, t.Source)
	}
	if t.Summary.ExitCode != 0 {
		return errors.Wrapf(ErrFailures, "%s: %d failed, %d incomplete", t.Source, t.Summary.Failed, t.Summary.Incomplete)
	}
	return nil
}

type parser struct {
	out     report.Transcript
	group   string
	current int
	pending bool
	groups  map[string]struct{}
}

func (p *parser) line(raw string) {
	line := strings.TrimRight(stripansi.Strip(raw), "\r")

	switch {
	case strings.HasPrefix(line, " - "):
		p.startTest(line[len(" - "):])
	case groupRegex.MatchString(line):
		p.group = strings.TrimSpace(groupRegex.FindStringSubmatch(line)[1])
		if p.groups == nil {
			p.groups = make(map[string]struct{})
		}
		p.groups[p.group] = struct{}{}
	case summaryRegex.MatchString(line):
		p.deviceSummary(summaryRegex.FindStringSubmatch(line))
	case errorRegex.MatchString(line):
		m := errorRegex.FindStringSubmatch(line)
		if t := p.test(); t != nil {
			t.Result, _ = strconv.Atoi(m[1])
			t.Message = m[2]
		} else {
			p.warn("failure detail %q outside of a test", line)
		}
	case fileRegex.MatchString(line):
		m := fileRegex.FindStringSubmatch(line)
		if t := p.test(); t != nil {
			t.File = m[1]
			t.Line, _ = strconv.Atoi(m[2])
		}
	case strings.TrimSpace(line) == "" || line == utest.Separator:
	default:
		p.other(line)
	}
}

func (p *parser) startTest(rest string) {
	p.closePending()

	name, tail := rest, ""
	if idx := strings.Index(rest, "\t"); idx != -1 {
		name, tail = rest[:idx], strings.TrimLeft(rest[idx:], "\t")
	}
	p.out.Tests = append(p.out.Tests, report.TestResult{Group: p.group, Name: strings.TrimSpace(name)})
	p.current = len(p.out.Tests) - 1
	p.pending = true

	if tail != "" {
		p.other(tail)
	}
}

// other handles a line that is neither structure nor detail: a status that
// arrives after test output, a teardown failure, or output printed by a test.
func (p *parser) other(line string) {
	t := p.test()
	if loc := statusRegex.FindStringSubmatchIndex(line); loc != nil && t != nil {
		if before := strings.TrimSpace(line[:loc[0]]); before != "" {
			t.Output = append(t.Output, before)
		}
		label := line[loc[2]:loc[3]]
		var ms string
		if loc[4] != -1 {
			ms = line[loc[4]:loc[5]]
		}
		p.status(t, label, ms)
		return
	}
	if t == nil {
		return
	}
	t.Output = append(t.Output, line)
}

func (p *parser) status(t *report.TestResult, label, ms string) {
	if ms != "" {
		n, _ := strconv.ParseInt(ms, 10, 64)
		t.Duration = time.Duration(n) * time.Millisecond
		t.Timed = true
	}

	if !p.pending {
		if label == "TEARDOWN FAILED" && t.Status == report.StatusFailed && !t.TeardownFailed {
			t.TeardownFailed = true
			return
		}
		p.warn("unexpected %q after test %q", label, t.Name)
		return
	}

	switch label {
	case "SUCCESS":
		t.Status = report.StatusPassed
	case "FAILED":
		t.Status = report.StatusFailed
	case "SETUP FAILED":
		t.Status = report.StatusSetupFailed
	case "TEARDOWN FAILED":
		t.Status = report.StatusTeardownFailed
	}
	p.pending = false
}

func (p *parser) deviceSummary(m []string) {
	p.closePending()
	if p.out.Device != nil {
		p.warn("multiple summary lines; keeping the last")
	}
	total, _ := strconv.Atoi(m[1])
	passed, _ := strconv.Atoi(m[2])
	failed, _ := strconv.Atoi(m[3])
	d := &report.DeviceSummary{Total: total, Passed: passed, Failed: failed}
	if m[4] != "" {
		ms, _ := strconv.ParseInt(m[4], 10, 64)
		d.Duration = time.Duration(ms) * time.Millisecond
		d.Timed = true
	}
	p.out.Device = d
	p.current = -1
}

func (p *parser) closePending() {
	if !p.pending {
		return
	}
	t := p.test()
	t.Status = report.StatusIncomplete
	p.pending = false
	p.warn("test %q has no result", t.Name)
}

func (p *parser) finish() {
	p.closePending()

	s := report.Summary{TotalGroups: len(p.groups), TotalTests: len(p.out.Tests)}
	for _, t := range p.out.Tests {
		switch t.Status {
		case report.StatusPassed:
			s.Passed++
		case report.StatusSetupFailed:
			s.SetupFailed++
		case report.StatusIncomplete:
			s.Incomplete++
		}
		s.Failed += t.Failures()
		s.Duration += t.Duration
	}

	if d := p.out.Device; d != nil {
		if d.Passed != s.Passed || d.Failed != s.Failed {
			p.warn("device reported %d passed, %d failed but transcript shows %d passed, %d failed", d.Passed, d.Failed, s.Passed, s.Failed)
		}
		if d.Total != d.Passed+d.Failed {
			p.warn("device summary total %d does not match %d passed + %d failed", d.Total, d.Passed, d.Failed)
		}
	} else {
		p.warn("no summary line; the run may have been cut short")
	}

	if s.Failed > 0 || s.Incomplete > 0 || p.out.Device == nil || p.out.Device.Failed > 0 {
		s.ExitCode = 1
	}
	p.out.Summary = s
}

func (p *parser) test() *report.TestResult {
	if p.current < 0 || p.current >= len(p.out.Tests) {
		return nil
	}
	return &p.out.Tests[p.current]
}

func (p *parser) warn(format string, args ...any) {
	p.out.Warnings = append(p.out.Warnings, fmt.Sprintf(format, args...))
}
