package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bgricker/utest/internal/report"
	"github.com/bgricker/utest/pkg/utest"
)

// PrettyRenderer renders scraped results and registry listings in a human-friendly format.
type PrettyRenderer struct {
	out   io.Writer
	color bool
}

// NewPretty creates a PrettyRenderer writing to the provided writer.
func NewPretty(out io.Writer, color bool) *PrettyRenderer {
	return &PrettyRenderer{out: out, color: color}
}

// RenderList renders the suites, groups and tests that would run.
func (p *PrettyRenderer) RenderList(suites []utest.Suite) error {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Suite", "Group", "Test", "Fixture"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Suite", AutoMerge: true},
		{Name: "Group", AutoMerge: true},
	})

	total := 0
	for _, s := range suites {
		for _, g := range s.Groups {
			for _, c := range g.Cases {
				t.AppendRow(table.Row{s.Name, g.Name, c.Name, fixtureLabel(s.Fixture, c)})
				total++
			}
		}
		t.AppendSeparator()
	}
	t.AppendFooter(table.Row{"Total", "", total, ""})
	t.SetStyle(table.StyleLight)
	t.Render()

	_, err := buf.WriteTo(p.out)
	return err
}

func fixtureLabel(fx utest.Fixture, c utest.Case) string {
	if c.NoFixture {
		return "none"
	}
	switch {
	case fx.Setup != nil && fx.Teardown != nil:
		return "setup+teardown"
	case fx.Setup != nil:
		return "setup"
	case fx.Teardown != nil:
		return "teardown"
	default:
		return "none"
	}
}

// RenderTranscripts shows the scraped outcome of each transcript followed by
// an overall summary.
func (p *PrettyRenderer) RenderTranscripts(transcripts []report.Transcript) error {
	var total report.Summary
	var buffer bytes.Buffer

	for _, tr := range transcripts {
		total.Add(tr.Summary)

		fmt.Fprintf(&buffer, "Transcript %s\n", tr.Source)
		group := "\x00"
		for _, res := range tr.Tests {
			if res.Group != group {
				group = res.Group
				if group != "" {
					fmt.Fprintf(&buffer, "  Group %s\n", group)
				}
			}
			p.renderTest(&buffer, res)
		}
		for _, w := range tr.Warnings {
			fmt.Fprintf(&buffer, "  %s %s\n", p.paint(text.FgYellow, "warning:"), w)
		}
		if _, err := buffer.WriteTo(p.out); err != nil {
			return err
		}
		buffer.Reset()
	}

	if len(transcripts) > 1 {
		if err := p.renderTotals(transcripts, total); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(p.out, "SUMMARY: %d passed, %d failed, %d setup failed, %d incomplete (%s)\n",
		total.Passed, total.Failed, total.SetupFailed, total.Incomplete, formatDuration(total.Duration))
	return err
}

func (p *PrettyRenderer) renderTest(buffer *bytes.Buffer, res report.TestResult) {
	line := fmt.Sprintf("    %s %s", p.statusGlyph(res.Status), res.Name)
	if res.Timed {
		line += fmt.Sprintf(" (%s)", formatDuration(res.Duration))
	}
	fmt.Fprintln(buffer, line)

	if res.HasDetail() {
		fmt.Fprintf(buffer, "      error %d: %s\n", res.Result, res.Message)
		fmt.Fprintf(buffer, "      at: %s:%d\n", res.File, res.Line)
	}
	if res.TeardownFailed {
		fmt.Fprintf(buffer, "      note: teardown failed as well\n")
	}
	switch res.Status {
	case report.StatusSetupFailed:
		fmt.Fprintf(buffer, "      note: setup failed, test body not run\n")
	case report.StatusIncomplete:
		fmt.Fprintf(buffer, "      note: no result before the capture ended\n")
	}
	if len(res.Output) > 0 {
		fmt.Fprintf(buffer, "      output:\n%s\n", indent(strings.Join(res.Output, "\n"), "        "))
	}
}

func (p *PrettyRenderer) renderTotals(transcripts []report.Transcript, total report.Summary) error {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Transcript", "Tests", "Passed", "Failed", "Setup Failed", "Incomplete", "Duration", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Transcript", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Setup Failed", Align: text.AlignRight},
		{Name: "Incomplete", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})
	for _, tr := range transcripts {
		s := tr.Summary
		t.AppendRow(table.Row{tr.Source, s.TotalTests, s.Passed, s.Failed, s.SetupFailed, s.Incomplete, formatDuration(s.Duration), resultString(s.ExitCode)})
	}
	t.AppendFooter(table.Row{"Total", total.TotalTests, total.Passed, total.Failed, total.SetupFailed, total.Incomplete, formatDuration(total.Duration), resultString(total.ExitCode)})
	t.SetStyle(table.StyleLight)
	t.Render()

	_, err := buf.WriteTo(p.out)
	return err
}

func resultString(exitCode int) string {
	if exitCode == 0 {
		return "PASS"
	}
	return "FAIL"
}

func (p *PrettyRenderer) paint(color text.Color, s string) string {
	if !p.color {
		return s
	}
	return color.Sprint(s)
}

func (p *PrettyRenderer) statusGlyph(status string) string {
	switch status {
	case report.StatusPassed:
		return p.paint(text.FgGreen, "✓")
	case report.StatusFailed, report.StatusTeardownFailed:
		return p.paint(text.FgRed, "✗")
	case report.StatusSetupFailed:
		return p.paint(text.FgYellow, "-")
	default:
		return "?"
	}
}

func indent(s, pad string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Truncate(time.Millisecond).String()
}
