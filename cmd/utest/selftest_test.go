package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bgricker/utest/internal/selftest"
)

func TestSelftestCommandPasses(t *testing.T) {
	chdir(t, t.TempDir())

	total := 0
	for _, s := range selftest.Registry().Suites() {
		total += s.Len()
	}

	out, err := execute(t, "selftest", "--no-color", "--no-timing")
	if err != nil {
		t.Fatalf("command execute: %v\n%s", err, out)
	}
	want := fmt.Sprintf("Ran %d tests. %d passed, 0 failed\n", total, total)
	if !strings.Contains(out, want) {
		t.Fatalf("expected %q in output, got %q", want, out)
	}
	if !strings.Contains(out, "\nTest group: CheckEqual\n") {
		t.Fatalf("expected group headers, got %q", out)
	}
	if strings.Contains(out, "\x1b[") || strings.Contains(out, " ms") {
		t.Fatalf("expected plain untimed output, got %q", out)
	}
}

func TestSelftestCommandFilters(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := execute(t, "selftest", "--no-color", "--no-timing", "--suite", "reporting", "--group", "Timing", "--skip-test", "/disabled/")
	if err != nil {
		t.Fatalf("command execute: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Ran 2 tests. 2 passed, 0 failed\n") {
		t.Fatalf("expected two timing tests, got %q", out)
	}
	if strings.Contains(out, "Test group: Transcript") {
		t.Fatalf("filtered group was run: %q", out)
	}
}

func TestSelftestCommandCRLFAndTiming(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := execute(t, "selftest", "--no-color", "--crlf", "--only-test", "equal values pass")
	if err != nil {
		t.Fatalf("command execute: %v\n%s", err, out)
	}
	if !strings.Contains(out, "[SUCCESS] (") || !strings.Contains(out, " ms)\r\n") {
		t.Fatalf("expected timed CRLF output, got %q", out)
	}
}

func TestSelftestCommandNoMatches(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := execute(t, "selftest", "--only-test", "no such test")
	if err != nil {
		t.Fatalf("command execute: %v", err)
	}
	if out != "No matching tests\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSelftestCommandRejectsBadFlags(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := execute(t, "selftest", "--ticks-per-second", "0"); err == nil || !strings.Contains(err.Error(), "must be positive") {
		t.Fatalf("expected tick rate error, got %v", err)
	}
	if _, err := execute(t, "selftest", "--skip-test", "/(/"); err == nil {
		t.Fatalf("expected pattern error")
	}
	if _, err := execute(t, "selftest", "--log-level", "chatty"); err == nil || !strings.Contains(err.Error(), "configure logging") {
		t.Fatalf("expected log level error, got %v", err)
	}
}
