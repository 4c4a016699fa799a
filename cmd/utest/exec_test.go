package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("exec tests require POSIX tools")
	}
}

func TestExecCommandPassing(t *testing.T) {
	skipOnWindows(t)
	root := projectRoot(t)
	chdir(t, root)

	out, err := execute(t, "exec", "--no-color", "--", "cat", "testdata/transcripts/pass.log")
	if err != nil {
		t.Fatalf("command execute: %v\n%s", err, out)
	}
	for _, want := range []string{"Transcript cat testdata/transcripts/pass.log", "✓ clocks (3ms)", "SUMMARY: 2 passed, 0 failed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
	if strings.Contains(out, "Test group: Boot") {
		t.Fatalf("raw transcript should only be streamed with --verbose: %q", out)
	}
}

func TestExecCommandFailingTranscript(t *testing.T) {
	skipOnWindows(t)
	root := projectRoot(t)
	chdir(t, root)

	out, err := execute(t, "exec", "--no-color", "--", "cat", "testdata/transcripts/fail.log")
	if err == nil || !strings.Contains(err.Error(), "transcript reports failures") {
		t.Fatalf("expected transcript failure, got %v", err)
	}
	if !strings.Contains(out, "✗ Fake Test") {
		t.Fatalf("expected failing test in output, got %q", out)
	}
}

func TestExecCommandVerboseAndSave(t *testing.T) {
	skipOnWindows(t)
	root := projectRoot(t)
	chdir(t, root)
	saved := filepath.Join(t.TempDir(), "runs", "pass.log")

	out, err := execute(t, "exec", "-v", "--log-level", "error", "--save", saved, "--", "cat", "testdata/transcripts/pass.log")
	if err != nil {
		t.Fatalf("command execute: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Test group: Boot") {
		t.Fatalf("expected streamed transcript, got %q", out)
	}

	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("read saved transcript: %v", err)
	}
	original, err := os.ReadFile(filepath.Join(root, "testdata", "transcripts", "pass.log"))
	if err != nil {
		t.Fatalf("read original transcript: %v", err)
	}
	if string(data) != string(original) {
		t.Fatalf("saved transcript differs from target output")
	}
}

func TestExecCommandShellExitStatus(t *testing.T) {
	skipOnWindows(t)
	chdir(t, t.TempDir())

	_, err := execute(t, "exec", "--shell", "sh", "--", "printf 'Ran 0 tests. 0 passed, 0 failed\\n'; exit 4")
	if err == nil || err.Error() != "target exited with status 4" {
		t.Fatalf("expected exit status error, got %v", err)
	}
}

func TestExecCommandTimeout(t *testing.T) {
	skipOnWindows(t)
	chdir(t, t.TempDir())

	out, err := execute(t, "exec", "--no-color", "--shell", "sh", "--timeout", "100ms", "--", "printf ' - stuck\\t\\t'; sleep 5")
	if err == nil || !strings.Contains(err.Error(), "target timed out") {
		t.Fatalf("expected timeout, got %v", err)
	}
	if !strings.Contains(out, "? stuck") {
		t.Fatalf("expected partial transcript, got %q", out)
	}
}

func TestExecCommandRequiresTarget(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := execute(t, "exec"); err == nil {
		t.Fatalf("expected missing command error")
	}
}
