package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("runner tests require a POSIX shell")
	}
}

func TestRunnerExecSuccess(t *testing.T) {
	skipOnWindows(t)
	root := t.TempDir()
	r := New(Options{Root: root, Shell: "sh"})

	result, err := r.Exec(context.Background(), []string{"echo", "hi"})
	if err != nil {
		t.Fatalf("runner Exec: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("unexpected exit code: %+v", result)
	}
	if strings.TrimSpace(string(result.Stdout)) != "hi" {
		t.Fatalf("expected stdout 'hi', got %q", result.Stdout)
	}
	if want := []string{"sh", "-c", "echo hi"}; strings.Join(result.Command, "|") != strings.Join(want, "|") {
		t.Fatalf("expected command %v, got %v", want, result.Command)
	}
}

func TestRunnerExecDirect(t *testing.T) {
	skipOnWindows(t)
	r := New(Options{Root: t.TempDir()})

	result, err := r.Exec(context.Background(), []string{"sh", "-c", "printf 'a b'"})
	if err != nil {
		t.Fatalf("runner Exec: %v", err)
	}
	if string(result.Stdout) != "a b" {
		t.Fatalf("expected stdout 'a b', got %q", result.Stdout)
	}
}

func TestRunnerExecFailure(t *testing.T) {
	skipOnWindows(t)
	r := New(Options{Root: t.TempDir(), Shell: "sh"})

	result, err := r.Exec(context.Background(), []string{"exit 3"})
	if err != nil {
		t.Fatalf("nonzero exit should not be an error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", result.ExitCode)
	}
}

func TestRunnerMissingCommand(t *testing.T) {
	r := New(Options{Root: t.TempDir()})

	result, err := r.Exec(context.Background(), []string{"utest-no-such-binary"})
	if err == nil {
		t.Fatalf("expected start error")
	}
	if result.ExitCode != 127 {
		t.Fatalf("expected exit code 127, got %d", result.ExitCode)
	}
	if _, err := r.Exec(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty command")
	}
}

func TestRunnerEnvMerge(t *testing.T) {
	skipOnWindows(t)
	r := New(Options{
		Root:  t.TempDir(),
		Shell: "sh",
		Env:   []string{"PATH=" + os.Getenv("PATH"), "BOARD=sim"},
		Extra: map[string]string{"PORT": "ttyUSB0"},
	})

	result, err := r.Exec(context.Background(), []string{"echo", "$BOARD-$PORT"})
	if err != nil {
		t.Fatalf("runner Exec: %v", err)
	}
	if want := "sim-ttyUSB0"; !strings.Contains(string(result.Stdout), want) {
		t.Fatalf("expected output %q, got %q", want, result.Stdout)
	}
}

func TestRunnerWorkingDirectory(t *testing.T) {
	skipOnWindows(t)
	root := t.TempDir()
	sub := filepath.Join(root, "subdir")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir subdir: %v", err)
	}
	r := New(Options{Root: sub, Shell: "sh"})

	result, err := r.Exec(context.Background(), []string{"pwd"})
	if err != nil {
		t.Fatalf("runner Exec: %v", err)
	}
	if !strings.Contains(string(result.Stdout), "subdir") {
		t.Fatalf("expected working dir output to include subdir, got %q", result.Stdout)
	}

	r = New(Options{Root: filepath.Join(root, "missing")})
	if _, err := r.Exec(context.Background(), []string{"pwd"}); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected missing directory error, got %v", err)
	}
}

func TestRunnerStderrTail(t *testing.T) {
	skipOnWindows(t)
	r := New(Options{Root: t.TempDir(), Shell: "sh", TailLines: 2})

	result, err := r.Exec(context.Background(), []string{"printf '1\\n2\\n3\\n' >&2; exit 1"})
	if err != nil {
		t.Fatalf("runner Exec: %v", err)
	}
	if result.Stderr != "2\n3" {
		t.Fatalf("expected tail '2\\n3', got %q", result.Stderr)
	}
}

func TestRunnerVerboseStreams(t *testing.T) {
	skipOnWindows(t)
	stdout := &bytes.Buffer{}
	r := New(Options{Root: t.TempDir(), Shell: "sh", Verbose: true, Stdout: stdout})

	result, err := r.Exec(context.Background(), []string{"echo", "streamed"})
	if err != nil {
		t.Fatalf("runner Exec: %v", err)
	}
	if stdout.String() != string(result.Stdout) || !strings.Contains(stdout.String(), "streamed") {
		t.Fatalf("expected streamed copy of stdout, got %q", stdout.String())
	}
}

func TestRunnerTimeout(t *testing.T) {
	skipOnWindows(t)
	r := New(Options{Root: t.TempDir(), Shell: "sh", Timeout: 50 * time.Millisecond})

	_, err := r.Exec(context.Background(), []string{"sleep 5"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestCommandArgs(t *testing.T) {
	cases := map[string][]string{
		"bash":        {"bash", "-c", "run"},
		"bash -e":     {"bash", "-e", "-c", "run"},
		"pwsh":        {"pwsh", "-Command", "run"},
		"python3":     {"python3", "-c", "run"},
		"/opt/runner": {"/opt/runner", "run"},
	}
	for shell, want := range cases {
		got := commandArgs(shell, "run")
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Fatalf("commandArgs(%q) = %v, want %v", shell, got, want)
		}
	}
}

func TestMergeEnvOverrides(t *testing.T) {
	env := mergeEnv([]string{"A=1", "B=2", "malformed"}, map[string]string{"B": "3"})
	if strings.Join(env, ",") != "A=1,B=3" {
		t.Fatalf("unexpected env %v", env)
	}
}
