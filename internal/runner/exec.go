// Package runner launches a target command whose console output is a utest
// transcript, typically a simulator or a serial-port capture tool.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrTimeout is returned when the target outlives Options.Timeout.
var ErrTimeout = errors.New("target timed out")

// Options configure how the runner executes the target.
type Options struct {
	Root      string
	Stdout    io.Writer
	Stderr    io.Writer
	Verbose   bool
	Shell     string
	Timeout   time.Duration
	TailLines int
	Env       []string
	Extra     map[string]string
	Now       func() time.Time
	Logger    logrus.FieldLogger
}

// Result describes a finished target process.
type Result struct {
	Command  []string
	Stdout   []byte
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes a target command and captures its transcript.
type Runner struct {
	opts Options
}

// New creates a runner with the supplied options.
func New(opts Options) *Runner {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.TailLines <= 0 {
		opts.TailLines = 20
	}
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	return &Runner{opts: opts}
}

// Exec runs args. With Options.Shell set, args are joined into a single
// script for that shell; otherwise args[0] is executed directly. A nonzero
// exit is reported through Result.ExitCode, not as an error.
func (r *Runner) Exec(ctx context.Context, args []string) (Result, error) {
	if len(args) == 0 {
		return Result{}, errors.New("no target command")
	}

	cmdArgs := append([]string{}, args...)
	if r.opts.Shell != "" {
		cmdArgs = commandArgs(r.opts.Shell, strings.Join(args, " "))
	}
	result := Result{Command: cmdArgs}

	dir, err := resolveWorkingDirectory(r.opts.Root)
	if err != nil {
		result.ExitCode = 127
		return result, err
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
	cmd.Dir = dir
	cmd.Env = mergeEnv(r.opts.Env, r.opts.Extra)
	cmd.WaitDelay = time.Second

	var stdoutBuf bytes.Buffer
	var stderrBuf strings.Builder
	if r.opts.Verbose {
		cmd.Stdout = io.MultiWriter(r.opts.Stdout, &stdoutBuf)
		cmd.Stderr = io.MultiWriter(r.opts.Stderr, &stderrBuf)
	} else {
		cmd.Stdout = &stdoutBuf
		cmd.Stderr = &stderrBuf
	}

	log := r.opts.Logger.WithFields(logrus.Fields{"command": strings.Join(cmdArgs, " "), "dir": dir})
	log.Debug("starting target")

	start := r.opts.Now()
	err = cmd.Run()
	result.Duration = r.opts.Now().Sub(start)
	result.Stdout = stdoutBuf.Bytes()
	result.Stderr = tailLines(stderrBuf.String(), r.opts.TailLines)
	result.ExitCode = exitCode(err)

	log.WithFields(logrus.Fields{"exit_code": result.ExitCode, "duration": result.Duration}).Debug("target finished")

	if ctx.Err() == context.DeadlineExceeded {
		return result, errors.Wrapf(ErrTimeout, "after %s", r.opts.Timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, nil
		}
		result.ExitCode = 127
		return result, errors.Wrapf(err, "start %s", cmdArgs[0])
	}
	return result, nil
}

func commandArgs(shellSpec string, script string) []string {
	fields := strings.Fields(shellSpec)
	if len(fields) == 0 {
		if runtime.GOOS == "windows" {
			return []string{"cmd", "/C", script}
		}
		return []string{"sh", "-c", script}
	}
	shell := fields[0]
	args := append([]string{}, fields[1:]...)
	base := strings.ToLower(filepath.Base(shell))

	switch base {
	case "bash", "zsh", "ksh", "sh", "dash":
		args = append(args, "-c", script)
	case "cmd", "cmd.exe":
		args = append(args, "/C", script)
	case "pwsh", "powershell", "powershell.exe":
		args = append(args, "-Command", script)
	case "python", "python3", "python.exe":
		args = append(args, "-c", script)
	default:
		args = append(args, script)
	}
	return append([]string{shell}, args...)
}

func resolveWorkingDirectory(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "determine working directory")
		}
		return wd, nil
	}
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Errorf("working directory %q not found", root)
		}
		return "", errors.Wrapf(err, "stat working directory %q", root)
	}
	if !info.IsDir() {
		return "", errors.Errorf("working directory %q is not a directory", root)
	}
	return root, nil
}

func mergeEnv(base []string, overlays ...map[string]string) []string {
	envMap := make(map[string]string, len(base)+len(overlays)*4)
	for _, kv := range base {
		if idx := strings.Index(kv, "="); idx != -1 {
			envMap[kv[:idx]] = kv[idx+1:]
		}
	}
	for _, overlay := range overlays {
		for k, v := range overlay {
			envMap[k] = v
		}
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, envMap[k]))
	}
	return out
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(interface{ ExitStatus() int }); ok {
			return status.ExitStatus()
		}
		return exitErr.ExitCode()
	}
	return 1
}

func tailLines(input string, maxLines int) string {
	if input == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(input, "\n"), "\n")
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-maxLines:], "\n")
}
