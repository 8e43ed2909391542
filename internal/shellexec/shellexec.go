// Package shellexec wraps child-process execution: synchronous runs with
// captured streams, line-streamed runs, and asynchronous handles. Each call
// spawns exactly one child process and reports its outcome faithfully; a
// non-zero exit code is a result, not an error.
package shellexec

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/milkywaygod2/sysutil/internal/errors"
)

// Result holds the outcome of a completed child process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the child exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Options controls how a command is spawned.
type Options struct {
	// Shell runs the command line through the platform shell instead of
	// splitting it into argv.
	Shell bool
	// Dir is the working directory for the child.
	Dir string
	// Env replaces the child environment when non-nil.
	Env []string
	// Stdin is written to the child's standard input when non-empty.
	Stdin string
	// Timeout bounds the run when positive; expiry kills the child and the
	// result reports exit code -1.
	Timeout time.Duration
}

// SplitCommand splits a command line into argv entries, honoring single and
// double quotes. It performs no variable expansion or globbing.
func SplitCommand(line string) []string {
	var (
		args    []string
		current strings.Builder
		quote   rune
		has     bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			has = true
		case r == ' ' || r == '\t':
			if has || current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
				has = false
			}
		default:
			current.WriteRune(r)
		}
	}
	if has || current.Len() > 0 {
		args = append(args, current.String())
	}

	return args
}

func buildCommand(ctx context.Context, command string, opts Options) (*exec.Cmd, error) {
	var cmd *exec.Cmd

	if opts.Shell {
		if runtime.GOOS == "windows" {
			cmd = exec.CommandContext(ctx, "cmd", "/C", command)
		} else {
			cmd = exec.CommandContext(ctx, "sh", "-c", command)
		}
	} else {
		argv := SplitCommand(command)
		if len(argv) == 0 {
			return nil, errors.NewExecError(errors.ErrCodeInvalidArgument, "empty command", nil)
		}
		cmd = exec.CommandContext(ctx, argv[0], argv[1:]...)
	}

	cmd.Dir = opts.Dir
	if opts.Env != nil {
		cmd.Env = opts.Env
	}
	if opts.Stdin != "" {
		cmd.Stdin = strings.NewReader(opts.Stdin)
	}

	return cmd, nil
}

// Run executes a command and captures its streams. The child's exit code is
// reported as-is; the returned error is non-nil only when the process could
// not be started or was cut short by a timeout or context cancellation, in
// which case the exit code is -1.
func Run(ctx context.Context, command string, opts Options) (Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd, err := buildCommand(ctx, command, opts)
	if err != nil {
		return Result{ExitCode: -1}, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	switch {
	case runErr == nil:
		result.ExitCode = 0
	case ctx.Err() != nil:
		result.ExitCode = -1
		return result, errors.ErrCommandTimeout(command, ctx.Err())
	default:
		var exitErr *exec.ExitError
		if stderrors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			return result, errors.NewExecError(errors.ErrCodeCommandNotFound,
				"failed to start command", runErr).WithContext("command", command)
		}
	}

	return result, nil
}

// RunArgs executes an already-split argv, bypassing command-line parsing.
// Callers with arguments that may contain spaces (paths, version pins)
// should prefer this over Run.
func RunArgs(ctx context.Context, argv []string, opts Options) (Result, error) {
	if len(argv) == 0 {
		return Result{ExitCode: -1},
			errors.NewExecError(errors.ErrCodeInvalidArgument, "empty command", nil)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = opts.Dir
	if opts.Env != nil {
		cmd.Env = opts.Env
	}
	if opts.Stdin != "" {
		cmd.Stdin = strings.NewReader(opts.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	command := strings.Join(argv, " ")
	switch {
	case runErr == nil:
		result.ExitCode = 0
	case ctx.Err() != nil:
		result.ExitCode = -1
		return result, errors.ErrCommandTimeout(command, ctx.Err())
	default:
		var exitErr *exec.ExitError
		if stderrors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			return result, errors.NewExecError(errors.ErrCodeCommandNotFound,
				"failed to start command", runErr).WithContext("command", command)
		}
	}

	return result, nil
}

// Output runs a command and returns only its stdout.
func Output(ctx context.Context, command string, opts Options) (string, error) {
	result, err := Run(ctx, command, opts)
	if err != nil {
		return "", err
	}
	return result.Stdout, nil
}

// RunWithInput runs a command feeding input to its standard input.
func RunWithInput(ctx context.Context, command, input string, opts Options) (Result, error) {
	opts.Stdin = input
	return Run(ctx, command, opts)
}

// RunStreaming executes a command and invokes fn for each line of merged
// stdout/stderr output as it is produced. The final Result carries the exit
// code but empty streams, since output was already delivered line by line.
func RunStreaming(ctx context.Context, command string, opts Options, fn func(line string)) (Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd, err := buildCommand(ctx, command, opts)
	if err != nil {
		return Result{ExitCode: -1}, err
	}

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	start := time.Now()
	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return Result{ExitCode: -1}, errors.NewExecError(errors.ErrCodeCommandNotFound,
			"failed to start command", err).WithContext("command", command)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			fn(scanner.Text())
		}
	}()

	waitErr := cmd.Wait()
	pw.Close()
	<-done
	pr.Close()

	result := Result{Duration: time.Since(start)}
	if waitErr != nil {
		if ctx.Err() != nil {
			result.ExitCode = -1
			return result, errors.ErrCommandTimeout(command, ctx.Err())
		}
		var exitErr *exec.ExitError
		if stderrors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			return result, errors.NewExecError(errors.ErrCodeCommandFailed, "command failed", waitErr)
		}
	}

	return result, nil
}

// Handle represents an asynchronously started child process.
type Handle struct {
	cmd    *exec.Cmd
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	start  time.Time
}

// Start launches a command without waiting for it to finish.
func Start(ctx context.Context, command string, opts Options) (*Handle, error) {
	cmd, err := buildCommand(ctx, command, opts)
	if err != nil {
		return nil, err
	}

	h := &Handle{
		cmd:    cmd,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	cmd.Stdout = h.stdout
	cmd.Stderr = h.stderr

	h.start = time.Now()
	if err := cmd.Start(); err != nil {
		return nil, errors.NewExecError(errors.ErrCodeCommandNotFound,
			"failed to start command", err).WithContext("command", command)
	}

	return h, nil
}

// PID returns the child's process ID.
func (h *Handle) PID() int {
	if h.cmd.Process == nil {
		return -1
	}
	return h.cmd.Process.Pid
}

// Wait blocks until the child exits and returns its result.
func (h *Handle) Wait() (Result, error) {
	waitErr := h.cmd.Wait()
	result := Result{
		Stdout:   h.stdout.String(),
		Stderr:   h.stderr.String(),
		Duration: time.Since(h.start),
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if stderrors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		result.ExitCode = -1
		return result, errors.NewExecError(errors.ErrCodeCommandFailed, "wait failed", waitErr)
	}

	return result, nil
}

// Kill terminates the child process.
func (h *Handle) Kill() error {
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}

// CommandExists reports whether a command resolves on PATH.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// RunBatch executes commands in sequence, collecting each result. When
// stopOnError is set, execution halts after the first command that fails to
// spawn or exits non-zero; results gathered so far are still returned.
func RunBatch(ctx context.Context, commands []string, stopOnError bool, opts Options) ([]Result, error) {
	results := make([]Result, 0, len(commands))

	for _, command := range commands {
		result, err := Run(ctx, command, opts)
		results = append(results, result)
		if err != nil && stopOnError {
			return results, err
		}
		if stopOnError && !result.Success() {
			return results, errors.NewExecError(errors.ErrCodeCommandFailed,
				fmt.Sprintf("command exited with code %d", result.ExitCode), nil).
				WithContext("command", command)
		}
	}

	return results, nil
}

// Elevated runs a command with elevated privileges: sudo on Unix-like
// systems, runas on Windows.
func Elevated(ctx context.Context, command string, opts Options) (Result, error) {
	if runtime.GOOS == "windows" {
		elevated := fmt.Sprintf(`runas /user:Administrator "%s"`, command)
		opts.Shell = true
		return Run(ctx, elevated, opts)
	}
	return Run(ctx, "sudo "+command, opts)
}
