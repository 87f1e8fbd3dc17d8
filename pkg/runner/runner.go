// Package runner executes the commands produced for runnables.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the process is
// killed, since grandchildren may keep them open.
const waitDelay = 2 * time.Second

// Command is an external process invocation.
type Command struct {
	// Name is the executable, resolved through PATH when not absolute.
	Name string `json:"name"`
	// Args are the arguments, excluding Name.
	Args []string `json:"args"`
	// Dir is the working directory. Empty means the current directory.
	Dir string `json:"dir,omitempty"`
}

// String renders the command as a shell-like line. Arguments containing
// whitespace or quotes are quoted.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Name))
	for _, arg := range c.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Result is the outcome of a finished process.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Success reports whether the process exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner starts commands and waits for them.
type Runner struct {
	stdout  io.Writer
	stderr  io.Writer
	env     []string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets where the process output is streamed.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		if stdout != nil {
			r.stdout = stdout
		}
		if stderr != nil {
			r.stderr = stderr
		}
	}
}

// WithEnv appends variables to the inherited environment.
func WithEnv(env ...string) Option {
	return func(r *Runner) {
		r.env = append(r.env, env...)
	}
}

// WithTimeout bounds each run. Zero or negative means no limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the logger used for run events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Runner that streams to the process' stdout and stderr.
func New(opts ...Option) *Runner {
	r := &Runner{
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd and waits for it to exit. A non-zero exit status is
// reported in Result, not as an error; errors mean the process could not be
// started or was stopped by ctx.
func (r *Runner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Name == "" {
		return Result{}, errors.New("runner: empty command name")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	proc.Dir = cmd.Dir
	proc.Stdout = r.stdout
	proc.Stderr = r.stderr
	proc.WaitDelay = waitDelay
	if len(r.env) > 0 {
		proc.Env = append(os.Environ(), r.env...)
	}

	r.logger.Debug("running command", slog.String("command", cmd.String()), slog.String("dir", cmd.Dir))

	start := time.Now()
	err := proc.Run()
	result := Result{Duration: time.Since(start)}

	if err == nil {
		r.logger.Debug("command finished", slog.Duration("duration", result.Duration))
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("runner: %s: %w", cmd.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		r.logger.Debug("command failed",
			slog.Int("exit_code", result.ExitCode),
			slog.Duration("duration", result.Duration),
		)
		return result, nil
	}

	return result, fmt.Errorf("runner: start %s: %w", cmd.Name, err)
}
