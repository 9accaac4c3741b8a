// Package local runs sandbox commands as host processes.
//
// It offers no isolation beyond a private temp directory, a separate process group
// and a scrubbed environment. Use it only for development when Docker is unavailable.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/sakif/sandbox-tools/internal/executor"
)

const (
	// maxOutputBytes caps each of stdout and stderr.
	maxOutputBytes = 1 << 20

	defaultTimeout = 30 * time.Second
)

var _ executor.Executor = (*Executor)(nil)

// Config configures the local executor.
type Config struct {
	// Timeout applies when a request carries no timeout of its own.
	Timeout time.Duration
}

// Executor runs commands with os/exec.
type Executor struct {
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a local executor.
func New(cfg Config, logger *slog.Logger) *Executor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Executor{timeout: timeout, logger: logger}
}

// Execute runs req.Argv directly. req.User is not honored; switching users on
// the host would need privileges this process should not have.
func (e *Executor) Execute(ctx context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	if len(req.Argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	if req.User != "" {
		e.logger.Warn("local executor ignores user", slog.String("user", req.User))
	}

	timeout := e.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dir, err := os.MkdirTemp("", "sandbox-tools-*")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove work dir", slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}()

	cmd := exec.CommandContext(runCtx, req.Argv[0], req.Argv[1:]...)
	cmd.Dir = dir
	cmd.Env = []string{
		"PATH=/usr/local/bin:/usr/bin:/bin",
		"HOME=" + dir,
		"TMPDIR=" + dir,
		"LANG=C.UTF-8",
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// Kill the whole group so children die with the shell.
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = time.Second

	if req.Stdin != nil {
		cmd.Stdin = strings.NewReader(*req.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, remaining: maxOutputBytes}
	cmd.Stderr = &limitedWriter{w: &stderr, remaining: maxOutputBytes}

	start := time.Now()
	runErr := cmd.Run()
	res := &executor.ExecutionResult{Duration: time.Since(start)}

	switch {
	case runErr == nil:
	case runCtx.Err() != nil && ctx.Err() == nil:
		res.ExitCode = executor.ExitTimedOut
		stderr.WriteString("\nExecution timed out.\n")
	default:
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("running %s: %w", req.Argv[0], runErr)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	res.Success = runErr == nil
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	e.logger.Debug("local exec finished",
		slog.String("argv0", req.Argv[0]),
		slog.Int("exitCode", res.ExitCode),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

// limitedWriter drops everything past remaining bytes but reports full writes,
// so the child never sees a broken pipe.
type limitedWriter struct {
	w         io.Writer
	remaining int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if l.remaining <= 0 {
		return n, nil
	}
	if len(p) > l.remaining {
		p = p[:l.remaining]
	}
	written, err := l.w.Write(p)
	l.remaining -= written
	if err != nil {
		return written, err
	}
	return n, nil
}
