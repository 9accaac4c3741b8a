// Package docker runs sandbox commands inside pre-warmed Docker containers.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/sakif/sandbox-tools/internal/executor"
)

var _ executor.Executor = (*Executor)(nil)

// Executor implements the executor.Executor interface using Docker.
type Executor struct {
	cli    *client.Client
	config Config
	logger *slog.Logger
	pool   *Pool
}

// New creates a new Docker Executor, pulls the image and starts the pool.
func New(cfg Config, logger *slog.Logger) (*Executor, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger.Info("ensuring docker image is available", slog.String("image", cfg.Image))
	reader, err := cli.ImagePull(ctx, cfg.Image, image.PullOptions{})
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()
	// Read everything to block until the pull is complete
	if _, err := io.Copy(io.Discard, reader); err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to pull image: %w", err)
	}
	logger.Info("docker image is ready")

	exec := &Executor{
		cli:    cli,
		config: cfg,
		logger: logger,
	}

	exec.pool = NewPool(cli, cfg, logger)
	exec.pool.Start()

	return exec, nil
}

// Close shuts down the executor pool and docker client.
func (e *Executor) Close() error {
	e.pool.Stop()
	return e.cli.Close()
}

// Execute runs req.Argv in a fresh container via docker exec. Stdin, when set,
// is written to the process and then closed.
func (e *Executor) Execute(ctx context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	if len(req.Argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	start := time.Now()
	timeout := e.config.timeoutFor(req.Timeout)
	user := e.config.userFor(req.User)

	containerID, err := e.pool.GetContainer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container from pool: %w", err)
	}

	// Containers are single-use, whatever the outcome.
	defer e.pool.removeContainer(containerID)

	executeCtx, executeCancel := context.WithTimeout(ctx, timeout)
	defer executeCancel()

	execResp, err := e.cli.ContainerExecCreate(executeCtx, containerID, container.ExecOptions{
		User:         user,
		AttachStdin:  req.Stdin != nil,
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          req.Argv,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exec: %w", err)
	}

	attachResp, err := e.cli.ContainerExecAttach(executeCtx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer attachResp.Close()

	e.logger.Debug("sandbox exec started",
		slog.String("container", shortID(containerID)),
		slog.String("argv0", req.Argv[0]),
		slog.String("user", user),
		slog.Duration("timeout", timeout),
	)

	if req.Stdin != nil {
		go func(input string) {
			if _, err := io.Copy(attachResp.Conn, strings.NewReader(input)); err != nil {
				e.logger.Warn("failed to write stdin", slog.String("error", err.Error()))
			}
			if err := attachResp.CloseWrite(); err != nil {
				e.logger.Warn("failed to close stdin", slog.String("error", err.Error()))
			}
		}(*req.Stdin)
	}

	var stdout, stderr bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = stdcopy.StdCopy(&stdout, &stderr, attachResp.Reader)
		close(done)
	}()

	res := &executor.ExecutionResult{}

	select {
	case <-done:
		inspectResp, err := e.cli.ContainerExecInspect(ctx, execResp.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect exec: %w", err)
		}
		res.ExitCode = inspectResp.ExitCode
	case <-executeCtx.Done():
		// Unblock the reader before touching the buffers.
		attachResp.Close()
		<-done
		res.ExitCode = executor.ExitTimedOut
		stderr.WriteString("\nExecution timed out.\n")
		e.logger.Warn("sandbox exec timed out",
			slog.String("container", shortID(containerID)),
			slog.Duration("timeout", timeout),
		)
	}

	res.Success = res.ExitCode == 0
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.Duration = time.Since(start)

	e.logger.Debug("sandbox exec finished",
		slog.String("container", shortID(containerID)),
		slog.Int("exitCode", res.ExitCode),
		slog.Duration("duration", res.Duration),
	)

	return res, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
