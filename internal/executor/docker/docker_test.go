package docker_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/sandbox-tools/internal/executor"
	"github.com/sakif/sandbox-tools/internal/executor/docker"
)

func TestDockerExecutor(t *testing.T) {
	// Skip in CI environments if docker is not available
	if os.Getenv("CI") != "" || testing.Short() {
		t.Skip("Skipping docker test in CI environment")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := docker.DefaultConfig()
	cfg.PoolSize = 1

	exec, err := docker.New(cfg, logger)
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	defer exec.Close()

	t.Run("bash command", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), executor.ExecutionRequest{
			Argv: []string{"bash", "-c", "echo hi"},
		})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "hi\n", res.Stdout)
		assert.Empty(t, res.Stderr)
		assert.Greater(t, res.Duration, time.Duration(0))
	})

	t.Run("python code on stdin", func(t *testing.T) {
		code := strings.Join([]string{
			"def fib(n):",
			"    if n <= 1: return n",
			"    return fib(n-1) + fib(n-2)",
			"print(fib(5))",
		}, "\n")

		res, err := exec.Execute(context.Background(), executor.ExecutionRequest{
			Argv:  []string{"python3"},
			Stdin: executor.StringPtr(code),
		})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "5\n", res.Stdout)
	})

	t.Run("python error", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), executor.ExecutionRequest{
			Argv:  []string{"python3"},
			Stdin: executor.StringPtr("print(1/0)"),
		})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.NotEqual(t, 0, res.ExitCode)
		assert.Contains(t, res.Stderr, "ZeroDivisionError")
	})

	t.Run("runs as requested user", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), executor.ExecutionRequest{
			Argv: []string{"bash", "-c", "id -u"},
			User: "root",
		})
		require.NoError(t, err)
		assert.Equal(t, "0\n", res.Stdout)
	})

	t.Run("timeout", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), executor.ExecutionRequest{
			Argv:    []string{"bash", "-c", "sleep 30"},
			Timeout: 2 * time.Second,
		})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, executor.ExitTimedOut, res.ExitCode)
		assert.Contains(t, res.Stderr, "timed out")
	})

	t.Run("empty argv", func(t *testing.T) {
		_, err := exec.Execute(context.Background(), executor.ExecutionRequest{})
		assert.Error(t, err)
	})
}
