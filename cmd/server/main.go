// Command server runs the sandbox tool server: an HTTP API that lets an agent
// call the bash and python tools, which execute inside Docker containers.
//
// Configuration comes from environment variables:
//
//	PORT                     listen port (8080)
//	DB_PATH                  invocation history database (data/tools.db)
//	LOG_LEVEL                debug, info, warn or error (info)
//	SANDBOX_BACKEND          docker or local (docker); local runs on the host, development only
//	SANDBOX_IMAGE            image with bash and python3 (python:3.12-slim)
//	SANDBOX_POOL_SIZE        pre-warmed containers (3)
//	TOOL_TIMEOUT             per-command timeout in seconds; unset uses the sandbox default
//	TOOL_USER                user to run commands as; unset uses the sandbox default
//	JWT_SECRET               enables bearer auth together with the two below
//	TOOL_CLIENT_ID           API client id
//	TOOL_CLIENT_SECRET_HASH  bcrypt hash of the client secret (see cmd/hashsecret)
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/sandbox-tools/internal/auth"
	"github.com/sakif/sandbox-tools/internal/executor"
	"github.com/sakif/sandbox-tools/internal/executor/docker"
	"github.com/sakif/sandbox-tools/internal/executor/local"
	"github.com/sakif/sandbox-tools/internal/server"
	"github.com/sakif/sandbox-tools/internal/tool"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}))

	if err := run(logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	port, err := intEnv("PORT", 8080)
	if err != nil {
		return err
	}

	dbPath := envOr("DB_PATH", "data/tools.db")
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	var opts []tool.Option
	var toolTimeout time.Duration
	if raw := os.Getenv("TOOL_TIMEOUT"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid TOOL_TIMEOUT %q: %w", raw, err)
		}
		toolTimeout = time.Duration(secs) * time.Second
		opts = append(opts, tool.WithTimeout(toolTimeout))
	}
	if user := os.Getenv("TOOL_USER"); user != "" {
		opts = append(opts, tool.WithUser(user))
	}

	sandbox, closeSandbox, err := newSandbox(logger)
	if err != nil {
		return err
	}
	defer closeSandbox()

	registry := tool.NewRegistry(
		tool.Bash(sandbox, opts...),
		tool.Python(sandbox, opts...),
	)

	cfg := server.Config{
		Port:         port,
		DBPath:       dbPath,
		JWTSecret:    os.Getenv("JWT_SECRET"),
		WriteTimeout: writeTimeoutFor(toolTimeout),
	}
	clientID := os.Getenv("TOOL_CLIENT_ID")
	clientHash := os.Getenv("TOOL_CLIENT_SECRET_HASH")
	if clientID != "" && clientHash != "" {
		cfg.Clients = auth.Clients{clientID: clientHash}
	}
	if cfg.JWTSecret == "" || cfg.Clients == nil {
		logger.Warn("JWT_SECRET, TOOL_CLIENT_ID or TOOL_CLIENT_SECRET_HASH not set; authentication is disabled")
	}

	srv, err := server.New(cfg, logger, registry)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Start()
}

// newSandbox builds the configured execution backend and its cleanup func.
func newSandbox(logger *slog.Logger) (executor.Executor, func(), error) {
	switch backend := envOr("SANDBOX_BACKEND", "docker"); backend {
	case "docker":
		cfg := docker.DefaultConfig()
		if image := os.Getenv("SANDBOX_IMAGE"); image != "" {
			cfg.Image = image
		}
		size, err := intEnv("SANDBOX_POOL_SIZE", cfg.PoolSize)
		if err != nil {
			return nil, nil, err
		}
		cfg.PoolSize = size

		exec, err := docker.New(cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("starting docker sandbox: %w", err)
		}
		return exec, func() { exec.Close() }, nil

	case "local":
		logger.Warn("using the local backend; commands run unsandboxed on this host")
		return local.New(local.Config{}, logger), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown SANDBOX_BACKEND %q", backend)
	}
}

// writeTimeoutFor leaves headroom over the tool timeout so a slow command
// still gets its response written.
func writeTimeoutFor(toolTimeout time.Duration) time.Duration {
	if toolTimeout <= 0 {
		return 2 * time.Minute
	}
	return toolTimeout + 30*time.Second
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return n, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
