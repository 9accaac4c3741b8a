package docker

import (
	"time"
)

// Config holds the configuration for Docker execution.
type Config struct {
	// Image must provide both bash and python3.
	Image string
	// MemoryLimit is the maximum amount of memory the container can use (in bytes).
	MemoryLimit int64
	// CPULimit is the number of CPUs the container can use.
	CPULimit float64
	// PIDsLimit caps the number of processes inside the container.
	PIDsLimit int64
	// Timeout applies when a request carries no timeout of its own.
	Timeout time.Duration
	// User runs commands when a request names no user.
	User string
	// PoolSize is the number of pre-warmed containers to maintain.
	PoolSize int
}

// DefaultConfig provides sensible defaults for a shell and Python sandbox.
func DefaultConfig() Config {
	return Config{
		// slim, not alpine: the shell tool needs bash
		Image: "python:3.12-slim",
		// 256 MB memory limit
		MemoryLimit: 256 * 1024 * 1024,
		CPULimit:    0.5,
		PIDsLimit:   64,
		Timeout:     30 * time.Second,
		User:        "nobody",
		PoolSize:    3,
	}
}

func (c Config) timeoutFor(requested time.Duration) time.Duration {
	if requested > 0 {
		return requested
	}
	return c.Timeout
}

func (c Config) userFor(requested string) string {
	if requested != "" {
		return requested
	}
	return c.User
}
