// Package executor defines the contract between tools and the sandbox that runs their
// commands. Backends live in subpackages (docker, local).
package executor

import (
	"context"
	"time"
)

// ExecutionRequest describes one process launch inside the sandbox.
type ExecutionRequest struct {
	// Argv is the command to launch. Never empty; Argv[0] is the shell or interpreter.
	Argv []string `json:"argv"`
	// Stdin is piped to the process when non-nil. A pointer to "" is an empty payload.
	Stdin *string `json:"stdin,omitempty"`
	// Timeout bounds the run. Zero means the backend default.
	Timeout time.Duration `json:"timeout,omitempty"`
	// User is the principal to run as inside the sandbox. Empty means the backend default.
	User string `json:"user,omitempty"`
}

// ExecutionResult is what the sandbox reports once the process is gone.
// Success implies a zero exit status; a failure may be a nonzero exit or a timeout.
type ExecutionResult struct {
	Success  bool          `json:"success"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
}

// Executor runs commands in an isolated environment.
// Execute blocks until the process exits or the timeout elapses.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error)
}

// ExitTimedOut is the exit code backends report when a run hits its timeout,
// matching the unix timeout command.
const ExitTimedOut = 124

// StringPtr returns a pointer to s, for filling ExecutionRequest.Stdin.
func StringPtr(s string) *string {
	return &s
}
