package tool

import "github.com/sakif/sandbox-tools/internal/executor"

// Builder turns a tool's free-form text input into an execution request.
type Builder interface {
	Build(input string, cfg Config) executor.ExecutionRequest
}

// ShellBuilder runs the input as a bash command line: bash -c <cmd>.
type ShellBuilder struct{}

func (ShellBuilder) Build(cmd string, cfg Config) executor.ExecutionRequest {
	return executor.ExecutionRequest{
		Argv:    []string{"bash", "-c", cmd},
		Timeout: cfg.Timeout,
		User:    cfg.User,
	}
}

// InterpreterBuilder feeds the input as source code on stdin to python3.
type InterpreterBuilder struct{}

func (InterpreterBuilder) Build(code string, cfg Config) executor.ExecutionRequest {
	return executor.ExecutionRequest{
		Argv:    []string{"python3"},
		Stdin:   executor.StringPtr(code),
		Timeout: cfg.Timeout,
		User:    cfg.User,
	}
}
