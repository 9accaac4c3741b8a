package tool

import (
	"github.com/sakif/sandbox-tools/internal/apperror"
	"github.com/sakif/sandbox-tools/internal/executor"
)

const (
	fallbackCommand = "error executing command"
	fallbackCode    = "error executing code"
)

// Translate maps a sandbox result onto a tool's return contract.
//
// A successful result yields Stdout verbatim; anything on Stderr is dropped.
// A failed result yields an apperror.ErrToolExecution whose message is Stderr,
// else Stdout, else fallback, so the message is never empty.
func Translate(res *executor.ExecutionResult, fallback string) (string, error) {
	if res.Success {
		return res.Stdout, nil
	}

	msg := res.Stderr
	if msg == "" {
		msg = res.Stdout
	}
	if msg == "" {
		msg = fallback
	}
	return "", apperror.ToolExecution(msg, nil)
}

// translateBackendError folds a backend failure into the same error kind as a
// failed result.
func translateBackendError(err error, fallback string) error {
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	return apperror.ToolExecution(msg, err)
}
