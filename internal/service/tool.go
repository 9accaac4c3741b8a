// Package service holds the application logic between the HTTP handlers and the
// tool/repository packages. It knows nothing about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/sandbox-tools/internal/apperror"
	"github.com/sakif/sandbox-tools/internal/model"
	"github.com/sakif/sandbox-tools/internal/repository"
	"github.com/sakif/sandbox-tools/internal/tool"
)

const (
	// MaxInputLength bounds a single command or program.
	MaxInputLength   = 1 << 20
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ToolService invokes registered tools and keeps a history of the calls.
type ToolService struct {
	tools  *tool.Registry
	repo   repository.InvocationRepository
	logger *slog.Logger
}

func NewToolService(tools *tool.Registry, repo repository.InvocationRepository, logger *slog.Logger) *ToolService {
	return &ToolService{
		tools:  tools,
		repo:   repo,
		logger: logger,
	}
}

// Tools returns the descriptors of every registered tool.
func (s *ToolService) Tools() []tool.Descriptor {
	list := s.tools.List()
	out := make([]tool.Descriptor, 0, len(list))
	for _, t := range list {
		out = append(out, t.Descriptor())
	}
	return out
}

// Invoke runs the named tool with params on behalf of caller.
//
// Tool failures come back as apperror.ErrToolExecution, unchanged. Every call
// that reaches the sandbox is recorded; a failure to record is logged only.
func (s *ToolService) Invoke(ctx context.Context, caller, name string, params map[string]any) (string, error) {
	t, ok := s.tools.Get(name)
	if !ok {
		return "", apperror.NotFound("tool", name)
	}

	input, err := t.Input(params)
	if err != nil {
		return "", err
	}
	if len(input) > MaxInputLength {
		return "", apperror.ValidationFailed(t.InputName(),
			fmt.Sprintf("input must be %d bytes or fewer", MaxInputLength))
	}

	start := time.Now()
	output, runErr := t.Run(ctx, input)
	duration := time.Since(start)

	inv := &model.Invocation{
		Tool:      name,
		Input:     input,
		Output:    output,
		Success:   runErr == nil,
		Caller:    caller,
		Duration:  duration,
		CreatedAt: start,
	}
	if runErr != nil {
		inv.Error = runErr.Error()
	}

	// Record even if the caller went away mid-run.
	if err := s.repo.Create(context.WithoutCancel(ctx), inv); err != nil {
		s.logger.Error("failed to record invocation",
			slog.String("tool", name),
			slog.String("error", err.Error()),
		)
	}

	if runErr != nil {
		level := slog.LevelInfo
		if !errors.Is(runErr, apperror.ErrToolExecution) {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "tool invocation failed",
			slog.String("tool", name),
			slog.String("invocation", inv.ID),
			slog.Duration("duration", duration),
			slog.String("error", runErr.Error()),
		)
		return "", runErr
	}

	s.logger.Info("tool invocation succeeded",
		slog.String("tool", name),
		slog.String("invocation", inv.ID),
		slog.Duration("duration", duration),
		slog.Int("outputBytes", len(output)),
	)
	return output, nil
}

func (s *ToolService) GetInvocation(ctx context.Context, id string) (*model.Invocation, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting invocation: %w", err)
	}
	return inv, nil
}

// ListInvocations returns recorded calls, newest first. Out-of-range paging
// values are clamped rather than rejected.
func (s *ToolService) ListInvocations(ctx context.Context, toolName string, limit, offset int) ([]model.Invocation, error) {
	if toolName != "" {
		if _, ok := s.tools.Get(toolName); !ok {
			return nil, apperror.NotFound("tool", toolName)
		}
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	invocations, err := s.repo.List(ctx, repository.ListOptions{
		Tool:   toolName,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing invocations: %w", err)
	}
	return invocations, nil
}
