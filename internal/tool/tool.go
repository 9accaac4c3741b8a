// Package tool exposes sandboxed command execution as callable tools.
//
// A Tool pairs a static Descriptor (name, description, parameters) with a Builder
// that packages the input into an executor.ExecutionRequest, and with Translate,
// which turns the sandbox's result into output text or an apperror.ErrToolExecution.
//
//	bash := tool.Bash(sandbox, tool.WithTimeout(30*time.Second))
//	out, err := bash.Run(ctx, "echo hi")
package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/sandbox-tools/internal/apperror"
	"github.com/sakif/sandbox-tools/internal/executor"
)

// Parameter declares one named argument a tool accepts.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Descriptor is the declarative registration of a tool.
type Descriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// Schema renders the parameters as a JSON-schema object.
func (d Descriptor) Schema() map[string]any {
	props := make(map[string]any, len(d.Parameters))
	required := make([]string, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		props[p.Name] = map[string]any{"type": p.Type, "description": p.Description}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// Config is fixed when the tool is constructed and applies to every invocation.
type Config struct {
	// Timeout for each command. Zero leaves it to the sandbox.
	Timeout time.Duration
	// User to run commands as. Empty leaves it to the sandbox.
	User string
}

// Option configures a Tool at construction time.
type Option func(*Config)

// WithTimeout sets the per-command timeout. The value is passed through as is.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithUser sets the sandbox user commands run as.
func WithUser(user string) Option {
	return func(c *Config) { c.User = user }
}

// Tool is one sandboxed execution tool. It holds no mutable state and is safe
// for concurrent use.
type Tool struct {
	desc     Descriptor
	input    string // name of the single input parameter
	builder  Builder
	fallback string
	config   Config
	exec     executor.Executor
}

func newTool(desc Descriptor, input string, b Builder, fallback string, exec executor.Executor, opts []Option) *Tool {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Tool{
		desc:     desc,
		input:    input,
		builder:  b,
		fallback: fallback,
		config:   cfg,
		exec:     exec,
	}
}

func (t *Tool) Name() string           { return t.desc.Name }
func (t *Tool) Descriptor() Descriptor { return t.desc }
func (t *Tool) Config() Config         { return t.config }

// InputName is the name of the parameter carrying the command or program.
func (t *Tool) InputName() string { return t.input }

// Request builds the execution request Run would send for input.
func (t *Tool) Request(input string) executor.ExecutionRequest {
	return t.builder.Build(input, t.config)
}

// Run executes input in the sandbox and returns its stdout.
// Any failure, including one reported by the backend itself, is an
// apperror.ErrToolExecution carrying a non-empty message.
func (t *Tool) Run(ctx context.Context, input string) (string, error) {
	res, err := t.exec.Execute(ctx, t.Request(input))
	if err != nil {
		return "", translateBackendError(err, t.fallback)
	}
	if res == nil {
		return "", apperror.ToolExecution(t.fallback, nil)
	}
	return Translate(res, t.fallback)
}

// Invoke validates params against the descriptor and runs the tool.
func (t *Tool) Invoke(ctx context.Context, params map[string]any) (string, error) {
	input, err := t.Input(params)
	if err != nil {
		return "", err
	}
	return t.Run(ctx, input)
}

// Input extracts the tool's input parameter from params.
func (t *Tool) Input(params map[string]any) (string, error) {
	raw, ok := params[t.input]
	if !ok || raw == nil {
		return "", apperror.ValidationFailed(t.input, fmt.Sprintf("%s is required", t.input))
	}
	s, ok := raw.(string)
	if !ok {
		return "", apperror.ValidationFailed(t.input, fmt.Sprintf("%s must be a string, got %T", t.input, raw))
	}
	return s, nil
}
