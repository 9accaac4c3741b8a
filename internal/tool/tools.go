package tool

import "github.com/sakif/sandbox-tools/internal/executor"

const (
	BashName   = "bash"
	PythonName = "python"
)

var bashDescriptor = Descriptor{
	Name:        BashName,
	Description: "Use this function to execute bash commands.",
	Parameters: []Parameter{
		{Name: "cmd", Type: "string", Description: "The bash command to execute.", Required: true},
	},
}

var pythonDescriptor = Descriptor{
	Name:        PythonName,
	Description: "Use the python function to execute Python code.",
	Parameters: []Parameter{
		{Name: "code", Type: "string", Description: "The python code to execute.", Required: true},
	},
}

// Bash returns a tool that runs shell commands with bash -c in the sandbox.
func Bash(exec executor.Executor, opts ...Option) *Tool {
	return newTool(bashDescriptor, "cmd", ShellBuilder{}, fallbackCommand, exec, opts)
}

// Python returns a tool that runs Python source with python3, delivered on stdin.
func Python(exec executor.Executor, opts ...Option) *Tool {
	return newTool(pythonDescriptor, "code", InterpreterBuilder{}, fallbackCode, exec, opts)
}
