package tool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/sandbox-tools/internal/tool"
)

func TestRegistry(t *testing.T) {
	exec := succeed("", "")
	reg := tool.NewRegistry(tool.Python(exec), tool.Bash(exec))

	got, ok := reg.Get("bash")
	require.True(t, ok)
	assert.Equal(t, "bash", got.Name())

	_, ok = reg.Get("ruby")
	assert.False(t, ok)

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "bash", list[0].Name())
	assert.Equal(t, "python", list[1].Name())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	exec := succeed("", "")
	reg := tool.NewRegistry(tool.Bash(exec))

	assert.Panics(t, func() { reg.Register(tool.Bash(exec)) })
}
