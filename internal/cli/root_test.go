package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasRun(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()

	names := make([]string, 0)
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "run")
}

func TestRootCommandHelp(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "tocdigest")
}

func TestRunCommandFlags(t *testing.T) {
	t.Parallel()

	run := NewRunCommand(&RootOptions{})
	for _, flag := range []string{"feeds", "interests", "output", "backend", "dry-run"} {
		assert.NotNil(t, run.Flags().Lookup(flag), flag)
	}
}
