package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPullRequiresArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: buf})
	root.SetArgs([]string{"pull"})
	require.Error(t, root.Execute())
}

func TestPullRequiresCredential(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: buf})
	root.SetArgs([]string{"pull", "nginx:alpine"})
	require.ErrorContains(t, root.Execute(), "not authenticated")
}

func TestBareImageShorthand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: buf})
	root.SetArgs([]string{"nginx:alpine"})
	// The bare-argument shorthand routes through the same sync path.
	require.ErrorContains(t, root.Execute(), "not authenticated")
}
