package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containermirror/mirrorctl/pkg/mirrorctl/config"
)

func TestAuthCommandStructure(t *testing.T) {
	cmd := NewAuthCommand()
	names := make([]string, 0, 4)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"login", "token", "status", "logout"}, names)
}

func TestAuthLoginNonInteractive(t *testing.T) {
	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: buf})
	root.SetArgs([]string{"auth", "login", "--non-interactive"})
	err := root.Execute()
	require.ErrorContains(t, err, "auth token")
}

func TestAuthLogoutWithoutCredential(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: buf})
	root.SetArgs([]string{"auth", "logout"})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "Logged out")
}

func TestAuthLogoutClearsInlineToken(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := configPathForTest(t)

	cfg := config.DefaultConfig()
	cfg.Token = "inline-token"
	require.NoError(t, config.Save(path, &cfg))

	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: path, OutputWriter: buf})
	root.SetArgs([]string{"auth", "logout"})
	require.NoError(t, root.Execute())

	updated, err := config.Load(path)
	require.NoError(t, err)
	assert.Empty(t, updated.Token)

	// No credential must survive logout, inline or stored.
	rt := &runtimeState{configPath: path}
	_, err = resolveToken(rt)
	require.ErrorContains(t, err, "not authenticated")
}
