package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/containermirror/mirrorctl/pkg/mirrorctl/config"
)

func TestRuntimeStateOutputFormat(t *testing.T) {
	rt := &runtimeState{outputFormat: "json"}
	require.Equal(t, "json", rt.OutputFormat())

	rt = &runtimeState{cfg: &config.Config{Settings: config.Settings{OutputFormat: "yaml"}}}
	require.Equal(t, "yaml", rt.OutputFormat())

	rt = &runtimeState{}
	require.Equal(t, "table", rt.OutputFormat())
}

func TestRuntimeStateTokenStorage(t *testing.T) {
	rt := &runtimeState{tokenStorageOverride: "keychain"}
	require.Equal(t, "keychain", rt.TokenStorage())

	rt = &runtimeState{cfg: &config.Config{Settings: config.Settings{TokenStorage: "file"}}}
	require.Equal(t, "file", rt.TokenStorage())

	rt = &runtimeState{}
	require.Equal(t, "", rt.TokenStorage())
}

func TestRuntimeStateProxy(t *testing.T) {
	rt := &runtimeState{proxyOverride: "http://proxy:3128"}
	require.Equal(t, "http://proxy:3128", rt.Proxy())

	rt = &runtimeState{cfg: &config.Config{Proxy: "http://cfg-proxy:8080"}}
	require.Equal(t, "http://cfg-proxy:8080", rt.Proxy())
}

func TestEnsureConfigLoaded(t *testing.T) {
	path := configPathForTest(t)
	cfg := config.DefaultConfig()
	cfg.Proxy = "http://proxy:3128"
	require.NoError(t, config.Save(path, &cfg))

	rt := &runtimeState{configPath: path}
	require.NoError(t, rt.EnsureConfigLoaded())
	require.NotNil(t, rt.cfg)
	require.Equal(t, "http://proxy:3128", rt.cfg.Proxy)
}

func TestResolveTokenPrecedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	rt := &runtimeState{tokenOverride: "flag-token"}
	token, err := resolveToken(rt)
	require.NoError(t, err)
	require.Equal(t, "flag-token", token)

	// Inline config token is the legacy fallback behind the stores.
	rt = &runtimeState{cfg: &config.Config{Token: "inline-token"}}
	token, err = resolveToken(rt)
	require.NoError(t, err)
	require.Equal(t, "inline-token", token)

	rt = &runtimeState{cfg: &config.Config{}}
	_, err = resolveToken(rt)
	require.ErrorContains(t, err, "not authenticated")
}

func configPathForTest(t *testing.T) string {
	t.Helper()
	return t.TempDir() + "/config.yaml"
}
