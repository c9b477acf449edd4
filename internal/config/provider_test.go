package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cloner "github.com/armatrix/codex-session-cloner"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestResolveProvider_FromConfig(t *testing.T) {
	path := writeConfig(t, `
model = "gpt-5-codex"
model_provider = "cliproxyapi"

[model_providers.cliproxyapi]
name = "CLIProxyAPI"
base_url = "http://127.0.0.1:8317/v1"
`)

	provider, err := ResolveProvider(path, "openai")
	require.NoError(t, err)
	assert.Equal(t, "cliproxyapi", provider)
}

func TestResolveProvider_IgnoresNestedKeys(t *testing.T) {
	path := writeConfig(t, `
[profiles.work]
model_provider = "azure"
`)

	provider, err := ResolveProvider(path, "openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", provider, "only the top-level key counts")
}

func TestResolveProvider_MissingFileUsesFallback(t *testing.T) {
	provider, err := ResolveProvider(filepath.Join(t.TempDir(), "absent.toml"), cloner.DefaultProvider)
	require.NoError(t, err)
	assert.Equal(t, cloner.DefaultProvider, provider)
}

func TestResolveProvider_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "model_provider = \n[[[")

	_, err := ResolveProvider(path, "openai")
	require.Error(t, err)
	assert.ErrorIs(t, err, cloner.ErrConfig)
}

func TestResolveProvider_NothingResolved(t *testing.T) {
	_, err := ResolveProvider(filepath.Join(t.TempDir(), "absent.toml"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, cloner.ErrConfig)
}
