package cloner

import (
	"os"
	"path/filepath"
)

const (
	// DefaultProvider is used when the Codex config does not name one.
	DefaultProvider = "cliproxyapi"

	// DefaultPattern matches Codex rollouts under YYYY/MM/DD directories.
	DefaultPattern = "**/rollout-*.jsonl"
)

// DefaultCodexHome returns ~/.codex, or ".codex" if the home directory is unknown.
func DefaultCodexHome() string {
	if v := os.Getenv("CODEX_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".codex"
	}
	return filepath.Join(home, ".codex")
}

// DefaultSessionsDir returns the Codex sessions directory.
func DefaultSessionsDir() string {
	return filepath.Join(DefaultCodexHome(), "sessions")
}

// DefaultConfigFile returns the Codex config.toml path.
func DefaultConfigFile() string {
	return filepath.Join(DefaultCodexHome(), "config.toml")
}
