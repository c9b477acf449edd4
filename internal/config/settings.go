// Package config handles settings loading and provider resolution for the
// session cloner.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	cloner "github.com/armatrix/codex-session-cloner"
)

// Settings holds merged configuration from multiple sources.
// Later sources override earlier ones.
type Settings struct {
	SessionsDir     string `json:"sessionsDir,omitempty"`
	CodexConfig     string `json:"codexConfig,omitempty"`
	DefaultProvider string `json:"defaultProvider,omitempty"`
	Pattern         string `json:"pattern,omitempty"`
}

// LoadSettings merges settings from multiple JSON file paths.
// Later paths override earlier ones. Missing files are silently skipped;
// a file that exists but does not parse is an error.
func LoadSettings(paths ...string) (*Settings, error) {
	merged := &Settings{}

	for _, path := range paths {
		s, err := loadSettingsFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("settings %s: %w", path, err)
		}
		mergeSettings(merged, s)
	}

	return merged, nil
}

// DefaultSettingsPaths returns the standard settings file search paths.
func DefaultSettingsPaths() []string {
	return []string{filepath.Join(cloner.DefaultCodexHome(), "session-cloner.json")}
}

// ApplyDefaults fills empty fields from the built-in defaults.
func (s *Settings) ApplyDefaults() {
	if s.SessionsDir == "" {
		s.SessionsDir = cloner.DefaultSessionsDir()
	}
	if s.CodexConfig == "" {
		s.CodexConfig = cloner.DefaultConfigFile()
	}
	if s.DefaultProvider == "" {
		s.DefaultProvider = cloner.DefaultProvider
	}
	if s.Pattern == "" {
		s.Pattern = cloner.DefaultPattern
	}
}

func loadSettingsFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func mergeSettings(dst, src *Settings) {
	if src.SessionsDir != "" {
		dst.SessionsDir = src.SessionsDir
	}
	if src.CodexConfig != "" {
		dst.CodexConfig = src.CodexConfig
	}
	if src.DefaultProvider != "" {
		dst.DefaultProvider = src.DefaultProvider
	}
	if src.Pattern != "" {
		dst.Pattern = src.Pattern
	}
}
