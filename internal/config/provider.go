package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"

	cloner "github.com/armatrix/codex-session-cloner"
)

// codexConfig is the subset of Codex's config.toml this tool reads.
type codexConfig struct {
	ModelProvider string `toml:"model_provider"`
}

// ResolveProvider returns the top-level model_provider from the Codex config
// at path. A missing file or an unset key yields fallback. A file that cannot
// be read or parsed is an ErrConfig, as is an empty result.
func ResolveProvider(path, fallback string) (string, error) {
	var cfg codexConfig
	_, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg.ModelProvider = ""
	case err != nil:
		return "", fmt.Errorf("%w: %s: %w", cloner.ErrConfig, path, err)
	}

	provider := strings.TrimSpace(cfg.ModelProvider)
	if provider == "" {
		provider = strings.TrimSpace(fallback)
	}
	if provider == "" {
		return "", fmt.Errorf("%w: no model_provider in %s and no default", cloner.ErrConfig, path)
	}
	return provider, nil
}
