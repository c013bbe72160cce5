// Package config loads the embedded category set and merges in the
// user's overrides from ~/.config/macsweep/config.yaml.
package config

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"

	"macsweep/internal/types"
)

//go:embed targets.yaml
var embeddedTargets []byte

// LoadEmbedded parses the compiled-in default category set.
func LoadEmbedded() (*types.Config, error) {
	var cfg types.Config
	if err := yaml.Unmarshal(embeddedTargets, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads a category config from an explicit path, for users who
// want to replace the defaults entirely.
func Load(path string) (*types.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg types.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
