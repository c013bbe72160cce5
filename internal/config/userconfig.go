package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"macsweep/internal/fsutil"
	"macsweep/internal/safety"
)

const (
	userConfigDir  = ".config/macsweep"
	userConfigFile = "config.yaml"
)

// CustomTarget defines a user-defined cleanup target.
type CustomTarget struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Group    string   `yaml:"group,omitempty"`
	Safety   string   `yaml:"safety,omitempty"` // safe, caution, warning, danger
	Method   string   `yaml:"method,omitempty"` // trash, permanent, command, manual
	Note     string   `yaml:"note,omitempty"`
	Paths    []string `yaml:"paths,omitempty"`
	Command  string   `yaml:"command,omitempty"`
	CheckCmd string   `yaml:"check_cmd,omitempty"`
}

// CategoryOverride allows partial override of category properties.
type CategoryOverride struct {
	Disabled *bool    `yaml:"disabled,omitempty"`
	Paths    []string `yaml:"paths,omitempty"`
	Note     *string  `yaml:"note,omitempty"`
}

// RuleSpec is a user-supplied classification rule. Either Prefix or
// Glob selects the paths; Level is the safety level they are pinned
// to. Prefix rules match the path itself and everything under it.
type RuleSpec struct {
	Name   string `yaml:"name,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
	Glob   string `yaml:"glob,omitempty"`
	Level  string `yaml:"level"`
}

// UserConfig stores user preferences.
type UserConfig struct {
	// ExcludedPaths maps category ID to paths the user never wants touched.
	ExcludedPaths map[string][]string `yaml:"excluded_paths,omitempty"`
	// LastSelection stores the selected category IDs from the previous run.
	LastSelection []string `yaml:"last_selection,omitempty"`
	// CustomTargets defines user-defined cleanup targets.
	CustomTargets []CustomTarget `yaml:"custom_targets,omitempty"`
	// TargetOverrides overrides fields of existing targets by ID.
	TargetOverrides map[string]CategoryOverride `yaml:"target_overrides,omitempty"`
	// CustomRules extend the safety validator ahead of its built-in tables.
	CustomRules []RuleSpec `yaml:"custom_rules,omitempty"`
}

func (c *UserConfig) SetLastSelection(categoryIDs []string) {
	c.LastSelection = categoryIDs
}

func (c *UserConfig) GetLastSelection() []string {
	return c.LastSelection
}

func (c *UserConfig) HasLastSelection() bool {
	return len(c.LastSelection) > 0
}

// userConfigPath returns the full path to the user config file.
func userConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, userConfigDir, userConfigFile), nil
}

// LoadUser loads the user config from disk. A missing file is not an
// error; it yields an empty config.
func LoadUser() (*UserConfig, error) {
	path, err := userConfigPath()
	if err != nil {
		return emptyUserConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptyUserConfig(), nil
		}
		return nil, err
	}

	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.ExcludedPaths == nil {
		cfg.ExcludedPaths = make(map[string][]string)
	}
	if cfg.TargetOverrides == nil {
		cfg.TargetOverrides = make(map[string]CategoryOverride)
	}

	return &cfg, nil
}

func emptyUserConfig() *UserConfig {
	return &UserConfig{
		ExcludedPaths:   make(map[string][]string),
		TargetOverrides: make(map[string]CategoryOverride),
	}
}

// Save writes the user config to disk, creating the directory if needed.
func (c *UserConfig) Save() error {
	path, err := userConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// SetExcludedPaths sets excluded paths for a category.
func (c *UserConfig) SetExcludedPaths(categoryID string, paths []string) {
	if len(paths) == 0 {
		delete(c.ExcludedPaths, categoryID)
	} else {
		c.ExcludedPaths[categoryID] = paths
	}
}

// GetExcludedPaths gets excluded paths for a category.
func (c *UserConfig) GetExcludedPaths(categoryID string) []string {
	return c.ExcludedPaths[categoryID]
}

// IsExcluded checks if a path is excluded for a category.
func (c *UserConfig) IsExcluded(categoryID, path string) bool {
	for _, p := range c.ExcludedPaths[categoryID] {
		if p == path {
			return true
		}
	}
	return false
}

// CompileRules turns rule specs into validator rules. Invalid specs
// fail loudly: a silently dropped rule could let a path the user meant
// to protect through.
func CompileRules(specs []RuleSpec) ([]safety.Rule, error) {
	rules := make([]safety.Rule, 0, len(specs))

	for i, spec := range specs {
		level, err := safety.ParseLevel(spec.Level)
		if err != nil {
			return nil, fmt.Errorf("custom rule %d: %w", i+1, err)
		}

		name := spec.Name
		switch {
		case spec.Prefix != "" && spec.Glob != "":
			return nil, fmt.Errorf("custom rule %d: prefix and glob are mutually exclusive", i+1)
		case spec.Prefix != "":
			prefix := filepath.Clean(fsutil.ExpandPath(spec.Prefix))
			if name == "" {
				name = "prefix:" + spec.Prefix
			}
			rules = append(rules, safety.Rule{
				Name: name,
				Evaluate: func(path string) (safety.Level, bool) {
					if path == prefix || strings.HasPrefix(path, prefix+"/") {
						return level, true
					}
					return 0, false
				},
				Reason: "user-defined rule",
			})
		case spec.Glob != "":
			pattern := fsutil.ExpandPath(spec.Glob)
			if !doublestar.ValidatePattern(pattern) {
				return nil, fmt.Errorf("custom rule %d: invalid glob %q", i+1, spec.Glob)
			}
			if name == "" {
				name = "glob:" + spec.Glob
			}
			rules = append(rules, safety.Rule{
				Name: name,
				Evaluate: func(path string) (safety.Level, bool) {
					if ok, _ := doublestar.Match(pattern, path); ok {
						return level, true
					}
					return 0, false
				},
				Reason: "user-defined rule",
			})
		default:
			return nil, fmt.Errorf("custom rule %d: prefix or glob is required", i+1)
		}
	}

	return rules, nil
}
