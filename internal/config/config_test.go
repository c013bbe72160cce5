package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macsweep/internal/safety"
	"macsweep/internal/scanner"
	"macsweep/internal/types"
)

func TestLoadEmbedded_ReturnsCategories(t *testing.T) {
	cfg, err := LoadEmbedded()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.Categories)
	assert.NotEmpty(t, cfg.Groups)
}

func TestLoadEmbedded_KnownCategoriesExist(t *testing.T) {
	cfg, err := LoadEmbedded()
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, cat := range cfg.Categories {
		ids[cat.ID] = true
	}

	for _, want := range []string{
		"system-cache", "browser-cache", "logs", "trash",
		"xcode", "homebrew", "docker", "old-downloads", "project-cache",
		"ios-backups",
	} {
		assert.True(t, ids[want], "missing category %q", want)
	}
}

func TestLoadEmbedded_CategoriesHaveRequiredFields(t *testing.T) {
	cfg, err := LoadEmbedded()
	require.NoError(t, err)

	groups := make(map[string]bool)
	for _, g := range cfg.Groups {
		groups[g.ID] = true
	}

	for _, cat := range cfg.Categories {
		assert.NotEmpty(t, cat.ID)
		assert.NotEmpty(t, cat.Name, "category %q has no name", cat.ID)
		assert.True(t, groups[cat.Group], "category %q references unknown group %q", cat.ID, cat.Group)
		assert.GreaterOrEqual(t, cat.Safety, safety.LevelSafe, "category %q", cat.ID)
		assert.LessOrEqual(t, cat.Safety, safety.LevelDanger, "category %q", cat.ID)
	}
}

func TestLoadEmbedded_MethodsAreValid(t *testing.T) {
	cfg, err := LoadEmbedded()
	require.NoError(t, err)

	valid := map[types.CleanupMethod]bool{
		types.MethodTrash:     true,
		types.MethodPermanent: true,
		types.MethodCommand:   true,
		types.MethodBuiltin:   true,
		types.MethodManual:    true,
	}

	for _, cat := range cfg.Categories {
		assert.True(t, valid[cat.Method], "category %q has invalid method %q", cat.ID, cat.Method)
	}
}

// Every embedded category must construct a working target; a builtin ID
// without a factory would fail at startup.
func TestLoadEmbedded_BuildsRegistry(t *testing.T) {
	cfg, err := LoadEmbedded()
	require.NoError(t, err)

	deps := scanner.Deps{Validator: safety.NewValidator(safety.WithHome(t.TempDir()))}
	registry, err := scanner.DefaultRegistry(cfg, deps)
	require.NoError(t, err)
	assert.Len(t, registry.All(), len(cfg.Categories))
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	data := []byte(`categories:
  - id: custom-cache
    name: Custom Cache
    group: app
    safety: safe
    method: trash
    paths:
      - ~/Library/Caches/Custom/*
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Categories, 1)
	cat := cfg.Categories[0]
	assert.Equal(t, "custom-cache", cat.ID)
	assert.Equal(t, safety.LevelSafe, cat.Safety)
	assert.Equal(t, types.MethodTrash, cat.Method)
	assert.Equal(t, []string{"~/Library/Caches/Custom/*"}, cat.Paths)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: [pancake"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
