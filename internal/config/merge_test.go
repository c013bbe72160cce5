package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macsweep/internal/safety"
	"macsweep/internal/types"
)

func baseConfig() *types.Config {
	return &types.Config{
		Categories: []types.Category{
			{ID: "logs", Name: "Log Files", Group: "system", Safety: safety.LevelCaution, Method: types.MethodTrash, Paths: []string{"~/Library/Logs/*"}},
			{ID: "docker", Name: "Docker", Group: "dev", Safety: safety.LevelCaution, Method: types.MethodBuiltin},
		},
	}
}

func TestMerge_NilUser(t *testing.T) {
	cfg := baseConfig()
	merged := Merge(cfg, nil)
	assert.Equal(t, cfg, merged)
}

func TestMerge_DisablesCategory(t *testing.T) {
	disabled := true
	user := &UserConfig{
		TargetOverrides: map[string]CategoryOverride{
			"docker": {Disabled: &disabled},
		},
	}

	merged := Merge(baseConfig(), user)

	require.Len(t, merged.Categories, 1)
	assert.Equal(t, "logs", merged.Categories[0].ID)
}

func TestMerge_OverridesPathsAndNote(t *testing.T) {
	note := "includes app logs"
	user := &UserConfig{
		TargetOverrides: map[string]CategoryOverride{
			"logs": {Paths: []string{"~/dev/app/logs/*"}, Note: &note},
		},
	}

	merged := Merge(baseConfig(), user)

	require.Len(t, merged.Categories, 2)
	logs := merged.Categories[0]
	assert.Equal(t, []string{"~/Library/Logs/*", "~/dev/app/logs/*"}, logs.Paths)
	assert.Equal(t, "includes app logs", logs.Note)
}

func TestMerge_AppendsCustomTarget(t *testing.T) {
	user := &UserConfig{
		CustomTargets: []CustomTarget{
			{ID: "gradle-cache", Name: "Gradle Cache", Paths: []string{"~/.gradle/caches/*"}},
		},
	}

	merged := Merge(baseConfig(), user)

	require.Len(t, merged.Categories, 3)
	added := merged.Categories[2]
	assert.Equal(t, "gradle-cache", added.ID)
	assert.Equal(t, "app", added.Group)
	assert.Equal(t, safety.LevelSafe, added.Safety)
	assert.Equal(t, types.MethodTrash, added.Method)
}

func TestMerge_CustomTargetReplacesByID(t *testing.T) {
	user := &UserConfig{
		CustomTargets: []CustomTarget{
			{ID: "logs", Name: "My Logs", Safety: "warning", Paths: []string{"~/only/these/*"}},
		},
	}

	merged := Merge(baseConfig(), user)

	require.Len(t, merged.Categories, 2)
	logs := merged.Categories[0]
	assert.Equal(t, "My Logs", logs.Name)
	assert.Equal(t, safety.LevelWarning, logs.Safety)
	assert.Equal(t, []string{"~/only/these/*"}, logs.Paths)
}

func TestMerge_SkipsInvalidCustomTargets(t *testing.T) {
	user := &UserConfig{
		CustomTargets: []CustomTarget{
			{ID: "", Name: "No ID"},
			{ID: "no-name"},
			{ID: "bad-method", Name: "Bad Method", Method: "special"},
		},
	}

	merged := Merge(baseConfig(), user)
	assert.Len(t, merged.Categories, 2)
}

func TestConvertCustomTarget(t *testing.T) {
	cat, err := convertCustomTarget(CustomTarget{
		ID:       "npm-cache",
		Name:     "npm Cache",
		Group:    "dev",
		Safety:   "warning",
		Method:   "permanent",
		Note:     "npm install refills it",
		Paths:    []string{"~/.npm/_cacache/*"},
		CheckCmd: "npm",
	})
	require.NoError(t, err)

	assert.Equal(t, "npm-cache", cat.ID)
	assert.Equal(t, "dev", cat.Group)
	assert.Equal(t, safety.LevelWarning, cat.Safety)
	assert.Equal(t, types.MethodPermanent, cat.Method)
	assert.Equal(t, "npm", cat.CheckCmd)
}

func TestConvertCustomTarget_Defaults(t *testing.T) {
	cat, err := convertCustomTarget(CustomTarget{ID: "x", Name: "X"})
	require.NoError(t, err)

	assert.Equal(t, "app", cat.Group)
	assert.Equal(t, safety.LevelSafe, cat.Safety)
	assert.Equal(t, types.MethodTrash, cat.Method)
}

func TestConvertCustomTarget_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		target CustomTarget
	}{
		{"missing id", CustomTarget{Name: "X"}},
		{"missing name", CustomTarget{ID: "x"}},
		{"bad safety", CustomTarget{ID: "x", Name: "X", Safety: "mild"}},
		{"bad method", CustomTarget{ID: "x", Name: "X", Method: "shred"}},
		{"builtin reserved", CustomTarget{ID: "x", Name: "X", Method: "builtin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convertCustomTarget(tt.target)
			assert.Error(t, err)
		})
	}
}
