package safety

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelSafe < LevelCaution)
	assert.True(t, LevelCaution < LevelWarning)
	assert.True(t, LevelWarning < LevelDanger)
}

func TestLevelDeletable(t *testing.T) {
	assert.True(t, LevelSafe.Deletable())
	assert.True(t, LevelCaution.Deletable())
	assert.True(t, LevelWarning.Deletable())
	assert.False(t, LevelDanger.Deletable())
}

func TestLevelRequiresConfirmation(t *testing.T) {
	assert.False(t, LevelSafe.RequiresConfirmation())
	assert.False(t, LevelCaution.RequiresConfirmation())
	assert.True(t, LevelWarning.RequiresConfirmation())
	assert.True(t, LevelDanger.RequiresConfirmation())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "safe", LevelSafe.String())
	assert.Equal(t, "caution", LevelCaution.String())
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "danger", LevelDanger.String())
	assert.Equal(t, "level(9)", Level(9).String())
}

func TestLevelDescription(t *testing.T) {
	assert.Equal(t, "Safe to delete, auto-regenerates", LevelSafe.Description())
	assert.Equal(t, "Deletable but requires rebuild time", LevelCaution.Description())
	assert.Equal(t, "Deletable but requires re-download", LevelWarning.Description())
	assert.Equal(t, "Never delete - system damage risk", LevelDanger.Description())
	assert.Equal(t, "Unknown safety level", Level(0).Description())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"safe", LevelSafe, false},
		{"caution", LevelCaution, false},
		{"warning", LevelWarning, false},
		{"danger", LevelDanger, false},
		{"  Warning ", LevelWarning, false},
		{"1", LevelSafe, false},
		{"4", LevelDanger, false},
		{"critical", 0, true},
		{"", 0, true},
		{"5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelFromInt(t *testing.T) {
	assert.Equal(t, LevelSafe, LevelFromInt(1))
	assert.Equal(t, LevelCaution, LevelFromInt(2))
	assert.Equal(t, LevelWarning, LevelFromInt(3))
	assert.Equal(t, LevelDanger, LevelFromInt(4))

	// Unrecognized input maps to maximum risk, never minimum.
	assert.Equal(t, LevelDanger, LevelFromInt(0))
	assert.Equal(t, LevelDanger, LevelFromInt(5))
	assert.Equal(t, LevelDanger, LevelFromInt(-1))
}

func TestLevelJSON(t *testing.T) {
	data, err := json.Marshal(LevelWarning)
	require.NoError(t, err)
	assert.Equal(t, `"warning"`, string(data))

	var fromName Level
	require.NoError(t, json.Unmarshal([]byte(`"caution"`), &fromName))
	assert.Equal(t, LevelCaution, fromName)

	var fromInt Level
	require.NoError(t, json.Unmarshal([]byte(`3`), &fromInt))
	assert.Equal(t, LevelWarning, fromInt)

	var bad Level
	assert.Error(t, json.Unmarshal([]byte(`"aggressive"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}

func TestLevelYAML(t *testing.T) {
	data, err := yaml.Marshal(LevelSafe)
	require.NoError(t, err)
	assert.Equal(t, "safe\n", string(data))

	var doc struct {
		Level Level `yaml:"level"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("level: danger"), &doc))
	assert.Equal(t, LevelDanger, doc.Level)

	require.NoError(t, yaml.Unmarshal([]byte("level: 2"), &doc))
	assert.Equal(t, LevelCaution, doc.Level)

	assert.Error(t, yaml.Unmarshal([]byte("level: extreme"), &doc))
}
