package safety

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level classifies how dangerous it is to delete a path. Higher values
// are more dangerous; Danger is never deletable under any policy.
type Level int

const (
	// LevelSafe paths regenerate on their own (browser caches, /tmp).
	LevelSafe Level = 1
	// LevelCaution paths are deletable but need rebuild time (app caches, old logs).
	LevelCaution Level = 2
	// LevelWarning paths are deletable but need re-download (device support, images).
	LevelWarning Level = 3
	// LevelDanger paths must never be deleted (system dirs, keychains, documents).
	LevelDanger Level = 4
)

// Deletable reports whether deletion is ever allowed at this level.
func (l Level) Deletable() bool {
	return l != LevelDanger
}

// RequiresConfirmation reports whether a user confirmation should
// precede deletion at this level.
func (l Level) RequiresConfirmation() bool {
	return l == LevelWarning || l == LevelDanger
}

func (l Level) String() string {
	switch l {
	case LevelSafe:
		return "safe"
	case LevelCaution:
		return "caution"
	case LevelWarning:
		return "warning"
	case LevelDanger:
		return "danger"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Description returns a one-line explanation of the level.
func (l Level) Description() string {
	switch l {
	case LevelSafe:
		return "Safe to delete, auto-regenerates"
	case LevelCaution:
		return "Deletable but requires rebuild time"
	case LevelWarning:
		return "Deletable but requires re-download"
	case LevelDanger:
		return "Never delete - system damage risk"
	default:
		return "Unknown safety level"
	}
}

// ParseLevel converts a level name or digit (1-4) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "safe", "1":
		return LevelSafe, nil
	case "caution", "2":
		return LevelCaution, nil
	case "warning", "3":
		return LevelWarning, nil
	case "danger", "4":
		return LevelDanger, nil
	}
	return 0, fmt.Errorf("unknown safety level %q", s)
}

// LevelFromInt maps an integer onto a Level. Out-of-range values map to
// Danger: unrecognized input is treated as maximum risk, never minimum.
func LevelFromInt(v int) Level {
	switch v {
	case 1:
		return LevelSafe
	case 2:
		return LevelCaution
	case 3:
		return LevelWarning
	default:
		return LevelDanger
	}
}

// MarshalYAML encodes the level as its lowercase name.
func (l Level) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// MarshalJSON encodes the level as its lowercase name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts a level name or an integer 1-4.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := ParseLevel(s)
		if perr != nil {
			return perr
		}
		*l = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("safety level must be a name or integer: %w", err)
	}
	*l = LevelFromInt(n)
	return nil
}

// UnmarshalYAML accepts a level name or an integer 1-4.
func (l *Level) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := ParseLevel(s)
		if perr != nil {
			return perr
		}
		*l = parsed
		return nil
	}
	var n int
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("safety level must be a name or integer: %w", err)
	}
	*l = LevelFromInt(n)
	return nil
}
