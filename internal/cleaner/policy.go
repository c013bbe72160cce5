package cleaner

import (
	"fmt"
	"strings"

	"macsweep/internal/safety"
)

// CleanupLevel is the caller-selected aggressiveness tier. It caps
// which safety levels may be deleted and is immutable for the duration
// of one cleanup operation.
type CleanupLevel int

const (
	// CleanupLight deletes Safe paths only.
	CleanupLight CleanupLevel = 1
	// CleanupNormal adds Caution paths.
	CleanupNormal CleanupLevel = 2
	// CleanupDeep adds Warning paths.
	CleanupDeep CleanupLevel = 3
	// CleanupSystem is Deep plus restricted system caches. It still
	// never reaches Danger.
	CleanupSystem CleanupLevel = 4
)

func (c CleanupLevel) String() string {
	switch c {
	case CleanupLight:
		return "light"
	case CleanupNormal:
		return "normal"
	case CleanupDeep:
		return "deep"
	case CleanupSystem:
		return "system"
	default:
		return fmt.Sprintf("cleanup(%d)", int(c))
	}
}

// ParseCleanupLevel converts a tier name or digit (1-4) to a CleanupLevel.
func ParseCleanupLevel(s string) (CleanupLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light", "1":
		return CleanupLight, nil
	case "normal", "2":
		return CleanupNormal, nil
	case "deep", "3":
		return CleanupDeep, nil
	case "system", "4":
		return CleanupSystem, nil
	}
	return 0, fmt.Errorf("unknown cleanup level %q", s)
}

// CleanupLevelFromInt maps an integer onto a CleanupLevel. Out-of-range
// values map to System, which still caps at Warning.
func CleanupLevelFromInt(v int) CleanupLevel {
	switch v {
	case 1:
		return CleanupLight
	case 2:
		return CleanupNormal
	case 3:
		return CleanupDeep
	default:
		return CleanupSystem
	}
}

// MaxDeletableSafety returns the highest safety level this tier may
// delete. System caps at Warning; Danger is out of reach for every tier.
func (c CleanupLevel) MaxDeletableSafety() safety.Level {
	switch c {
	case CleanupLight:
		return safety.LevelSafe
	case CleanupNormal:
		return safety.LevelCaution
	default:
		return safety.LevelWarning
	}
}

// CanDelete is the single place deletion permission is decided from a
// level/policy pair. Danger is rejected unconditionally.
func (c CleanupLevel) CanDelete(l safety.Level) bool {
	if l == safety.LevelDanger {
		return false
	}
	return l <= c.MaxDeletableSafety()
}
