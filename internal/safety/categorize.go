package safety

import (
	"encoding/json"
	"strings"
)

// Category tags what kind of data a path holds, independent of its
// safety level. Several categories can share one default level.
type Category int

const (
	CategoryUnknown Category = iota
	CategorySystemCritical
	CategoryUserCritical
	CategoryUserDocuments
	CategoryDeveloperCache
	CategoryAppContainer
	CategoryBrowserCache
	CategoryAppCache
	CategoryLogs
	CategoryTemporary
	CategoryUserConfig
)

func (c Category) String() string {
	switch c {
	case CategorySystemCritical:
		return "system-critical"
	case CategoryUserCritical:
		return "user-critical"
	case CategoryUserDocuments:
		return "user-documents"
	case CategoryDeveloperCache:
		return "developer-cache"
	case CategoryAppContainer:
		return "app-container"
	case CategoryBrowserCache:
		return "browser-cache"
	case CategoryAppCache:
		return "app-cache"
	case CategoryLogs:
		return "logs"
	case CategoryTemporary:
		return "temporary"
	case CategoryUserConfig:
		return "user-config"
	default:
		return "unknown"
	}
}

// ParseCategory converts a category name back to a Category. Unknown
// names map to CategoryUnknown without error so old journal entries
// stay readable.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "system-critical":
		return CategorySystemCritical
	case "user-critical":
		return CategoryUserCritical
	case "user-documents":
		return CategoryUserDocuments
	case "developer-cache":
		return CategoryDeveloperCache
	case "app-container":
		return CategoryAppContainer
	case "browser-cache":
		return CategoryBrowserCache
	case "app-cache":
		return CategoryAppCache
	case "logs":
		return CategoryLogs
	case "temporary":
		return CategoryTemporary
	case "user-config":
		return CategoryUserConfig
	default:
		return CategoryUnknown
	}
}

// MarshalJSON encodes the category as its kebab-case name.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts a category name.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ParseCategory(s)
	return nil
}

// DefaultLevel returns the typical safety level for the category. The
// mapping is a static table used for reporting; Validator.Classify is
// the authority for actual decisions.
func (c Category) DefaultLevel() Level {
	switch c {
	case CategorySystemCritical, CategoryUserCritical, CategoryUserDocuments:
		return LevelDanger
	case CategoryDeveloperCache, CategoryAppContainer:
		return LevelWarning
	case CategoryBrowserCache, CategoryTemporary:
		return LevelSafe
	default:
		return LevelCaution
	}
}

var systemCriticalPrefixes = []string{
	"/System",
	"/usr/bin",
	"/usr/sbin",
	"/usr/lib",
	"/usr/libexec",
	"/bin",
	"/sbin",
	"/private/var/db",
	"/Library/Extensions",
	"/Library/Frameworks",
}

var userCriticalMarkers = []string{
	"Library/Keychains",
	"Library/Application Support",
	"Library/Mail",
	"Library/Messages",
	"Library/Preferences",
	"Library/Accounts",
	"Library/Cookies",
	"Library/Calendars",
	"Library/Contacts",
	"Library/Safari/Bookmarks.plist",
	"Library/Safari/History.db",
}

var userDocumentMarkers = []string{
	"Documents",
	"Desktop",
	"Pictures",
	"Movies",
	"Music",
	"Downloads",
}

var developerMarkers = []string{
	"Library/Developer/Xcode/iOS DeviceSupport",
	"Library/Developer/Xcode/watchOS DeviceSupport",
	"Library/Developer/Xcode/tvOS DeviceSupport",
	"Library/Developer/CoreSimulator",
	".gradle/caches",
	".npm",
	".cargo/registry",
	".pub-cache",
	".cocoapods",
}

var browserMarkers = []string{
	"/google/chrome",
	"/firefox",
	"/safari",
	"/brave",
	"/microsoft edge",
	"/opera",
}

// Categorize maps a path to its Category using fixed-order prefix and
// substring checks. Pure string inspection; the filesystem is never
// consulted and existence is not required.
func Categorize(path, home string) Category {
	if hasAnyStringPrefix(path, systemCriticalPrefixes) {
		return CategorySystemCritical
	}

	if rel, ok := relativeToHome(path, home); ok {
		lower := strings.ToLower(rel)
		switch {
		case hasAnyStringPrefix(rel, userCriticalMarkers):
			return CategoryUserCritical
		case hasAnyStringPrefix(rel, userDocumentMarkers):
			return CategoryUserDocuments
		case strings.Contains(lower, "/deriveddata") || hasAnyStringPrefix(rel, developerMarkers):
			return CategoryDeveloperCache
		case strings.HasPrefix(rel, "Library/Containers") || strings.HasPrefix(rel, "Library/Group Containers"):
			return CategoryAppContainer
		case containsAny(lower, browserMarkers):
			return CategoryBrowserCache
		case strings.HasPrefix(rel, "Library/Caches"):
			return CategoryAppCache
		case strings.HasPrefix(rel, "Library/Logs") || strings.HasSuffix(lower, ".log"):
			return CategoryLogs
		case strings.HasPrefix(rel, ".Trash"):
			return CategoryTemporary
		case strings.HasPrefix(lower, ".config/") || strings.Contains(lower, "/.config/") || strings.Contains(lower, "/preferences/"):
			return CategoryUserConfig
		}
	}

	switch {
	case hasAnyStringPrefix(path, []string{"/tmp", "/private/tmp", "/var/tmp"}):
		return CategoryTemporary
	case strings.HasPrefix(path, "/Library/Caches"):
		return CategoryAppCache
	case strings.HasPrefix(path, "/var/log") || strings.HasPrefix(path, "/Library/Logs"):
		return CategoryLogs
	}

	return CategoryUnknown
}

func hasAnyStringPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// relativeToHome strips the home prefix from path. The second return is
// false when the path lies outside home or home is empty.
func relativeToHome(path, home string) (string, bool) {
	if home == "" {
		return "", false
	}
	if path == home {
		return "", true
	}
	if strings.HasPrefix(path, home+"/") {
		return path[len(home)+1:], true
	}
	return "", false
}
