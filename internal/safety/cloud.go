package safety

import (
	"os"
	"path/filepath"
	"strings"
)

// CloudProvider names a cloud storage service whose local folder may be
// mid-sync.
type CloudProvider string

const (
	CloudICloud      CloudProvider = "iCloud Drive"
	CloudDropbox     CloudProvider = "Dropbox"
	CloudGoogleDrive CloudProvider = "Google Drive"
	CloudOneDrive    CloudProvider = "OneDrive"
)

// CloudSyncFinding reports that a path lives inside a cloud-synced
// folder. Advisory only: deleting mid-sync risks re-downloads or sync
// conflicts, but it is the user's call.
type CloudSyncFinding struct {
	Provider CloudProvider
	Path     string
	// Syncing is true when undownloaded placeholder files were found,
	// which usually means a sync is in progress or incomplete.
	Syncing bool
}

// DetectCloudSync reports whether path sits inside a known cloud
// storage folder. Returns nil for paths outside cloud storage.
func DetectCloudSync(path, home string) *CloudSyncFinding {
	p := filepath.Clean(path)

	provider, ok := cloudProviderFor(p, home)
	if !ok {
		return nil
	}

	return &CloudSyncFinding{
		Provider: provider,
		Path:     p,
		Syncing:  hasPlaceholderFiles(p),
	}
}

func cloudProviderFor(path, home string) (CloudProvider, bool) {
	rel, inHome := relativeToHome(path, home)
	if !inHome {
		return "", false
	}

	switch {
	case strings.HasPrefix(rel, "Library/Mobile Documents"):
		return CloudICloud, true
	case strings.HasPrefix(rel, "Dropbox"):
		return CloudDropbox, true
	case strings.HasPrefix(rel, "Library/CloudStorage/GoogleDrive-"):
		return CloudGoogleDrive, true
	case strings.HasPrefix(rel, "Library/CloudStorage/OneDrive"), strings.HasPrefix(rel, "OneDrive"):
		return CloudOneDrive, true
	}
	return "", false
}

// hasPlaceholderFiles looks for ".icloud" placeholders in the top level
// of path. Placeholders stand in for files not yet downloaded locally.
func hasPlaceholderFiles(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".icloud") {
			return true
		}
	}
	return false
}
