// Package fsutil holds small filesystem helpers shared by the scanner,
// cleaner and CLI layers.
package fsutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

var (
	osUserHomeDir = os.UserHomeDir
	osReadDir     = os.ReadDir
	execCommand   = exec.Command
)

// ExpandPath resolves a leading "~" or "~/" against the current user's
// home directory. Paths without the prefix are returned unchanged.
func ExpandPath(path string) string {
	if path == "~" {
		home, err := osUserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, err := osUserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// FormatBytes renders a byte count the way the rest of the UI shows
// sizes, e.g. "1.1 GB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// FormatAge formats a time.Time as a short age string.
// Examples: "5m", "3h", "7d", "2mo", "1y"
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	duration := time.Since(t)

	minutes := int(duration.Minutes())
	hours := int(duration.Hours())
	days := hours / 24
	months := days / 30
	years := days / 365

	switch {
	case hours < 1:
		if minutes < 1 {
			return "<1m"
		}
		return fmt.Sprintf("%dm", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh", hours)
	case days < 30:
		return fmt.Sprintf("%dd", days)
	case months < 12:
		return fmt.Sprintf("%dmo", months)
	default:
		return fmt.Sprintf("%dy", years)
	}
}

func PathExists(path string) bool {
	expanded := ExpandPath(path)
	_, err := os.Stat(expanded)
	return err == nil
}

func CommandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// DirSizeWithCount walks path and sums regular file sizes. Unreadable
// entries are skipped rather than failing the whole walk.
func DirSizeWithCount(path string) (int64, int64, error) {
	var size, count int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	return size, count, err
}

func DirSize(path string) (int64, error) {
	size, _, err := DirSizeWithCount(path)
	return size, err
}

// PathSize returns the size of a file, or the recursive size when path
// is a directory.
func PathSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return DirSize(path)
	}
	return info.Size(), nil
}

// GlobPaths expands a pattern to matching paths. Patterns support
// doublestar ("**") segments in addition to the usual glob syntax.
func GlobPaths(pattern string) ([]string, error) {
	expanded := ExpandPath(pattern)
	return doublestar.FilepathGlob(expanded)
}

// StripGlobPattern removes glob suffixes from a path to find an
// existing parent directory.
func StripGlobPattern(path string) string {
	expanded := ExpandPath(path)

	if _, err := os.Stat(expanded); err == nil {
		return expanded
	}

	for strings.ContainsAny(expanded, "*?[") {
		parent := filepath.Dir(expanded)
		if parent == expanded {
			break
		}
		expanded = parent

		if _, err := os.Stat(expanded); err == nil {
			return expanded
		}
	}

	return expanded
}

// DiskUsage reports total and free bytes for the filesystem containing
// path.
type DiskUsage struct {
	TotalBytes int64
	FreeBytes  int64
}

func (d DiskUsage) UsedBytes() int64 {
	return d.TotalBytes - d.FreeBytes
}

func GetDiskUsage(path string) (DiskUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(ExpandPath(path), &st); err != nil {
		return DiskUsage{}, err
	}
	bsize := int64(st.Bsize)
	return DiskUsage{
		TotalBytes: int64(st.Blocks) * bsize,
		FreeBytes:  int64(st.Bavail) * bsize,
	}, nil
}

// CheckFullDiskAccess probes for the Full Disk Access permission by
// attempting to read the Trash directory.
func CheckFullDiskAccess() bool {
	trashPath := ExpandPath("~/.Trash")
	_, err := osReadDir(trashPath)
	return err == nil
}

// OpenInFinder opens the path in Finder. Files are revealed in their
// parent directory (-R), directories are opened directly.
func OpenInFinder(path string) error {
	expanded := ExpandPath(path)

	info, err := os.Stat(expanded)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return execCommand("open", expanded).Run()
	}
	return execCommand("open", "-R", expanded).Run()
}
