package scanner

import (
	"os"
	"path/filepath"

	"macsweep/internal/fsutil"
	"macsweep/internal/logger"
	"macsweep/internal/safety"
	"macsweep/internal/types"
)

// xcodeRoot is one Xcode artifact directory and whether its immediate
// children are listed individually (per-project granularity) or the
// directory is reported as a single item.
type xcodeRoot struct {
	rel      string
	label    string
	perChild bool
}

var xcodeRoots = []xcodeRoot{
	{"Library/Developer/Xcode/DerivedData", "DerivedData", true},
	{"Library/Developer/Xcode/Archives", "Archives", true},
	{"Library/Developer/Xcode/iOS DeviceSupport", "iOS DeviceSupport", true},
	{"Library/Developer/Xcode/watchOS DeviceSupport", "watchOS DeviceSupport", true},
	{"Library/Developer/Xcode/tvOS DeviceSupport", "tvOS DeviceSupport", true},
	{"Library/Developer/CoreSimulator/Caches", "CoreSimulator Caches", false},
}

// XcodeTarget enumerates Xcode build artifacts: derived data per
// project, archives, device support bundles and simulator caches.
type XcodeTarget struct {
	category  types.Category
	validator *safety.Validator
	home      string
}

func NewXcodeTarget(cat types.Category, v *safety.Validator) *XcodeTarget {
	return &XcodeTarget{
		category:  cat,
		validator: v,
		home:      v.Home(),
	}
}

func (s *XcodeTarget) Category() types.Category {
	return s.category
}

func (s *XcodeTarget) IsAvailable() bool {
	if s.home == "" {
		return false
	}
	return fsutil.PathExists(filepath.Join(s.home, "Library/Developer"))
}

func (s *XcodeTarget) Scan() (*types.ScanResult, error) {
	result := types.NewScanResult(s.category)

	if !s.IsAvailable() {
		return result, nil
	}

	for _, root := range xcodeRoots {
		dir := filepath.Join(s.home, root.rel)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		if !root.perChild {
			s.addItem(result, dir, root.label, info)
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Debug("xcode root unreadable", "path", dir, "error", err)
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			child := filepath.Join(dir, entry.Name())
			childInfo, err := entry.Info()
			if err != nil {
				continue
			}
			s.addItem(result, child, root.label+": "+entry.Name(), childInfo)
		}
	}

	logger.Info("xcode scan completed",
		"items", len(result.Items),
		"total_size", result.TotalSize)

	return result, nil
}

func (s *XcodeTarget) addItem(result *types.ScanResult, path, name string, info os.FileInfo) {
	c := s.validator.Classify(path)
	if c.Level == safety.LevelDanger {
		return
	}

	size, fileCount, _ := fsutil.DirSizeWithCount(path)
	if size == 0 {
		return
	}

	result.AddItem(types.CleanableItem{
		Path:        path,
		Size:        size,
		FileCount:   fileCount,
		Name:        name,
		IsDirectory: true,
		ModifiedAt:  info.ModTime(),
		Level:       c.Level,
	})
}

// Clean permanently removes the selected artifact directories. Xcode
// regenerates all of them; the cost is re-download or rebuild time.
func (s *XcodeTarget) Clean(items []types.CleanableItem) (*types.CleanResult, error) {
	result := types.NewCleanResult(s.category)

	for _, item := range items {
		if s.validator.Classify(item.Path).Level == safety.LevelDanger {
			result.SkippedItems++
			continue
		}
		if err := os.RemoveAll(item.Path); err != nil {
			result.Errors = append(result.Errors, item.Name+": "+err.Error())
			continue
		}
		result.FreedSpace += item.Size
		result.CleanedItems++
	}

	return result, nil
}
