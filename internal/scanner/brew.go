package scanner

import (
	"os"
	"os/exec"
	"strings"

	"macsweep/internal/fsutil"
	"macsweep/internal/logger"
	"macsweep/internal/safety"
	"macsweep/internal/types"
)

// BrewTarget reports the Homebrew download cache and cleans it with
// brew's own cleanup command.
type BrewTarget struct {
	category  types.Category
	validator *safety.Validator
	cachePath string
}

func NewBrewTarget(cat types.Category, v *safety.Validator) *BrewTarget {
	return &BrewTarget{category: cat, validator: v}
}

func (s *BrewTarget) Category() types.Category {
	return s.category
}

func (s *BrewTarget) IsAvailable() bool {
	return fsutil.CommandExists("brew")
}

// brewCachePath asks brew for its cache directory, memoized per target.
func (s *BrewTarget) brewCachePath() string {
	if s.cachePath != "" {
		return s.cachePath
	}

	output, err := exec.Command("brew", "--cache").Output()
	if err != nil {
		logger.Debug("brew --cache failed", "error", err)
		return ""
	}

	s.cachePath = strings.TrimSpace(string(output))
	return s.cachePath
}

func (s *BrewTarget) Scan() (*types.ScanResult, error) {
	result := types.NewScanResult(s.category)

	if !s.IsAvailable() {
		return result, nil
	}

	cachePath := s.brewCachePath()
	if cachePath == "" {
		return result, nil
	}

	info, err := os.Stat(cachePath)
	if err != nil || !info.IsDir() {
		return result, nil
	}

	size, fileCount, _ := fsutil.DirSizeWithCount(cachePath)
	if size > 0 {
		result.AddItem(types.CleanableItem{
			Path:        cachePath,
			Size:        size,
			FileCount:   fileCount,
			Name:        "Homebrew Cache",
			IsDirectory: true,
			ModifiedAt:  info.ModTime(),
			Level:       s.validator.Classify(cachePath).Level,
		})
	}

	return result, nil
}

// Clean runs brew's own cleanup and reports the actual space delta.
func (s *BrewTarget) Clean(items []types.CleanableItem) (*types.CleanResult, error) {
	result := types.NewCleanResult(s.category)

	if len(items) == 0 {
		return result, nil
	}

	cachePath := s.brewCachePath()
	before, _, _ := fsutil.DirSizeWithCount(cachePath)

	if err := exec.Command("brew", "cleanup", "--prune=all", "-s").Run(); err != nil {
		result.Errors = append(result.Errors, "brew cleanup: "+err.Error())
		return result, nil
	}

	after, _, _ := fsutil.DirSizeWithCount(cachePath)
	if freed := before - after; freed > 0 {
		result.FreedSpace = freed
	}
	result.CleanedItems = len(items)

	logger.Info("brew cleanup completed", "freed", result.FreedSpace)
	return result, nil
}
