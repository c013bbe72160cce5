package scanner

import (
	"strings"

	"macsweep/internal/fsutil"
	"macsweep/internal/types"
)

// SystemCacheTarget scans the user cache directory while excluding
// paths owned by other categories, so the same folder never shows up
// twice in a scan.
type SystemCacheTarget struct {
	*PathTarget
	excludePaths []string
}

func NewSystemCacheTarget(cat types.Category, allCategories []types.Category, deps Deps) *SystemCacheTarget {
	var excludes []string
	for _, other := range allCategories {
		if other.ID == cat.ID {
			continue
		}
		for _, p := range other.Paths {
			expanded := fsutil.ExpandPath(p)
			// Strip trailing patterns for prefix matching
			expanded = strings.TrimSuffix(expanded, "/**")
			expanded = strings.TrimSuffix(expanded, "/*")
			expanded = strings.TrimSuffix(expanded, "*")
			if !strings.HasSuffix(expanded, "/") {
				expanded = expanded + "/"
			}
			excludes = append(excludes, expanded)
		}
	}

	return &SystemCacheTarget{
		PathTarget:   NewPathTarget(cat, deps),
		excludePaths: excludes,
	}
}

func (s *SystemCacheTarget) Scan() (*types.ScanResult, error) {
	result, err := s.PathTarget.Scan()
	if err != nil {
		return nil, err
	}

	filtered := types.NewScanResult(s.category)
	for _, item := range result.Items {
		if s.isExcluded(item.Path) {
			continue
		}
		filtered.AddItem(item)
	}

	return filtered, nil
}

func (s *SystemCacheTarget) isExcluded(path string) bool {
	pathWithSlash := path
	if !strings.HasSuffix(pathWithSlash, "/") {
		pathWithSlash = path + "/"
	}

	for _, exclude := range s.excludePaths {
		if strings.HasPrefix(pathWithSlash, exclude) {
			return true
		}
	}
	return false
}
