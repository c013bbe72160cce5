package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"macsweep/internal/fsutil"
	"macsweep/internal/logger"
	"macsweep/internal/safety"
	"macsweep/internal/types"
)

// cachePattern defines a build artifact directory and its project
// marker files. A directory counts as a project cache only when its
// name matches DirName AND at least one marker exists in the parent.
// The marker check distinguishes project caches (safe to delete) from
// tool installations (e.g. ~/.nvm/**/node_modules).
type cachePattern struct {
	DirName     string
	MarkerFiles []string
}

var defaultPatterns = []cachePattern{
	{"node_modules", []string{"package.json"}},
	{".venv", []string{"pyproject.toml", "requirements.txt", "setup.py", "setup.cfg", "Pipfile"}},
	{".tox", []string{"tox.ini", "pyproject.toml", "setup.cfg"}},
	{".mypy_cache", []string{"pyproject.toml", "mypy.ini", "setup.cfg"}},
	{".pytest_cache", []string{"pyproject.toml", "pytest.ini", "setup.cfg", "conftest.py"}},
	{".next", []string{"next.config.js", "next.config.mjs", "next.config.ts"}},
	{"target", []string{"Cargo.toml"}},
	{"target", []string{"pom.xml"}},
	{".gradle", []string{"build.gradle", "build.gradle.kts", "settings.gradle"}},
}

// excludeDirs: top-level directories under $HOME to skip during walk.
var excludeDirs = map[string]struct{}{
	// macOS system
	"Library": {}, "Applications": {}, ".Trash": {},
	"Music": {}, "Movies": {}, "Pictures": {}, "Public": {},
	// package manager / toolchain installations
	".npm": {}, ".nvm": {}, ".yarn": {}, ".pnpm": {},
	".cargo": {}, ".rustup": {}, ".gradle": {},
	".local": {}, ".cache": {}, ".docker": {},
	// editor plugins (contain node_modules with package.json)
	".vscode": {}, ".cursor": {}, ".hyper_plugins": {},
}

const (
	maxScanDepth     = 8
	defaultStaleDays = 7
)

type foundCache struct {
	path    string
	pattern cachePattern
}

// ProjectCacheTarget walks $HOME for stale build caches inside project
// directories, using marker-file validation to avoid false positives.
type ProjectCacheTarget struct {
	category  types.Category
	validator *safety.Validator
	scanRoot  string // overridable for testing
	patterns  []cachePattern
	staleDays int
}

func NewProjectCacheTarget(cat types.Category, v *safety.Validator) *ProjectCacheTarget {
	return &ProjectCacheTarget{
		category:  cat,
		validator: v,
		scanRoot:  v.Home(),
		patterns:  defaultPatterns,
		staleDays: defaultStaleDays,
	}
}

func (t *ProjectCacheTarget) Category() types.Category { return t.category }
func (t *ProjectCacheTarget) IsAvailable() bool        { return t.scanRoot != "" }

func (t *ProjectCacheTarget) Scan() (*types.ScanResult, error) {
	result := types.NewScanResult(t.category)
	if !t.IsAvailable() {
		return result, nil
	}

	start := time.Now()

	patternMap := make(map[string][]cachePattern)
	for _, p := range t.patterns {
		patternMap[p.DirName] = append(patternMap[p.DirName], p)
	}

	var found []foundCache

	//nolint:errcheck // WalkDir errors are handled per-entry
	filepath.WalkDir(t.scanRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == t.scanRoot {
			return nil
		}

		name := d.Name()

		rel, _ := filepath.Rel(t.scanRoot, path)
		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if depth > maxScanDepth {
			return fs.SkipDir
		}

		if depth == 1 {
			if _, excluded := excludeDirs[name]; excluded {
				return fs.SkipDir
			}
		}

		if patterns, ok := patternMap[name]; ok {
			parentDir := filepath.Dir(path)
			for _, p := range patterns {
				if hasMarker(parentDir, p.MarkerFiles) {
					found = append(found, foundCache{path: path, pattern: p})
					break // first matching pattern wins (target/ → Cargo before Maven)
				}
			}
			// Prune cache-named dirs even without a marker; recursing
			// into them is expensive and they are likely tool deps.
			return fs.SkipDir
		}

		return nil
	})

	logger.Info("project cache walk complete",
		"found", len(found),
		"walk_ms", time.Since(start).Milliseconds())

	allItems := t.calculateSizes(found)

	// Only stale caches become items; active projects stay untouched.
	cutoff := time.Now().AddDate(0, 0, -t.staleDays)
	for _, item := range allItems {
		if item.ModifiedAt.Before(cutoff) {
			result.AddItem(item)
		}
	}

	logger.Info("project cache scan complete",
		"found", len(allItems),
		"stale", len(result.Items),
		"total_size", result.TotalSize,
		"total_ms", time.Since(start).Milliseconds())

	return result, nil
}

func (t *ProjectCacheTarget) calculateSizes(found []foundCache) []types.CleanableItem {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		items []types.CleanableItem
	)

	sem := make(chan struct{}, getMaxWorkers(runtime.NumCPU()))

	for _, fc := range found {
		sem <- struct{}{}
		wg.Add(1)
		go func(fc foundCache) {
			defer wg.Done()
			defer func() { <-sem }()

			size, count, err := fsutil.DirSizeWithCount(fc.path)
			if err != nil {
				return
			}
			info, err := os.Stat(fc.path)
			if err != nil {
				return
			}

			item := types.CleanableItem{
				Path:        fc.path,
				Size:        size,
				FileCount:   count,
				Name:        filepath.Base(fc.path),
				DisplayName: relativeDisplayName(t.scanRoot, fc.path),
				IsDirectory: true,
				ModifiedAt:  info.ModTime(),
				Level:       t.validator.Classify(fc.path).Level,
			}

			mu.Lock()
			items = append(items, item)
			mu.Unlock()
		}(fc)
	}
	wg.Wait()

	sort.Slice(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})

	return items
}

func hasMarker(parentDir string, markers []string) bool {
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(parentDir, m)); err == nil {
			return true
		}
	}
	return false
}

func relativeDisplayName(scanRoot, cachePath string) string {
	rel, err := filepath.Rel(scanRoot, cachePath)
	if err != nil {
		return filepath.Base(cachePath)
	}
	return rel
}

// Clean moves project caches to the Trash. They can be large and the
// marker heuristic is not infallible, so removal stays recoverable.
func (t *ProjectCacheTarget) Clean(items []types.CleanableItem) (*types.CleanResult, error) {
	result := types.NewCleanResult(t.category)
	if len(items) == 0 {
		return result, nil
	}

	paths := make([]string, 0, len(items))
	sizeByPath := make(map[string]int64, len(items))
	for _, item := range items {
		paths = append(paths, item.Path)
		sizeByPath[item.Path] = item.Size
	}

	batch := fsutil.MoveToTrashBatch(paths)
	for _, p := range batch.Succeeded {
		result.FreedSpace += sizeByPath[p]
		result.CleanedItems++
	}
	for p, err := range batch.Failed {
		result.Errors = append(result.Errors, p+": "+err.Error())
	}

	return result, nil
}
