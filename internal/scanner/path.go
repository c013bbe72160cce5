package scanner

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"macsweep/internal/fsutil"
	"macsweep/internal/logger"
	"macsweep/internal/namecache"
	"macsweep/internal/safety"
	"macsweep/internal/types"
)

// getMaxWorkers returns the sizing pool bound for the host CPU count.
func getMaxWorkers(numCPU int) int {
	if numCPU > 16 {
		return 16
	}
	if numCPU < 4 {
		return 4
	}
	return numCPU
}

// PathTarget scans the glob patterns of a config-defined category.
// Every matched path is classified; paths the validator marks Danger
// never become items.
type PathTarget struct {
	category types.Category
	deps     Deps
}

func NewPathTarget(cat types.Category, deps Deps) *PathTarget {
	return &PathTarget{category: cat, deps: deps}
}

func (s *PathTarget) Category() types.Category {
	return s.category
}

func (s *PathTarget) IsAvailable() bool {
	if s.category.CheckCmd != "" {
		return fsutil.CommandExists(s.category.CheckCmd)
	}

	for _, pattern := range s.category.Paths {
		paths, err := fsutil.GlobPaths(pattern)
		if err == nil && len(paths) > 0 {
			return true
		}
	}

	return false
}

func (s *PathTarget) Scan() (*types.ScanResult, error) {
	result := types.NewScanResult(s.category)

	if !s.IsAvailable() {
		return result, nil
	}

	paths := s.collectPaths()
	if len(paths) == 0 {
		return result, nil
	}

	result.Items, result.TotalSize, result.TotalFileCount = s.scanPathsParallel(paths)
	s.markProcessLocked(result.Items)
	return result, nil
}

// collectPaths expands the glob patterns, dropping anything classified
// Danger. Protected paths never even appear as scan results.
func (s *PathTarget) collectPaths() []string {
	var paths []string
	for _, pattern := range s.category.Paths {
		matched, err := fsutil.GlobPaths(pattern)
		if err != nil {
			logger.Debug("glob failed", "pattern", pattern, "error", err)
			continue
		}
		for _, p := range matched {
			if s.deps.Validator.Classify(p).Level == safety.LevelDanger {
				logger.Debug("scan skipped protected path", "path", p)
				continue
			}
			paths = append(paths, p)
		}
	}
	return paths
}

// scanPathsParallel stats and sizes paths concurrently with a bounded
// worker pool.
func (s *PathTarget) scanPathsParallel(paths []string) ([]types.CleanableItem, int64, int64) {
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		items      []types.CleanableItem
		totalSize  int64
		totalCount int64
	)

	sem := make(chan struct{}, getMaxWorkers(runtime.NumCPU()))

	for _, path := range paths {
		sem <- struct{}{}
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			defer func() { <-sem }()

			item, err := s.scanPath(p)
			if err != nil {
				return
			}

			mu.Lock()
			items = append(items, item)
			totalSize += item.Size
			totalCount += item.FileCount
			mu.Unlock()
		}(path)
	}
	wg.Wait()

	sort.Slice(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})

	return items, totalSize, totalCount
}

func (s *PathTarget) scanPath(path string) (types.CleanableItem, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.CleanableItem{}, err
	}

	var size, fileCount int64
	if info.IsDir() {
		size, fileCount, _ = fsutil.DirSizeWithCount(path)
	} else {
		size = info.Size()
		fileCount = 1
	}

	name := filepath.Base(path)
	item := types.CleanableItem{
		Path:        path,
		Size:        size,
		FileCount:   fileCount,
		Name:        name,
		IsDirectory: info.IsDir(),
		ModifiedAt:  info.ModTime(),
		Level:       s.deps.Validator.Classify(path).Level,
	}

	// Bundle-ID folder names read poorly in lists; show the app name.
	if s.deps.Names != nil && namecache.LooksLikeBundleID(name) {
		if display := s.deps.Names.Resolve(name); display != name {
			item.DisplayName = display + " (" + name + ")"
		}
	}

	return item, nil
}

// markProcessLocked flags items whose owning app appears to be running.
// One process snapshot serves the whole scan; failures leave all items
// available.
func (s *PathTarget) markProcessLocked(items []types.CleanableItem) {
	if s.deps.Names == nil {
		return
	}

	var snap *safety.ProcessSnapshot
	for i := range items {
		if !namecache.LooksLikeBundleID(items[i].Name) {
			continue
		}
		if snap == nil {
			var err error
			snap, err = safety.SnapshotProcesses()
			if err != nil {
				logger.Debug("process snapshot failed", "error", err)
				return
			}
		}
		appName := s.deps.Names.Resolve(items[i].Name)
		if holders := snap.Holding(appName); len(holders) > 0 {
			items[i].Status = types.ItemStatusProcessLocked
			logger.Debug("item locked by running process",
				"path", items[i].Path,
				"process", holders[0].Name,
				"pid", holders[0].PID)
		}
	}
}

func (s *PathTarget) Clean(_ []types.CleanableItem) (*types.CleanResult, error) {
	return types.NewCleanResult(s.category), nil
}
