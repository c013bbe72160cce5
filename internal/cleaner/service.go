package cleaner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"macsweep/internal/fsutil"
	"macsweep/internal/logger"
	"macsweep/internal/oplog"
	"macsweep/internal/scanner"
	"macsweep/internal/types"
)

// commandTimeout bounds external cleanup commands.
const commandTimeout = 30 * time.Second

// trashBatchSize is the number of items sent to the Trash per batch.
const trashBatchSize = 50

// CleanJob is a cleaning job for one category.
type CleanJob struct {
	Category types.Category
	Items    []types.CleanableItem
}

// Progress reports how far a cleaning run has advanced.
type Progress struct {
	CategoryName string
	CurrentItem  string
	Current      int
	Total        int
}

// ItemResult is the outcome of cleaning a single item.
type ItemResult struct {
	Path    string
	Name    string
	Size    int64
	Success bool
	ErrMsg  string
}

// CategoryResult is the outcome of cleaning a whole category.
type CategoryResult struct {
	CategoryName string
	FreedSpace   int64
	CleanedItems int
	SkippedItems int
	ErrorCount   int
}

// Callbacks holds callback functions for cleaning progress.
type Callbacks struct {
	OnProgress     func(Progress)
	OnItemDone     func(ItemResult)
	OnCategoryDone func(CategoryResult)
}

// CleanService runs prepared cleaning jobs. Every item passes the
// cleanup-level gate before any removal method sees it; refused items
// are counted as skipped, never as errors that abort the run.
type CleanService struct {
	registry *scanner.Registry
	journal  *oplog.Journal
}

// NewCleanService creates a CleanService. The journal may be nil.
func NewCleanService(registry *scanner.Registry, journal *oplog.Journal) *CleanService {
	return &CleanService{registry: registry, journal: journal}
}

// PrepareJobs builds clean jobs from scan results, filtering by selection
// and exclusion. Items locked by a running process are dropped here, as
// are whole categories that require manual action.
func (s *CleanService) PrepareJobs(
	resultMap map[string]*types.ScanResult,
	selected map[string]bool,
	excluded map[string]map[string]bool,
) []CleanJob {
	var jobs []CleanJob

	for id, sel := range selected {
		if !sel {
			continue
		}
		r, ok := resultMap[id]
		if !ok {
			continue
		}
		if r.Category.Method == types.MethodManual {
			continue
		}

		var items []types.CleanableItem
		excludedMap := excluded[id]
		for _, item := range r.Items {
			if item.Status == types.ItemStatusProcessLocked {
				continue
			}
			if excludedMap != nil && excludedMap[item.Path] {
				continue
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			continue
		}

		jobs = append(jobs, CleanJob{
			Category: r.Category,
			Items:    items,
		})
	}

	return jobs
}

// Clean executes the jobs and reports progress via callbacks.
// Returns the final report.
func (s *CleanService) Clean(jobs []CleanJob, cfg Config, callbacks Callbacks) *types.Report {
	started := time.Now()
	report := &types.Report{Results: make([]types.CleanResult, 0)}

	totalItems := 0
	for _, job := range jobs {
		totalItems += len(job.Items)
	}
	report.TotalItems = totalItems

	current := 0

	for _, job := range jobs {
		cat := job.Category
		result := types.NewCleanResult(cat)

		allowed := make([]types.CleanableItem, 0, len(job.Items))
		for _, item := range job.Items {
			if !cfg.Level.CanDelete(item.Level) {
				result.SkippedItems++
				current++
				s.record(item, oplog.OutcomeSkipped, cfg.DryRun,
					"blocked at cleanup level "+cfg.Level.String())
				logger.Debug("item refused by cleanup level",
					"path", item.Path,
					"safety", item.Level.String(),
					"level", cfg.Level.String())
				continue
			}
			allowed = append(allowed, item)
		}

		switch cat.Method {
		case types.MethodTrash:
			s.trashItems(cat, allowed, cfg, result, &current, totalItems, callbacks)
		case types.MethodPermanent:
			s.removeItems(cat, allowed, cfg, result, &current, totalItems, callbacks)
		case types.MethodCommand:
			if callbacks.OnProgress != nil {
				callbacks.OnProgress(Progress{
					CategoryName: cat.Name,
					Current:      current,
					Total:        totalItems,
				})
			}
			s.runCommand(cat, cfg, result)
			current += len(allowed)
		case types.MethodBuiltin:
			if callbacks.OnProgress != nil {
				callbacks.OnProgress(Progress{
					CategoryName: cat.Name,
					Current:      current,
					Total:        totalItems,
				})
			}
			s.runBuiltin(cat, allowed, cfg, result)
			current += len(allowed)
		case types.MethodManual:
			// Manual categories never survive PrepareJobs; keep the guard anyway.
			result.SkippedItems += len(allowed)
			current += len(allowed)
		}

		report.Results = append(report.Results, *result)
		report.FreedSpace += result.FreedSpace
		report.CleanedItems += result.CleanedItems
		report.SkippedItems += result.SkippedItems
		report.FailedItems += len(result.Errors)

		if callbacks.OnCategoryDone != nil {
			callbacks.OnCategoryDone(CategoryResult{
				CategoryName: cat.Name,
				FreedSpace:   result.FreedSpace,
				CleanedItems: result.CleanedItems,
				SkippedItems: result.SkippedItems,
				ErrorCount:   len(result.Errors),
			})
		}
	}

	report.Duration = time.Since(started)

	logger.Info("clean run finished",
		"total", report.TotalItems,
		"cleaned", report.CleanedItems,
		"skipped", report.SkippedItems,
		"failed", report.FailedItems,
		"freed", report.FreedSpace,
		"dry_run", cfg.DryRun)

	return report
}

// trashItems moves items to the Trash in batches. Progress fires at batch
// start and end; OnItemDone fires per item once the batch settles.
func (s *CleanService) trashItems(
	cat types.Category,
	items []types.CleanableItem,
	cfg Config,
	result *types.CleanResult,
	current *int,
	total int,
	callbacks Callbacks,
) {
	for start := 0; start < len(items); start += trashBatchSize {
		end := start + trashBatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		if callbacks.OnProgress != nil {
			callbacks.OnProgress(Progress{
				CategoryName: cat.Name,
				CurrentItem:  batch[0].Name,
				Current:      *current,
				Total:        total,
			})
		}

		paths := make([]string, len(batch))
		for i, item := range batch {
			paths[i] = item.Path
		}

		var batchResult fsutil.TrashBatchResult
		if cfg.DryRun {
			batchResult = fsutil.TrashBatchResult{Succeeded: paths, Failed: make(map[string]error)}
		} else {
			batchResult = fsutil.MoveToTrashBatch(paths)
		}

		for _, item := range batch {
			if err := batchResult.Failed[item.Path]; err != nil {
				result.Errors = append(result.Errors, item.Path+": "+err.Error())
				s.record(item, oplog.OutcomeFailed, cfg.DryRun, err.Error())
				s.notifyItem(callbacks, item, err)
			} else {
				result.FreedSpace += item.Size
				result.CleanedItems++
				s.record(item, removalOutcome(cfg.DryRun), cfg.DryRun, "")
				s.notifyItem(callbacks, item, nil)
			}
		}

		*current += len(batch)

		if callbacks.OnProgress != nil {
			callbacks.OnProgress(Progress{
				CategoryName: cat.Name,
				CurrentItem:  batch[len(batch)-1].Name,
				Current:      *current,
				Total:        total,
			})
		}
	}
}

// removeItems deletes items permanently, one at a time.
func (s *CleanService) removeItems(
	cat types.Category,
	items []types.CleanableItem,
	cfg Config,
	result *types.CleanResult,
	current *int,
	total int,
	callbacks Callbacks,
) {
	for _, item := range items {
		*current++

		if callbacks.OnProgress != nil {
			callbacks.OnProgress(Progress{
				CategoryName: cat.Name,
				CurrentItem:  item.Name,
				Current:      *current,
				Total:        total,
			})
		}

		var err error
		if !cfg.DryRun {
			if item.IsDirectory {
				err = os.RemoveAll(item.Path)
			} else {
				err = os.Remove(item.Path)
			}
		}

		if err != nil {
			logger.Debug("permanent delete failed", "path", item.Path, "error", err)
			result.Errors = append(result.Errors, item.Path+": "+err.Error())
			s.record(item, oplog.OutcomeFailed, cfg.DryRun, err.Error())
		} else {
			result.FreedSpace += item.Size
			result.CleanedItems++
			s.record(item, removalOutcome(cfg.DryRun), cfg.DryRun, "")
		}

		s.notifyItem(callbacks, item, err)
	}
}

// runCommand runs the category's shell command with a timeout.
// Dry runs leave external commands unrun.
func (s *CleanService) runCommand(cat types.Category, cfg Config, result *types.CleanResult) {
	if cat.Command == "" || cfg.DryRun {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", cat.Command)

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result.Errors = append(result.Errors, "command timeout")
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("command failed: %v", err))
		}
	} else {
		result.CleanedItems = 1
	}
}

// runBuiltin hands the whole batch to the category's own cleaner.
func (s *CleanService) runBuiltin(cat types.Category, items []types.CleanableItem, cfg Config, result *types.CleanResult) {
	t, ok := s.registry.Get(cat.ID)
	if !ok {
		result.Errors = append(result.Errors, "target not found: "+cat.ID)
		return
	}
	builtin, ok := t.(scanner.BuiltinCleaner)
	if !ok {
		result.Errors = append(result.Errors, "target cannot clean: "+cat.ID)
		return
	}

	if cfg.DryRun {
		for _, item := range items {
			result.FreedSpace += item.Size
			result.CleanedItems++
			s.record(item, oplog.OutcomeDryRun, true, "")
		}
		return
	}

	builtinResult, err := builtin.Clean(items)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}
	result.Merge(builtinResult)
}

func (s *CleanService) notifyItem(callbacks Callbacks, item types.CleanableItem, err error) {
	if callbacks.OnItemDone == nil {
		return
	}
	r := ItemResult{
		Path:    item.Path,
		Name:    item.Name,
		Size:    item.Size,
		Success: err == nil,
	}
	if err != nil {
		r.ErrMsg = err.Error()
	}
	callbacks.OnItemDone(r)
}

func (s *CleanService) record(item types.CleanableItem, outcome oplog.Outcome, dryRun bool, detail string) {
	s.journal.Record(oplog.Record{
		Path:    item.Path,
		Size:    item.Size,
		Level:   item.Level,
		Outcome: outcome,
		DryRun:  dryRun,
		Detail:  detail,
	})
}
