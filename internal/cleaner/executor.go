package cleaner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"macsweep/internal/fsutil"
	"macsweep/internal/logger"
	"macsweep/internal/oplog"
	"macsweep/internal/safety"
)

// Config controls one Clean invocation.
type Config struct {
	Level CleanupLevel
	// DryRun reports what would be removed without touching the disk.
	// Classification, sizing and policy gating run exactly as in a wet
	// run; only the remove calls are skipped.
	DryRun bool
	// Workers bounds the sizing pool. Zero picks a clamp of NumCPU.
	Workers int
}

// Result accumulates the outcome of one Clean call. For a directory of
// N children with K blocked by policy and M failed at the OS level,
// Errors holds exactly K+M entries and FilesRemoved+DirsRemoved equals
// N-K-M.
type Result struct {
	Path         string
	FreedBytes   int64
	FilesRemoved int
	DirsRemoved  int
	Errors       []CleanError
	DryRun       bool
	Duration     time.Duration
}

// OK reports whether every entry was removed (or would be, in dry-run).
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// Removed returns the number of successfully removed entries.
func (r *Result) Removed() int {
	return r.FilesRemoved + r.DirsRemoved
}

// Executor deletes paths under a cleanup policy. Every removal decision
// goes through the validator and the policy gate; outcomes are recorded
// to the journal when one is attached.
type Executor struct {
	validator *safety.Validator
	journal   *oplog.Journal
	log       *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithJournal attaches a deletion journal. A nil journal is fine.
func WithJournal(j *oplog.Journal) ExecutorOption {
	return func(e *Executor) { e.journal = j }
}

// WithExecutorLogger overrides the diagnostics logger.
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.log = l }
}

// NewExecutor builds an Executor around a validator.
func NewExecutor(v *safety.Validator, opts ...ExecutorOption) *Executor {
	e := &Executor{
		validator: v,
		log:       logger.Log,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Log
	}
	return e
}

// Clean removes path under the policy in cfg.
//
// The root is gated first: a root the policy cannot delete fails fast
// with nothing touched. A file root is removed as a unit and any
// failure is fatal. A directory root is swept child by child: each
// immediate child is sized, re-classified independently, gated, and
// removed; blocked or failed children are recorded in Result.Errors and
// the sweep continues.
func (e *Executor) Clean(path string, cfg Config) (*Result, error) {
	start := time.Now()
	target := fsutil.ExpandPath(path)

	info, err := os.Lstat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", safety.ErrPathNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	c := e.validator.Classify(target)
	if !cfg.Level.CanDelete(c.Level) {
		e.log.Info("cleanup refused", "path", path, "level", c.Level.String(), "cleanup_level", cfg.Level.String())
		return nil, policyError(target, c, cfg.Level)
	}

	result := &Result{Path: target, DryRun: cfg.DryRun}

	if info.IsDir() {
		err = e.cleanDir(target, cfg, result)
	} else {
		err = e.removeRootFile(target, info, c, cfg, result)
	}
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	e.log.Info("cleanup finished",
		"path", target,
		"freed", result.FreedBytes,
		"files", result.FilesRemoved,
		"dirs", result.DirsRemoved,
		"errors", len(result.Errors),
		"dry_run", cfg.DryRun,
	)
	return result, nil
}

// removeRootFile handles a file root. Unlike directory children, a
// failure here is fatal: there is no partial success for a single file.
func (e *Executor) removeRootFile(path string, info os.FileInfo, c safety.Classification, cfg Config, result *Result) error {
	size := info.Size()
	if !cfg.DryRun {
		if err := os.Remove(path); err != nil {
			e.record(path, size, c, oplog.OutcomeFailed, cfg.DryRun, err.Error())
			return CleanError{Path: path, Err: wrapRemoveError(err)}
		}
	}
	result.FreedBytes += size
	result.FilesRemoved++
	e.record(path, size, c, removalOutcome(cfg.DryRun), cfg.DryRun, "")
	return nil
}

func (e *Executor) cleanDir(dir string, cfg Config, result *Result) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, wrapRemoveError(err))
	}

	sizes := sizeEntries(dir, entries, cfg.Workers)

	for i, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		c := e.validator.Classify(child)

		if !cfg.Level.CanDelete(c.Level) {
			result.Errors = append(result.Errors, CleanError{Path: child, Err: policyError(child, c, cfg.Level)})
			e.record(child, sizes[i], c, oplog.OutcomeSkipped, cfg.DryRun, c.Reason)
			e.log.Debug("child skipped by policy", "path", child, "level", c.Level.String())
			continue
		}

		if !cfg.DryRun {
			var rmErr error
			if entry.IsDir() {
				rmErr = os.RemoveAll(child)
			} else {
				rmErr = os.Remove(child)
			}
			if rmErr != nil {
				result.Errors = append(result.Errors, CleanError{Path: child, Err: wrapRemoveError(rmErr)})
				e.record(child, sizes[i], c, oplog.OutcomeFailed, cfg.DryRun, rmErr.Error())
				e.log.Debug("child removal failed", "path", child, "error", rmErr)
				continue
			}
		}

		result.FreedBytes += sizes[i]
		if entry.IsDir() {
			result.DirsRemoved++
		} else {
			result.FilesRemoved++
		}
		e.record(child, sizes[i], c, removalOutcome(cfg.DryRun), cfg.DryRun, "")
	}

	return nil
}

// sizeEntries computes per-child sizes concurrently. Directory children
// are walked recursively; sizing failures count as zero rather than
// aborting the sweep.
func sizeEntries(dir string, entries []os.DirEntry, workers int) []int64 {
	if workers <= 0 {
		workers = maxWorkers(runtime.NumCPU())
	}

	sizes := make([]int64, len(entries))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, entry := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, entry os.DirEntry) {
			defer wg.Done()
			defer func() { <-sem }()
			sizes[i] = entrySize(filepath.Join(dir, entry.Name()), entry)
		}(i, entry)
	}
	wg.Wait()

	return sizes
}

func entrySize(path string, entry os.DirEntry) int64 {
	if entry.IsDir() {
		size, err := fsutil.DirSize(path)
		if err != nil {
			return 0
		}
		return size
	}
	info, err := entry.Info()
	if err != nil {
		return 0
	}
	return info.Size()
}

func maxWorkers(cpus int) int {
	if cpus > 16 {
		return 16
	}
	if cpus < 4 {
		return 4
	}
	return cpus
}

// policyError converts a failed gate check into the matching typed
// error: ProtectedPathError for Danger, LevelMismatchError otherwise.
func policyError(path string, c safety.Classification, lvl CleanupLevel) error {
	if c.Level == safety.LevelDanger {
		return &safety.ProtectedPathError{Path: path, Reason: c.Reason}
	}
	return &safety.LevelMismatchError{Path: path, Level: c.Level, Allowed: lvl.MaxDeletableSafety()}
}

// wrapRemoveError maps permission failures onto ErrPermissionDenied and
// leaves other OS errors as-is.
func wrapRemoveError(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return err
}

func removalOutcome(dryRun bool) oplog.Outcome {
	if dryRun {
		return oplog.OutcomeDryRun
	}
	return oplog.OutcomeDeleted
}

func (e *Executor) record(path string, size int64, c safety.Classification, outcome oplog.Outcome, dryRun bool, detail string) {
	e.journal.Record(oplog.Record{
		Path:     path,
		Size:     size,
		Level:    c.Level,
		Category: c.Category,
		Outcome:  outcome,
		DryRun:   dryRun,
		Detail:   detail,
	})
}
