package types

import (
	"time"

	"macsweep/internal/safety"
)

// CleanupMethod tells the clean service how a category's entries are
// removed.
type CleanupMethod string

const (
	// MethodTrash moves entries to the user's Trash (recoverable).
	MethodTrash CleanupMethod = "trash"
	// MethodPermanent unlinks entries directly.
	MethodPermanent CleanupMethod = "permanent"
	// MethodCommand runs the category's shell command.
	MethodCommand CleanupMethod = "command"
	// MethodBuiltin delegates to the target's own Clean implementation.
	MethodBuiltin CleanupMethod = "builtin"
	// MethodManual is never cleaned automatically; the UI shows a guide.
	MethodManual CleanupMethod = "manual"
)

// Category describes one cleanable target group from the embedded
// config. Safety is the category's declared level; individual items are
// still re-classified before any deletion.
type Category struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Group    string        `yaml:"group"`
	Safety   safety.Level  `yaml:"safety"`
	Method   CleanupMethod `yaml:"method"`
	Note     string        `yaml:"note,omitempty"`
	Guide    string        `yaml:"guide,omitempty"`
	Paths    []string      `yaml:"paths,omitempty"`
	Command  string        `yaml:"command,omitempty"`
	CheckCmd string        `yaml:"check_cmd,omitempty"`
}

type Group struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Order int    `yaml:"order"`
}

type Config struct {
	Categories []Category `yaml:"categories"`
	Groups     []Group    `yaml:"groups"`
}

// ItemStatus marks per-item availability for cleaning.
type ItemStatus int

const (
	// ItemStatusAvailable items can be cleaned.
	ItemStatusAvailable ItemStatus = iota
	// ItemStatusProcessLocked items are held by a running process and
	// are skipped when jobs are prepared. Advisory, never an error.
	ItemStatusProcessLocked
)

// CleanableItem is one scanned entry. Level carries the validator's
// classification from scan time.
type CleanableItem struct {
	Path        string
	Size        int64
	FileCount   int64
	Name        string
	DisplayName string
	IsDirectory bool
	ModifiedAt  time.Time
	Level       safety.Level
	Status      ItemStatus
}

// Display returns DisplayName when set, otherwise Name.
func (i CleanableItem) Display() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Name
}

type ScanResult struct {
	Category       Category
	Items          []CleanableItem
	TotalSize      int64
	TotalFileCount int64
	Error          error
}

// NewScanResult builds an empty result for a category.
func NewScanResult(cat Category) *ScanResult {
	return &ScanResult{
		Category: cat,
		Items:    make([]CleanableItem, 0),
	}
}

// AddItem appends an item and updates the totals.
func (r *ScanResult) AddItem(item CleanableItem) {
	r.Items = append(r.Items, item)
	r.TotalSize += item.Size
	r.TotalFileCount += item.FileCount
}

type CleanResult struct {
	Category     Category
	CleanedItems int
	SkippedItems int // held back by the safety gate
	FreedSpace   int64
	Errors       []string
}

// NewCleanResult builds an empty result for a category.
func NewCleanResult(cat Category) *CleanResult {
	return &CleanResult{
		Category: cat,
		Errors:   make([]string, 0),
	}
}

// Merge folds another result's tallies into this one.
func (r *CleanResult) Merge(other *CleanResult) {
	if other == nil {
		return
	}
	r.CleanedItems += other.CleanedItems
	r.SkippedItems += other.SkippedItems
	r.FreedSpace += other.FreedSpace
	r.Errors = append(r.Errors, other.Errors...)
}

type Report struct {
	BeforeSize   int64
	AfterSize    int64
	FreedSpace   int64
	TotalItems   int
	CleanedItems int
	FailedItems  int
	SkippedItems int
	Results      []CleanResult
	Duration     time.Duration
}
