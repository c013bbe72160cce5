// Package tui is the interactive mode: scan everything, pick targets,
// confirm, clean with live progress, then report. The cleanup level
// gates what the clean step may delete, same as the CLI.
package tui

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"macsweep/internal/cleaner"
	"macsweep/internal/config"
	"macsweep/internal/fsutil"
	"macsweep/internal/logger"
	"macsweep/internal/oplog"
	"macsweep/internal/scanner"
	"macsweep/internal/styles"
	"macsweep/internal/types"
)

// Params carries everything the model needs; the caller owns the
// lifecycle of all of it.
type Params struct {
	Config   *types.Config
	User     *config.UserConfig
	Registry *scanner.Registry
	Service  *cleaner.CleanService
	Journal  *oplog.Journal
	Version  string
	DryRun   bool
	Level    cleaner.CleanupLevel
}

// Model is the bubbletea model for the interactive mode.
type Model struct {
	cfg      *types.Config
	user     *config.UserConfig
	registry *scanner.Registry
	service  *cleaner.CleanService
	journal  *oplog.Journal
	version  string
	dryRun   bool
	level    cleaner.CleanupLevel

	results   []*types.ScanResult
	resultMap map[string]*types.ScanResult
	selected  map[string]bool
	excluded  map[string]map[string]bool
	cursor    int
	scroll    int

	view   view
	width  int
	height int

	scanning      bool
	scanCompleted int
	scanTotal     int
	scanMu        sync.Mutex
	scanErrors    []scanError

	spinner  spinner.Model
	progress progress.Model

	cleanCategory string
	cleanItem     string
	cleanCurrent  int
	cleanTotal    int
	completed     []cleaner.CategoryResult
	progressCh    chan tea.Msg
	startTime     time.Time

	report *types.Report

	fullDiskAccess bool
}

// NewModel builds the initial model. Scanning starts from Init.
func NewModel(p Params) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.ColorPrimary)

	excluded := make(map[string]map[string]bool)
	for catID, paths := range p.User.ExcludedPaths {
		excluded[catID] = make(map[string]bool, len(paths))
		for _, path := range paths {
			excluded[catID][path] = true
		}
	}

	return &Model{
		cfg:            p.Config,
		user:           p.User,
		registry:       p.Registry,
		service:        p.Service,
		journal:        p.Journal,
		version:        p.Version,
		dryRun:         p.DryRun,
		level:          p.Level,
		resultMap:      make(map[string]*types.ScanResult),
		selected:       make(map[string]bool),
		excluded:       excluded,
		view:           viewList,
		scanning:       true,
		spinner:        s,
		progress:       progress.New(progress.WithDefaultGradient()),
		fullDiskAccess: fsutil.CheckFullDiskAccess(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startScan())
}

// startScan fires one command per available target; results arrive as
// scanResultMsg in any order.
func (m *Model) startScan() tea.Cmd {
	targets := m.registry.Available()
	m.scanTotal = len(targets)
	m.scanCompleted = 0
	if m.scanTotal == 0 {
		m.scanning = false
		return nil
	}

	cmds := make([]tea.Cmd, len(targets))
	for i, t := range targets {
		cmds[i] = func() tea.Msg {
			result, err := t.Scan()
			if result == nil {
				result = types.NewScanResult(t.Category())
			}
			if err != nil {
				result.Error = err
			}
			return scanResultMsg{result: result}
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleScanResult(result *types.ScanResult) {
	m.scanMu.Lock()
	defer m.scanMu.Unlock()

	if result != nil {
		if result.Error != nil {
			m.scanErrors = append(m.scanErrors, scanError{
				category: result.Category.Name,
				msg:      result.Error.Error(),
			})
		}
		if result.TotalSize > 0 {
			sort.Slice(result.Items, func(i, j int) bool {
				return result.Items[i].Size > result.Items[j].Size
			})
			m.results = append(m.results, result)
			m.resultMap[result.Category.ID] = result
			sort.Slice(m.results, func(i, j int) bool {
				return m.results[i].TotalSize > m.results[j].TotalSize
			})
			if m.cursor >= len(m.results) {
				m.cursor = len(m.results) - 1
			}
		}
	}

	m.scanCompleted++
	if m.scanCompleted >= m.scanTotal {
		m.scanning = false
		// Preselect the previous session's choices once everything is in.
		for _, id := range m.user.GetLastSelection() {
			if r, ok := m.resultMap[id]; ok && r.Category.Method != types.MethodManual {
				m.selected[id] = true
			}
		}
	}
}

// doClean hands the prepared jobs to the service on a goroutine and
// bridges its callbacks into bubbletea messages. Sends block until the
// UI consumes them, which keeps progress ordered.
func (m *Model) doClean() tea.Cmd {
	jobs := m.service.PrepareJobs(m.resultMap, m.selected, m.excluded)

	total := 0
	for _, job := range jobs {
		total += len(job.Items)
	}
	m.cleanTotal = total
	m.cleanCurrent = 0
	m.cleanCategory = ""
	m.cleanItem = ""
	m.completed = nil
	m.startTime = time.Now()
	m.progressCh = make(chan tea.Msg, 1)

	cfg := cleaner.Config{Level: m.level, DryRun: m.dryRun}
	go func() {
		report := m.service.Clean(jobs, cfg, cleaner.Callbacks{
			OnProgress: func(p cleaner.Progress) {
				m.progressCh <- progressMsg{p: p}
			},
			OnCategoryDone: func(r cleaner.CategoryResult) {
				m.progressCh <- categoryDoneMsg{r: r}
			},
		})
		report.Duration = time.Since(m.startTime)
		m.progressCh <- cleanDoneMsg{report: report}
	}()

	return m.waitForClean()
}

// waitForClean re-arms after every progress message.
func (m *Model) waitForClean() tea.Cmd {
	return func() tea.Msg {
		return <-m.progressCh
	}
}

// rememberSelection persists the confirmed picks for the next session
// and for 'macsweep clean' without arguments.
func (m *Model) rememberSelection() {
	ids := make([]string, 0, len(m.selected))
	for id, sel := range m.selected {
		if sel {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	m.user.SetLastSelection(ids)
	_ = m.user.Save()
}

// --- Selection helpers ---

func (m *Model) currentResult() *types.ScanResult {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return nil
	}
	return m.results[m.cursor]
}

// currentGuide returns the manual-cleanup hint for the category under
// the cursor, empty for anything cleaned automatically.
func (m *Model) currentGuide() string {
	r := m.currentResult()
	if r == nil || r.Category.Method != types.MethodManual {
		return ""
	}
	if r.Category.Guide != "" {
		return r.Category.Guide
	}
	return r.Category.Note
}

// openCurrent reveals the first item of the category under the cursor
// in Finder. Pseudo-paths from command-backed targets have nothing to
// open.
func (m *Model) openCurrent() {
	r := m.currentResult()
	if r == nil || len(r.Items) == 0 {
		return
	}
	path := r.Items[0].Path
	if !strings.HasPrefix(path, "/") {
		return
	}
	if err := fsutil.OpenInFinder(path); err != nil {
		logger.Debug("open in Finder failed", "path", path, "error", err)
	}
}

func (m *Model) toggleCurrent() {
	r := m.currentResult()
	if r == nil || r.Category.Method == types.MethodManual {
		return
	}
	m.selected[r.Category.ID] = !m.selected[r.Category.ID]
}

func (m *Model) toggleAll() {
	all := true
	for _, r := range m.results {
		if r.Category.Method == types.MethodManual {
			continue
		}
		if !m.selected[r.Category.ID] {
			all = false
			break
		}
	}
	for _, r := range m.results {
		if r.Category.Method == types.MethodManual {
			continue
		}
		m.selected[r.Category.ID] = !all
	}
}

func (m *Model) hasSelection() bool {
	for _, sel := range m.selected {
		if sel {
			return true
		}
	}
	return false
}

func (m *Model) selectedResults() []*types.ScanResult {
	var out []*types.ScanResult
	for _, r := range m.results {
		if m.selected[r.Category.ID] {
			out = append(out, r)
		}
	}
	return out
}

// deletableSize totals the items the current level would let through,
// honoring per-item exclusions. The second value counts items the
// level blocks.
func (m *Model) deletableSize(r *types.ScanResult) (int64, int) {
	var size int64
	blocked := 0
	excludedMap := m.excluded[r.Category.ID]
	for _, item := range r.Items {
		if excludedMap != nil && excludedMap[item.Path] {
			continue
		}
		if !m.level.CanDelete(item.Level) {
			blocked++
			continue
		}
		size += item.Size
	}
	return size, blocked
}

func (m *Model) totalFound() int64 {
	var total int64
	for _, r := range m.results {
		total += r.TotalSize
	}
	return total
}

func (m *Model) selectedDeletable() (int64, int, int) {
	var size int64
	items := 0
	blocked := 0
	for _, r := range m.selectedResults() {
		s, b := m.deletableSize(r)
		size += s
		blocked += b
		excludedMap := m.excluded[r.Category.ID]
		for _, item := range r.Items {
			if excludedMap != nil && excludedMap[item.Path] {
				continue
			}
			if m.level.CanDelete(item.Level) {
				items++
			}
		}
	}
	return size, items, blocked
}

// cycleLevel advances light -> normal -> deep -> system and wraps.
func (m *Model) cycleLevel() {
	m.level = cleaner.CleanupLevelFromInt(int(m.level)%4 + 1)
}
