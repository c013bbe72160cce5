package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"macsweep/internal/fsutil"
	"macsweep/internal/styles"
	"macsweep/internal/types"
)

const (
	colName = 32
	colSize = 10
	colNum  = 7
)

func (m *Model) View() string {
	switch m.view {
	case viewConfirm:
		return m.viewConfirm()
	case viewCleaning:
		return m.viewCleaning()
	case viewReport:
		return m.viewReport()
	default:
		return m.viewList()
	}
}

// --- List ---

func (m *Model) viewList() string {
	var b strings.Builder

	title := "macsweep"
	if m.version != "" {
		title += " " + m.version
	}
	b.WriteString(styles.HeaderStyle.Render(title))
	if m.scanning {
		b.WriteString(fmt.Sprintf("  %s Scanning... (%d/%d)",
			m.spinner.View(), m.scanCompleted, m.scanTotal))
	}
	b.WriteString("\n")

	b.WriteString(m.levelLine() + "\n")
	if m.dryRun {
		b.WriteString(styles.WarningStyle.Render("[dry-run] nothing will be deleted") + "\n")
	}
	if !m.fullDiskAccess {
		b.WriteString(styles.WarningStyle.Render("[!] Limited access: grant Full Disk Access for a complete scan") + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.legend())
	b.WriteString("\n")

	if m.hasSelection() {
		size, items, blocked := m.selectedDeletable()
		line := fmt.Sprintf("Selected: %s (%d items)",
			styles.SizeStyle.Render(fsutil.FormatBytes(size)), items)
		if blocked > 0 {
			line += styles.MutedStyle.Render(fmt.Sprintf("  %d blocked at this level", blocked))
		}
		b.WriteString(line + "\n")
	} else {
		b.WriteString(fmt.Sprintf("Found: %s\n",
			styles.SizeStyle.Render(fsutil.FormatBytes(m.totalFound()))))
	}
	b.WriteString(styles.Divider(58) + "\n")

	b.WriteString(m.renderListBody(m.visibleRows()))

	if guide := m.currentGuide(); guide != "" {
		b.WriteString(styles.MutedStyle.Render("    manual: "+truncateWidth(guide, 52)) + "\n")
	}

	if !m.scanning && len(m.scanErrors) > 0 {
		b.WriteString(styles.WarningStyle.Render("[!] Scan warnings:") + "\n")
		for _, e := range m.scanErrors {
			b.WriteString(styles.MutedStyle.Render(
				fmt.Sprintf("    %s: %s", e.category, truncateWidth(e.msg, 50))) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render(
		"space select · a all · enter clean · l level · o finder · r rescan · q quit"))
	return b.String()
}

// visibleRows bounds the item list to the space the chrome leaves over.
func (m *Model) visibleRows() int {
	if m.height == 0 {
		return len(m.results)
	}
	rows := m.height - 14
	if rows < 5 {
		rows = 5
	}
	return rows
}

func (m *Model) renderListBody(visible int) string {
	if len(m.results) == 0 {
		if m.scanning {
			return styles.MutedStyle.Render("Scanning...") + "\n"
		}
		return styles.MutedStyle.Render("No items to clean.") + "\n"
	}

	var b strings.Builder
	header := fmt.Sprintf("%8s%-*s %*s %*s", "", colName, "Name", colSize, "Size", colNum, "Count")
	b.WriteString(styles.MutedStyle.Render(header) + "\n")

	itemsVisible := visible
	showPager := len(m.results) > itemsVisible && itemsVisible > 0
	if showPager {
		itemsVisible--
	}
	m.scroll = adjustScroll(m.cursor, m.scroll, itemsVisible, len(m.results))

	for i, r := range m.results {
		if i < m.scroll || i >= m.scroll+itemsVisible {
			continue
		}
		b.WriteString(m.renderListItem(i, r))
	}

	if showPager {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.results))) + "\n")
	}
	return b.String()
}

func (m *Model) renderListItem(idx int, r *types.ScanResult) string {
	isCurrent := idx == m.cursor
	isManual := r.Category.Method == types.MethodManual

	cursor := "  "
	if isCurrent {
		cursor = styles.CursorStyle.Render("▸ ")
	}

	checkbox := "[ ]"
	switch {
	case isManual:
		checkbox = styles.MutedStyle.Render(" - ")
	case m.selected[r.Category.ID]:
		checkbox = styles.SuccessStyle.Render("[✓]")
	}

	name := r.Category.Name
	if isManual {
		name += " [manual]"
	}
	name = padWidth(truncateWidth(name, colName), colName)
	switch {
	case isManual:
		name = styles.MutedStyle.Render(name)
	case isCurrent:
		name = styles.SelectedStyle.Render(name)
	}

	size := fmt.Sprintf("%*s", colSize, fsutil.FormatBytes(r.TotalSize))
	count := fmt.Sprintf("%*d", colNum, r.TotalFileCount)
	if isManual {
		size = styles.MutedStyle.Render(size)
	} else {
		size = styles.SizeStyle.Render(size)
	}

	return fmt.Sprintf("%s%s %s %s %s %s\n",
		cursor, checkbox, styles.LevelDot(r.Category.Safety), name, size,
		styles.MutedStyle.Render(count))
}

// --- Confirm ---

func (m *Model) viewConfirm() string {
	var b strings.Builder

	b.WriteString(styles.HeaderStyle.Render("Confirm Cleanup"))
	b.WriteString("\n\n")

	if m.dryRun {
		b.WriteString(styles.WarningStyle.Render("  Dry run: nothing will actually be deleted") + "\n\n")
	} else {
		b.WriteString(styles.SuccessStyle.Render("  Trash-method items can be recovered from the Trash") + "\n\n")
	}
	b.WriteString("  " + m.levelLine() + "\n\n")
	b.WriteString("  " + styles.Divider(50) + "\n\n")

	size, items, blocked := m.selectedDeletable()
	b.WriteString(fmt.Sprintf("  Deleting %s (%d items)\n",
		styles.DangerStyle.Render(fsutil.FormatBytes(size)), items))
	if blocked > 0 {
		b.WriteString(styles.MutedStyle.Render(
			fmt.Sprintf("  %d items stay blocked at level %s\n", blocked, m.level)))
	}
	b.WriteString("\n")

	for _, r := range m.selectedResults() {
		catSize, catBlocked := m.deletableSize(r)
		note := ""
		if catBlocked > 0 {
			note = styles.MutedStyle.Render(fmt.Sprintf("  %d blocked", catBlocked))
		}
		b.WriteString(fmt.Sprintf("  %s %-28s %s%s\n",
			styles.LevelDot(r.Category.Safety),
			truncateWidth(r.Category.Name, 28),
			styles.SizeStyle.Render(fmt.Sprintf("%10s", fsutil.FormatBytes(catSize))),
			note))
	}

	b.WriteString("\n  " + styles.Divider(50) + "\n\n")
	b.WriteString(fmt.Sprintf("  %s y / enter to clean\n", styles.SuccessStyle.Render("▸")))
	b.WriteString(fmt.Sprintf("  %s n / esc to go back · l to change level\n", styles.DangerStyle.Render("▸")))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

// --- Cleaning ---

func (m *Model) viewCleaning() string {
	var b strings.Builder

	title := "Cleaning..."
	if m.dryRun {
		title = "Dry run..."
	}
	b.WriteString(styles.HeaderStyle.Render(title))
	b.WriteString("\n\n")

	for _, r := range m.completed {
		name := padWidth(truncateWidth(r.CategoryName, colName), colName)
		size := fmt.Sprintf("%*s", colSize, fsutil.FormatBytes(r.FreedSpace))
		switch {
		case r.ErrorCount == 0:
			b.WriteString(fmt.Sprintf("%s %s %s", styles.SuccessStyle.Render("✓"), name,
				styles.SizeStyle.Render(size)))
		case r.CleanedItems > 0:
			b.WriteString(fmt.Sprintf("%s %s %s", styles.WarningStyle.Render("△"), name,
				styles.SizeStyle.Render(size)))
		default:
			b.WriteString(fmt.Sprintf("%s %s %s", styles.DangerStyle.Render("✗"), name,
				styles.MutedStyle.Render("failed")))
		}
		if r.SkippedItems > 0 {
			b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  %d skipped", r.SkippedItems)))
		}
		b.WriteString("\n")
	}

	if m.cleanCategory != "" {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.cleanCategory))
		if m.cleanItem != "" {
			b.WriteString(styles.MutedStyle.Render(
				fmt.Sprintf("  └ %s", truncateTail(m.cleanItem, 45))) + "\n")
		}
	}

	if m.cleanTotal > 0 {
		b.WriteString("\n")
		percent := float64(m.cleanCurrent) / float64(m.cleanTotal)
		b.WriteString(m.progress.ViewAs(percent))
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(
			fmt.Sprintf("%d%% (%d/%d)", int(percent*100), m.cleanCurrent, m.cleanTotal)))
	}

	return b.String()
}

// --- Report ---

func (m *Model) viewReport() string {
	var b strings.Builder

	title := "Cleanup Report"
	if m.dryRun {
		title = "Dry Run Report"
	}
	b.WriteString(styles.HeaderStyle.Render(title))
	b.WriteString("\n\n")

	if m.report == nil {
		b.WriteString(styles.MutedStyle.Render("No report available."))
		return b.String()
	}

	freedLabel := "Recovered"
	if m.dryRun {
		freedLabel = "Would recover"
	}
	b.WriteString(fmt.Sprintf("%s: %s\n", freedLabel,
		styles.SuccessStyle.Render(fsutil.FormatBytes(m.report.FreedSpace))))
	b.WriteString(fmt.Sprintf("Cleaned: %d of %d items", m.report.CleanedItems, m.report.TotalItems))
	if m.report.SkippedItems > 0 {
		b.WriteString(fmt.Sprintf("  Skipped: %d", m.report.SkippedItems))
	}
	if m.report.FailedItems > 0 {
		b.WriteString("  " + styles.DangerStyle.Render(fmt.Sprintf("Failed: %d", m.report.FailedItems)))
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render("Time: "+m.report.Duration.Round(time.Millisecond).String()) + "\n")

	b.WriteString("\n" + styles.Divider(58) + "\n")
	for _, r := range m.report.Results {
		if r.CleanedItems == 0 && r.SkippedItems == 0 && len(r.Errors) == 0 {
			continue
		}
		name := padWidth(truncateWidth(r.Category.Name, colName), colName)
		size := fmt.Sprintf("%*s", colSize, fsutil.FormatBytes(r.FreedSpace))
		mark := styles.SuccessStyle.Render("✓")
		if len(r.Errors) > 0 {
			mark = styles.WarningStyle.Render("△")
			if r.CleanedItems == 0 {
				mark = styles.DangerStyle.Render("✗")
			}
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", mark, name, styles.SizeStyle.Render(size)))
		for _, errMsg := range r.Errors {
			b.WriteString(styles.MutedStyle.Render("    - "+truncateTail(errMsg, 60)) + "\n")
		}
	}

	if recent := m.journal.Recent(3); len(recent) > 0 {
		b.WriteString("\n" + styles.MutedStyle.Render("Journal tail:") + "\n")
		for _, rec := range recent {
			b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  %s %-7s %s",
				rec.Time.Format("15:04:05"), rec.Outcome, shortenPath(rec.Path, 48))) + "\n")
		}
		b.WriteString(styles.MutedStyle.Render("  full log: "+shortenPath(m.journal.Path(), 58)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("q quit"))
	return b.String()
}

// --- Shared bits ---

func (m *Model) levelLine() string {
	return fmt.Sprintf("Level: %s %s",
		styles.SelectedStyle.Render(m.level.String()),
		styles.MutedStyle.Render("(deletes up to "+m.level.MaxDeletableSafety().String()+")"))
}

func (m *Model) legend() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s Safe     %s\n",
		styles.SuccessStyle.Render("●"), styles.MutedStyle.Render("regenerates on its own")))
	b.WriteString(fmt.Sprintf("%s Caution  %s\n",
		lipgloss.NewStyle().Foreground(styles.ColorCaution).Render("●"),
		styles.MutedStyle.Render("may need re-download or re-login")))
	b.WriteString(fmt.Sprintf("%s Warning  %s\n",
		styles.WarningStyle.Render("●"), styles.MutedStyle.Render("rebuild or re-index cost")))
	b.WriteString(fmt.Sprintf("%s Danger   %s\n",
		styles.DangerStyle.Render("●"), styles.MutedStyle.Render("never deleted")))
	return b.String()
}

func adjustScroll(cursor, scroll, visible, total int) int {
	if visible <= 0 || total <= visible {
		return 0
	}
	if cursor < scroll {
		return cursor
	}
	if cursor >= scroll+visible {
		return cursor - visible + 1
	}
	if scroll > total-visible {
		return total - visible
	}
	return scroll
}

func truncateWidth(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 3 {
		return string([]rune(s)[:width])
	}
	target := width - 3
	var b strings.Builder
	current := 0
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if current+w > target {
			break
		}
		b.WriteRune(r)
		current += w
	}
	return b.String() + "..."
}

// truncateTail keeps the end of the string; for paths the leaf matters.
func truncateTail(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		return string(runes[:width])
	}
	return "..." + string(runes[len(runes)-width+3:])
}

func padWidth(s string, width int) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

func shortenPath(path string, maxLen int) string {
	if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(path, home) {
		path = "~" + path[len(home):]
	}
	return truncateTail(path, maxLen)
}
