package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sys/unix"

	"macsweep/internal/fsutil"
	"macsweep/internal/styles"
	"macsweep/internal/types"
)

const (
	defaultReportWidth = 90
	minBlockWidth      = 28
	blockGap           = 2
)

// FormatReport renders a plain-text cleanup report. Skipped counts are
// policy holds, not failures; they get their own line so a mostly-empty
// report is explainable.
func FormatReport(report *types.Report, dryRun bool) string {
	if report == nil {
		return "No report available.\n"
	}

	st := newReportStyles()

	title := "Cleanup Report"
	if dryRun {
		title = "Dry Run Report"
	}

	var b strings.Builder
	b.WriteString(st.Title(title) + "\n")
	b.WriteString(st.Muted(strings.Repeat("-", len(title))) + "\n")

	modeLine := "Mode: Clean"
	if dryRun {
		modeLine = "Mode: Dry Run"
	}
	b.WriteString(st.Muted(modeLine) + "\n")

	results := filterResults(report.Results)
	width := reportWidth()
	layout := pickLayout(width)
	b.WriteString(renderSummaryAndHighlights(st, report, results, dryRun, layout, width))
	b.WriteString("\n")
	if len(results) == 0 {
		b.WriteString(st.Muted("No items to clean.") + "\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(st.Section("Details") + "\n")
	b.WriteString(renderDetails(st, results, layout, width))

	return b.String()
}

// filterResults drops categories where nothing happened. Rows that only
// skipped items stay visible so the user can see the policy at work.
func filterResults(results []types.CleanResult) []types.CleanResult {
	filtered := make([]types.CleanResult, 0, len(results))
	for _, r := range results {
		if r.CleanedItems == 0 && r.SkippedItems == 0 && len(r.Errors) == 0 {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func renderSummaryAndHighlights(
	st reportStyles,
	report *types.Report,
	results []types.CleanResult,
	dryRun bool,
	layout reportLayout,
	width int,
) string {
	freedLabel := "Recovered"
	if dryRun {
		freedLabel = "Would recover"
	}
	summaryLines := []string{
		fmt.Sprintf("%s: %s", freedLabel, st.Success(fsutil.FormatBytes(report.FreedSpace))),
		fmt.Sprintf("Cleaned: %d of %d items", report.CleanedItems, report.TotalItems),
	}
	if report.SkippedItems > 0 {
		summaryLines = append(summaryLines,
			fmt.Sprintf("Skipped by policy: %d", report.SkippedItems))
	}
	if report.FailedItems > 0 {
		summaryLines = append(summaryLines,
			st.Danger(fmt.Sprintf("Failed: %d", report.FailedItems)))
	}
	if report.Duration > 0 {
		summaryLines = append(summaryLines,
			st.Muted("Time: "+report.Duration.Round(time.Millisecond).String()))
	}

	switch layout {
	case layoutWide:
		blockWidth := (width - blockGap) / 2
		if blockWidth < minBlockWidth {
			return renderSummaryAndHighlights(st, report, results, dryRun, layoutMedium, width)
		}
		summaryBlock := renderBlock("Summary", summaryLines, blockWidth, st)
		highlightsBlock := renderBlock("Highlights", buildHighlights(st, results, 3), blockWidth, st)
		return joinBlocks(summaryBlock, highlightsBlock)
	default:
		summaryBlock := renderBlock("Summary", summaryLines, width, st)
		highlightsBlock := renderBlock("Highlights", buildHighlights(st, results, 3), width, st)
		return summaryBlock + "\n\n" + highlightsBlock
	}
}

func buildHighlights(st reportStyles, results []types.CleanResult, limit int) []string {
	if len(results) == 0 {
		return []string{st.Muted("No categories to summarize.")}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].FreedSpace > results[j].FreedSpace
	})

	if limit > len(results) {
		limit = len(results)
	}

	lines := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		r := results[i]
		line := fmt.Sprintf("%d. %s - %s (%d items)",
			i+1,
			r.Category.Name,
			fsutil.FormatBytes(r.FreedSpace),
			r.CleanedItems,
		)
		lines = append(lines, line)
	}
	return lines
}

func renderDetails(st reportStyles, results []types.CleanResult, layout reportLayout, width int) string {
	if layout == layoutNarrow {
		return renderDetailsStack(st, results)
	}
	return renderDetailsTable(st, results, width)
}

func renderDetailsTable(st reportStyles, results []types.CleanResult, width int) string {
	if width <= 0 {
		width = defaultReportWidth
	}

	statusW := 6
	itemsW := 7
	sizeW := 10
	gap := "  "
	gaps := lipgloss.Width(gap) * 3
	minName := 16
	nameW := width - statusW - itemsW - sizeW - gaps
	if nameW < minName {
		nameW = minName
	}

	statusCol := lipgloss.NewStyle().Width(statusW).Align(lipgloss.Left)
	nameCol := lipgloss.NewStyle().Width(nameW).Align(lipgloss.Left)
	itemsCol := lipgloss.NewStyle().Width(itemsW).Align(lipgloss.Right)
	sizeCol := lipgloss.NewStyle().Width(sizeW).Align(lipgloss.Right)

	header := statusCol.Render("STATUS") +
		gap + nameCol.Render("CATEGORY") +
		gap + itemsCol.Render("ITEMS") +
		gap + sizeCol.Render("SIZE")

	var b strings.Builder
	b.WriteString(st.Muted(header) + "\n")

	for _, r := range results {
		status := statusLabel(r)
		row := statusCol.Render(st.Status(status)) +
			gap + nameCol.Render(truncateText(r.Category.Name, nameW)) +
			gap + itemsCol.Render(strconv.Itoa(r.CleanedItems)) +
			gap + sizeCol.Render(fsutil.FormatBytes(r.FreedSpace))
		b.WriteString(row + "\n")

		if r.SkippedItems > 0 {
			b.WriteString(st.Muted(fmt.Sprintf("  - %d skipped by policy", r.SkippedItems)) + "\n")
		}
		for _, err := range r.Errors {
			b.WriteString(st.Muted("  - "+truncateError(err, width-6)) + "\n")
		}
	}

	return b.String()
}

func renderDetailsStack(st reportStyles, results []types.CleanResult) string {
	var b strings.Builder
	for _, r := range results {
		status := st.Status(statusLabel(r))
		line := fmt.Sprintf("%s %s - %s (%d items)", status, r.Category.Name,
			fsutil.FormatBytes(r.FreedSpace), r.CleanedItems)
		b.WriteString(line + "\n")
		if r.SkippedItems > 0 {
			b.WriteString(st.Muted(fmt.Sprintf("  - %d skipped by policy", r.SkippedItems)) + "\n")
		}
		for _, err := range r.Errors {
			b.WriteString(st.Muted("  - "+truncateError(err, 60)) + "\n")
		}
	}
	return b.String()
}

func statusLabel(r types.CleanResult) string {
	if len(r.Errors) == 0 {
		if r.CleanedItems == 0 && r.SkippedItems > 0 {
			return "SKIP"
		}
		return "OK"
	}
	if r.CleanedItems > 0 {
		return "WARN"
	}
	return "FAIL"
}

type reportStyles struct {
	enabled bool
	title   lipgloss.Style
	section lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	danger  lipgloss.Style
	muted   lipgloss.Style
}

func newReportStyles() reportStyles {
	return reportStyles{
		enabled: os.Getenv("NO_COLOR") == "",
		title:   lipgloss.NewStyle().Foreground(styles.ColorPrimary).Bold(true),
		section: lipgloss.NewStyle().Foreground(styles.ColorSecondary).Bold(true),
		success: lipgloss.NewStyle().Foreground(styles.ColorSuccess).Bold(true),
		warn:    lipgloss.NewStyle().Foreground(styles.ColorWarning).Bold(true),
		danger:  lipgloss.NewStyle().Foreground(styles.ColorDanger).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(styles.ColorMuted),
	}
}

func (s reportStyles) Title(text string) string {
	if !s.enabled {
		return text
	}
	return s.title.Render(text)
}

func (s reportStyles) Section(text string) string {
	if !s.enabled {
		return text
	}
	return s.section.Render(text)
}

func (s reportStyles) Success(text string) string {
	if !s.enabled {
		return text
	}
	return s.success.Render(text)
}

func (s reportStyles) Danger(text string) string {
	if !s.enabled {
		return text
	}
	return s.danger.Render(text)
}

func (s reportStyles) Status(text string) string {
	switch text {
	case "OK":
		return s.Success(text)
	case "SKIP":
		return s.Muted(text)
	case "WARN":
		if !s.enabled {
			return text
		}
		return s.warn.Render(text)
	case "FAIL":
		return s.Danger(text)
	default:
		return text
	}
}

func (s reportStyles) Muted(text string) string {
	if !s.enabled {
		return text
	}
	return s.muted.Render(text)
}

func renderBlock(title string, lines []string, width int, st reportStyles) string {
	if width <= 0 {
		width = defaultReportWidth
	}
	lineStyle := lipgloss.NewStyle().Width(width).Align(lipgloss.Left)
	var b strings.Builder
	b.WriteString(lineStyle.Render(st.Section(title)) + "\n")
	for _, line := range lines {
		b.WriteString(lineStyle.Render(truncateText(line, width)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func joinBlocks(left, right string) string {
	if left == "" {
		return right
	}
	if right == "" {
		return left
	}
	spacer := strings.Repeat(" ", blockGap)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, spacer, right)
}

type reportLayout int

const (
	layoutWide reportLayout = iota
	layoutMedium
	layoutNarrow
)

func pickLayout(width int) reportLayout {
	switch {
	case width >= 90:
		return layoutWide
	case width >= 70:
		return layoutMedium
	default:
		return layoutNarrow
	}
}

func reportWidth() int {
	if env := os.Getenv("COLUMNS"); env != "" {
		if value, err := strconv.Atoi(env); err == nil && value > 0 {
			if value > defaultReportWidth {
				return defaultReportWidth
			}
			return value
		}
	}
	if size, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ); err == nil {
		if size.Col > 0 {
			if size.Col > defaultReportWidth {
				return defaultReportWidth
			}
			return int(size.Col)
		}
	}
	return defaultReportWidth
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(text) <= width {
		return text
	}
	if width <= 3 {
		return string([]rune(text)[:width])
	}
	target := width - 3
	var b strings.Builder
	current := 0
	for _, r := range text {
		w := lipgloss.Width(string(r))
		if current+w > target {
			break
		}
		b.WriteRune(r)
		current += w
	}
	return b.String() + "..."
}

// truncateError keeps the tail of the message; the path suffix is the
// useful part.
func truncateError(err string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(err) <= width {
		return err
	}
	if width <= 3 {
		return string([]rune(err)[:width])
	}
	runes := []rune(err)
	return "..." + string(runes[len(runes)-width+3:])
}
