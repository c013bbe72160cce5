package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"macsweep/internal/types"
)

func TestFormatReport_DryRunNoItems(t *testing.T) {
	t.Setenv("COLUMNS", "80")
	report := &types.Report{
		FreedSpace: 0,
		Results:    []types.CleanResult{},
		Duration:   50 * time.Millisecond,
	}

	output := FormatReport(report, true)

	assert.Contains(t, output, "Dry Run Report")
	assert.Contains(t, output, "Summary")
	assert.Contains(t, output, "Highlights")
	assert.Contains(t, output, "No items to clean.")
	assert.Contains(t, output, "Would recover")
}

func TestFormatReport_IncludesCategories(t *testing.T) {
	t.Setenv("COLUMNS", "100")
	report := &types.Report{
		FreedSpace:   1024,
		TotalItems:   3,
		CleanedItems: 2,
		FailedItems:  1,
		Results: []types.CleanResult{
			{
				Category:     types.Category{Name: "Cache"},
				CleanedItems: 1,
				FreedSpace:   1024,
			},
			{
				Category:     types.Category{Name: "Logs"},
				CleanedItems: 1,
				FreedSpace:   0,
				Errors:       []string{"failed to remove"},
			},
		},
	}

	output := FormatReport(report, false)

	assert.Contains(t, output, "Cleanup Report")
	assert.Contains(t, output, "Summary")
	assert.Contains(t, output, "Highlights")
	assert.Contains(t, output, "Details")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "Recovered")
	assert.Contains(t, output, "Cleaned: 2 of 3 items")
	assert.True(t, strings.Contains(output, "Cache") || strings.Contains(output, "Logs"))
	assert.Contains(t, output, "failed to remove")
}

func TestFormatReport_ShowsPolicySkips(t *testing.T) {
	t.Setenv("COLUMNS", "100")
	report := &types.Report{
		TotalItems:   4,
		SkippedItems: 4,
		Results: []types.CleanResult{
			{
				Category:     types.Category{Name: "Xcode"},
				SkippedItems: 4,
			},
		},
	}

	output := FormatReport(report, false)

	assert.Contains(t, output, "Skipped by policy: 4")
	assert.Contains(t, output, "SKIP")
	assert.Contains(t, output, "4 skipped by policy")
}

func TestFormatReport_NarrowLayoutStacks(t *testing.T) {
	t.Setenv("COLUMNS", "50")
	report := &types.Report{
		FreedSpace:   2048,
		TotalItems:   1,
		CleanedItems: 1,
		Results: []types.CleanResult{
			{
				Category:     types.Category{Name: "Browser Cache"},
				CleanedItems: 1,
				FreedSpace:   2048,
			},
		},
	}

	output := FormatReport(report, false)

	// The stacked layout has no table header.
	assert.NotContains(t, output, "STATUS")
	assert.Contains(t, output, "Browser Cache")
}

func TestFormatReport_Nil(t *testing.T) {
	assert.Equal(t, "No report available.\n", FormatReport(nil, false))
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		name   string
		result types.CleanResult
		want   string
	}{
		{"clean", types.CleanResult{CleanedItems: 3}, "OK"},
		{"skips only", types.CleanResult{SkippedItems: 2}, "SKIP"},
		{"partial", types.CleanResult{CleanedItems: 1, Errors: []string{"x"}}, "WARN"},
		{"all failed", types.CleanResult{Errors: []string{"x"}}, "FAIL"},
		{"skips and errors", types.CleanResult{SkippedItems: 1, Errors: []string{"x"}}, "FAIL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusLabel(tt.result))
		})
	}
}

func TestPickLayout(t *testing.T) {
	assert.Equal(t, layoutWide, pickLayout(90))
	assert.Equal(t, layoutWide, pickLayout(120))
	assert.Equal(t, layoutMedium, pickLayout(70))
	assert.Equal(t, layoutMedium, pickLayout(89))
	assert.Equal(t, layoutNarrow, pickLayout(69))
	assert.Equal(t, layoutNarrow, pickLayout(0))
}

func TestReportWidth_ColumnsEnv(t *testing.T) {
	t.Setenv("COLUMNS", "72")
	assert.Equal(t, 72, reportWidth())

	t.Setenv("COLUMNS", "500")
	assert.Equal(t, defaultReportWidth, reportWidth())
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "exact", truncateText("exact", 5))
	assert.Equal(t, "abc...", truncateText("abcdefghij", 6))
	assert.Equal(t, "", truncateText("anything", 0))
	assert.Equal(t, "ab", truncateText("abcdef", 2))
}

func TestTruncateError_KeepsTail(t *testing.T) {
	msg := "remove /Users/dev/Library/Caches/com.example.app: permission denied"
	out := truncateError(msg, 30)

	assert.True(t, strings.HasPrefix(out, "..."))
	assert.Contains(t, out, "permission denied")
	assert.Equal(t, msg, truncateError(msg, 200))
}
