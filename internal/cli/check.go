package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"macsweep/internal/cleaner"
	"macsweep/internal/fsutil"
	"macsweep/internal/logger"
	"macsweep/internal/safety"
	"macsweep/internal/styles"
)

var flagCheckStrict bool

var checkCmd = &cobra.Command{
	Use:   "check <path...>",
	Short: "Explain how paths would be classified",
	Long: `Check classifies paths without deleting anything: the safety level,
the matched rule, and which cleanup levels could delete the path. Cloud
sync folders and processes that look like holders are called out as
advisories; with --strict they fail the command, for scripts that gate
on a clean bill.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&flagCheckStrict, "strict", false,
		"exit non-zero when any path has advisory findings")
}

func runCheck(_ *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	// One snapshot serves every path; listing processes per path would
	// dominate the runtime.
	snapshot, err := safety.SnapshotProcesses()
	if err != nil {
		logger.Warn("process snapshot failed", "error", err)
	}

	var advisory error
	for i, arg := range args {
		if i > 0 {
			fmt.Println()
		}
		if err := printCheck(app, snapshot, arg); err != nil && advisory == nil {
			advisory = err
		}
	}
	if flagCheckStrict {
		return advisory
	}
	return nil
}

// printCheck renders one path's classification. The returned error is
// the first advisory finding, nil when the path is clear.
func printCheck(app *App, snapshot *safety.ProcessSnapshot, path string) error {
	expanded := fsutil.ExpandPath(path)
	c := app.Validator.Classify(expanded)

	fmt.Printf("%s %s\n", styles.LevelDot(c.Level), expanded)
	if !fsutil.PathExists(expanded) {
		fmt.Println(styles.MutedStyle.Render("  (not found on disk; classified by path only)"))
	}

	fmt.Printf("  Level:     %s  %s\n",
		levelStyle(c.Level).Render(c.Level.String()),
		styles.MutedStyle.Render(c.Level.Description()))
	fmt.Printf("  Category:  %s\n", c.Category)
	reason := c.Reason
	if c.RuleName != "" {
		reason += " [" + c.RuleName + "]"
	}
	fmt.Printf("  Reason:    %s\n", reason)

	fmt.Printf("  Deletable: %s\n", deletableMatrix(c.Level))

	if c.Level == safety.LevelDanger {
		fmt.Println(styles.DangerStyle.Render("  Protected: no cleanup level can delete this path."))
	}

	var advisory error

	if finding := safety.DetectCloudSync(expanded, app.Validator.Home()); finding != nil {
		note := fmt.Sprintf("  Cloud:     inside %s", finding.Provider)
		if finding.Syncing {
			note += " (sync appears to be in progress)"
			advisory = fmt.Errorf("%w: %s", safety.ErrCloudSyncInProgress, expanded)
		}
		fmt.Println(styles.WarningStyle.Render(note))
	}

	if procs := snapshot.Holding(filepath.Base(expanded)); len(procs) > 0 {
		names := make([]string, 0, len(procs))
		for _, p := range procs {
			names = append(names, fmt.Sprintf("%s (%d)", p.Name, p.PID))
		}
		fmt.Println(styles.WarningStyle.Render(
			"  In use:    " + truncateText(strings.Join(names, ", "), 60)))
		if advisory == nil {
			advisory = fmt.Errorf("%w: %s", safety.ErrProcessRunning, expanded)
		}
	}

	return advisory
}

// deletableMatrix renders a yes/no marker per cleanup level.
func deletableMatrix(l safety.Level) string {
	levels := []cleaner.CleanupLevel{
		cleaner.CleanupLight,
		cleaner.CleanupNormal,
		cleaner.CleanupDeep,
		cleaner.CleanupSystem,
	}

	parts := make([]string, 0, len(levels))
	for _, cl := range levels {
		mark := styles.DangerStyle.Render("✗")
		if cl.CanDelete(l) {
			mark = styles.SuccessStyle.Render("✓")
		}
		parts = append(parts, fmt.Sprintf("%s %s", cl, mark))
	}
	return strings.Join(parts, "  ")
}

func levelStyle(l safety.Level) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(styles.LevelColor(l)).Bold(true)
}
