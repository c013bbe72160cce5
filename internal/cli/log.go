package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"macsweep/internal/fsutil"
	"macsweep/internal/oplog"
	"macsweep/internal/styles"
)

var (
	flagLogLines int
	flagLogStats bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the deletion journal",
	Long: `Log prints the newest entries from the deletion journal. Every
delete, dry-run, policy skip and failure is recorded there.`,
	RunE: runLog,
}

func init() {
	logCmd.Flags().IntVarP(&flagLogLines, "lines", "n", 20, "number of entries to show")
	logCmd.Flags().BoolVar(&flagLogStats, "stats", false, "summarize the whole journal instead")
}

func runLog(_ *cobra.Command, _ []string) error {
	path := oplog.DefaultPath()
	if path == "" {
		return errors.New("cannot locate the journal: home directory unknown")
	}

	limit := flagLogLines
	if flagLogStats {
		limit = 0
	}
	records, err := oplog.ReadRecords(path, limit)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Println(styles.MutedStyle.Render("No journal yet. Nothing has been cleaned."))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if len(records) == 0 {
		fmt.Println(styles.MutedStyle.Render("Journal is empty."))
		return nil
	}

	if flagLogStats {
		printLogStats(oplog.Summarize(records))
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s  %s  %s  %s  %s\n",
			styles.MutedStyle.Render(r.Time.Format("2006-01-02 15:04:05")),
			outcomeMark(r.Outcome),
			fmt.Sprintf("%-7s", r.Level),
			styles.SizeStyle.Render(fmt.Sprintf("%10s", fsutil.FormatBytes(r.Size))),
			truncateError(r.Path, 60))
		if r.Detail != "" {
			fmt.Println(styles.MutedStyle.Render("    " + truncateText(r.Detail, 70)))
		}
	}
	return nil
}

func printLogStats(s oplog.Stats) {
	fmt.Println(styles.TitleStyle.Render("Journal stats"))
	fmt.Println(styles.Divider(40))
	fmt.Printf("Entries: %d\n", s.Total)
	fmt.Printf("Deleted: %s  Dry-run: %d\n", styles.SuccessStyle.Render(fmt.Sprintf("%d", s.Deleted)), s.DryRun)
	fmt.Printf("Skipped: %d  Failed: %s\n", s.Skipped, styles.DangerStyle.Render(fmt.Sprintf("%d", s.Failed)))
	fmt.Printf("Freed:   %s\n", styles.SizeStyle.Render(fsutil.FormatBytes(s.FreedBytes)))
}

func outcomeMark(o oplog.Outcome) string {
	switch o {
	case oplog.OutcomeDeleted:
		return styles.SuccessStyle.Render(fmt.Sprintf("%-7s", o))
	case oplog.OutcomeDryRun:
		return styles.MutedStyle.Render(fmt.Sprintf("%-7s", o))
	case oplog.OutcomeSkipped:
		return styles.WarningStyle.Render(fmt.Sprintf("%-7s", o))
	case oplog.OutcomeFailed:
		return styles.DangerStyle.Render(fmt.Sprintf("%-7s", o))
	default:
		return string(o)
	}
}
